package argosync

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"atlas/config"
)

func testConfig(t *testing.T, baseURL string) *config.Config {
	return &config.Config{
		HTTPBaseURL:    baseURL,
		HTTPTimeout:    5 * time.Second,
		DAC:            "incois",
		MaxConcurrency: 4,
		StagePath:      t.TempDir(),
	}
}

// gdacStub serves a fake GDAC: an index file plus per-float files for the
// ids it knows about.
func gdacStub(t *testing.T, floats map[string][]string, requests *atomic.Int32) *httptest.Server {
	index := "file,date,latitude,longitude,ocean,profiler_type,institution,date_update\n"
	for id := range floats {
		index += fmt.Sprintf("incois/%s/profiles/D%s_001.nc,20200101000000,10.0,70.0,I,838,IN,20200101000000\n", id, id)
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			requests.Add(1)
		}
		switch {
		case r.URL.Path == "/"+indexGlobalMeta || r.URL.Path == "/"+indexThisWeekProf:
			fmt.Fprint(w, index)
		default:
			for id, files := range floats {
				for _, f := range files {
					if r.URL.Path == fmt.Sprintf("/dac/incois/%s/%s_%s", id, id, f) {
						fmt.Fprint(w, "netcdf-bytes")
						return
					}
				}
			}
			http.NotFound(w, r)
		}
	}))
}

func TestFetchFloatPartialFiles(t *testing.T) {
	// Float with only two of the four well-known files.
	server := gdacStub(t, map[string][]string{"2902345": {"meta.nc", "prof.nc"}}, nil)
	defer server.Close()

	cfg := testConfig(t, server.URL)
	o := New(cfg)

	if !o.FetchFloat(context.Background(), "2902345") {
		t.Fatal("fetch failed despite available files")
	}

	dir := filepath.Join(cfg.StagePath, "2902345")
	for _, f := range []string{"2902345_meta.nc", "2902345_prof.nc"} {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			t.Errorf("expected staged file %s: %v", f, err)
		}
	}
	for _, f := range []string{"2902345_tech.nc", "2902345_Rtraj.nc"} {
		if _, err := os.Stat(filepath.Join(dir, f)); err == nil {
			t.Errorf("absent remote file %s staged anyway", f)
		}
	}
}

func TestFetchFloatAllMissing(t *testing.T) {
	server := gdacStub(t, map[string][]string{}, nil)
	defer server.Close()

	o := New(testConfig(t, server.URL))
	if o.FetchFloat(context.Background(), "9999999") {
		t.Fatal("fetch reported success with zero retrievable files")
	}
}

func TestFullSyncRecordsManifest(t *testing.T) {
	floats := map[string][]string{
		"2902345": {"meta.nc", "prof.nc", "tech.nc"},
		"1901234": {"meta.nc"},
	}
	server := gdacStub(t, floats, nil)
	defer server.Close()

	cfg := testConfig(t, server.URL)
	o := New(cfg)

	summary, err := o.FullSync(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Total != 2 || summary.New != 2 || summary.Failed != 0 {
		t.Fatalf("summary: %+v", summary)
	}

	downloaded, err := o.Downloaded()
	if err != nil {
		t.Fatal(err)
	}
	slices.Sort(downloaded)
	if !slices.Equal(downloaded, []string{"1901234", "2902345"}) {
		t.Errorf("manifest downloaded: got %v", downloaded)
	}
}

func TestFullSyncResumesWithoutRedownload(t *testing.T) {
	var requests atomic.Int32
	server := gdacStub(t, map[string][]string{"2902345": {"meta.nc"}}, &requests)
	defer server.Close()

	cfg := testConfig(t, server.URL)
	o := New(cfg)

	if _, err := o.FullSync(context.Background()); err != nil {
		t.Fatal(err)
	}
	firstRun := requests.Load()

	// Second run: everything is already in the manifest, so only the
	// index itself may be fetched again.
	summary, err := o.FullSync(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.New != 0 {
		t.Errorf("second run downloaded %d floats", summary.New)
	}
	if got := requests.Load() - firstRun; got != 1 {
		t.Errorf("second run made %d requests, expected only the index fetch", got)
	}
}

func TestFullSyncMarksFailures(t *testing.T) {
	// The index advertises a float the file server does not have.
	index := "file,date,latitude,longitude,ocean,profiler_type,institution,date_update\n" +
		"incois/7777777/profiles/D7777777_001.nc,20200101000000,10.0,70.0,I,838,IN,20200101000000\n"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/"+indexGlobalMeta {
			fmt.Fprint(w, index)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	o := New(testConfig(t, server.URL))
	summary, err := o.FullSync(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Failed != 1 || summary.New != 0 {
		t.Fatalf("summary: %+v", summary)
	}

	m, err := o.manifest.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(m.Failed, "7777777") {
		t.Errorf("failure not recorded: %+v", m)
	}
}

func TestWeeklyUpdateSharesManifest(t *testing.T) {
	server := gdacStub(t, map[string][]string{"2902345": {"meta.nc"}}, nil)
	defer server.Close()

	cfg := testConfig(t, server.URL)
	o := New(cfg)

	if _, err := o.FullSync(context.Background()); err != nil {
		t.Fatal(err)
	}

	// The weekly index lists the same float: already downloaded, nothing
	// new to do.
	summary, err := o.WeeklyUpdate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.New != 0 || summary.Downloaded != 1 {
		t.Errorf("summary: %+v", summary)
	}
}
