package argosync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"atlas/config"
	"atlas/utils"
)

const (
	indexGlobalMeta   = "ar_index_global_meta.txt"
	indexThisWeekProf = "ar_index_this_week_prof.txt"
	manifestFileName  = "sync_manifest.json"
)

// The four well-known files of a float. Not every float carries all of
// them; a 404 on any single one is an expected outcome.
var floatFileSuffixes = []string{"meta.nc", "tech.nc", "prof.nc", "Rtraj.nc"}

var errNotFound = errors.New("remote file not found")

// Summary reports the outcome of a full or weekly sync.
type Summary struct {
	Total      int
	Downloaded int
	New        int
	Failed     int
}

// Orchestrator downloads per-float file sets from the GDAC with bounded
// concurrency and tracks progress in a resumable manifest.
type Orchestrator struct {
	cfg      *config.Config
	client   *http.Client
	manifest *ManifestStore
}

func New(cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.HTTPTimeout},
		manifest: NewManifestStore(filepath.Join(cfg.StagePath, manifestFileName)),
	}
}

// Downloaded returns the float ids recorded as downloaded in the manifest.
func (o *Orchestrator) Downloaded() ([]string, error) {
	m, err := o.manifest.Load()
	if err != nil {
		return nil, err
	}
	return m.Downloaded, nil
}

// FetchFloat downloads the four well-known files of one float into its
// staging directory, all four concurrently. It returns true if at least
// one file was retrieved; a float with zero retrievable files counts as a
// sync failure.
func (o *Orchestrator) FetchFloat(ctx context.Context, floatID string) bool {
	dir := filepath.Join(o.cfg.StagePath, floatID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Error("could not create staging dir", "float_id", floatID, "error", err)
		return false
	}

	var wg sync.WaitGroup
	var fetched atomic.Int32
	for _, suffix := range floatFileSuffixes {
		filename := fmt.Sprintf("%s_%s", floatID, suffix)
		url := fmt.Sprintf("%s/dac/%s/%s/%s", o.cfg.HTTPBaseURL, o.cfg.DAC, floatID, filename)

		wg.Add(1)
		go func() {
			defer wg.Done()
			err := o.downloadFile(ctx, url, filepath.Join(dir, filename))
			switch {
			case err == nil:
				fetched.Add(1)
			case errors.Is(err, errNotFound):
				slog.Debug("optional file absent", "file", filename)
			default:
				slog.Error("download failed", "file", filename, "error", err)
			}
		}()
	}
	wg.Wait()

	slog.Debug("float download completed", "float_id", floatID, "files", fetched.Load())
	return fetched.Load() >= 1
}

// SyncMany fetches the given floats with a global in-flight cap. One
// float's failure never aborts its siblings, and no output ordering is
// guaranteed.
func (o *Orchestrator) SyncMany(ctx context.Context, floatIDs map[string]struct{}) (successful, failed []string) {
	if len(floatIDs) == 0 {
		return nil, nil
	}

	sem := make(chan struct{}, o.cfg.MaxConcurrency)
	bar := utils.NewBar(len(floatIDs), "syncing floats")

	var mu sync.Mutex
	var wg sync.WaitGroup
	for id := range floatIDs {
		wg.Add(1)
		go func(floatID string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			ok := o.FetchFloat(ctx, floatID)

			mu.Lock()
			if ok {
				successful = append(successful, floatID)
			} else {
				failed = append(failed, floatID)
			}
			mu.Unlock()
			bar.Add(1)
		}(id)
	}
	wg.Wait()

	return successful, failed
}

// FullSync downloads the DAC-wide index and syncs every float not already
// recorded as downloaded. Progress persists in the manifest, so an
// interrupted sync resumes where it stopped.
func (o *Orchestrator) FullSync(ctx context.Context) (*Summary, error) {
	slog.Info("starting full DAC sync", "dac", o.cfg.DAC)
	return o.syncFromIndex(ctx, indexGlobalMeta)
}

// WeeklyUpdate syncs the floats listed in the much smaller weekly index.
// It shares the manifest with FullSync, so newly discovered floats carry
// over into the same resumable state.
func (o *Orchestrator) WeeklyUpdate(ctx context.Context) (*Summary, error) {
	slog.Info("starting weekly update", "dac", o.cfg.DAC)
	return o.syncFromIndex(ctx, indexThisWeekProf)
}

func (o *Orchestrator) syncFromIndex(ctx context.Context, indexName string) (*Summary, error) {
	url := fmt.Sprintf("%s/%s", o.cfg.HTTPBaseURL, indexName)
	content, err := o.fetchIndex(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch index %s: %w", indexName, err)
	}

	allFloats := ParseIndex(content, o.cfg.DAC)
	slog.Info("floats found in index", "index", indexName, "count", len(allFloats))
	if len(allFloats) == 0 {
		return &Summary{}, nil
	}

	manifest, err := o.manifest.Load()
	if err != nil {
		return nil, err
	}

	downloaded := manifest.DownloadedSet()
	pending := make(map[string]struct{})
	for id := range allFloats {
		if _, ok := downloaded[id]; !ok {
			pending[id] = struct{}{}
		}
	}

	slog.Info("sync status",
		"total", len(allFloats),
		"already_downloaded", len(downloaded),
		"pending", len(pending))

	if len(pending) == 0 {
		return &Summary{Total: len(allFloats), Downloaded: len(manifest.Downloaded)}, nil
	}

	successful, failed := o.SyncMany(ctx, pending)

	manifest.MarkDownloaded(successful)
	manifest.MarkFailed(failed)
	if err := o.manifest.Save(manifest); err != nil {
		return nil, err
	}

	slog.Info("sync completed",
		"total", len(allFloats),
		"new_downloads", len(successful),
		"failed", len(failed))

	return &Summary{
		Total:      len(allFloats),
		Downloaded: len(manifest.Downloaded),
		New:        len(successful),
		Failed:     len(failed),
	}, nil
}

func (o *Orchestrator) fetchIndex(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("index fetch http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (o *Orchestrator) downloadFile(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download http %d", resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	return out.Close()
}
