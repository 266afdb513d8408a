package argosync

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// Manifest is the durable record of which floats have been downloaded or
// attempted. The two sets are disjoint: a successful retry removes the id
// from the failed list.
type Manifest struct {
	Downloaded []string `json:"downloaded"`
	Failed     []string `json:"failed"`
}

// DownloadedSet returns the downloaded ids as a set for membership tests.
func (m *Manifest) DownloadedSet() map[string]struct{} {
	set := make(map[string]struct{}, len(m.Downloaded))
	for _, id := range m.Downloaded {
		set[id] = struct{}{}
	}
	return set
}

// MarkDownloaded records successfully synced floats, clearing any earlier
// failure entries for them.
func (m *Manifest) MarkDownloaded(ids []string) {
	for _, id := range ids {
		if !slices.Contains(m.Downloaded, id) {
			m.Downloaded = append(m.Downloaded, id)
		}
		if i := slices.Index(m.Failed, id); i >= 0 {
			m.Failed = slices.Delete(m.Failed, i, i+1)
		}
	}
}

// MarkFailed records floats whose sync failed, without duplicates.
func (m *Manifest) MarkFailed(ids []string) {
	for _, id := range ids {
		if !slices.Contains(m.Failed, id) {
			m.Failed = append(m.Failed, id)
		}
	}
}

// ManifestStore persists the manifest as a single JSON file. It provides
// no concurrent-writer protection; callers serialize access.
type ManifestStore struct {
	path string
}

func NewManifestStore(path string) *ManifestStore {
	return &ManifestStore{path: path}
}

// Load reads the persisted manifest. A missing file is not an error and
// yields an empty manifest.
func (s *ManifestStore) Load() (*Manifest, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Manifest{Downloaded: []string{}, Failed: []string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", s.path, err)
	}
	return &m, nil
}

// Save overwrites the persisted manifest. The write goes to a temp file
// first and is moved into place, so a crash mid-write leaves the previous
// manifest intact.
func (s *ManifestStore) Save(m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".sync_manifest-*")
	if err != nil {
		return fmt.Errorf("create manifest temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close manifest: %w", err)
	}
	// CreateTemp defaults to 0600; the manifest is shared operational
	// state, not a secret.
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod manifest: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}
