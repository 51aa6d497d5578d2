package ingest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
)

// RawStore is the flat-file landing zone. Files hold source responses as
// fetched; nothing downstream ever writes here.
type RawStore struct {
	dir string
}

func NewRawStore(dir string) *RawStore {
	return &RawStore{dir: dir}
}

func (r *RawStore) CrimePath() string      { return filepath.Join(r.dir, "crime_raw.json") }
func (r *RawStore) RegionMetaPath() string { return filepath.Join(r.dir, "region_meta.json") }
func (r *RawStore) CrimeMetaPath() string  { return filepath.Join(r.dir, "crime_meta.json") }
func (r *RawStore) BoundariesPath() string { return filepath.Join(r.dir, "municipalities.geojson") }

func (r *RawStore) WriteJSON(path string, v any) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", r.dir, err)
	}

	data, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

func (r *RawStore) ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := sonic.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", path, err)
	}

	return nil
}

// Present reports whether every landing file a pipeline run needs exists.
func (r *RawStore) Present() bool {
	for _, path := range []string{r.CrimePath(), r.RegionMetaPath(), r.CrimeMetaPath(), r.BoundariesPath()} {
		if _, err := os.Stat(path); err != nil {
			return false
		}
	}
	return true
}
