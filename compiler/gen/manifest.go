package gen

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// ManifestFile is the name of the run manifest under the project root.
const ManifestFile = ".tmplgen.manifest"

// manifestVersion is bumped on incompatible format changes.
const manifestVersion = 1

type (
	// Manifest records the files emitted by previous passes.
	Manifest struct {
		Version int                       `msgpack:"version"`
		RunID   string                    `msgpack:"run_id"`
		Time    time.Time                 `msgpack:"time"`
		Files   map[string]*ManifestEntry `msgpack:"files"`
	}

	// ManifestEntry describes one emitted file, keyed by its slash
	// separated path relative to the project root.
	ManifestEntry struct {
		Hash     string          `msgpack:"hash"`
		Template string          `msgpack:"template"`
		Table    string          `msgpack:"table"`
		Policy   OverwritePolicy `msgpack:"policy"`
		RunID    string          `msgpack:"run_id"`
		// Stale marks files no longer produced by their template.
		Stale bool `msgpack:"stale,omitempty"`
	}
)

// NewManifest returns an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{Version: manifestVersion, Files: make(map[string]*ManifestEntry)}
}

// ReadManifest reads the manifest under root. A missing manifest is empty.
func ReadManifest(root string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(root, ManifestFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return NewManifest(), nil
	case err != nil:
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m := NewManifest()
	if err := msgpack.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if m.Version != manifestVersion {
		return nil, fmt.Errorf("manifest version %d is not supported", m.Version)
	}
	if m.Files == nil {
		m.Files = make(map[string]*ManifestEntry)
	}
	return m, nil
}

// Write stores the manifest under root.
func (m *Manifest) Write(root string) error {
	data, err := msgpack.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return NewFileWriteError(root, "mkdir", err)
	}
	_, err = replace(filepath.Join(root, ManifestFile), data)
	return err
}

// StaleFiles returns the sorted paths of the stale entries.
func (m *Manifest) StaleFiles() []string {
	var paths []string
	for p, e := range m.Files {
		if e.Stale {
			paths = append(paths, p)
		}
	}
	slices.Sort(paths)
	return paths
}

// markStale flags the entries of the given templates that the run did not
// produce. Entries of pairs that failed in the run keep their state, as
// their files were neither replaced nor abandoned.
func (m *Manifest) markStale(runID string, templates []string, failed map[pair]bool) {
	for _, e := range m.Files {
		if e.RunID == runID || !slices.Contains(templates, e.Template) || failed[pair{e.Table, e.Template}] {
			continue
		}
		e.Stale = true
	}
}

// Prune removes the stale always-regenerate files under root together with
// their emptied directories. Stale generate-once files are kept on disk
// and stay listed. It returns the removed paths.
func (m *Manifest) Prune(root string) ([]string, error) {
	var removed []string
	for _, p := range m.StaleFiles() {
		e := m.Files[p]
		if e.Policy == GenerateOnce {
			continue
		}
		path := filepath.Join(root, filepath.FromSlash(p))
		if err := remove(filepath.Dir(path), filepath.Base(path)); err != nil {
			return removed, NewFileWriteError(path, "remove", err)
		}
		delete(m.Files, p)
		removed = append(removed, p)
	}
	return removed, nil
}

// hash returns the content hash recorded in the manifest.
func hash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// pair identifies a (table, template) combination of a pass.
type pair struct {
	table, template string
}
