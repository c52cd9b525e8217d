package dataset

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sales-dashboard/internal/models"
)

const snapshotVersion = "v1"

type snapshot struct {
	Version string
	Source  string
	Created time.Time
	Records []models.Record
}

var errStaleSnapshot = errors.New("snapshot older than source")

func (l *Loader) snapshotPath(source string) string {
	name := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(source)
	return filepath.Join(l.cacheDir, fmt.Sprintf("%s_%s.gob", name, snapshotVersion))
}

func (l *Loader) saveSnapshot(source string, ds *Dataset) error {
	if err := os.MkdirAll(l.cacheDir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	file, err := os.Create(l.snapshotPath(source))
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer file.Close()

	snap := snapshot{
		Version: snapshotVersion,
		Source:  source,
		Created: time.Now(),
		Records: ds.records,
	}
	if err := gob.NewEncoder(file).Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// loadSnapshot returns the cached dataset for source if one exists and was
// written after the source's last modification.
func (l *Loader) loadSnapshot(source string, modTime time.Time) (*Dataset, error) {
	file, err := os.Open(l.snapshotPath(source))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var snap snapshot
	if err := gob.NewDecoder(file).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version != snapshotVersion || snap.Source != source {
		return nil, fmt.Errorf("snapshot mismatch: %s %s", snap.Version, snap.Source)
	}
	if !modTime.Before(snap.Created) {
		return nil, errStaleSnapshot
	}
	return New(snap.Records), nil
}
