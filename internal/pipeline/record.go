// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type (
	// BuildRecord is one completed pipeline run, persisted so `images` can
	// report what was built, when, and from which stage keys.
	BuildRecord struct {
		// Tag is the final image tag.
		Tag string `toml:"tag"`
		// Engine is the container engine that built the image.
		Engine string `toml:"engine"`
		// CreatedAt is when the run finished.
		CreatedAt time.Time `toml:"created_at"`
		// Stages lists the per-stage outcomes in execution order.
		Stages []StageRecord `toml:"stages"`
	}

	// StageRecord is the persisted form of one stage outcome.
	StageRecord struct {
		Name   string `toml:"name"`
		Key    string `toml:"key"`
		Tag    string `toml:"tag"`
		Cached bool   `toml:"cached"`
	}

	// RecordStore persists build records to a single TOML file.
	RecordStore struct {
		path string
	}

	recordFile struct {
		Builds []BuildRecord `toml:"builds"`
	}
)

// NewRecordStore creates a store backed by the given file path.
func NewRecordStore(path string) *RecordStore {
	return &RecordStore{path: path}
}

// NewBuildRecord converts a pipeline result into a persistable record.
func NewBuildRecord(result *Result, engine string) BuildRecord {
	rec := BuildRecord{
		Tag:       result.ImageTag,
		Engine:    engine,
		CreatedAt: time.Now().UTC(),
	}
	for _, s := range result.Stages {
		rec.Stages = append(rec.Stages, StageRecord{
			Name:   s.Stage.String(),
			Key:    s.Key,
			Tag:    s.Tag,
			Cached: s.Cached,
		})
	}
	return rec
}

// Append adds a record to the store, creating the file if needed.
func (s *RecordStore) Append(rec BuildRecord) error {
	records, err := s.List()
	if err != nil {
		return err
	}

	file := recordFile{Builds: append(records, rec)}
	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to encode build records: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create record directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write build records: %w", err)
	}
	return nil
}

// List returns all persisted records, oldest first. A missing file is an
// empty history, not an error.
func (s *RecordStore) List() ([]BuildRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read build records: %w", err)
	}

	var file recordFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse build records: %w", err)
	}
	return file.Builds, nil
}
