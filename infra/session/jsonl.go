// Package session provides persistence backends for finalized charging
// sessions.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kilianp07/solarfleet/core/model"
)

// Config defines settings for the JSONL session log and its rotation.
type Config struct {
	// Path is the file location of the session log.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation when the file exceeds this size in
	// megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Path == "" {
		c.Path = "sessions.log"
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = 5
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}

// JSONLStore appends finalized sessions to a rotating JSONL file.
type JSONLStore struct {
	mu sync.Mutex
	w  *lumberjack.Logger
}

// NewJSONLStore creates a store writing to cfg.Path.
func NewJSONLStore(cfg Config) (*JSONLStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &JSONLStore{
		w: &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		},
	}, nil
}

// Record appends one session record as a JSON line.
func (s *JSONLStore) Record(_ context.Context, rec model.FinalizedSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	line = append(line, '\n')
	_, err = s.w.Write(line)
	return err
}

// Close closes the underlying file.
func (s *JSONLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Close()
}
