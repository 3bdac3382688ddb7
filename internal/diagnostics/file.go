package diagnostics

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/leofalp/agentswarm/core/recovery"
)

// FileSink writes each entry to <dir>/<correlation id>.json and the
// reconstructed text next to it as <correlation id>.txt.
type FileSink struct {
	dir string
	now func() time.Time
}

var _ recovery.Sink = (*FileSink)(nil)

// NewFileSink creates dir if needed.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create diagnostics directory: %w", err)
	}
	return &FileSink{dir: dir, now: time.Now}, nil
}

// Dir returns the directory entries are written to.
func (s *FileSink) Dir() string {
	return s.dir
}

func (s *FileSink) Persist(ctx context.Context, correlationID string, report *recovery.FailureReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entry := NewEntry(correlationID, report, s.now())
	name := safeName(entry.CorrelationID)

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal diagnostics entry: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(s.dir, name+".json"), data); err != nil {
		return err
	}
	if entry.Reconstructed != "" {
		if err := writeFileAtomic(filepath.Join(s.dir, name+".txt"), []byte(entry.Reconstructed)); err != nil {
			return err
		}
	}
	return nil
}

// Load reads back the entry stored for correlationID.
func (s *FileSink) Load(correlationID string) (*Entry, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, safeName(correlationID)+".json"))
	if err != nil {
		return nil, err
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode diagnostics entry: %w", err)
	}
	return &entry, nil
}

// writeFileAtomic writes through a temporary file in the same directory so
// readers never see a partial entry.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create diagnostics file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write diagnostics file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write diagnostics file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
