package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileSink writes one JSON file per record into a directory.
type FileSink struct {
	dir string
}

// NewFileSink ensures the directory exists and returns the sink.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating audit directory: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

func (s *FileSink) Write(_ context.Context, rec *Record) error {
	payload, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling audit record: %w", err)
	}
	name := fmt.Sprintf("%d-%s.json", rec.Timestamp.UnixNano(), uuid.NewString())
	if err := os.WriteFile(filepath.Join(s.dir, name), payload, 0o644); err != nil {
		return fmt.Errorf("writing audit record: %w", err)
	}
	return nil
}
