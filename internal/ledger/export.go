// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// ExportEntry is one run with its per-file outcomes, for export.
type ExportEntry struct {
	Run   RunSummary   `json:"run" yaml:"run"`
	Files []FileRecord `json:"files" yaml:"files"`
}

const exportRunLimit = 100000

// ExportYAML writes the full run history to path as YAML.
func (s *Store) ExportYAML(ctx context.Context, path string) error {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the full run history to path as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, path string) error {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context) ([]ExportEntry, error) {
	runs, err := s.Runs(ctx, exportRunLimit)
	if err != nil {
		return nil, fmt.Errorf("querying runs for export: %w", err)
	}

	entries := make([]ExportEntry, len(runs))
	for i, run := range runs {
		files, err := s.Files(ctx, run.ID)
		if err != nil {
			return nil, fmt.Errorf("querying files for export: %w", err)
		}
		entries[i] = ExportEntry{Run: run, Files: files}
	}
	return entries, nil
}
