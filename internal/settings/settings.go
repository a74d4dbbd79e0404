// Package settings resolves raw job table rows into job descriptors relative to the
// batch settings directory.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"cad-batch-export/internal/jobtable"
	"cad-batch-export/internal/model"
	"cad-batch-export/internal/selection"
)

// Column names shared by every export variant.
const (
	ColumnSelection   = "dfSelection"
	ColumnLayer       = "layerSetting"
	ColumnHost        = "hostName"
	ColumnProject     = "projectName"
	ColumnDestination = "destinationFolder"
)

// Sub-directories of the settings directory.
const (
	SelectionFolder = "dfSettings"
	LayerFolder     = "layerSettings"
	IFCFolder       = "ifcSettings"
	DWGFolder       = "dwgSettings"
	ConfigFolder    = "cfgSettings"
)

// SelectionReader extracts file numbers from a selection descriptor.
type SelectionReader func(path string) ([]int, error)

type Resolver struct {
	BaseDir string
	// LayerSnapshotPath is used when a row names no layer favorite, so the job
	// re-applies the layer state captured before the run.
	LayerSnapshotPath string
}

// RowError reports a row that could not be turned into a job.
type RowError struct {
	Line int
	Path string
	Err  error
}

func (e *RowError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("row %d: %s: %v", e.Line, e.Path, e.Err)
	}
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// MissingFile reports whether the row failed because a referenced file does not exist.
func (e *RowError) MissingFile() bool {
	return errors.Is(e.Err, fs.ErrNotExist)
}

func (r Resolver) SelectionPath(name string) string {
	return filepath.Join(r.BaseDir, SelectionFolder, name)
}

// Favorite resolves a named settings file inside folder; an empty name yields fallback.
func (r Resolver) Favorite(name, folder, fallback string) string {
	if name == "" {
		return fallback
	}
	return filepath.Join(r.BaseDir, folder, name)
}

// Common resolves the columns every variant shares. Variant-specific fields are left
// for the caller.
func (r Resolver) Common(row jobtable.Row, read SelectionReader) (model.JobDescriptor, error) {
	selPath := r.SelectionPath(row.Get(ColumnSelection))
	numbers, err := read(selPath)
	if err != nil {
		return model.JobDescriptor{}, &RowError{Line: row.Line, Path: selPath, Err: err}
	}
	if len(numbers) == 0 {
		return model.JobDescriptor{}, &RowError{Line: row.Line, Path: selPath, Err: selection.ErrEmptySelection}
	}

	return model.JobDescriptor{
		Row:               row.Line,
		Host:              row.Get(ColumnHost),
		Project:           row.Get(ColumnProject),
		FileNumbers:       numbers,
		LayerFavoritePath: r.Favorite(row.Get(ColumnLayer), LayerFolder, r.LayerSnapshotPath),
		OutputPath:        row.Fields[ColumnDestination],
	}, nil
}

// Invalid wraps a variant-specific resolution failure for row.
func Invalid(row jobtable.Row, err error) error {
	return &RowError{Line: row.Line, Err: err}
}
