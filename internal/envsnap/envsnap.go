// Package envsnap captures the engine context a batch is about to change and puts it
// back once the batch is over.
package envsnap

import (
	"errors"
	"fmt"
	"path/filepath"

	"cad-batch-export/internal/engine"
	"cad-batch-export/internal/model"
	"cad-batch-export/internal/runstore"
)

const (
	ScratchDirName    = "tmp"
	LayerSnapshotName = "CurrentLayerState.lfa"
)

var (
	ErrLayerPersist  = errors.New("not possible to save the current layer state")
	ErrLayerRestore  = errors.New("not possible to load the current layer state")
	ErrProjectReopen = errors.New("not possible to reopen the original project")
)

// Snapshot is captured once before the first job and consumed once after the last.
type Snapshot struct {
	Project    model.ProjectRef  `json:"project"`
	FileStates []model.FileState `json:"file_states"`
	LayerPath  string            `json:"layer_path"`
}

// ScratchDir is the engine scratch directory below the user root.
func ScratchDir(userRoot string) string {
	return filepath.Join(userRoot, ScratchDirName)
}

func LayerSnapshotPath(userRoot string) string {
	return filepath.Join(ScratchDir(userRoot), LayerSnapshotName)
}

// Capture records the active project and loaded files, then persists the layer state
// to layerPath. An ErrLayerPersist failure means no job may run.
func Capture(eng engine.Engine, layerPath string) (Snapshot, error) {
	project, err := eng.CurrentProject()
	if err != nil {
		return Snapshot{}, fmt.Errorf("read current project: %w", err)
	}
	files, err := eng.FileStates()
	if err != nil {
		return Snapshot{}, fmt.Errorf("read loaded drawing files: %w", err)
	}
	if err := runstore.Mkdir(filepath.Dir(layerPath)); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrLayerPersist, err)
	}
	if err := eng.SaveLayerFavorite(layerPath); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrLayerPersist, err)
	}

	states := make([]model.FileState, len(files))
	copy(states, files)
	return Snapshot{
		Project:    project,
		FileStates: states,
		LayerPath:  layerPath,
	}, nil
}

// Restore re-opens the original project, replaces the loaded set with the recorded
// files in order and
// re-applies the saved layer state. Nothing is retried. When the project cannot be
// reopened the recorded files are not loaded into whatever project is active.
func Restore(eng engine.Engine, snap Snapshot) error {
	var errs []error
	reopened := true
	status, err := eng.OpenProject(snap.Project.Host, snap.Project.Project)
	switch {
	case err != nil:
		reopened = false
		errs = append(errs, fmt.Errorf("%w %s: %w", ErrProjectReopen, snap.Project, err))
	case status == engine.StatusProjectMissing || status == engine.StatusOpenFailed:
		reopened = false
		errs = append(errs, fmt.Errorf("%w %s: %s", ErrProjectReopen, snap.Project, status))
	}
	if reopened {
		// the last job's files are still loaded
		if err := eng.UnloadAll(); err != nil {
			errs = append(errs, fmt.Errorf("unload drawing files: %w", err))
		}
		for _, f := range snap.FileStates {
			if err := eng.LoadFile(f.Number, f.State); err != nil {
				errs = append(errs, fmt.Errorf("reload drawing file %d: %w", f.Number, err))
			}
		}
	}
	if err := eng.LoadLayerFavorite(snap.LayerPath); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrLayerRestore, err))
	}
	return errors.Join(errs...)
}
