// Package engine describes the CAD engine session driven by a batch run and
// provides a client for the external bridge executable that talks to it.
package engine

import "cad-batch-export/internal/model"

// OpenStatus is the exact status text the engine reports for an open-project call.
type OpenStatus string

const (
	StatusActiveProject  OpenStatus = "Active project"
	StatusProjectMissing OpenStatus = "Project not exist"
	StatusOpenFailed     OpenStatus = "Not possible to open the project"
)

// Roots are the engine-known directories substituted into output path templates.
type Roots struct {
	User    string `json:"user"`
	Std     string `json:"std"`
	Project string `json:"project"`
}

// Engine is the single session whose global context a batch borrows and restores.
// Every call blocks until the engine returns.
type Engine interface {
	CurrentProject() (model.ProjectRef, error)
	OpenProject(host, project string) (OpenStatus, error)
	ProjectPath(host, project string) (string, error)
	CurrentUser() (string, error)
	Roots() (Roots, error)

	FileStates() ([]model.FileState, error)
	LoadFile(number int, state model.LoadState) error
	UnloadAll() error
	RedrawAll() error

	SaveLayerFavorite(path string) error
	LoadLayerFavorite(path string) error

	ExportIFC(fileNumbers []int, version, destPath, favoritePath string) error
	ExportDWG(fileNumbers []int, version int, destPath, favoritePath string) error

	Shutdown() error
}
