// Package enginetest provides an in-memory engine session for tests.
package enginetest

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"

	"cad-batch-export/internal/engine"
	"cad-batch-export/internal/model"
)

type ExportCall struct {
	Format          string
	Project         model.ProjectRef
	FileNumbers     []int
	Loaded          []model.FileState
	Layer           string
	Version         string
	Dest            string
	Favorite        string
	FavoriteContent string
}

// Engine keeps the session state a real engine would hold. Layer favorites are real
// files: saving writes the current layer name, loading reads it back.
type Engine struct {
	Project      model.ProjectRef
	Loaded       []model.FileState
	Layer        string
	User         string
	UserRoot     string
	StdRoot      string
	ProjectPaths map[model.ProjectRef]string
	OpenStatus   map[model.ProjectRef]engine.OpenStatus

	FailSaveLayer bool
	FailLoadLayer map[string]bool
	ExportErr     map[string]error

	Calls     []string
	Exports   []ExportCall
	Redraws   int
	ShutDown  bool
	LoadCalls []model.FileState
}

func New(project model.ProjectRef, userRoot, stdRoot string) *Engine {
	return &Engine{
		Project:       project,
		Layer:         "initial",
		User:          "usr01",
		UserRoot:      userRoot,
		StdRoot:       stdRoot,
		ProjectPaths:  map[model.ProjectRef]string{},
		OpenStatus:    map[model.ProjectRef]engine.OpenStatus{},
		FailLoadLayer: map[string]bool{},
		ExportErr:     map[string]error{},
	}
}

func (e *Engine) record(format string, args ...any) {
	e.Calls = append(e.Calls, fmt.Sprintf(format, args...))
}

func (e *Engine) CurrentProject() (model.ProjectRef, error) {
	e.record("current-project")
	return e.Project, nil
}

func (e *Engine) OpenProject(host, project string) (engine.OpenStatus, error) {
	ref := model.ProjectRef{Host: host, Project: project}
	e.record("open-project %s", ref)
	if status, ok := e.OpenStatus[ref]; ok && status != engine.StatusActiveProject {
		return status, nil
	}
	if ref == e.Project {
		return engine.StatusActiveProject, nil
	}
	e.Project = ref
	return "Project opened", nil
}

func (e *Engine) ProjectPath(host, project string) (string, error) {
	p, ok := e.ProjectPaths[model.ProjectRef{Host: host, Project: project}]
	if !ok {
		return "", errors.New("unknown project")
	}
	return p, nil
}

func (e *Engine) CurrentUser() (string, error) {
	return e.User, nil
}

func (e *Engine) Roots() (engine.Roots, error) {
	return engine.Roots{User: e.UserRoot, Std: e.StdRoot, Project: e.ProjectPaths[e.Project]}, nil
}

func (e *Engine) FileStates() ([]model.FileState, error) {
	e.record("file-states")
	return slices.Clone(e.Loaded), nil
}

func (e *Engine) LoadFile(number int, state model.LoadState) error {
	e.record("load-file %d %d", number, int(state))
	e.LoadCalls = append(e.LoadCalls, model.FileState{Number: number, State: state})
	e.Loaded = append(e.Loaded, model.FileState{Number: number, State: state})
	return nil
}

func (e *Engine) UnloadAll() error {
	e.record("unload-all")
	e.Loaded = nil
	return nil
}

func (e *Engine) RedrawAll() error {
	e.record("redraw")
	e.Redraws++
	return nil
}

func (e *Engine) SaveLayerFavorite(path string) error {
	e.record("save-layer %s", path)
	if e.FailSaveLayer {
		return errors.New("save refused")
	}
	return os.WriteFile(path, []byte(e.Layer), 0o644)
}

func (e *Engine) LoadLayerFavorite(path string) error {
	e.record("load-layer %s", path)
	if e.FailLoadLayer[path] {
		return errors.New("load refused")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	e.Layer = string(data)
	return nil
}

func (e *Engine) ExportIFC(fileNumbers []int, version, destPath, favoritePath string) error {
	return e.export("ifc", fileNumbers, version, destPath, favoritePath)
}

func (e *Engine) ExportDWG(fileNumbers []int, version int, destPath, favoritePath string) error {
	return e.export("dwg", fileNumbers, strconv.Itoa(version), destPath, favoritePath)
}

func (e *Engine) export(format string, fileNumbers []int, version, destPath, favoritePath string) error {
	e.record("export-%s %s", format, destPath)
	call := ExportCall{
		Format:      format,
		Project:     e.Project,
		FileNumbers: slices.Clone(fileNumbers),
		Loaded:      slices.Clone(e.Loaded),
		Layer:       e.Layer,
		Version:     version,
		Dest:        destPath,
		Favorite:    favoritePath,
	}
	if favoritePath != "" {
		if data, err := os.ReadFile(favoritePath); err == nil {
			call.FavoriteContent = string(data)
		}
	}
	e.Exports = append(e.Exports, call)
	if err := e.ExportErr[destPath]; err != nil {
		return err
	}
	return os.WriteFile(destPath, []byte(format), 0o644)
}

func (e *Engine) Shutdown() error {
	e.record("shutdown")
	e.ShutDown = true
	return nil
}

var _ engine.Engine = (*Engine)(nil)
