package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"cad-batch-export/internal/model"
)

const DefaultBridgeBinary = "cad-bridge"

// Bridge implements Engine by invoking an external bridge executable once per call.
// The bridge prints a JSON document on stdout and exits non-zero on failure.
type Bridge struct {
	Binary string
}

func NewBridge(binary string) *Bridge {
	b := strings.TrimSpace(binary)
	if b == "" {
		b = DefaultBridgeBinary
	}
	return &Bridge{Binary: b}
}

type BridgeReport struct {
	Found bool   `json:"found"`
	Path  string `json:"path,omitempty"`
}

func BridgeStatus(binary string) BridgeReport {
	b := strings.TrimSpace(binary)
	if b == "" {
		b = DefaultBridgeBinary
	}
	path, err := exec.LookPath(b)
	if err != nil {
		return BridgeReport{}
	}
	return BridgeReport{Found: true, Path: path}
}

func CheckBridge(binary string) error {
	if !BridgeStatus(binary).Found {
		return fmt.Errorf("missing dependency: engine bridge %q is not installed or not on PATH", binary)
	}
	return nil
}

func (b *Bridge) CurrentProject() (model.ProjectRef, error) {
	var out model.ProjectRef
	if err := b.call(&out, "current-project"); err != nil {
		return model.ProjectRef{}, err
	}
	return out, nil
}

func (b *Bridge) OpenProject(host, project string) (OpenStatus, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := b.call(&out, "open-project", "--host", host, "--project", project); err != nil {
		return "", err
	}
	return OpenStatus(out.Status), nil
}

func (b *Bridge) ProjectPath(host, project string) (string, error) {
	var out struct {
		Path string `json:"path"`
	}
	if err := b.call(&out, "project-path", "--host", host, "--project", project); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Path) == "" {
		return "", fmt.Errorf("engine bridge returned no path for project %s(%s)", project, host)
	}
	return out.Path, nil
}

func (b *Bridge) CurrentUser() (string, error) {
	var out struct {
		User string `json:"user"`
	}
	if err := b.call(&out, "current-user"); err != nil {
		return "", err
	}
	return out.User, nil
}

func (b *Bridge) Roots() (Roots, error) {
	var out Roots
	if err := b.call(&out, "roots"); err != nil {
		return Roots{}, err
	}
	return out, nil
}

func (b *Bridge) FileStates() ([]model.FileState, error) {
	var out struct {
		Files []model.FileState `json:"files"`
	}
	if err := b.call(&out, "file-states"); err != nil {
		return nil, err
	}
	for _, f := range out.Files {
		if !f.State.Valid() {
			return nil, fmt.Errorf("engine bridge reported unknown load state %d for file %d", int(f.State), f.Number)
		}
	}
	return out.Files, nil
}

func (b *Bridge) LoadFile(number int, state model.LoadState) error {
	return b.call(nil, "load-file", "--number", strconv.Itoa(number), "--state", strconv.Itoa(int(state)))
}

func (b *Bridge) UnloadAll() error {
	return b.call(nil, "unload-all")
}

func (b *Bridge) RedrawAll() error {
	return b.call(nil, "redraw")
}

func (b *Bridge) SaveLayerFavorite(path string) error {
	return b.call(nil, "save-layer", "--path", path)
}

func (b *Bridge) LoadLayerFavorite(path string) error {
	return b.call(nil, "load-layer", "--path", path)
}

func (b *Bridge) ExportIFC(fileNumbers []int, version, destPath, favoritePath string) error {
	return b.call(nil, "export-ifc",
		"--files", joinNumbers(fileNumbers),
		"--version", version,
		"--dest", destPath,
		"--favorite", favoritePath,
	)
}

func (b *Bridge) ExportDWG(fileNumbers []int, version int, destPath, favoritePath string) error {
	return b.call(nil, "export-dwg",
		"--files", joinNumbers(fileNumbers),
		"--version", strconv.Itoa(version),
		"--dest", destPath,
		"--favorite", favoritePath,
	)
}

func (b *Bridge) Shutdown() error {
	return b.call(nil, "shutdown")
}

func (b *Bridge) call(out any, args ...string) error {
	cmd := exec.Command(b.Binary, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("engine bridge %s failed: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	if out == nil {
		return nil
	}
	if stdout.Len() == 0 {
		return fmt.Errorf("engine bridge %s returned empty output", args[0])
	}
	if err := json.Unmarshal(stdout.Bytes(), out); err != nil {
		return fmt.Errorf("parse engine bridge %s output: %w", args[0], err)
	}
	return nil
}

func joinNumbers(numbers []int) string {
	parts := make([]string, 0, len(numbers))
	for _, n := range numbers {
		parts = append(parts, strconv.Itoa(n))
	}
	return strings.Join(parts, ",")
}
