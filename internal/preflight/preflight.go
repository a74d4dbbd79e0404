// Package preflight checks that the tool can reach an engine session and the files a
// batch needs before anything is changed.
package preflight

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cad-batch-export/internal/engine"
	"cad-batch-export/internal/envsnap"
	"cad-batch-export/internal/runstore"
	"cad-batch-export/internal/settings"
	"cad-batch-export/internal/variant"
)

type Options struct {
	Bridge string
	// Engine replaces the bridge session, mainly for tests.
	Engine      engine.Engine
	SettingsDir string
}

type Result struct {
	OK     bool    `json:"ok"`
	Checks []Check `json:"checks"`
}

type Check struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	// Optional checks are reported but do not fail the result.
	Optional bool `json:"optional,omitempty"`
}

func Doctor(opts Options) (Result, error) {
	checks := make([]Check, 0, 7)
	eng := opts.Engine
	if eng == nil {
		bridge := strings.TrimSpace(opts.Bridge)
		if bridge == "" {
			bridge = engine.DefaultBridgeBinary
		}
		dep := engine.BridgeStatus(bridge)
		checks = append(checks, Check{
			Name:    "dependency:bridge",
			OK:      dep.Found,
			Message: dependencyMessage(dep.Found, dep.Path, bridge),
		})
		if !dep.Found {
			return finish(checks), nil
		}
		eng = engine.NewBridge(bridge)
	}

	roots, err := eng.Roots()
	if err != nil {
		checks = append(checks, Check{Name: "engine:session", Message: err.Error()})
		return finish(checks), nil
	}
	checks = append(checks, Check{
		Name:    "engine:session",
		OK:      true,
		Message: "user=" + roots.User + " std=" + roots.Std,
	})

	scratchOK, scratchMessage := ensureWritableDir(envsnap.ScratchDir(roots.User))
	checks = append(checks, Check{
		Name:    "directory:scratch",
		OK:      scratchOK,
		Message: scratchMessage,
	})

	checks = append(checks, sessionLockCheck(envsnap.ScratchDir(roots.User)))

	if dir := strings.TrimSpace(opts.SettingsDir); dir != "" {
		checks = append(checks, settingsDirCheck(dir))
	}

	for _, name := range variant.Names() {
		v, err := variant.Lookup(name)
		if err != nil {
			continue
		}
		table := v.DefaultTable(roots.Std)
		c := Check{Name: "table:" + name, OK: runstore.Exists(table), Optional: true}
		if c.OK {
			c.Message = table
		} else {
			c.Message = table + " not found (use --table)"
		}
		checks = append(checks, c)
	}
	return finish(checks), nil
}

func finish(checks []Check) Result {
	ok := true
	for _, c := range checks {
		if !c.OK && !c.Optional {
			ok = false
			break
		}
	}
	return Result{OK: ok, Checks: checks}
}

func settingsDirCheck(dir string) Check {
	c := Check{Name: "directory:settings"}
	info, err := os.Stat(dir)
	switch {
	case err != nil:
		c.Message = err.Error()
	case !info.IsDir():
		c.Message = dir + " is not a directory"
	case !runstore.Exists(filepath.Join(dir, settings.SelectionFolder)):
		c.Message = "missing " + settings.SelectionFolder + " in " + dir
	default:
		c.OK = true
		c.Message = dir
	}
	return c
}

func sessionLockCheck(scratchDir string) Check {
	info := runstore.InspectSessionLock(scratchDir)
	c := Check{Name: "lock:session"}
	switch {
	case !info.Held:
		c.OK = true
		c.Message = "free (" + info.Path + ")"
	case info.Stale:
		c.OK = true
		c.Message = fmt.Sprintf("stale lock of exited pid %d at %s is removed by the next export", info.PID, info.Path)
	case info.PID > 0:
		c.Message = fmt.Sprintf("held by pid %d run %s at %s", info.PID, info.RunID, info.Path)
	default:
		c.Message = "held at " + info.Path + " by an unknown owner; remove it if no batch is running"
	}
	return c
}

func dependencyMessage(ok bool, path, name string) string {
	if ok {
		return name + " found at " + path
	}
	return name + " not found on PATH"
}

func ensureWritableDir(path string) (bool, string) {
	if strings.TrimSpace(path) == "" {
		return false, "empty path"
	}
	if err := runstore.Mkdir(path); err != nil {
		return false, err.Error()
	}
	f, err := os.CreateTemp(path, "cad-batch-export-check-*.tmp")
	if err != nil {
		return false, err.Error()
	}
	_ = f.Close()
	_ = os.Remove(f.Name())
	return true, "writable"
}
