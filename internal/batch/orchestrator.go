// Package batch runs a job table against one engine session: it captures the session,
// runs every job, then puts the session and any patched config files back.
package batch

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"cad-batch-export/internal/cfgpatch"
	"cad-batch-export/internal/engine"
	"cad-batch-export/internal/envsnap"
	"cad-batch-export/internal/jobtable"
	"cad-batch-export/internal/model"
	"cad-batch-export/internal/notice"
	"cad-batch-export/internal/runstore"
	"cad-batch-export/internal/settings"
	"cad-batch-export/internal/variant"
)

var ErrTableNotFound = errors.New("job table not found")

type Options struct {
	Variant variant.Variant
	// TablePath defaults to the variant table below the engine standard root.
	TablePath string
	// SettingsDir holds the settings sub-folders and the run log. Defaults to the
	// table's directory.
	SettingsDir string
	CloseEngine bool
}

type Result struct {
	RunID        string            `json:"run_id"`
	Variant      string            `json:"variant"`
	TablePath    string            `json:"table_path"`
	LogPath      string            `json:"log_path"`
	Rows         int               `json:"rows"`
	Unresolved   int               `json:"unresolved"`
	Succeeded    int               `json:"succeeded"`
	Skipped      int               `json:"skipped"`
	Failed       int               `json:"failed"`
	Jobs         []model.JobResult `json:"jobs"`
	Phase        model.RunPhase    `json:"phase"`
	RestoreError string            `json:"restore_error,omitempty"`
	RevertError  string            `json:"revert_error,omitempty"`
}

// Orchestrator owns one batch. Notifier, Progress and Logger are optional.
type Orchestrator struct {
	Engine   engine.Engine
	Notifier notice.Notifier
	Progress Progress
	Logger   *slog.Logger
}

func (o *Orchestrator) notify(title, message string) {
	if o.Notifier != nil {
		o.Notifier.Notify(title, message)
	}
}

func (o *Orchestrator) Run(opts Options) (Result, error) {
	if opts.Variant == nil {
		return Result{}, errors.New("export variant is required")
	}
	eng := o.Engine
	v := opts.Variant
	res := Result{
		RunID:   uuid.NewString(),
		Variant: v.Name(),
		Phase:   model.PhaseIdle,
	}
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("run_id", res.RunID, "variant", v.Name())
	progress := o.Progress
	if progress == nil {
		progress = noProgress{}
	}

	roots, err := eng.Roots()
	if err != nil {
		return res, fmt.Errorf("read engine roots: %w", err)
	}
	tablePath := strings.TrimSpace(opts.TablePath)
	if tablePath == "" {
		tablePath = v.DefaultTable(roots.Std)
	}
	res.TablePath = tablePath
	if !runstore.Exists(tablePath) {
		o.notify("Job table", fmt.Sprintf("File %s does not exist", tablePath))
		return res, fmt.Errorf("%w: %s", ErrTableNotFound, tablePath)
	}
	settingsDir := strings.TrimSpace(opts.SettingsDir)
	if settingsDir == "" {
		settingsDir = filepath.Dir(tablePath)
	}

	lock, err := runstore.AcquireSessionLock(envsnap.ScratchDir(roots.User), res.RunID)
	if err != nil {
		return res, err
	}
	defer func() {
		_ = lock.Release()
	}()

	rows, err := jobtable.Read(tablePath)
	if err != nil {
		return res, err
	}
	res.Rows = len(rows)

	runLog, err := OpenRunLog(filepath.Join(settingsDir, v.LogName()))
	if err != nil {
		return res, err
	}
	defer func() {
		_ = runLog.Close()
	}()
	res.LogPath = runLog.Path()

	layerPath := envsnap.LayerSnapshotPath(roots.User)
	resolver := settings.Resolver{BaseDir: settingsDir, LayerSnapshotPath: layerPath}
	jobs := make([]model.JobDescriptor, 0, len(rows))
	for _, row := range rows {
		job, err := v.Resolve(row, resolver)
		if err != nil {
			res.Unresolved++
			logger.Warn("row not resolved", "row", row.Line, "error", err)
			if werr := runLog.Warn(rowWarning(err)); werr != nil {
				logger.Warn("run log write failed", "error", werr)
			}
			continue
		}
		jobs = append(jobs, job)
	}

	if err := model.TransitionPhase(&res.Phase, model.PhaseCapturing); err != nil {
		return res, err
	}
	snap, err := envsnap.Capture(eng, layerPath)
	if err != nil {
		o.notify("Layer state", "Not possible to save the current layer state")
		logger.Error("capture session failed", "error", err)
		_ = model.TransitionPhase(&res.Phase, model.PhaseAborted)
		return res, err
	}

	patcher := cfgpatch.NewPatcher()
	defer func() {
		_ = patcher.ReleaseAll()
	}()

	if err := model.TransitionPhase(&res.Phase, model.PhaseRunning); err != nil {
		return res, err
	}
	logger.Info("batch started", "table", tablePath, "jobs", len(jobs), "unresolved", res.Unresolved)
	runner := &Runner{
		Engine:   eng,
		Variant:  v,
		Patcher:  patcher,
		Notifier: o.Notifier,
		Log:      runLog,
		Logger:   logger,
		Roots:    roots,
	}
	progress.Start(len(jobs), strings.ToUpper(v.Name())+" export")
	progress.Step(1)
	for _, job := range jobs {
		jr := runner.Run(job)
		res.Jobs = append(res.Jobs, jr)
		switch jr.Status {
		case model.JobSucceeded:
			res.Succeeded++
		case model.JobSkipped:
			res.Skipped++
		case model.JobFailed:
			res.Failed++
		}
		progress.Step(1)
	}

	if err := model.TransitionPhase(&res.Phase, model.PhaseRestoring); err != nil {
		return res, err
	}
	if err := envsnap.Restore(eng, snap); err != nil {
		switch {
		case errors.Is(err, envsnap.ErrProjectReopen):
			o.notify("Project", fmt.Sprintf("Not possible to reopen the project %s", snap.Project))
		case errors.Is(err, envsnap.ErrLayerRestore):
			o.notify("Layer state", "Not possible to load the current layer state")
		default:
			o.notify("Session", "Not possible to restore the session: "+err.Error())
		}
		logger.Error("restore session failed", "error", err)
		res.RestoreError = err.Error()
	}

	if err := model.TransitionPhase(&res.Phase, model.PhaseReverting); err != nil {
		return res, err
	}
	if err := patcher.ReleaseAll(); err != nil {
		o.notify("Config file", "Not possible to revert config file: "+err.Error())
		logger.Error("revert config files failed", "error", err)
		res.RevertError = err.Error()
	}

	if err := model.TransitionPhase(&res.Phase, model.PhaseDone); err != nil {
		return res, err
	}
	progress.Finish()
	logger.Info("batch finished",
		"succeeded", res.Succeeded,
		"skipped", res.Skipped,
		"failed", res.Failed,
	)

	if opts.CloseEngine {
		if err := eng.Shutdown(); err != nil {
			logger.Warn("engine shutdown failed", "error", err)
		}
	}
	return res, nil
}
