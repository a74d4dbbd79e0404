package batch

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"cad-batch-export/internal/cfgpatch"
	"cad-batch-export/internal/engine"
	"cad-batch-export/internal/model"
	"cad-batch-export/internal/notice"
	"cad-batch-export/internal/runstore"
	"cad-batch-export/internal/variant"
)

// Output folder placeholders.
const (
	PlaceholderUser    = "$usr$"
	PlaceholderStd     = "$std$"
	PlaceholderProject = "$prj$"
)

// Skip and failure reason codes.
const (
	ReasonProjectMissing    = "project_missing"
	ReasonProjectUnopenable = "project_unopenable"
	ReasonLayerFavorite     = "layer_favorite_failed"
	ReasonConfigPatch       = "config_patch_failed"
	ReasonEngine            = "engine_error"
	ReasonOutputDir         = "output_dir_failed"
	ReasonMissingOutputFile = "missing_output_file"
	ReasonExport            = "export_failed"
)

// Runner executes one resolved job against the engine session.
type Runner struct {
	Engine   engine.Engine
	Variant  variant.Variant
	Patcher  *cfgpatch.Patcher
	Notifier notice.Notifier
	Log      *RunLog
	Logger   *slog.Logger
	// Roots are read once before the first job; $prj$ is the project that was
	// active when the batch started.
	Roots engine.Roots
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Runner) notify(title, message string) {
	if r.Notifier != nil {
		r.Notifier.Notify(title, message)
	}
}

func (r *Runner) writeLog(write func(*RunLog) error) {
	if r.Log == nil {
		return
	}
	if err := write(r.Log); err != nil {
		r.logger().Warn("run log write failed", "error", err)
	}
}

// Run never returns an error: every outcome is a job result.
func (r *Runner) Run(job model.JobDescriptor) model.JobResult {
	log := r.logger().With("row", job.Row, "host", job.Host, "project", job.Project)
	eng := r.Engine
	ref := job.ProjectRef()

	if job.ConfigPatchPath != "" && r.Patcher != nil {
		if err := r.Patcher.Acquire(job.FormatFavoritePath, job.ConfigPatchPath); err != nil {
			log.Error("config patch failed", "favorite", job.FormatFavoritePath, "error", err)
			r.writeLog(func(l *RunLog) error { return l.Warn("Config patch failed: " + err.Error()) })
			return model.Failed(job, fmt.Sprintf("%s: %v", ReasonConfigPatch, err))
		}
	}

	if created, err := EnsureStructureSettings(eng, job.Host, job.Project); err != nil {
		log.Debug("structure settings not written", "error", err)
	} else if created {
		log.Debug("structure settings created")
	}

	status, err := eng.OpenProject(job.Host, job.Project)
	if err != nil {
		log.Error("open project failed", "error", err)
		return model.Failed(job, fmt.Sprintf("%s: %v", ReasonEngine, err))
	}
	switch status {
	case engine.StatusProjectMissing:
		r.notify("Project", fmt.Sprintf("Project %s doesn't exist", ref))
		log.Warn("project does not exist")
		return model.Skipped(job, ReasonProjectMissing)
	case engine.StatusOpenFailed:
		r.notify("Project", fmt.Sprintf("Not possible to open the project %s", ref))
		log.Warn("project could not be opened")
		return model.Skipped(job, ReasonProjectUnopenable)
	case engine.StatusActiveProject:
	default:
		if err := eng.RedrawAll(); err != nil {
			log.Warn("redraw after project switch failed", "error", err)
		}
	}

	if err := loadFiles(eng, job.FileNumbers); err != nil {
		log.Error("load drawing files failed", "error", err)
		return model.Failed(job, fmt.Sprintf("%s: %v", ReasonEngine, err))
	}

	if err := eng.LoadLayerFavorite(job.LayerFavoritePath); err != nil {
		r.notify("Layer favorite", "Loading for layer favorite not possible: \n\n"+job.LayerFavoritePath)
		log.Warn("layer favorite not loaded", "path", job.LayerFavoritePath, "error", err)
		return model.Skipped(job, ReasonLayerFavorite)
	}
	if err := eng.RedrawAll(); err != nil {
		log.Warn("redraw failed", "error", err)
	}

	if strings.TrimSpace(job.OutputFile) == "" {
		return model.Failed(job, ReasonMissingOutputFile)
	}
	outputDir := ResolveOutputDir(job.OutputPath, r.Roots)
	if err := runstore.Mkdir(outputDir); err != nil {
		log.Error("create output folder failed", "dir", outputDir, "error", err)
		return model.Failed(job, fmt.Sprintf("%s: %v", ReasonOutputDir, err))
	}
	exportPath := filepath.Join(outputDir, job.OutputFile)
	if err := runstore.RemoveIfExists(exportPath); err != nil {
		log.Warn("previous export not removed", "path", exportPath, "error", err)
	}

	r.writeLog(func(l *RunLog) error { return l.Block(r.blockLines(job, exportPath)) })

	if err := r.Variant.Export(eng, job, exportPath); err != nil {
		log.Error("export failed", "path", exportPath, "error", err)
		r.writeLog(func(l *RunLog) error { return l.Line("Export failed: " + err.Error()) })
		return model.Failed(job, fmt.Sprintf("%s: %v", ReasonExport, err))
	}
	log.Info("exported", "path", exportPath)
	return model.Succeeded(job, exportPath)
}

func (r *Runner) blockLines(job model.JobDescriptor, exportPath string) []string {
	lines := []string{
		"Export files:   " + model.FormatFileNumbers(job.FileNumbers),
		"Layer favorite: " + job.LayerFavoritePath,
	}
	lines = append(lines, r.Variant.LogLines(job)...)
	return append(lines, "export_file:    "+exportPath)
}

// loadFiles replaces the loaded set: the first number goes to the foreground, the
// rest stay editable in the background.
func loadFiles(eng engine.Engine, numbers []int) error {
	if len(numbers) == 0 {
		return errors.New("no drawing files selected")
	}
	if err := eng.UnloadAll(); err != nil {
		return err
	}
	for i, n := range numbers {
		state := model.LoadStateActiveBackground
		if i == 0 {
			state = model.LoadStateActiveForeground
		}
		if err := eng.LoadFile(n, state); err != nil {
			return fmt.Errorf("load drawing file %d: %w", n, err)
		}
	}
	return nil
}

// ResolveOutputDir substitutes the engine root placeholders and drops trailing line
// breaks left by spreadsheet exports.
func ResolveOutputDir(template string, roots engine.Roots) string {
	out := strings.NewReplacer(
		PlaceholderUser, roots.User,
		PlaceholderStd, roots.Std,
		PlaceholderProject, roots.Project,
	).Replace(template)
	return strings.TrimRight(out, "\r\n")
}
