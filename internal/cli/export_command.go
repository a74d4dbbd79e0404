package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"cad-batch-export/internal/batch"
	"cad-batch-export/internal/config"
	"cad-batch-export/internal/engine"
	"cad-batch-export/internal/notice"
	"cad-batch-export/internal/variant"
)

func runExport(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	variantName := fs.String("variant", "", "export variant: "+strings.Join(variant.Names(), "|"))
	table := fs.String("table", "", "job table path (default: <std>/<IFC|DWG>Export/<IFC|DWG>Export.csv)")
	settingsDir := fs.String("settings-dir", cfg.SettingsDir, "directory holding dfSettings, layerSettings, ... (default: table directory)")
	bridge := fs.String("bridge", cfg.Bridge, "engine bridge executable")
	noticeMode := fs.String("notice", cfg.NoticeMode, "notice mode: auto|modal|console")
	closeAfter := fs.Bool("close-after", false, "close the engine session after the batch")
	progress := fs.Bool("progress", false, "show a progress bar on stderr")
	jsonOut := fs.Bool("json", false, "print JSON output")

	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(*variantName) == "" {
		fs.Usage()
		return errors.New("--variant is required")
	}
	v, err := variant.Lookup(*variantName)
	if err != nil {
		return err
	}

	logger := config.InitLogger(cfg, os.Stderr)
	if err := engine.CheckBridge(strings.TrimSpace(*bridge)); err != nil {
		return err
	}

	orch := &batch.Orchestrator{
		Engine:   engine.NewBridge(*bridge),
		Notifier: notice.New(*noticeMode, os.Stderr),
		Logger:   logger,
	}
	if *progress {
		orch.Progress = batch.NewBar(os.Stderr)
	}

	res, err := orch.Run(batch.Options{
		Variant:     v,
		TablePath:   strings.TrimSpace(*table),
		SettingsDir: strings.TrimSpace(*settingsDir),
		CloseEngine: *closeAfter,
	})
	if err != nil {
		return err
	}

	if *jsonOut {
		return printJSON(res)
	}
	fmt.Printf("run_id: %s\n", res.RunID)
	fmt.Printf("variant: %s\n", res.Variant)
	fmt.Printf("table: %s\n", res.TablePath)
	fmt.Printf("log: %s\n", res.LogPath)
	fmt.Printf("rows: %d\n", res.Rows)
	fmt.Printf("unresolved: %d\n", res.Unresolved)
	fmt.Printf("succeeded: %d\n", res.Succeeded)
	fmt.Printf("skipped: %d\n", res.Skipped)
	fmt.Printf("failed: %d\n", res.Failed)
	for _, job := range res.Jobs {
		if job.Reason != "" {
			fmt.Printf("  row %d %s: %s (%s)\n", job.Row, job.Project, job.Status, job.Reason)
		}
	}
	if res.RestoreError != "" {
		fmt.Printf("restore_error: %s\n", res.RestoreError)
	}
	if res.RevertError != "" {
		fmt.Printf("revert_error: %s\n", res.RevertError)
	}
	return nil
}
