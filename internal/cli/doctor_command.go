package cli

import (
	"flag"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"cad-batch-export/internal/config"
	"cad-batch-export/internal/preflight"
)

var (
	checkOKStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	checkFailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	checkInfoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func runDoctor(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	bridge := fs.String("bridge", cfg.Bridge, "engine bridge executable")
	settingsDir := fs.String("settings-dir", cfg.SettingsDir, "settings directory to check")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := preflight.Doctor(preflight.Options{
		Bridge:      strings.TrimSpace(*bridge),
		SettingsDir: strings.TrimSpace(*settingsDir),
	})
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(res)
	}
	for _, c := range res.Checks {
		fmt.Printf("%s %s: %s\n", checkMark(c), c.Name, c.Message)
	}
	if !res.OK {
		return fmt.Errorf("doctor found failing checks")
	}
	fmt.Println("doctor: OK")
	return nil
}

func checkMark(c preflight.Check) string {
	switch {
	case c.OK:
		return checkOKStyle.Render("[ok]")
	case c.Optional:
		return checkInfoStyle.Render("[--]")
	default:
		return checkFailStyle.Render("[!!]")
	}
}
