package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fakeBridgeScript = `#!/usr/bin/env bash
set -euo pipefail
arg() {
  local name="$1"; shift
  while [ $# -gt 0 ]; do
    if [ "$1" = "--$name" ]; then echo "$2"; return; fi
    shift
  done
}
cmd="$1"; shift
echo "$cmd $*" >> "$BRIDGE_STATE/calls.log"
case "$cmd" in
  roots) printf '{"user":"%s","std":"%s","project":"%s"}\n' "$BRIDGE_USER" "$BRIDGE_STD" "$BRIDGE_PROJECT" ;;
  current-project) echo '{"host":"srv","project":"Home"}' ;;
  file-states) echo '{"files":[{"number":5,"state":3}]}' ;;
  open-project) echo '{"status":"Project opened"}' ;;
  project-path) printf '{"path":"%s"}\n' "$BRIDGE_PROJECT" ;;
  current-user) echo '{"user":"usr01"}' ;;
  save-layer) echo layer > "$(arg path "$@")" ;;
  load-layer) test -f "$(arg path "$@")" ;;
  unload-all|load-file|redraw|shutdown) ;;
  export-ifc) echo ifc > "$(arg dest "$@")" ;;
  *) echo "unexpected command $cmd" >&2; exit 1 ;;
esac
`

func TestHarnessRunExportsAndRestoresSession(t *testing.T) {
	tmp := t.TempDir()
	fakeBin := filepath.Join(tmp, "bin")
	state := filepath.Join(tmp, "state")
	usr := filepath.Join(tmp, "usr")
	std := filepath.Join(tmp, "std")
	project := filepath.Join(tmp, "projects", "tower")
	for _, dir := range []string{fakeBin, state, usr, project} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(fakeBin, "cad-bridge"), []byte(fakeBridgeScript), 0o755); err != nil {
		t.Fatal(err)
	}

	settingsDir := filepath.Join(std, "IFCExport")
	if err := os.MkdirAll(filepath.Join(settingsDir, "dfSettings"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(settingsDir, "dfSettings", "tower.txt"), []byte("Teilbild=\"GF\" Nr=\"0012\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	table := "dfSelection;layerSetting;hostName;projectName;destinationFolder;ifc_Version;ifcSetting;ifcFilename\n" +
		"tower.txt;;srv;Tower;$prj$/ifc;;;tower.ifc\n"
	if err := os.WriteFile(filepath.Join(settingsDir, "IFCExport.csv"), []byte(table), 0o644); err != nil {
		t.Fatal(err)
	}

	chdirForTest(t, tmp)
	t.Setenv("PATH", fakeBin+":"+os.Getenv("PATH"))
	t.Setenv("BRIDGE_STATE", state)
	t.Setenv("BRIDGE_USER", usr)
	t.Setenv("BRIDGE_STD", std)
	t.Setenv("BRIDGE_PROJECT", project)
	t.Setenv("CADBATCH_NOTICE_MODE", "console")
	t.Setenv("CADBATCH_LOG_LEVEL", "error")

	if err := Run([]string{"run", "--variant", "ifc", "--close-after"}); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	exported := filepath.Join(project, "ifc", "tower.ifc")
	if _, err := os.Stat(exported); err != nil {
		t.Fatalf("expected export at %s: %v", exported, err)
	}
	logData, err := os.ReadFile(filepath.Join(settingsDir, "IFCExport.log"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(logData), "export_file:    "+exported+"\n") {
		t.Fatalf("unexpected run log:\n%s", logData)
	}
	if _, err := os.Stat(filepath.Join(usr, "tmp", ".batch.lock")); !os.IsNotExist(err) {
		t.Fatalf("session lock not released: %v", err)
	}

	callsData, err := os.ReadFile(filepath.Join(state, "calls.log"))
	if err != nil {
		t.Fatal(err)
	}
	calls := strings.Split(strings.TrimSpace(string(callsData)), "\n")
	want := []string{
		"export-ifc --files 12 --version Ifc_4 --dest " + exported + " --favorite ",
		"open-project --host srv --project Home",
		"unload-all ",
		"load-file --number 5 --state 3",
		"load-layer --path " + filepath.Join(usr, "tmp", "CurrentLayerState.lfa"),
		"shutdown ",
	}
	if len(calls) < len(want) {
		t.Fatalf("too few bridge calls: %v", calls)
	}
	tail := calls[len(calls)-len(want):]
	for i := range want {
		if strings.TrimRight(tail[i], " ") != strings.TrimRight(want[i], " ") {
			t.Fatalf("bridge call %d = %q, want %q\nall calls: %v", i, tail[i], want[i], calls)
		}
	}
}

func TestHarnessRunRequiresVariant(t *testing.T) {
	chdirForTest(t, t.TempDir())
	err := Run([]string{"run"})
	if err == nil || !strings.Contains(err.Error(), "--variant is required") {
		t.Fatalf("expected missing variant error, got %v", err)
	}
}

func TestHarnessDoctorReportsMissingBridge(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("PATH", t.TempDir())
	err := Run([]string{"doctor", "--bridge", "cad-bridge"})
	if err == nil {
		t.Fatalf("expected doctor to fail without a bridge")
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	if err := Run([]string{"bogus"}); err == nil {
		t.Fatalf("expected error for unknown command")
	}
}
