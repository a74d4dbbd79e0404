package batch

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cad-batch-export/internal/engine/enginetest"
	"cad-batch-export/internal/envsnap"
	"cad-batch-export/internal/model"
	"cad-batch-export/internal/runstore"
)

var (
	homeRef  = model.ProjectRef{Host: "srv", Project: "Home"}
	towerRef = model.ProjectRef{Host: "srv", Project: "Tower"}
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(title, message string) {
	m.Called(title, message)
}

type recordingProgress struct {
	total    int
	steps    int
	finished bool
}

func (p *recordingProgress) Start(total int, _ string) { p.total = total }
func (p *recordingProgress) Step(n int)                { p.steps += n }
func (p *recordingProgress) Finish()                   { p.finished = true }

type fixture struct {
	std   string
	user  string
	tower string
	home  string
	eng   *enginetest.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		std:   filepath.Join(root, "std"),
		user:  filepath.Join(root, "usr"),
		tower: filepath.Join(root, "projects", "tower"),
		home:  filepath.Join(root, "projects", "home"),
	}
	for _, dir := range []string{f.std, f.user, f.tower, f.home} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}
	f.eng = enginetest.New(homeRef, f.user, f.std)
	f.eng.Loaded = []model.FileState{{Number: 5, State: model.LoadStateActiveForeground}}
	f.eng.ProjectPaths[homeRef] = f.home
	f.eng.ProjectPaths[towerRef] = f.tower
	return f
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func table(header string, rows ...string) string {
	return header + "\n" + strings.Join(rows, "\n") + "\n"
}

var errNotExist = os.ErrNotExist

func acquireForTest(f *fixture) (func() error, error) {
	lock, err := runstore.AcquireSessionLock(envsnap.ScratchDir(f.user), "other-run")
	if err != nil {
		return nil, err
	}
	return lock.Release, nil
}
