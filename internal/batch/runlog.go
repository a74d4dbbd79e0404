package batch

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cad-batch-export/internal/settings"
)

const logRule = "-------------------------------------------------------------"

// RunLog is the plain text log next to the job table. It is truncated when opened
// and only appended to afterwards.
type RunLog struct {
	path   string
	w      io.WriteCloser
	closed bool
}

func OpenRunLog(path string) (*RunLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open run log %s: %w", path, err)
	}
	return &RunLog{path: path, w: f}, nil
}

func (l *RunLog) Path() string {
	return l.path
}

// Warn writes a blank-line delimited warning.
func (l *RunLog) Warn(line string) error {
	return l.write("\n" + line + "\n\n")
}

// Block writes one dashed-rule delimited job block.
func (l *RunLog) Block(lines []string) error {
	var b strings.Builder
	b.WriteString(logRule + "\n")
	for _, line := range lines {
		b.WriteString(line + "\n")
	}
	return l.write(b.String())
}

func (l *RunLog) Line(line string) error {
	return l.write(line + "\n")
}

func (l *RunLog) write(s string) error {
	if l.closed {
		return fmt.Errorf("write run log %s: already closed", l.path)
	}
	if _, err := io.WriteString(l.w, s); err != nil {
		return fmt.Errorf("write run log %s: %w", l.path, err)
	}
	return nil
}

// Close is safe to call more than once; only the first call closes the file.
func (l *RunLog) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	return l.w.Close()
}

// rowWarning renders the run log line for a row that could not be resolved.
func rowWarning(err error) string {
	var rowErr *settings.RowError
	if errors.As(err, &rowErr) {
		if rowErr.MissingFile() && rowErr.Path != "" {
			return "File " + rowErr.Path + " not found !!!"
		}
		return fmt.Sprintf("Row %d: %v", rowErr.Line, rowErr.Err)
	}
	return err.Error()
}
