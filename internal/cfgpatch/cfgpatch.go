// Package cfgpatch temporarily injects a value into the marker line of an external
// configuration file and restores the recorded original afterwards.
package cfgpatch

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

const MarkerKey = "AOConfigfile"

var ErrMarkerNotFound = errors.New("config marker line not found")

// MarkerLine is the line written in place of the original marker line.
func MarkerLine(value string) string {
	return `"` + MarkerKey + `="string:"` + value + `"`
}

// Patch rewrites every marker line of path to carry value and returns the first
// original marker line without its terminator.
func Patch(path, value string) (string, error) {
	original := ""
	found := false
	err := rewrite(path, func(line string) string {
		if !found {
			original = line
			found = true
		}
		return MarkerLine(value)
	})
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("patch %s: %w", path, ErrMarkerNotFound)
	}
	return original, nil
}

// Revert rewrites every marker line of path back to original.
func Revert(path, original string) error {
	found := false
	err := rewrite(path, func(string) string {
		found = true
		return original
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("revert %s: %w", path, ErrMarkerNotFound)
	}
	return nil
}

// rewrite reads path whole, replaces the content of marker lines and writes the file
// back in place. Line terminators and all other bytes are kept.
func rewrite(path string, replace func(line string) string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("open config file %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	lines := strings.SplitAfter(string(data), "\n")
	changed := false
	var b strings.Builder
	b.Grow(len(data))
	for _, raw := range lines {
		body, term := splitTerminator(raw)
		if strings.Contains(body, MarkerKey) {
			body = replace(body)
			changed = true
		}
		b.WriteString(body)
		b.WriteString(term)
	}
	if !changed {
		return nil
	}
	if err := os.WriteFile(path, []byte(b.String()), info.Mode().Perm()); err != nil {
		return fmt.Errorf("write config file %s: %w", path, err)
	}
	return nil
}

func splitTerminator(raw string) (string, string) {
	switch {
	case strings.HasSuffix(raw, "\r\n"):
		return raw[:len(raw)-2], "\r\n"
	case strings.HasSuffix(raw, "\n"):
		return raw[:len(raw)-1], "\n"
	default:
		return raw, ""
	}
}

// Record maps a patched file to the original marker line it replaced.
type Record map[string]string

// Patcher holds patches for the duration of a batch. A path is recorded once; later
// patches of the same path keep the first original.
type Patcher struct {
	record Record
}

func NewPatcher() *Patcher {
	return &Patcher{record: Record{}}
}

func (p *Patcher) Acquire(path, value string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("patch config %s: target file is required", value)
	}
	original, err := Patch(path, value)
	if err != nil {
		return err
	}
	if _, ok := p.record[path]; !ok {
		p.record[path] = original
	}
	return nil
}

// Paths lists the currently patched files.
func (p *Patcher) Paths() []string {
	out := make([]string, 0, len(p.record))
	for path := range p.record {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// ReleaseAll reverts every recorded file once. Failed reverts are joined into the
// returned error; the record is cleared either way.
func (p *Patcher) ReleaseAll() error {
	var errs []error
	for path, original := range p.record {
		if err := Revert(path, original); err != nil {
			errs = append(errs, err)
		}
	}
	p.record = Record{}
	return errors.Join(errs...)
}
