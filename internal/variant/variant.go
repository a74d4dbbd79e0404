// Package variant holds the export formats a batch can produce. Each variant knows
// its table columns, how it reads file selections and which exporter it calls.
package variant

import (
	"fmt"
	"path/filepath"
	"strings"

	"cad-batch-export/internal/engine"
	"cad-batch-export/internal/jobtable"
	"cad-batch-export/internal/model"
	"cad-batch-export/internal/settings"
)

type Variant interface {
	Name() string
	// LogName is the run log file name inside the settings directory.
	LogName() string
	// DefaultTable is the job table used when none is given.
	DefaultTable(stdRoot string) string
	Resolve(row jobtable.Row, r settings.Resolver) (model.JobDescriptor, error)
	// LogLines are the variant-specific lines of a job's run log block.
	LogLines(job model.JobDescriptor) []string
	Export(eng engine.Engine, job model.JobDescriptor, destPath string) error
}

func Lookup(name string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ifc":
		return IFC{}, nil
	case "dwg":
		return DWG{}, nil
	default:
		return nil, fmt.Errorf("unknown export variant %q (expected ifc or dwg)", strings.TrimSpace(name))
	}
}

func Names() []string {
	return []string{"ifc", "dwg"}
}

func defaultTable(stdRoot, dir string) string {
	return filepath.Join(stdRoot, dir, dir+".csv")
}
