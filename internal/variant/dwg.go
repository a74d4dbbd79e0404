package variant

import (
	"fmt"
	"strconv"

	"cad-batch-export/internal/engine"
	"cad-batch-export/internal/jobtable"
	"cad-batch-export/internal/model"
	"cad-batch-export/internal/selection"
	"cad-batch-export/internal/settings"
)

const (
	ColumnDWGVersion  = "version"
	ColumnDWGSetting  = "dwgSetting"
	ColumnCfgSetting  = "cfgSetting"
	ColumnDWGFilename = "filename"
)

type DWG struct{}

func (DWG) Name() string    { return "dwg" }
func (DWG) LogName() string { return "DWGExport.log" }

func (DWG) DefaultTable(stdRoot string) string {
	return defaultTable(stdRoot, "DWGExport")
}

func (DWG) Resolve(row jobtable.Row, r settings.Resolver) (model.JobDescriptor, error) {
	job, err := r.Common(row, selection.ReadXMLFile)
	if err != nil {
		return model.JobDescriptor{}, err
	}
	raw := row.Get(ColumnDWGVersion)
	if _, err := strconv.Atoi(raw); err != nil {
		return model.JobDescriptor{}, settings.Invalid(row, fmt.Errorf("invalid %s %q", ColumnDWGVersion, raw))
	}
	job.FormatVersion = raw
	job.FormatFavoritePath = r.Favorite(row.Get(ColumnDWGSetting), settings.DWGFolder, "")
	job.ConfigPatchPath = r.Favorite(row.Get(ColumnCfgSetting), settings.ConfigFolder, "")
	job.OutputFile = row.Get(ColumnDWGFilename)
	return job, nil
}

func (DWG) LogLines(job model.JobDescriptor) []string {
	return []string{
		"DWG favorite:   " + job.FormatFavoritePath,
		"Config file:    " + job.ConfigPatchPath,
	}
}

func (DWG) Export(eng engine.Engine, job model.JobDescriptor, destPath string) error {
	version, err := strconv.Atoi(job.FormatVersion)
	if err != nil {
		return fmt.Errorf("invalid dwg version %q: %w", job.FormatVersion, err)
	}
	return eng.ExportDWG(job.FileNumbers, version, destPath, job.FormatFavoritePath)
}
