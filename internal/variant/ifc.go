package variant

import (
	"cad-batch-export/internal/engine"
	"cad-batch-export/internal/jobtable"
	"cad-batch-export/internal/model"
	"cad-batch-export/internal/selection"
	"cad-batch-export/internal/settings"
)

const (
	ColumnIFCVersion  = "ifc_Version"
	ColumnIFCSetting  = "ifcSetting"
	ColumnIFCFilename = "ifcFilename"

	DefaultIFCVersion = "Ifc_4"
)

var ifcVersions = map[string]bool{
	"Ifc_2x3":     true,
	"Ifc_4":       true,
	"Ifc_4x3":     true,
	"Ifc_XML_2x3": true,
	"Ifc_XML_4":   true,
}

// IFCVersion returns the schema token for raw, falling back to Ifc_4.
func IFCVersion(raw string) string {
	if ifcVersions[raw] {
		return raw
	}
	return DefaultIFCVersion
}

type IFC struct{}

func (IFC) Name() string    { return "ifc" }
func (IFC) LogName() string { return "IFCExport.log" }

func (IFC) DefaultTable(stdRoot string) string {
	return defaultTable(stdRoot, "IFCExport")
}

func (IFC) Resolve(row jobtable.Row, r settings.Resolver) (model.JobDescriptor, error) {
	job, err := r.Common(row, selection.ReadMarkerFile)
	if err != nil {
		return model.JobDescriptor{}, err
	}
	job.FormatVersion = IFCVersion(row.Get(ColumnIFCVersion))
	job.FormatFavoritePath = r.Favorite(row.Get(ColumnIFCSetting), settings.IFCFolder, "")
	job.OutputFile = row.Get(ColumnIFCFilename)
	return job, nil
}

func (IFC) LogLines(job model.JobDescriptor) []string {
	return []string{"IFC favorite:   " + job.FormatFavoritePath}
}

func (IFC) Export(eng engine.Engine, job model.JobDescriptor, destPath string) error {
	return eng.ExportIFC(job.FileNumbers, job.FormatVersion, destPath, job.FormatFavoritePath)
}
