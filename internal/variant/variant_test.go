package variant

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cad-batch-export/internal/jobtable"
	"cad-batch-export/internal/settings"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLookup(t *testing.T) {
	v, err := Lookup(" IFC ")
	require.NoError(t, err)
	assert.Equal(t, "ifc", v.Name())

	v, err = Lookup("dwg")
	require.NoError(t, err)
	assert.Equal(t, "DWGExport.log", v.LogName())

	_, err = Lookup("pdf")
	require.Error(t, err)
}

func TestIFCVersionFallsBackToDefault(t *testing.T) {
	assert.Equal(t, "Ifc_2x3", IFCVersion("Ifc_2x3"))
	assert.Equal(t, DefaultIFCVersion, IFCVersion(""))
	assert.Equal(t, DefaultIFCVersion, IFCVersion("ifc_2x3"))
	assert.Equal(t, DefaultIFCVersion, IFCVersion("Ifc_9"))
}

func TestIFCResolve(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, settings.SelectionFolder, "tower.txt"), "Teilbild=\"GF\" Nr=\"0012\"\n")
	r := settings.Resolver{BaseDir: base, LayerSnapshotPath: "/scratch/CurrentLayerState.lfa"}

	job, err := IFC{}.Resolve(jobtable.Row{Line: 2, Fields: map[string]string{
		settings.ColumnSelection: "tower.txt",
		ColumnIFCVersion:         "Ifc_2x3",
		ColumnIFCSetting:         "coordination.ifcfav",
		ColumnIFCFilename:        "tower.ifc",
	}}, r)
	require.NoError(t, err)

	assert.Equal(t, []int{12}, job.FileNumbers)
	assert.Equal(t, "Ifc_2x3", job.FormatVersion)
	assert.Equal(t, filepath.Join(base, settings.IFCFolder, "coordination.ifcfav"), job.FormatFavoritePath)
	assert.Equal(t, "tower.ifc", job.OutputFile)
	assert.Equal(t, "/scratch/CurrentLayerState.lfa", job.LayerFavoritePath)
	assert.Empty(t, job.ConfigPatchPath)
}

func TestDWGResolve(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, settings.SelectionFolder, "plan.xml"),
		`<Root><File ID="0003" State="3" Activated="1"/><Teilbild NodeID="0010"/></Root>`)
	r := settings.Resolver{BaseDir: base}

	job, err := DWG{}.Resolve(jobtable.Row{Line: 3, Fields: map[string]string{
		settings.ColumnSelection: "plan.xml",
		ColumnDWGVersion:         "2018",
		ColumnDWGSetting:         "export.nth",
		ColumnCfgSetting:         "layers.cfg",
		ColumnDWGFilename:        "plan.dwg",
	}}, r)
	require.NoError(t, err)

	assert.Equal(t, []int{10, 3}, job.FileNumbers)
	assert.Equal(t, "2018", job.FormatVersion)
	assert.Equal(t, filepath.Join(base, settings.DWGFolder, "export.nth"), job.FormatFavoritePath)
	assert.Equal(t, filepath.Join(base, settings.ConfigFolder, "layers.cfg"), job.ConfigPatchPath)
	assert.Equal(t, "plan.dwg", job.OutputFile)
}

func TestDWGResolveRejectsNonIntegerVersion(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, settings.SelectionFolder, "plan.xml"), `<Root><Teilbild NodeID="1"/></Root>`)

	_, err := DWG{}.Resolve(jobtable.Row{Line: 7, Fields: map[string]string{
		settings.ColumnSelection: "plan.xml",
		ColumnDWGVersion:         "R2018",
	}}, settings.Resolver{BaseDir: base})
	require.Error(t, err)

	var rowErr *settings.RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 7, rowErr.Line)
	assert.False(t, rowErr.MissingFile())
}

func TestDefaultTables(t *testing.T) {
	assert.Equal(t, filepath.Join("/std", "IFCExport", "IFCExport.csv"), IFC{}.DefaultTable("/std"))
	assert.Equal(t, filepath.Join("/std", "DWGExport", "DWGExport.csv"), DWG{}.DefaultTable("/std"))
}
