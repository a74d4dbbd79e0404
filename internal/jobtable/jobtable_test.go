package jobtable

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeepsTableOrderAndColumns(t *testing.T) {
	input := "\ufeffdfSelection,layerSetting,hostName,projectName,destinationFolder,ifc_Version,ifcSetting,ifcFilename\n" +
		"a.txt,,srv,Tower,$prj$\\ifc,Ifc_2x3,,tower.ifc\n" +
		"\n" +
		"b.txt,walls.lfa,srv,Bridge,$usr$\\out,,,bridge.ifc\n"

	rows, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "a.txt", rows[0].Get("dfSelection"))
	assert.Equal(t, `$prj$\ifc`, rows[0].Get("destinationFolder"))
	assert.Equal(t, "Ifc_2x3", rows[0].Get("ifc_Version"))
	assert.Equal(t, 2, rows[0].Line)

	assert.Equal(t, "Bridge", rows[1].Get("projectName"))
	assert.Equal(t, "walls.lfa", rows[1].Get("layerSetting"))
	assert.Equal(t, 4, rows[1].Line)
}

func TestParseSemicolonTableWithShortRecords(t *testing.T) {
	input := "dfSelection;hostName;projectName;filename\n" +
		"sel.xml;srv;Tower\n"

	rows, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Tower", rows[0].Get("projectName"))
	assert.True(t, rows[0].Has("filename"))
	assert.Equal(t, "", rows[0].Get("filename"))
	assert.False(t, rows[0].Has("cfgSetting"))
}

func TestParseColumnNamesAreCaseSensitive(t *testing.T) {
	rows, err := Parse(strings.NewReader("HostName\nsrv\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0].Get("hostName"))
	assert.Equal(t, "srv", rows[0].Get("HostName"))
}

func TestReadMissingTable(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseEmptyInput(t *testing.T) {
	rows, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}
