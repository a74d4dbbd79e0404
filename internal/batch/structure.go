package batch

import (
	"path/filepath"

	"cad-batch-export/internal/engine"
	"cad-batch-export/internal/runstore"
)

const structureSettingsName = "Structure_settings.xml"

const structureSettingsStub = "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n" +
	"<NemetschekBIMStructureSettings Activated=\"1\">\n" +
	"<Files>\n" +
	"    <File ID=\"0001\" State=\"3\" Activated=\"1\" />\n" +
	"</Files>\n" +
	"</NemetschekBIMStructureSettings>"

// StructureSettingsPath is where the engine expects per-user structure settings of a
// project.
func StructureSettingsPath(projectPath, user string) string {
	return filepath.Join(projectPath, "BIM", user, "settings", structureSettingsName)
}

// EnsureStructureSettings writes the structure settings stub for a project the first
// time it is touched. An existing file is never overwritten.
func EnsureStructureSettings(eng engine.Engine, host, project string) (bool, error) {
	projectPath, err := eng.ProjectPath(host, project)
	if err != nil {
		return false, err
	}
	user, err := eng.CurrentUser()
	if err != nil {
		return false, err
	}
	return runstore.WriteIfAbsent(StructureSettingsPath(projectPath, user), []byte(structureSettingsStub))
}
