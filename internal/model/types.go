package model

import (
	"fmt"
	"strconv"
	"strings"
)

// LoadState classifies a loaded drawing file. Values match the engine codes.
type LoadState int

const (
	LoadStatePassiveBackground LoadState = 1
	LoadStateActiveBackground  LoadState = 2
	LoadStateActiveForeground  LoadState = 3
)

func (s LoadState) Valid() bool {
	return s >= LoadStatePassiveBackground && s <= LoadStateActiveForeground
}

func (s LoadState) String() string {
	switch s {
	case LoadStatePassiveBackground:
		return "passive_background"
	case LoadStateActiveBackground:
		return "active_background"
	case LoadStateActiveForeground:
		return "active_foreground"
	default:
		return fmt.Sprintf("load_state(%d)", int(s))
	}
}

type FileState struct {
	Number int       `json:"number"`
	State  LoadState `json:"state"`
}

type ProjectRef struct {
	Host    string `json:"host"`
	Project string `json:"project"`
}

func (p ProjectRef) String() string {
	return p.Project + "(" + p.Host + ")"
}

// JobDescriptor is one fully resolved row of the job table.
type JobDescriptor struct {
	Row                int    `json:"row"`
	Host               string `json:"host"`
	Project            string `json:"project"`
	FileNumbers        []int  `json:"file_numbers"`
	LayerFavoritePath  string `json:"layer_favorite_path"`
	FormatFavoritePath string `json:"format_favorite_path,omitempty"`
	ConfigPatchPath    string `json:"config_patch_path,omitempty"`
	FormatVersion      string `json:"format_version"`
	OutputPath         string `json:"output_path"`
	OutputFile         string `json:"output_file"`
}

func (j JobDescriptor) ProjectRef() ProjectRef {
	return ProjectRef{Host: j.Host, Project: j.Project}
}

// FormatFileNumbers renders numbers the way the run log has always shown them: [1, 2, 3].
func FormatFileNumbers(numbers []int) string {
	parts := make([]string, 0, len(numbers))
	for _, n := range numbers {
		parts = append(parts, strconv.Itoa(n))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
