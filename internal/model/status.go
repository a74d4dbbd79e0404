package model

import "fmt"

type JobStatus string

const (
	JobSucceeded JobStatus = "success"
	JobSkipped   JobStatus = "skipped"
	JobFailed    JobStatus = "failed"
)

// JobResult is the outcome of one runner invocation. It only lives for the run.
type JobResult struct {
	Row        int       `json:"row"`
	Project    string    `json:"project"`
	Status     JobStatus `json:"status"`
	Reason     string    `json:"reason,omitempty"`
	ExportPath string    `json:"export_path,omitempty"`
}

func Succeeded(job JobDescriptor, exportPath string) JobResult {
	return JobResult{Row: job.Row, Project: job.ProjectRef().String(), Status: JobSucceeded, ExportPath: exportPath}
}

func Skipped(job JobDescriptor, reason string) JobResult {
	return JobResult{Row: job.Row, Project: job.ProjectRef().String(), Status: JobSkipped, Reason: reason}
}

func Failed(job JobDescriptor, reason string) JobResult {
	return JobResult{Row: job.Row, Project: job.ProjectRef().String(), Status: JobFailed, Reason: reason}
}

type RunPhase string

const (
	PhaseIdle      RunPhase = "idle"
	PhaseCapturing RunPhase = "capturing"
	PhaseRunning   RunPhase = "running"
	PhaseRestoring RunPhase = "restoring"
	PhaseReverting RunPhase = "reverting"
	PhaseDone      RunPhase = "done"
	PhaseAborted   RunPhase = "aborted"
)

var allowedPhaseTransitions = map[RunPhase]map[RunPhase]bool{
	PhaseIdle: {
		PhaseCapturing: true,
	},
	PhaseCapturing: {
		PhaseRunning: true,
		PhaseAborted: true,
	},
	PhaseRunning: {
		PhaseRestoring: true,
	},
	PhaseRestoring: {
		PhaseReverting: true,
	},
	PhaseReverting: {
		PhaseDone: true,
	},
	PhaseDone:    {},
	PhaseAborted: {},
}

func IsKnownPhase(phase RunPhase) bool {
	_, ok := allowedPhaseTransitions[phase]
	return ok
}

func CanTransitionPhase(from, to RunPhase) bool {
	next, ok := allowedPhaseTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

func TransitionPhase(phase *RunPhase, to RunPhase) error {
	from := *phase
	if !CanTransitionPhase(from, to) {
		return fmt.Errorf("invalid run phase transition: %q -> %q", from, to)
	}
	*phase = to
	return nil
}
