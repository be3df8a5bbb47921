// Package types defines the data contracts exchanged between pipeline phases.
package types

import "strings"

// Dependency is a single project dependency extracted by the analysis phase.
type Dependency struct {
	Name              string `json:"name"`
	VersionConstraint string `json:"version_constraint"`
	Purpose           string `json:"purpose"`
}

// EnvVariable describes an environment variable the project requires.
type EnvVariable struct {
	Name         string `json:"name"`
	Required     bool   `json:"required"`
	Description  string `json:"description"`
	ExampleValue string `json:"example_value"`
}

// SetupStep is one ordered step of the project's setup procedure.
type SetupStep struct {
	Order            int    `json:"order"`
	Command          string `json:"command"`
	Description      string `json:"description"`
	ExpectedOutput   string `json:"expected_output,omitempty"`
	WorkingDirectory string `json:"working_directory,omitempty"`
}

// AnalysisReport is the structured output of the analysis phase.
// It is produced exactly once per run and is immutable afterward; every
// subsequent update phase consumes it.
type AnalysisReport struct {
	ProjectName        string        `json:"project_name"`
	Language           string        `json:"language"`
	Framework          string        `json:"framework"`
	Description        string        `json:"description"`
	SystemRequirements []string      `json:"system_requirements"`
	Dependencies       []Dependency  `json:"dependencies"`
	EnvVariables       []EnvVariable `json:"env_variables"`
	SetupSteps         []SetupStep   `json:"setup_steps"`
	BuildCommands      []string      `json:"build_commands"`
	RunCommands        []string      `json:"run_commands"`
	TestCommands       []string      `json:"test_commands"`
	DockerAvailable    bool          `json:"docker_available"`
	AdditionalNotes    []string      `json:"additional_notes"`
}

// StepStatus is the outcome of a single verification step.
type StepStatus string

const (
	StepPass    StepStatus = "pass"
	StepFail    StepStatus = "fail"
	StepUnclear StepStatus = "unclear"
	StepSkipped StepStatus = "skipped"
)

// VerificationStep records the outcome of executing one documented command.
type VerificationStep struct {
	StepNumber     int        `json:"step_number"`
	Command        string     `json:"command"`
	Status         StepStatus `json:"status"`
	ActualOutput   string     `json:"actual_output"`
	ExpectedOutput string     `json:"expected_output,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
}

// VerificationResult is the structured output of one verify phase.
type VerificationResult struct {
	OverallStatus       string             `json:"overall_status"` // "pass" or "fail"
	Steps               []VerificationStep `json:"steps"`
	EnvironmentInfo     string             `json:"environment_info"`
	Suggestions         []string           `json:"suggestions"`
	ConsecutiveFailures int                `json:"consecutive_failures"`
}

// Passed reports whether the result carries an explicit pass verdict. Case
// is ignored so a capitalized status is not misread as a failure.
func (v *VerificationResult) Passed() bool {
	return strings.EqualFold(v.OverallStatus, "pass")
}

// DocChange describes one documentation file touched by the update phase.
type DocChange struct {
	FilePath   string `json:"file_path"`
	ChangeType string `json:"change_type"` // created, modified, deleted
	Summary    string `json:"summary"`
}

// FinalStatus is the terminal status of a pipeline run.
type FinalStatus string

const (
	// StatusVerified means a verify phase passed before the budget ran out.
	StatusVerified FinalStatus = "verified"
	// StatusBestEffort means the iteration budget was exhausted without a
	// passing verification; changes are still committed.
	StatusBestEffort FinalStatus = "best_effort"
	// StatusFailed means the run did not produce usable output.
	StatusFailed FinalStatus = "failed"
)

// PipelineResult is the terminal record of a pipeline run.
type PipelineResult struct {
	Analysis       string
	Update         string
	Verification   string
	Changes        []DocChange
	Diff           string
	Branch         string
	IterationsUsed int
	FinalStatus    FinalStatus
}
