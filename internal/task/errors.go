package task

import "fmt"

// DefinitionError reports an invalid target registration.
type DefinitionError struct {
	Target string
	Reason string
}

func (e *DefinitionError) Error() string {
	return "invalid target " + e.Target + ": " + e.Reason
}

// UnknownTargetError reports a request for a target the engine doesn't know.
type UnknownTargetError struct {
	Target string
}

func (e *UnknownTargetError) Error() string {
	return "unknown target: " + e.Target
}

// PrerequisiteError reports a declared input that could not be examined,
// typically because the file is absent. It is raised before the converter
// runs.
type PrerequisiteError struct {
	Target string
	Input  string
	Err    error
}

func (e *PrerequisiteError) Error() string {
	return fmt.Sprintf("target %s: prerequisite %s: %v", e.Target, e.Input, e.Err)
}

func (e *PrerequisiteError) Unwrap() error {
	return e.Err
}

// RunError reports a failed conversion. The output artifact is left in
// whatever state the converter left it; there is no rollback.
type RunError struct {
	Target string
	Err    error
}

func (e *RunError) Error() string {
	return "target " + e.Target + " failed: " + e.Err.Error()
}

func (e *RunError) Unwrap() error {
	return e.Err
}
