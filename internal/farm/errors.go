package farm

import "fmt"

// StepError reports which step of the sequence failed and how far the run got.
// Nothing is rolled back; the progress record holds what was already deployed.
type StepError struct {
	Step      Step
	Completed int
	Total     int
	Err       error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step '%s' failed (steps completed: %d/%d): %v", e.Step, e.Completed, e.Total, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
