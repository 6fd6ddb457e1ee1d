// Package forms runs the sign-in and sign-up form submissions against the
// auth client and tracks what the page should show afterwards.
package forms

type SubmitState int

const (
	Idle SubmitState = iota
	Submitting
	Failed
)

func (s SubmitState) String() string {
	switch s {
	case Submitting:
		return "submitting"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Submission is the visible state of one form after a submit attempt.
type Submission struct {
	State       SubmitState
	Notice      string
	FieldErrors map[string]string
}

func (s *Submission) begin() {
	s.State = Submitting
	s.Notice = ""
	s.FieldErrors = nil
}

func (s *Submission) fail(notice string) {
	s.State = Failed
	s.Notice = notice
}

func (s *Submission) invalid(errs map[string]string) {
	s.State = Failed
	s.FieldErrors = errs
}

func (s *Submission) finish() {
	s.State = Idle
}

func (s *Submission) Submitting() bool {
	return s.State == Submitting
}
