package cohort

import (
	"errors"
	"fmt"
	"time"
)

// Conflict errors: the request is well-formed but inconsistent with current
// state. Controllers map these to 409 and never coerce them into another outcome.
var (
	ErrAlreadyReviewed           = errors.New("submission has already been reviewed")
	ErrAlreadyPending            = errors.New("an answer is already pending review")
	ErrAlreadyApproved           = errors.New("question already has an approved answer")
	ErrMultipleActiveEnrollments = errors.New("learner already has an active enrollment in another cohort")
	ErrHasDependents             = errors.New("existing submissions depend on this record")
)

// Validation errors, rejected before any mutation.
var (
	ErrMissingFeedback = errors.New("feedback is required when grading")
	ErrInvalidGrade    = errors.New("grade must be GOLD, SILVER, COPPER or NEEDS_RESUBMISSION")
	ErrInvalidStatus   = errors.New("invalid membership status")
)

// Gating errors returned on submission attempts.
var (
	ErrQuestionLocked          = errors.New("question is locked")
	ErrMiniQuestionsIncomplete = errors.New("all released mini questions must be answered first")
	ErrNotReleased             = errors.New("not released")
	ErrNoResubmissionRequest   = errors.New("no resubmission has been requested")
)

// DeadlineConflictError reports a mini-question scheduled after its
// question's deadline. The whole write carrying it is rejected.
type DeadlineConflictError struct {
	ReleaseDate time.Time
	Deadline    time.Time
}

func (e *DeadlineConflictError) Error() string {
	return fmt.Sprintf("mini question release date %s is after the question deadline %s",
		e.ReleaseDate.Format(time.RFC3339), e.Deadline.Format(time.RFC3339))
}
