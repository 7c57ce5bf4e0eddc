package cohort

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Answer statuses
const (
	AnswerPending  = "PENDING"
	AnswerApproved = "APPROVED"
	AnswerRejected = "REJECTED"
)

// Medal grades
const (
	GradeGold              = "GOLD"
	GradeSilver            = "SILVER"
	GradeCopper            = "COPPER"
	GradeNeedsResubmission = "NEEDS_RESUBMISSION"
)

// Answer is one learner's submission to one question within one cohort
type Answer struct {
	gorm.Model
	UserID     uint   `json:"user_id" gorm:"index;not null;uniqueIndex:idx_answer_open"`
	QuestionID uint   `json:"question_id" gorm:"index;not null;uniqueIndex:idx_answer_open"`
	CohortID   uint   `json:"cohort_id" gorm:"index;not null"`
	Text       string `json:"text" gorm:"type:text"`
	// Attachments holds the stored file keys of uploaded answer files.
	Attachments datatypes.JSON `json:"attachments"`
	Status      string         `json:"status" gorm:"default:'PENDING'"` // PENDING, APPROVED, REJECTED
	// OpenMarker is non-nil only while the answer is PENDING; grading clears
	// it. The unique index over (user, question, marker) is what rejects a
	// second concurrent open answer at the store: terminal answers carry NULL
	// and never collide, on any of the three dialects.
	OpenMarker  *bool          `json:"-" gorm:"uniqueIndex:idx_answer_open"`
	Grade       *string        `json:"grade"` // GOLD, SILVER, COPPER, NEEDS_RESUBMISSION
	GradePoints int            `json:"grade_points" gorm:"default:0"`
	Feedback    string         `json:"feedback" gorm:"type:text"`
	ReviewedBy  *uint          `json:"reviewed_by"`
	ReviewedAt  *time.Time     `json:"reviewed_at"`

	ResubmissionRequested   bool       `json:"resubmission_requested" gorm:"default:false"`
	ResubmissionApproved    *bool      `json:"resubmission_approved"`
	ResubmissionRequestedAt *time.Time `json:"resubmission_requested_at"`

	IsDeleted bool `gorm:"default:false"`
}

// MiniAnswer is one learner's link submission for one mini-question.
// Mini-answers are completion-only; they are never graded.
type MiniAnswer struct {
	gorm.Model
	UserID         uint   `json:"user_id" gorm:"index;not null;uniqueIndex:idx_mini_user_question"`
	MiniQuestionID uint   `json:"mini_question_id" gorm:"index;not null;uniqueIndex:idx_mini_user_question"`
	CohortID       uint   `json:"cohort_id" gorm:"index;not null"`
	LinkURL        string `json:"link_url"`
	Notes          string `json:"notes" gorm:"type:text"`

	ResubmissionRequested   bool       `json:"resubmission_requested" gorm:"default:false"`
	ResubmissionApproved    *bool      `json:"resubmission_approved"`
	ResubmissionRequestedAt *time.Time `json:"resubmission_requested_at"`

	IsDeleted bool `gorm:"default:false"`
}

// GradeOutcome maps a medal grade to its points and terminal answer status.
// The mapping is fixed: GOLD=100/APPROVED, SILVER=85/APPROVED,
// COPPER=70/APPROVED, NEEDS_RESUBMISSION=0/REJECTED.
func GradeOutcome(grade string) (points int, status string, err error) {
	switch grade {
	case GradeGold:
		return 100, AnswerApproved, nil
	case GradeSilver:
		return 85, AnswerApproved, nil
	case GradeCopper:
		return 70, AnswerApproved, nil
	case GradeNeedsResubmission:
		return 0, AnswerRejected, nil
	}
	return 0, "", ErrInvalidGrade
}

// CanResubmit reports whether a new answer may replace this one:
// only a rejected answer or one with an approved resubmission request.
func (a *Answer) CanResubmit() bool {
	if a.Status == AnswerRejected {
		return true
	}
	return a.ResubmissionRequested && a.ResubmissionApproved != nil && *a.ResubmissionApproved
}
