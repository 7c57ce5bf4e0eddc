package cohort

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// GradeAnswer applies a medal grade to a pending answer. Feedback is
// mandatory. The status update is conditioned on the answer still being
// PENDING, so a concurrent grader loses the race with ErrAlreadyReviewed
// instead of double-processing. On an APPROVED outcome the learner's
// membership step advances to the question's ordinal (monotonic, in the same
// transaction). A NEEDS_RESUBMISSION grade atomically self-approves a
// resubmission so the learner can submit again without a separate admin step.
func GradeAnswer(db *gorm.DB, answerID uint, grade, feedback string, actorID uint, now time.Time) (*Answer, error) {
	if strings.TrimSpace(feedback) == "" {
		return nil, ErrMissingFeedback
	}
	points, outcome, err := GradeOutcome(grade)
	if err != nil {
		return nil, err
	}

	var a Answer
	if err := db.Where("id = ? AND is_deleted = ?", answerID, false).First(&a).Error; err != nil {
		return nil, err
	}
	if a.Status != AnswerPending {
		return nil, ErrAlreadyReviewed
	}

	updates := map[string]interface{}{
		"status":       outcome,
		"open_marker":  nil,
		"grade":        grade,
		"grade_points": points,
		"feedback":     feedback,
		"reviewed_by":  actorID,
		"reviewed_at":  now,
	}
	if grade == GradeNeedsResubmission {
		updates["resubmission_requested"] = true
		updates["resubmission_approved"] = true
		updates["resubmission_requested_at"] = now
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Answer{}).
			Where("id = ? AND status = ?", answerID, AnswerPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyReviewed
		}
		if outcome == AnswerApproved {
			return advanceStep(tx, &a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := db.First(&a, answerID).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// ReviewAnswer is the legacy binary review path: approve or reject a pending
// answer without a medal. Same PENDING precondition and step advance.
func ReviewAnswer(db *gorm.DB, answerID uint, approve bool, feedback string, actorID uint, now time.Time) (*Answer, error) {
	if strings.TrimSpace(feedback) == "" {
		return nil, ErrMissingFeedback
	}

	var a Answer
	if err := db.Where("id = ? AND is_deleted = ?", answerID, false).First(&a).Error; err != nil {
		return nil, err
	}
	if a.Status != AnswerPending {
		return nil, ErrAlreadyReviewed
	}

	outcome := AnswerRejected
	if approve {
		outcome = AnswerApproved
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Answer{}).
			Where("id = ? AND status = ?", answerID, AnswerPending).
			Updates(map[string]interface{}{
				"status":      outcome,
				"open_marker": nil,
				"feedback":    feedback,
				"reviewed_by": actorID,
				"reviewed_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyReviewed
		}
		if approve {
			return advanceStep(tx, &a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := db.First(&a, answerID).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// advanceStep lifts the membership step to the question's ordinal.
// Conditioned on current_step < ordinal: the step never regresses.
func advanceStep(tx *gorm.DB, a *Answer) error {
	var q Question
	if err := tx.First(&q, a.QuestionID).Error; err != nil {
		return err
	}
	return tx.Model(&CohortMembership{}).
		Where("user_id = ? AND cohort_id = ? AND is_deleted = ?", a.UserID, a.CohortID, false).
		Where("current_step < ?", q.OrderIndex).
		Update("current_step", q.OrderIndex).Error
}

// RequestMiniResubmission flags a mini answer for resubmission. Mini answers
// carry no grade; an admin may flag one at any time, including after an
// earlier request was decided. Re-flagging resets the decision to undecided:
// "decided exactly once" holds per request cycle, not forever.
func RequestMiniResubmission(db *gorm.DB, miniAnswerID uint, actorID uint, now time.Time) (*MiniAnswer, error) {
	var ma MiniAnswer
	if err := db.Where("id = ? AND is_deleted = ?", miniAnswerID, false).First(&ma).Error; err != nil {
		return nil, err
	}

	res := db.Model(&MiniAnswer{}).
		Where("id = ?", miniAnswerID).
		Updates(map[string]interface{}{
			"resubmission_requested":    true,
			"resubmission_approved":     nil,
			"resubmission_requested_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if err := db.First(&ma, miniAnswerID).Error; err != nil {
		return nil, err
	}
	return &ma, nil
}

// DecideMiniResubmission approves or denies a flagged mini answer
// resubmission. The decision is made exactly once; a second decision fails
// with ErrAlreadyReviewed. The update is conditioned on the decision still
// being open, so concurrent deciders cannot both win.
func DecideMiniResubmission(db *gorm.DB, miniAnswerID uint, approve bool, actorID uint, now time.Time) (*MiniAnswer, error) {
	var ma MiniAnswer
	if err := db.Where("id = ? AND is_deleted = ?", miniAnswerID, false).First(&ma).Error; err != nil {
		return nil, err
	}
	if !ma.ResubmissionRequested {
		return nil, ErrNoResubmissionRequest
	}
	if ma.ResubmissionApproved != nil {
		return nil, ErrAlreadyReviewed
	}

	res := db.Model(&MiniAnswer{}).
		Where("id = ? AND resubmission_requested = ? AND resubmission_approved IS NULL", miniAnswerID, true).
		Update("resubmission_approved", approve)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrAlreadyReviewed
	}
	if err := db.First(&ma, miniAnswerID).Error; err != nil {
		return nil, err
	}
	return &ma, nil
}
