package cohort

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SubmitAnswer records a learner's answer to a released question. The
// availability gate is re-checked here, and the "at most one open answer"
// invariant is enforced twice: the transactional re-check gives the friendly
// error, and the idx_answer_open unique index rejects a concurrent duplicate
// insert the check cannot see.
func SubmitAnswer(db *gorm.DB, userID, questionID uint, text string, attachments datatypes.JSON, now time.Time) (*Answer, error) {
	var q Question
	err := db.Where("id = ? AND is_released = ? AND is_deleted = ?", questionID, true, false).
		First(&q).Error
	if err != nil {
		return nil, err
	}

	var membership CohortMembership
	err = db.Where("user_id = ? AND cohort_id = ? AND status = ? AND is_deleted = ?",
		userID, q.CohortID, MembershipEnrolled, false).
		First(&membership).Error
	if err != nil {
		return nil, err
	}

	state, err := ResolveForLearner(db, &membership, &q, userID)
	if err != nil {
		return nil, err
	}
	switch state {
	case AvailabilityLocked:
		return nil, ErrQuestionLocked
	case AvailabilityMinisRequired:
		return nil, ErrMiniQuestionsIncomplete
	case AvailabilityCompleted:
		return nil, ErrAlreadyApproved
	}

	open := true
	answer := Answer{
		UserID:      userID,
		QuestionID:  questionID,
		CohortID:    q.CohortID,
		Text:        text,
		Attachments: attachments,
		Status:      AnswerPending,
		OpenMarker:  &open,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		latest, err := latestAnswer(tx, userID, questionID)
		if err != nil {
			return err
		}
		if latest != nil {
			if latest.Status == AnswerPending {
				return ErrAlreadyPending
			}
			if latest.Status == AnswerApproved {
				return ErrAlreadyApproved
			}
			if !latest.CanResubmit() {
				return ErrAlreadyPending
			}
		}
		if err := tx.Create(&answer).Error; err != nil {
			// Lost race: another open answer landed between the check and
			// the insert and the unique index rejected this one.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyPending
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

// SubmitMiniAnswer records or replaces a learner's link submission for a
// released mini question. A first submission always goes through; replacing
// an existing one requires an approved resubmission request, which is
// consumed by the replacement.
func SubmitMiniAnswer(db *gorm.DB, userID, miniQuestionID uint, linkURL, notes string, now time.Time) (*MiniAnswer, error) {
	var mq MiniQuestion
	err := db.Where("id = ? AND is_deleted = ?", miniQuestionID, false).First(&mq).Error
	if err != nil {
		return nil, err
	}
	if !mq.IsReleased {
		return nil, ErrNotReleased
	}

	var section ContentSection
	if err := db.First(&section, mq.ContentSectionID).Error; err != nil {
		return nil, err
	}
	var q Question
	if err := db.First(&q, section.QuestionID).Error; err != nil {
		return nil, err
	}

	var existing MiniAnswer
	err = db.Where("user_id = ? AND mini_question_id = ? AND is_deleted = ?", userID, miniQuestionID, false).
		First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		ma := MiniAnswer{
			UserID:         userID,
			MiniQuestionID: miniQuestionID,
			CohortID:       q.CohortID,
			LinkURL:        linkURL,
			Notes:          notes,
		}
		if err := db.Create(&ma).Error; err != nil {
			return nil, err
		}
		return &ma, nil
	}
	if err != nil {
		return nil, err
	}

	if !existing.ResubmissionRequested || existing.ResubmissionApproved == nil || !*existing.ResubmissionApproved {
		return nil, ErrAlreadyPending
	}

	res := db.Model(&MiniAnswer{}).
		Where("id = ? AND resubmission_approved = ?", existing.ID, true).
		Updates(map[string]interface{}{
			"link_url":                  linkURL,
			"notes":                     notes,
			"resubmission_requested":    false,
			"resubmission_approved":     nil,
			"resubmission_requested_at": nil,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrAlreadyPending
	}
	if err := db.First(&existing, existing.ID).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}
