package cohort

import (
	"time"

	"gorm.io/gorm"
)

// SectionInput is the authoring payload for one content section.
type SectionInput struct {
	Title         string              `json:"title"`
	Body          string              `json:"body"`
	OrderIndex    int                 `json:"order_index"`
	MiniQuestions []MiniQuestionInput `json:"mini_questions"`
}

// MiniQuestionInput is the authoring payload for one mini question.
type MiniQuestionInput struct {
	Prompt      string     `json:"prompt"`
	OrderIndex  int        `json:"order_index"`
	ReleaseDate *time.Time `json:"release_date"`
}

// QuestionInput is the authoring payload for a question.
type QuestionInput struct {
	ModuleID    *uint      `json:"module_id"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	OrderIndex  int        `json:"order_index"`
	Deadline    *time.Time `json:"deadline"`
	Points      int        `json:"points"`
	BonusPoints int        `json:"bonus_points"`
	// Sections, when non-nil on update, replaces the existing sections.
	Sections []SectionInput `json:"content_sections"`
}

// ValidateDeadline checks that no mini question is scheduled for release after
// the question's deadline. Any single conflict rejects the entire write.
func ValidateDeadline(deadline *time.Time, sections []SectionInput) error {
	if deadline == nil {
		return nil
	}
	for _, sec := range sections {
		for _, mq := range sec.MiniQuestions {
			if mq.ReleaseDate != nil && mq.ReleaseDate.After(*deadline) {
				return &DeadlineConflictError{ReleaseDate: *mq.ReleaseDate, Deadline: *deadline}
			}
		}
	}
	return nil
}

// CreateQuestion creates a question with its content sections and mini
// questions in one transaction. Fails with DeadlineConflictError before any
// write when a mini question release date is past the deadline.
func CreateQuestion(db *gorm.DB, cohortID uint, in QuestionInput) (*Question, error) {
	if err := ValidateDeadline(in.Deadline, in.Sections); err != nil {
		return nil, err
	}

	q := Question{
		CohortID:    cohortID,
		ModuleID:    in.ModuleID,
		Title:       in.Title,
		Body:        in.Body,
		OrderIndex:  in.OrderIndex,
		Deadline:    in.Deadline,
		Points:      in.Points,
		BonusPoints: in.BonusPoints,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&q).Error; err != nil {
			return err
		}
		return createSections(tx, q.ID, in.Sections)
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// UpdateQuestion applies the supplied fields; when sections are supplied they
// replace the existing ones, and the deadline invariant is re-checked against
// the new deadline (or the stored one when the update leaves it unchanged).
// A deadline-only update is checked against the stored mini questions, so
// tightening the deadline below an existing release date is rejected too.
func UpdateQuestion(db *gorm.DB, questionID uint, in QuestionInput) (*Question, error) {
	var q Question
	if err := db.Where("id = ? AND is_deleted = ?", questionID, false).First(&q).Error; err != nil {
		return nil, err
	}

	deadline := q.Deadline
	if in.Deadline != nil {
		deadline = in.Deadline
	}
	if in.Sections != nil {
		if err := ValidateDeadline(deadline, in.Sections); err != nil {
			return nil, err
		}
	} else if in.Deadline != nil {
		if err := validateStoredDeadline(db, questionID, in.Deadline); err != nil {
			return nil, err
		}
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if in.Title != "" {
			q.Title = in.Title
		}
		if in.Body != "" {
			q.Body = in.Body
		}
		if in.OrderIndex > 0 {
			q.OrderIndex = in.OrderIndex
		}
		if in.Deadline != nil {
			q.Deadline = in.Deadline
		}
		if in.Points > 0 {
			q.Points = in.Points
		}
		if in.BonusPoints > 0 {
			q.BonusPoints = in.BonusPoints
		}
		if in.ModuleID != nil {
			q.ModuleID = in.ModuleID
		}
		if err := tx.Save(&q).Error; err != nil {
			return err
		}

		if in.Sections != nil {
			sectionIDs := tx.Model(&ContentSection{}).Select("id").
				Where("question_id = ?", questionID)
			if err := tx.Model(&MiniQuestion{}).
				Where("content_section_id IN (?)", sectionIDs).
				Update("is_deleted", true).Error; err != nil {
				return err
			}
			if err := tx.Model(&ContentSection{}).
				Where("question_id = ?", questionID).
				Update("is_deleted", true).Error; err != nil {
				return err
			}
			return createSections(tx, questionID, in.Sections)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// validateStoredDeadline checks a new deadline against the question's stored
// mini questions, for updates that change the deadline without replacing the
// sections.
func validateStoredDeadline(db *gorm.DB, questionID uint, deadline *time.Time) error {
	sectionIDs := db.Model(&ContentSection{}).Select("id").
		Where("question_id = ? AND is_deleted = ?", questionID, false)

	var mq MiniQuestion
	err := db.Where("content_section_id IN (?) AND is_deleted = ?", sectionIDs, false).
		Where("release_date IS NOT NULL AND release_date > ?", *deadline).
		Order("release_date DESC").First(&mq).Error
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	return &DeadlineConflictError{ReleaseDate: *mq.ReleaseDate, Deadline: *deadline}
}

func createSections(tx *gorm.DB, questionID uint, sections []SectionInput) error {
	for _, sec := range sections {
		section := ContentSection{
			QuestionID: questionID,
			Title:      sec.Title,
			Body:       sec.Body,
			OrderIndex: sec.OrderIndex,
		}
		if err := tx.Create(&section).Error; err != nil {
			return err
		}
		for _, mq := range sec.MiniQuestions {
			mini := MiniQuestion{
				ContentSectionID: section.ID,
				Prompt:           mq.Prompt,
				OrderIndex:       mq.OrderIndex,
				ReleaseDate:      mq.ReleaseDate,
			}
			if err := tx.Create(&mini).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// DeleteQuestion soft deletes a question with its sections and mini questions.
// Blocked with ErrHasDependents while any answer or mini answer exists.
func DeleteQuestion(db *gorm.DB, questionID uint) error {
	var q Question
	if err := db.Where("id = ? AND is_deleted = ?", questionID, false).First(&q).Error; err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var answers int64
		if err := tx.Model(&Answer{}).
			Where("question_id = ? AND is_deleted = ?", questionID, false).
			Count(&answers).Error; err != nil {
			return err
		}

		sectionIDs := tx.Model(&ContentSection{}).Select("id").
			Where("question_id = ? AND is_deleted = ?", questionID, false)
		miniIDs := tx.Model(&MiniQuestion{}).Select("id").
			Where("content_section_id IN (?) AND is_deleted = ?", sectionIDs, false)

		var miniAnswers int64
		if err := tx.Model(&MiniAnswer{}).
			Where("mini_question_id IN (?) AND is_deleted = ?", miniIDs, false).
			Count(&miniAnswers).Error; err != nil {
			return err
		}

		if answers > 0 || miniAnswers > 0 {
			return ErrHasDependents
		}

		if err := tx.Model(&MiniQuestion{}).
			Where("content_section_id IN (?)", sectionIDs).
			Update("is_deleted", true).Error; err != nil {
			return err
		}
		if err := tx.Model(&ContentSection{}).
			Where("question_id = ?", questionID).
			Update("is_deleted", true).Error; err != nil {
			return err
		}
		return tx.Model(&Question{}).
			Where("id = ?", questionID).
			Update("is_deleted", true).Error
	})
}
