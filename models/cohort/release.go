package cohort

import (
	"time"

	"gorm.io/gorm"
)

// ReleaseModule marks a module released. Idempotent: a module that is already
// released is returned unchanged, keeping its original ReleasedAt.
func ReleaseModule(db *gorm.DB, moduleID uint, now time.Time) (*CourseModule, error) {
	var m CourseModule
	if err := db.Where("id = ? AND is_deleted = ?", moduleID, false).First(&m).Error; err != nil {
		return nil, err
	}

	if !m.IsReleased {
		// Conditioned on is_released so a concurrent release stamps once.
		res := db.Model(&CourseModule{}).
			Where("id = ? AND is_released = ?", moduleID, false).
			Updates(map[string]interface{}{"is_released": true, "released_at": now})
		if res.Error != nil {
			return nil, res.Error
		}
		if err := db.First(&m, moduleID).Error; err != nil {
			return nil, err
		}
	}
	return &m, nil
}

// ReleaseQuestion marks a question released and, in the same transaction,
// catch-up releases any of its mini questions whose release date has already
// passed, so learners are not stuck waiting for the next sweep tick.
// Idempotent in the same way as ReleaseModule.
func ReleaseQuestion(db *gorm.DB, questionID uint, now time.Time) (*Question, error) {
	var q Question
	if err := db.Where("id = ? AND is_deleted = ?", questionID, false).First(&q).Error; err != nil {
		return nil, err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if !q.IsReleased {
			res := tx.Model(&Question{}).
				Where("id = ? AND is_released = ?", questionID, false).
				Updates(map[string]interface{}{"is_released": true, "released_at": now})
			if res.Error != nil {
				return res.Error
			}
		}

		sectionIDs := tx.Model(&ContentSection{}).Select("id").
			Where("question_id = ? AND is_deleted = ?", questionID, false)
		res := tx.Model(&MiniQuestion{}).
			Where("content_section_id IN (?) AND is_deleted = ?", sectionIDs, false).
			Where("is_released = ? AND release_date IS NOT NULL AND release_date <= ?", false, now).
			Updates(map[string]interface{}{"is_released": true, "actual_release_date": now})
		return res.Error
	})
	if err != nil {
		return nil, err
	}

	if err := db.First(&q, questionID).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// ReleaseMiniQuestion releases one mini question by admin action, stamping
// ActualReleaseDate only on the first transition.
func ReleaseMiniQuestion(db *gorm.DB, miniQuestionID uint, now time.Time) (*MiniQuestion, error) {
	var mq MiniQuestion
	if err := db.Where("id = ? AND is_deleted = ?", miniQuestionID, false).First(&mq).Error; err != nil {
		return nil, err
	}

	if !mq.IsReleased {
		res := db.Model(&MiniQuestion{}).
			Where("id = ? AND is_released = ?", miniQuestionID, false).
			Updates(map[string]interface{}{"is_released": true, "actual_release_date": now})
		if res.Error != nil {
			return nil, res.Error
		}
		if err := db.First(&mq, miniQuestionID).Error; err != nil {
			return nil, err
		}
	}
	return &mq, nil
}

// SweepMiniQuestionReleases releases every unreleased mini question whose
// release date has passed, stamping actual_release_date = now. It is one
// conditional batch update: already-released rows are untouched, so the sweep
// is idempotent and safe to run concurrently with itself or with reads.
// Returns the number of mini questions released.
func SweepMiniQuestionReleases(db *gorm.DB, now time.Time) (int64, error) {
	res := db.Model(&MiniQuestion{}).
		Where("is_released = ? AND is_deleted = ?", false, false).
		Where("release_date IS NOT NULL AND release_date <= ?", now).
		Updates(map[string]interface{}{"is_released": true, "actual_release_date": now})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
