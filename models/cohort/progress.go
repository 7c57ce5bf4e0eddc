package cohort

import (
	"math"

	"gorm.io/gorm"
)

// ProgressSummary is the read-side progress view for one learner.
type ProgressSummary struct {
	UserID      uint    `json:"user_id"`
	CohortID    uint    `json:"cohort_id"`
	CurrentStep int     `json:"current_step"`
	TotalSteps  int     `json:"total_steps"`
	Fraction    float64 `json:"fraction"`
}

// LearnerProgress computes currentStep / max(1, releasedCount). The floor
// keeps the fraction well-defined before any content is published.
func LearnerProgress(currentStep, releasedCount int) float64 {
	total := releasedCount
	if total < 1 {
		total = 1
	}
	return float64(currentStep) / float64(total)
}

// CohortAverageProgress is the mean of the given fractions rounded to one
// decimal place; 0 when there are none.
func CohortAverageProgress(fractions []float64) float64 {
	if len(fractions) == 0 {
		return 0
	}
	var sum float64
	for _, f := range fractions {
		sum += f
	}
	return math.Round(sum/float64(len(fractions))*10) / 10
}

// CountReleasedQuestions counts the cohort's questions that are released and
// whose module, when they have one, is released too. Questions outside any
// module have no parent gate and count on their own release.
func CountReleasedQuestions(db *gorm.DB, cohortID uint) (int, error) {
	releasedModuleIDs := db.Model(&CourseModule{}).Select("id").
		Where("cohort_id = ? AND is_released = ? AND is_deleted = ?", cohortID, true, false)

	var count int64
	err := db.Model(&Question{}).
		Where("cohort_id = ? AND is_released = ? AND is_deleted = ?", cohortID, true, false).
		Where("module_id IS NULL OR module_id IN (?)", releasedModuleIDs).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// ProgressForMembership builds the progress summary for one membership.
func ProgressForMembership(db *gorm.DB, m *CohortMembership) (*ProgressSummary, error) {
	released, err := CountReleasedQuestions(db, m.CohortID)
	if err != nil {
		return nil, err
	}
	total := released
	if total < 1 {
		total = 1
	}
	return &ProgressSummary{
		UserID:      m.UserID,
		CohortID:    m.CohortID,
		CurrentStep: m.CurrentStep,
		TotalSteps:  total,
		Fraction:    LearnerProgress(m.CurrentStep, released),
	}, nil
}
