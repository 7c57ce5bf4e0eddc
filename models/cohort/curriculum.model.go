package cohort

import (
	"time"

	"gorm.io/gorm"
)

// CourseModule represents a released-as-a-unit block of questions in a cohort
type CourseModule struct {
	gorm.Model
	CohortID    uint   `json:"cohort_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index" gorm:"default:0"` // Module order in cohort
	IsReleased  bool   `json:"is_released" gorm:"default:false"`
	// ReleasedAt is stamped on the first release only; re-releasing keeps it.
	ReleasedAt *time.Time `json:"released_at"`
	IsDeleted  bool       `gorm:"default:false"`
}

// Question represents a graded assignment within a cohort
type Question struct {
	gorm.Model
	CohortID    uint       `json:"cohort_id" gorm:"index;not null;uniqueIndex:idx_question_cohort_order"`
	ModuleID    *uint      `json:"module_id" gorm:"index"`
	Title       string     `json:"title"`
	Body        string     `json:"body" gorm:"type:text"`
	// OrderIndex is unique within the cohort and drives sequential unlock.
	OrderIndex  int        `json:"order_index" gorm:"uniqueIndex:idx_question_cohort_order"`
	Deadline    *time.Time `json:"deadline"`
	Points      int        `json:"points" gorm:"default:0"`
	BonusPoints int        `json:"bonus_points" gorm:"default:0"`
	IsReleased  bool       `json:"is_released" gorm:"default:false"`
	ReleasedAt  *time.Time `json:"released_at"`
	IsDeleted   bool       `gorm:"default:false"`
}

// ContentSection is an ordered block of learning material under a question
type ContentSection struct {
	gorm.Model
	QuestionID uint   `json:"question_id" gorm:"index;not null"`
	Title      string `json:"title"`
	Body       string `json:"body" gorm:"type:text"`
	OrderIndex int    `json:"order_index" gorm:"default:0"`
	IsDeleted  bool   `gorm:"default:false"`
}

// MiniQuestion is an ungraded self-learning task that gates its question
type MiniQuestion struct {
	gorm.Model
	ContentSectionID uint   `json:"content_section_id" gorm:"index;not null"`
	Prompt           string `json:"prompt" gorm:"type:text"`
	OrderIndex       int    `json:"order_index" gorm:"default:0"`
	// ReleaseDate is the scheduled release; nil means manual release only.
	ReleaseDate *time.Time `json:"release_date"`
	IsReleased  bool       `json:"is_released" gorm:"default:false"`
	// ActualReleaseDate is stamped exactly once, on the first transition to
	// released, whether by admin action or the time sweep.
	ActualReleaseDate *time.Time `json:"actual_release_date"`
	IsDeleted         bool       `gorm:"default:false"`
}
