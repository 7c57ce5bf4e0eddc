package models

import "gorm.io/gorm"

// User represents a platform account (learner or admin)
type User struct {
	gorm.Model
	Name     string `json:"name"`
	Email    string `json:"email" gorm:"index"`
	Mobile   string `json:"mobile"`
	Password string `json:"-"`
	Role     string `json:"role" gorm:"default:'USER'"` // USER, ADMIN
	// CurrentCohortID points at the cohort of the user's single ENROLLED
	// membership, or is nil when they hold none.
	CurrentCohortID *uint `json:"current_cohort_id"`
	IsDeleted       bool  `gorm:"default:false"`
}
