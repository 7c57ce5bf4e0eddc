package cohort

import (
	"time"

	"gorm.io/gorm"
)

// Cohort represents one run of the curriculum for a group of learners
type Cohort struct {
	gorm.Model
	Name string `json:"name"`
	// Discriminator disambiguates cohorts sharing a name ("go-2025" #1, #2, ...).
	// Unique per name, assigned on create.
	Discriminator int        `json:"discriminator" gorm:"default:1"`
	Theme         string     `json:"theme" gorm:"default:'DEFAULT'"`
	IsActive      bool       `json:"is_active" gorm:"default:true"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
	IsDeleted     bool       `gorm:"default:false"`
}

// Membership statuses
const (
	MembershipEnrolled  = "ENROLLED"
	MembershipGraduated = "GRADUATED"
	MembershipRemoved   = "REMOVED"
	MembershipSuspended = "SUSPENDED"
)

// CohortMembership tracks a learner's standing within one cohort
type CohortMembership struct {
	gorm.Model
	UserID   uint   `json:"user_id" gorm:"index;not null;uniqueIndex:idx_member_user_cohort"`
	CohortID uint   `json:"cohort_id" gorm:"index;not null;uniqueIndex:idx_member_user_cohort"`
	Status   string `json:"status" gorm:"default:'ENROLLED'"` // ENROLLED, GRADUATED, REMOVED, SUSPENDED
	// CurrentStep is the high-water mark of unlocked question ordinals.
	// It only ever moves forward.
	CurrentStep     int        `json:"current_step" gorm:"default:0"`
	StatusChangedAt *time.Time `json:"status_changed_at"`
	StatusChangedBy uint       `json:"status_changed_by"`
	GraduatedAt     *time.Time `json:"graduated_at"`
	IsDeleted       bool       `gorm:"default:false"`
}

// NextDiscriminator returns the next free numeric discriminator for cohorts
// sharing the given name.
func NextDiscriminator(db *gorm.DB, name string) (int, error) {
	var max int
	err := db.Model(&Cohort{}).
		Where("name = ?", name).
		Select("COALESCE(MAX(discriminator), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// ValidMembershipStatus reports whether s is one of the four membership statuses.
func ValidMembershipStatus(s string) bool {
	switch s {
	case MembershipEnrolled, MembershipGraduated, MembershipRemoved, MembershipSuspended:
		return true
	}
	return false
}
