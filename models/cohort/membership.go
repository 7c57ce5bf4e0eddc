package cohort

import (
	"time"

	"trainhub/models"

	"gorm.io/gorm"
)

// SetMembershipStatus moves a (learner, cohort) membership to a new status,
// creating the membership on first enrollment. Side effects per status:
//
//	ENROLLED   - requires no other ENROLLED membership for the learner
//	             (ErrMultipleActiveEnrollments otherwise) and points the
//	             learner's current cohort at this one
//	GRADUATED  - stamps GraduatedAt and clears the current-cohort pointer
//	             when it references this cohort
//	REMOVED    - clears the pointer the same way, no graduation stamp
//	SUSPENDED  - status only
//
// Every transition stamps StatusChangedAt/StatusChangedBy. All of it runs in
// one transaction.
func SetMembershipStatus(db *gorm.DB, userID, cohortID uint, newStatus string, actorID uint, now time.Time) (*CohortMembership, error) {
	if !ValidMembershipStatus(newStatus) {
		return nil, ErrInvalidStatus
	}

	var membership CohortMembership
	err := db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
			return err
		}

		err := tx.Where("user_id = ? AND cohort_id = ? AND is_deleted = ?", userID, cohortID, false).
			First(&membership).Error
		if err == gorm.ErrRecordNotFound {
			membership = CohortMembership{UserID: userID, CohortID: cohortID, Status: newStatus}
		} else if err != nil {
			return err
		}

		if newStatus == MembershipEnrolled {
			var active int64
			if err := tx.Model(&CohortMembership{}).
				Where("user_id = ? AND cohort_id <> ? AND status = ? AND is_deleted = ?",
					userID, cohortID, MembershipEnrolled, false).
				Count(&active).Error; err != nil {
				return err
			}
			if active > 0 {
				return ErrMultipleActiveEnrollments
			}
		}

		membership.Status = newStatus
		membership.StatusChangedAt = &now
		membership.StatusChangedBy = actorID

		switch newStatus {
		case MembershipGraduated:
			membership.GraduatedAt = &now
			if user.CurrentCohortID != nil && *user.CurrentCohortID == cohortID {
				if err := clearCurrentCohort(tx, userID); err != nil {
					return err
				}
			}
		case MembershipRemoved:
			if user.CurrentCohortID != nil && *user.CurrentCohortID == cohortID {
				if err := clearCurrentCohort(tx, userID); err != nil {
					return err
				}
			}
		case MembershipEnrolled:
			if err := tx.Model(&models.User{}).
				Where("id = ?", userID).
				Update("current_cohort_id", cohortID).Error; err != nil {
				return err
			}
		}

		return tx.Save(&membership).Error
	})
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func clearCurrentCohort(tx *gorm.DB, userID uint) error {
	return tx.Model(&models.User{}).
		Where("id = ?", userID).
		Update("current_cohort_id", nil).Error
}
