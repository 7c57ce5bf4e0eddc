package cohort

import (
	"testing"
	"time"

	"trainhub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetMembershipStatus_EnrollCreatesAndPoints(t *testing.T) {
	db := testDB(t)
	c := seedCohort(t, db)
	u := seedUser(t, db, "USER")
	admin := seedUser(t, db, "ADMIN")

	now := time.Now().UTC()
	m, err := SetMembershipStatus(db, u.ID, c.ID, MembershipEnrolled, admin.ID, now)
	require.NoError(t, err)
	assert.Equal(t, MembershipEnrolled, m.Status)
	assert.Equal(t, 0, m.CurrentStep)
	require.NotNil(t, m.StatusChangedAt)
	assert.Equal(t, admin.ID, m.StatusChangedBy)

	var got models.User
	require.NoError(t, db.First(&got, u.ID).Error)
	require.NotNil(t, got.CurrentCohortID)
	assert.Equal(t, c.ID, *got.CurrentCohortID)
}

func TestSetMembershipStatus_SingleActiveEnrollment(t *testing.T) {
	db := testDB(t)
	c1 := seedCohort(t, db)
	c2 := seedCohort(t, db)
	u := seedUser(t, db, "USER")
	admin := seedUser(t, db, "ADMIN")

	now := time.Now().UTC()
	_, err := SetMembershipStatus(db, u.ID, c1.ID, MembershipEnrolled, admin.ID, now)
	require.NoError(t, err)

	_, err = SetMembershipStatus(db, u.ID, c2.ID, MembershipEnrolled, admin.ID, now)
	assert.Equal(t, ErrMultipleActiveEnrollments, err)

	// Re-enrolling in the same cohort is not a second enrollment.
	_, err = SetMembershipStatus(db, u.ID, c1.ID, MembershipEnrolled, admin.ID, now)
	assert.NoError(t, err)

	// Graduating the first frees the learner for the second.
	_, err = SetMembershipStatus(db, u.ID, c1.ID, MembershipGraduated, admin.ID, now)
	require.NoError(t, err)
	_, err = SetMembershipStatus(db, u.ID, c2.ID, MembershipEnrolled, admin.ID, now)
	assert.NoError(t, err)
}

func TestSetMembershipStatus_GraduateStampsAndClears(t *testing.T) {
	db := testDB(t)
	c := seedCohort(t, db)
	u := seedUser(t, db, "USER")
	admin := seedUser(t, db, "ADMIN")

	now := time.Now().UTC()
	_, err := SetMembershipStatus(db, u.ID, c.ID, MembershipEnrolled, admin.ID, now)
	require.NoError(t, err)

	m, err := SetMembershipStatus(db, u.ID, c.ID, MembershipGraduated, admin.ID, now)
	require.NoError(t, err)
	require.NotNil(t, m.GraduatedAt)
	assert.True(t, m.GraduatedAt.Equal(now))

	var got models.User
	require.NoError(t, db.First(&got, u.ID).Error)
	assert.Nil(t, got.CurrentCohortID)
}

func TestSetMembershipStatus_RemoveClearsPointerOnly(t *testing.T) {
	db := testDB(t)
	c := seedCohort(t, db)
	u := seedUser(t, db, "USER")
	admin := seedUser(t, db, "ADMIN")

	now := time.Now().UTC()
	_, err := SetMembershipStatus(db, u.ID, c.ID, MembershipEnrolled, admin.ID, now)
	require.NoError(t, err)

	m, err := SetMembershipStatus(db, u.ID, c.ID, MembershipRemoved, admin.ID, now)
	require.NoError(t, err)
	assert.Nil(t, m.GraduatedAt)

	var got models.User
	require.NoError(t, db.First(&got, u.ID).Error)
	assert.Nil(t, got.CurrentCohortID)
}

func TestSetMembershipStatus_RemoveLeavesOtherPointerAlone(t *testing.T) {
	db := testDB(t)
	c1 := seedCohort(t, db)
	c2 := seedCohort(t, db)
	u := seedUser(t, db, "USER")
	admin := seedUser(t, db, "ADMIN")

	now := time.Now().UTC()
	// Old suspended membership in c1, active enrollment in c2.
	_, err := SetMembershipStatus(db, u.ID, c1.ID, MembershipSuspended, admin.ID, now)
	require.NoError(t, err)
	_, err = SetMembershipStatus(db, u.ID, c2.ID, MembershipEnrolled, admin.ID, now)
	require.NoError(t, err)

	_, err = SetMembershipStatus(db, u.ID, c1.ID, MembershipRemoved, admin.ID, now)
	require.NoError(t, err)

	var got models.User
	require.NoError(t, db.First(&got, u.ID).Error)
	require.NotNil(t, got.CurrentCohortID)
	assert.Equal(t, c2.ID, *got.CurrentCohortID)
}

func TestSetMembershipStatus_SuspendKeepsPointer(t *testing.T) {
	db := testDB(t)
	c := seedCohort(t, db)
	u := seedUser(t, db, "USER")
	admin := seedUser(t, db, "ADMIN")

	now := time.Now().UTC()
	_, err := SetMembershipStatus(db, u.ID, c.ID, MembershipEnrolled, admin.ID, now)
	require.NoError(t, err)

	m, err := SetMembershipStatus(db, u.ID, c.ID, MembershipSuspended, admin.ID, now)
	require.NoError(t, err)
	assert.Equal(t, MembershipSuspended, m.Status)

	var got models.User
	require.NoError(t, db.First(&got, u.ID).Error)
	require.NotNil(t, got.CurrentCohortID)
	assert.Equal(t, c.ID, *got.CurrentCohortID)
}

func TestSetMembershipStatus_InvalidStatus(t *testing.T) {
	db := testDB(t)
	_, err := SetMembershipStatus(db, 1, 1, "ALUMNUS", 1, time.Now().UTC())
	assert.Equal(t, ErrInvalidStatus, err)
}
