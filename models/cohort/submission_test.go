package cohort

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSubmitAnswer_HappyPath(t *testing.T) {
	db := testDB(t)
	c := seedCohort(t, db)
	u := seedUser(t, db, "USER")
	seedMembership(t, db, u.ID, c.ID, 0)
	q := seedQuestion(t, db, c.ID, 1, true)

	now := time.Now().UTC()
	a, err := SubmitAnswer(db, u.ID, q.ID, "my answer", nil, now)
	require.NoError(t, err)
	assert.Equal(t, AnswerPending, a.Status)
	assert.Equal(t, c.ID, a.CohortID)
}

func TestSubmitAnswer_UnreleasedQuestion(t *testing.T) {
	db := testDB(t)
	c := seedCohort(t, db)
	u := seedUser(t, db, "USER")
	seedMembership(t, db, u.ID, c.ID, 0)
	q := seedQuestion(t, db, c.ID, 1, false)

	_, err := SubmitAnswer(db, u.ID, q.ID, "too early", nil, time.Now().UTC())
	assert.Equal(t, gorm.ErrRecordNotFound, err)
}

func TestSubmitAnswer_Locked(t *testing.T) {
	db := testDB(t)
	c := seedCohort(t, db)
	u := seedUser(t, db, "USER")
	seedMembership(t, db, u.ID, c.ID, 0)
	q := seedQuestion(t, db, c.ID, 3, true)

	_, err := SubmitAnswer(db, u.ID, q.ID, "skipping ahead", nil, time.Now().UTC())
	assert.Equal(t, ErrQuestionLocked, err)
}

func TestSubmitAnswer_MinisIncomplete(t *testing.T) {
	db := testDB(t)
	c := seedCohort(t, db)
	u := seedUser(t, db, "USER")
	seedMembership(t, db, u.ID, c.ID, 0)
	q := seedQuestion(t, db, c.ID, 1, true)
	sec := seedSection(t, db, q.ID)
	seedMiniQuestion(t, db, sec.ID, nil, true)

	_, err := SubmitAnswer(db, u.ID, q.ID, "minis pending", nil, time.Now().UTC())
	assert.Equal(t, ErrMiniQuestionsIncomplete, err)
}

func TestSubmitAnswer_OneOpenAnswer(t *testing.T) {
	db := testDB(t)
	c := seedCohort(t, db)
	u := seedUser(t, db, "USER")
	seedMembership(t, db, u.ID, c.ID, 0)
	q := seedQuestion(t, db, c.ID, 1, true)

	now := time.Now().UTC()
	_, err := SubmitAnswer(db, u.ID, q.ID, "first", nil, now)
	require.NoError(t, err)

	_, err = SubmitAnswer(db, u.ID, q.ID, "second while pending", nil, now)
	assert.Equal(t, ErrAlreadyPending, err)
}

func TestSubmitAnswer_OpenAnswerUniqueAtStore(t *testing.T) {
	db := testDB(t)
	c := seedCohort(t, db)
	u := seedUser(t, db, "USER")
	admin := seedUser(t, db, "ADMIN")
	seedMembership(t, db, u.ID, c.ID, 0)
	q := seedQuestion(t, db, c.ID, 1, true)

	now := time.Now().UTC()
	first, err := SubmitAnswer(db, u.ID, q.ID, "first", nil, now)
	require.NoError(t, err)
	require.NotNil(t, first.OpenMarker)

	// A raw insert modeling two concurrent submitters both passing the
	// transactional check: the unique index over (user, question, marker)
	// rejects the second open row without any application-level help.
	open := true
	dup := Answer{UserID: u.ID, QuestionID: q.ID, CohortID: c.ID, Text: "race", Status: AnswerPending, OpenMarker: &open}
	err = db.Create(&dup).Error
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// Grading clears the marker; the terminal row no longer blocks a
	// resubmission insert.
	_, err = GradeAnswer(db, first.ID, GradeNeedsResubmission, "Try again", admin.ID, now)
	require.NoError(t, err)

	var graded Answer
	require.NoError(t, db.First(&graded, first.ID).Error)
	assert.Nil(t, graded.OpenMarker)

	second, err := SubmitAnswer(db, u.ID, q.ID, "second attempt", nil, now)
	require.NoError(t, err)
	require.NotNil(t, second.OpenMarker)
}

func TestSubmitAnswer_AfterApproval(t *testing.T) {
	db := testDB(t)
	c := seedCohort(t, db)
	u := seedUser(t, db, "USER")
	seedMembership(t, db, u.ID, c.ID, 0)
	q := seedQuestion(t, db, c.ID, 1, true)
	a := Answer{UserID: u.ID, QuestionID: q.ID, CohortID: c.ID, Text: "done", Status: AnswerApproved}
	require.NoError(t, db.Create(&a).Error)

	_, err := SubmitAnswer(db, u.ID, q.ID, "again", nil, time.Now().UTC())
	assert.Equal(t, ErrAlreadyApproved, err)
}

func TestSubmitAnswer_ResubmitAfterRejection(t *testing.T) {
	db := testDB(t)
	c := seedCohort(t, db)
	u := seedUser(t, db, "USER")
	admin := seedUser(t, db, "ADMIN")
	seedMembership(t, db, u.ID, c.ID, 0)
	q := seedQuestion(t, db, c.ID, 1, true)

	now := time.Now().UTC()
	first, err := SubmitAnswer(db, u.ID, q.ID, "attempt one", nil, now)
	require.NoError(t, err)

	_, err = GradeAnswer(db, first.ID, GradeNeedsResubmission, "Try again", admin.ID, now)
	require.NoError(t, err)

	second, err := SubmitAnswer(db, u.ID, q.ID, "attempt two", nil, now)
	require.NoError(t, err)
	assert.Equal(t, AnswerPending, second.Status)
	assert.NotEqual(t, first.ID, second.ID, "resubmission is a new row, history preserved")
}

func TestSubmitAnswer_RequiresEnrollment(t *testing.T) {
	db := testDB(t)
	c := seedCohort(t, db)
	u := seedUser(t, db, "USER")
	m := seedMembership(t, db, u.ID, c.ID, 0)
	q := seedQuestion(t, db, c.ID, 1, true)

	require.NoError(t, db.Model(m).Update("status", MembershipSuspended).Error)

	_, err := SubmitAnswer(db, u.ID, q.ID, "suspended", nil, time.Now().UTC())
	assert.Equal(t, gorm.ErrRecordNotFound, err)
}

func TestSubmitMiniAnswer_NotReleased(t *testing.T) {
	db := testDB(t)
	c := seedCohort(t, db)
	u := seedUser(t, db, "USER")
	q := seedQuestion(t, db, c.ID, 1, true)
	sec := seedSection(t, db, q.ID)
	mini := seedMiniQuestion(t, db, sec.ID, nil, false)

	_, err := SubmitMiniAnswer(db, u.ID, mini.ID, "https://example.com/work", "", time.Now().UTC())
	assert.Equal(t, ErrNotReleased, err)
}

func TestSubmitMiniAnswer_FirstThenBlocked(t *testing.T) {
	db := testDB(t)
	c := seedCohort(t, db)
	u := seedUser(t, db, "USER")
	q := seedQuestion(t, db, c.ID, 1, true)
	sec := seedSection(t, db, q.ID)
	mini := seedMiniQuestion(t, db, sec.ID, nil, true)

	now := time.Now().UTC()
	ma, err := SubmitMiniAnswer(db, u.ID, mini.ID, "https://example.com/v1", "first pass", now)
	require.NoError(t, err)
	assert.Equal(t, c.ID, ma.CohortID)

	_, err = SubmitMiniAnswer(db, u.ID, mini.ID, "https://example.com/v2", "", now)
	assert.Equal(t, ErrAlreadyPending, err)
}

func TestSubmitMiniAnswer_ReplaceAfterApproval(t *testing.T) {
	db := testDB(t)
	c := seedCohort(t, db)
	u := seedUser(t, db, "USER")
	admin := seedUser(t, db, "ADMIN")
	q := seedQuestion(t, db, c.ID, 1, true)
	sec := seedSection(t, db, q.ID)
	mini := seedMiniQuestion(t, db, sec.ID, nil, true)

	now := time.Now().UTC()
	first, err := SubmitMiniAnswer(db, u.ID, mini.ID, "https://example.com/v1", "", now)
	require.NoError(t, err)

	_, err = RequestMiniResubmission(db, first.ID, admin.ID, now)
	require.NoError(t, err)
	_, err = DecideMiniResubmission(db, first.ID, true, admin.ID, now)
	require.NoError(t, err)

	replaced, err := SubmitMiniAnswer(db, u.ID, mini.ID, "https://example.com/v2", "reworked", now)
	require.NoError(t, err)
	assert.Equal(t, first.ID, replaced.ID, "replacement updates the row in place")
	assert.Equal(t, "https://example.com/v2", replaced.LinkURL)
	assert.False(t, replaced.ResubmissionRequested, "approval is consumed by the replacement")
	assert.Nil(t, replaced.ResubmissionApproved)

	// The consumed approval does not allow a third submission.
	_, err = SubmitMiniAnswer(db, u.ID, mini.ID, "https://example.com/v3", "", now)
	assert.Equal(t, ErrAlreadyPending, err)
}

func TestSubmitMiniAnswer_DeniedResubmission(t *testing.T) {
	db := testDB(t)
	c := seedCohort(t, db)
	u := seedUser(t, db, "USER")
	admin := seedUser(t, db, "ADMIN")
	q := seedQuestion(t, db, c.ID, 1, true)
	sec := seedSection(t, db, q.ID)
	mini := seedMiniQuestion(t, db, sec.ID, nil, true)

	now := time.Now().UTC()
	first, err := SubmitMiniAnswer(db, u.ID, mini.ID, "https://example.com/v1", "", now)
	require.NoError(t, err)

	_, err = RequestMiniResubmission(db, first.ID, admin.ID, now)
	require.NoError(t, err)
	_, err = DecideMiniResubmission(db, first.ID, false, admin.ID, now)
	require.NoError(t, err)

	_, err = SubmitMiniAnswer(db, u.ID, mini.ID, "https://example.com/v2", "", now)
	assert.Equal(t, ErrAlreadyPending, err)
}
