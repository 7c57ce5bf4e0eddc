package cohort

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReleaseModule_StampsOnce(t *testing.T) {
	db := testDB(t)
	c := seedCohort(t, db)

	m := CourseModule{CohortID: c.ID, Title: "Week 1", OrderIndex: 1}
	require.NoError(t, db.Create(&m).Error)

	first := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	released, err := ReleaseModule(db, m.ID, first)
	require.NoError(t, err)
	assert.True(t, released.IsReleased)
	require.NotNil(t, released.ReleasedAt)
	assert.True(t, released.ReleasedAt.Equal(first))

	// Re-releasing later keeps the original timestamp
	again, err := ReleaseModule(db, m.ID, first.Add(48*time.Hour))
	require.NoError(t, err)
	assert.True(t, again.ReleasedAt.Equal(first))
}

func TestReleaseQuestion_CatchUpSweep(t *testing.T) {
	db := testDB(t)
	c := seedCohort(t, db)
	q := seedQuestion(t, db, c.ID, 1, false)
	sec := seedSection(t, db, q.ID)

	now := time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC)
	overdue := seedMiniQuestion(t, db, sec.ID, timePtr(now.Add(-24*time.Hour)), false)
	future := seedMiniQuestion(t, db, sec.ID, timePtr(now.Add(24*time.Hour)), false)
	unscheduled := seedMiniQuestion(t, db, sec.ID, nil, false)

	released, err := ReleaseQuestion(db, q.ID, now)
	require.NoError(t, err)
	assert.True(t, released.IsReleased)

	var got MiniQuestion
	require.NoError(t, db.First(&got, overdue.ID).Error)
	assert.True(t, got.IsReleased, "overdue mini question released with the question")
	require.NotNil(t, got.ActualReleaseDate)
	assert.True(t, got.ActualReleaseDate.Equal(now))

	got = MiniQuestion{}
	require.NoError(t, db.First(&got, future.ID).Error)
	assert.False(t, got.IsReleased, "future mini question untouched")

	got = MiniQuestion{}
	require.NoError(t, db.First(&got, unscheduled.ID).Error)
	assert.False(t, got.IsReleased, "manual-only mini question untouched")
}

func TestSweepMiniQuestionReleases(t *testing.T) {
	db := testDB(t)
	c := seedCohort(t, db)
	q := seedQuestion(t, db, c.ID, 1, true)
	sec := seedSection(t, db, q.ID)

	now := time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC)
	due := seedMiniQuestion(t, db, sec.ID, timePtr(now.Add(-time.Minute)), false)
	exact := seedMiniQuestion(t, db, sec.ID, timePtr(now), false)
	early := seedMiniQuestion(t, db, sec.ID, timePtr(now.Add(time.Minute)), false)

	count, err := SweepMiniQuestionReleases(db, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	var got MiniQuestion
	require.NoError(t, db.First(&got, due.ID).Error)
	assert.True(t, got.IsReleased)

	got = MiniQuestion{}
	require.NoError(t, db.First(&got, exact.ID).Error)
	assert.True(t, got.IsReleased, "release date equal to now counts as due")

	// Never shown as released before its release date
	got = MiniQuestion{}
	require.NoError(t, db.First(&got, early.ID).Error)
	assert.False(t, got.IsReleased)
}

func TestSweep_Monotonic(t *testing.T) {
	db := testDB(t)
	c := seedCohort(t, db)
	q := seedQuestion(t, db, c.ID, 1, true)
	sec := seedSection(t, db, q.ID)

	first := time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC)
	mini := seedMiniQuestion(t, db, sec.ID, timePtr(first.Add(-time.Hour)), false)

	count, err := SweepMiniQuestionReleases(db, first)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	var afterFirst MiniQuestion
	require.NoError(t, db.First(&afterFirst, mini.ID).Error)
	require.NotNil(t, afterFirst.ActualReleaseDate)

	// A later sweep neither re-releases nor restamps
	count, err = SweepMiniQuestionReleases(db, first.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	var afterSecond MiniQuestion
	require.NoError(t, db.First(&afterSecond, mini.ID).Error)
	assert.True(t, afterSecond.ActualReleaseDate.Equal(*afterFirst.ActualReleaseDate))
}

func TestReleaseMiniQuestion_Manual(t *testing.T) {
	db := testDB(t)
	c := seedCohort(t, db)
	q := seedQuestion(t, db, c.ID, 1, true)
	sec := seedSection(t, db, q.ID)
	mini := seedMiniQuestion(t, db, sec.ID, nil, false)

	now := time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC)
	released, err := ReleaseMiniQuestion(db, mini.ID, now)
	require.NoError(t, err)
	assert.True(t, released.IsReleased)
	require.NotNil(t, released.ActualReleaseDate)
	assert.True(t, released.ActualReleaseDate.Equal(now))

	again, err := ReleaseMiniQuestion(db, mini.ID, now.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, again.ActualReleaseDate.Equal(now))
}
