package cohort

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sectionsWithRelease(dates ...time.Time) []SectionInput {
	sec := SectionInput{Title: "Reading", OrderIndex: 1}
	for i, d := range dates {
		sec.MiniQuestions = append(sec.MiniQuestions, MiniQuestionInput{
			Prompt:      "Task",
			OrderIndex:  i + 1,
			ReleaseDate: timePtr(d),
		})
	}
	return []SectionInput{sec}
}

func TestValidateDeadline(t *testing.T) {
	deadline := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	t.Run("release date after deadline fails", func(t *testing.T) {
		err := ValidateDeadline(&deadline, sectionsWithRelease(deadline.Add(24*time.Hour)))
		require.Error(t, err)
		conflict, ok := err.(*DeadlineConflictError)
		require.True(t, ok)
		assert.True(t, conflict.Deadline.Equal(deadline))
		assert.True(t, conflict.ReleaseDate.Equal(deadline.Add(24*time.Hour)))
	})

	t.Run("one bad date rejects the whole set", func(t *testing.T) {
		err := ValidateDeadline(&deadline, sectionsWithRelease(
			deadline.Add(-48*time.Hour),
			deadline.Add(time.Hour),
		))
		assert.Error(t, err)
	})

	t.Run("release date on the deadline passes", func(t *testing.T) {
		assert.NoError(t, ValidateDeadline(&deadline, sectionsWithRelease(deadline)))
	})

	t.Run("earlier release dates pass", func(t *testing.T) {
		assert.NoError(t, ValidateDeadline(&deadline, sectionsWithRelease(deadline.Add(-24*time.Hour))))
	})

	t.Run("no deadline never conflicts", func(t *testing.T) {
		assert.NoError(t, ValidateDeadline(nil, sectionsWithRelease(deadline.Add(time.Hour))))
	})
}

func TestCreateQuestion_DeadlineConflictWritesNothing(t *testing.T) {
	db := testDB(t)
	c := seedCohort(t, db)

	deadline := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	_, err := CreateQuestion(db, c.ID, QuestionInput{
		Title:      "Assignment",
		OrderIndex: 1,
		Deadline:   &deadline,
		Sections:   sectionsWithRelease(deadline.Add(time.Hour)),
	})
	require.Error(t, err)
	_, ok := err.(*DeadlineConflictError)
	assert.True(t, ok)

	var questions, sections, minis int64
	db.Model(&Question{}).Count(&questions)
	db.Model(&ContentSection{}).Count(&sections)
	db.Model(&MiniQuestion{}).Count(&minis)
	assert.Zero(t, questions)
	assert.Zero(t, sections)
	assert.Zero(t, minis)
}

func TestCreateQuestion_PersistsNestedContent(t *testing.T) {
	db := testDB(t)
	c := seedCohort(t, db)

	deadline := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	q, err := CreateQuestion(db, c.ID, QuestionInput{
		Title:      "Assignment",
		OrderIndex: 1,
		Deadline:   &deadline,
		Points:     10,
		Sections:   sectionsWithRelease(deadline.Add(-72*time.Hour), deadline.Add(-48*time.Hour)),
	})
	require.NoError(t, err)
	assert.False(t, q.IsReleased, "new questions start unreleased")

	var sections []ContentSection
	require.NoError(t, db.Where("question_id = ?", q.ID).Find(&sections).Error)
	require.Len(t, sections, 1)

	var minis []MiniQuestion
	require.NoError(t, db.Where("content_section_id = ?", sections[0].ID).Find(&minis).Error)
	assert.Len(t, minis, 2)
	for _, mq := range minis {
		assert.False(t, mq.IsReleased)
		assert.Nil(t, mq.ActualReleaseDate)
	}
}

func TestUpdateQuestion_SectionsReplaced(t *testing.T) {
	db := testDB(t)
	c := seedCohort(t, db)

	deadline := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	q, err := CreateQuestion(db, c.ID, QuestionInput{
		Title:      "Assignment",
		OrderIndex: 1,
		Deadline:   &deadline,
		Sections:   sectionsWithRelease(deadline.Add(-72 * time.Hour)),
	})
	require.NoError(t, err)

	_, err = UpdateQuestion(db, q.ID, QuestionInput{
		Sections: sectionsWithRelease(deadline.Add(-24*time.Hour), deadline.Add(-12*time.Hour)),
	})
	require.NoError(t, err)

	var live []ContentSection
	require.NoError(t, db.Where("question_id = ? AND is_deleted = ?", q.ID, false).Find(&live).Error)
	require.Len(t, live, 1)

	var minis []MiniQuestion
	require.NoError(t, db.Where("content_section_id = ? AND is_deleted = ?", live[0].ID, false).Find(&minis).Error)
	assert.Len(t, minis, 2)
}

func TestUpdateQuestion_DeadlineConflictAgainstStoredDeadline(t *testing.T) {
	db := testDB(t)
	c := seedCohort(t, db)

	deadline := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	q, err := CreateQuestion(db, c.ID, QuestionInput{
		Title:      "Assignment",
		OrderIndex: 1,
		Deadline:   &deadline,
	})
	require.NoError(t, err)

	// New sections checked against the stored deadline when none is supplied
	_, err = UpdateQuestion(db, q.ID, QuestionInput{
		Sections: sectionsWithRelease(deadline.Add(time.Hour)),
	})
	require.Error(t, err)
	_, ok := err.(*DeadlineConflictError)
	assert.True(t, ok)
}

func TestUpdateQuestion_DeadlineTightenedPastStoredMinis(t *testing.T) {
	db := testDB(t)
	c := seedCohort(t, db)

	deadline := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	miniRelease := deadline.Add(-15 * 24 * time.Hour) // Aug 17
	q, err := CreateQuestion(db, c.ID, QuestionInput{
		Title:      "Assignment",
		OrderIndex: 1,
		Deadline:   &deadline,
		Sections:   sectionsWithRelease(miniRelease),
	})
	require.NoError(t, err)

	// Moving the deadline below the stored mini release date fails even
	// though the update carries no sections.
	tightened := miniRelease.Add(-24 * time.Hour)
	_, err = UpdateQuestion(db, q.ID, QuestionInput{Deadline: &tightened})
	require.Error(t, err)
	conflict, ok := err.(*DeadlineConflictError)
	require.True(t, ok)
	assert.True(t, conflict.ReleaseDate.Equal(miniRelease))

	var got Question
	require.NoError(t, db.First(&got, q.ID).Error)
	assert.True(t, got.Deadline.Equal(deadline), "rejected update leaves the deadline unchanged")

	// A deadline at or after the stored release date still goes through.
	relaxed := miniRelease
	updated, err := UpdateQuestion(db, q.ID, QuestionInput{Deadline: &relaxed})
	require.NoError(t, err)
	assert.True(t, updated.Deadline.Equal(miniRelease))
}

func TestDeleteQuestion_BlockedByDependents(t *testing.T) {
	db := testDB(t)
	c := seedCohort(t, db)
	u := seedUser(t, db, "USER")
	q := seedQuestion(t, db, c.ID, 1, true)

	answer := Answer{UserID: u.ID, QuestionID: q.ID, CohortID: c.ID, Text: "my answer", Status: AnswerPending}
	require.NoError(t, db.Create(&answer).Error)

	err := DeleteQuestion(db, q.ID)
	assert.Equal(t, ErrHasDependents, err)

	var got Question
	require.NoError(t, db.First(&got, q.ID).Error)
	assert.False(t, got.IsDeleted)
}

func TestDeleteQuestion_CascadesSoftDelete(t *testing.T) {
	db := testDB(t)
	c := seedCohort(t, db)
	q := seedQuestion(t, db, c.ID, 1, false)
	sec := seedSection(t, db, q.ID)
	mini := seedMiniQuestion(t, db, sec.ID, nil, false)

	require.NoError(t, DeleteQuestion(db, q.ID))

	var gotQ Question
	require.NoError(t, db.First(&gotQ, q.ID).Error)
	assert.True(t, gotQ.IsDeleted)

	var gotSec ContentSection
	require.NoError(t, db.First(&gotSec, sec.ID).Error)
	assert.True(t, gotSec.IsDeleted)

	var gotMini MiniQuestion
	require.NoError(t, db.First(&gotMini, mini.ID).Error)
	assert.True(t, gotMini.IsDeleted)
}
