package cohort

import (
	"testing"
	"time"

	"trainhub/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB opens a fresh in-memory database for one test.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// One connection: each sqlite :memory: connection is its own database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&Cohort{},
		&CohortMembership{},
		&CourseModule{},
		&Question{},
		&ContentSection{},
		&MiniQuestion{},
		&Answer{},
		&MiniAnswer{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()
	u := models.User{Name: "Test User", Email: "user@example.com", Role: role}
	require.NoError(t, db.Create(&u).Error)
	return &u
}

func seedCohort(t *testing.T, db *gorm.DB) *Cohort {
	t.Helper()
	c := Cohort{Name: "go-2025", Discriminator: 1, IsActive: true}
	require.NoError(t, db.Create(&c).Error)
	return &c
}

func seedMembership(t *testing.T, db *gorm.DB, userID, cohortID uint, step int) *CohortMembership {
	t.Helper()
	m := CohortMembership{UserID: userID, CohortID: cohortID, Status: MembershipEnrolled, CurrentStep: step}
	require.NoError(t, db.Create(&m).Error)
	return &m
}

func seedQuestion(t *testing.T, db *gorm.DB, cohortID uint, order int, released bool) *Question {
	t.Helper()
	deadline := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	q := Question{
		CohortID:   cohortID,
		Title:      "Assignment",
		OrderIndex: order,
		Deadline:   &deadline,
		Points:     10,
		IsReleased: released,
	}
	if released {
		now := time.Now()
		q.ReleasedAt = &now
	}
	require.NoError(t, db.Create(&q).Error)
	return &q
}

func seedSection(t *testing.T, db *gorm.DB, questionID uint) *ContentSection {
	t.Helper()
	s := ContentSection{QuestionID: questionID, Title: "Reading", OrderIndex: 1}
	require.NoError(t, db.Create(&s).Error)
	return &s
}

func seedMiniQuestion(t *testing.T, db *gorm.DB, sectionID uint, releaseDate *time.Time, released bool) *MiniQuestion {
	t.Helper()
	mq := MiniQuestion{
		ContentSectionID: sectionID,
		Prompt:           "Read and summarize",
		OrderIndex:       1,
		ReleaseDate:      releaseDate,
		IsReleased:       released,
	}
	if released {
		now := time.Now()
		mq.ActualReleaseDate = &now
	}
	require.NoError(t, db.Create(&mq).Error)
	return &mq
}

func timePtr(t time.Time) *time.Time {
	return &t
}
