package cohort

import (
	"gorm.io/gorm"
)

// AvailabilityState is the derived, never-stored status of one question for
// one learner. It is recomputed from release/answer facts on every read so it
// can never drift from them.
type AvailabilityState string

const (
	AvailabilityLocked        AvailabilityState = "LOCKED"
	AvailabilityMinisRequired AvailabilityState = "MINI_QUESTIONS_REQUIRED"
	AvailabilityAvailable     AvailabilityState = "AVAILABLE"
	AvailabilitySubmitted     AvailabilityState = "SUBMITTED"
	AvailabilityCompleted     AvailabilityState = "COMPLETED"
)

// ResolveInput carries the facts ResolveAvailability derives from.
type ResolveInput struct {
	CurrentStep       int
	QuestionOrder     int
	ReleasedMiniCount int
	AnsweredMiniCount int
	LatestAnswer      *Answer
}

// ResolveAvailability computes a learner's availability for one question.
// Sequential unlock: a learner sees at most one question past their confirmed
// progress, so anything beyond CurrentStep+1 is locked. Released mini
// questions must all be answered before the question opens up.
func ResolveAvailability(in ResolveInput) AvailabilityState {
	if in.QuestionOrder > in.CurrentStep+1 {
		return AvailabilityLocked
	}
	if in.ReleasedMiniCount > 0 && in.AnsweredMiniCount < in.ReleasedMiniCount {
		return AvailabilityMinisRequired
	}
	if in.LatestAnswer != nil {
		if in.LatestAnswer.Status == AnswerApproved {
			return AvailabilityCompleted
		}
		return AvailabilitySubmitted
	}
	return AvailabilityAvailable
}

// ResolveForLearner loads the facts for (learner, question) and resolves them.
// Every availability read in the system goes through here.
func ResolveForLearner(db *gorm.DB, membership *CohortMembership, q *Question, userID uint) (AvailabilityState, error) {
	sectionIDs := db.Model(&ContentSection{}).Select("id").
		Where("question_id = ? AND is_deleted = ?", q.ID, false)

	var released int64
	if err := db.Model(&MiniQuestion{}).
		Where("content_section_id IN (?) AND is_released = ? AND is_deleted = ?", sectionIDs, true, false).
		Count(&released).Error; err != nil {
		return "", err
	}

	var answered int64
	if released > 0 {
		releasedIDs := db.Model(&MiniQuestion{}).Select("id").
			Where("content_section_id IN (?) AND is_released = ? AND is_deleted = ?", sectionIDs, true, false)
		if err := db.Model(&MiniAnswer{}).
			Where("user_id = ? AND mini_question_id IN (?) AND is_deleted = ?", userID, releasedIDs, false).
			Count(&answered).Error; err != nil {
			return "", err
		}
	}

	latest, err := latestAnswer(db, userID, q.ID)
	if err != nil {
		return "", err
	}

	return ResolveAvailability(ResolveInput{
		CurrentStep:       membership.CurrentStep,
		QuestionOrder:     q.OrderIndex,
		ReleasedMiniCount: int(released),
		AnsweredMiniCount: int(answered),
		LatestAnswer:      latest,
	}), nil
}

// latestAnswer returns the learner's most recent answer for the question,
// or nil when none exists.
func latestAnswer(db *gorm.DB, userID, questionID uint) (*Answer, error) {
	var a Answer
	err := db.Where("user_id = ? AND question_id = ? AND is_deleted = ?", userID, questionID, false).
		Order("id DESC").First(&a).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
