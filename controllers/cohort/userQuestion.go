package controllers

import (
	"trainhub/database"
	"trainhub/middleware"
	"trainhub/models"
	cohortModels "trainhub/models/cohort"

	"github.com/gofiber/fiber/v2"
)

// currentMembership loads the learner's ENROLLED membership in their current
// cohort, or nil when they have none.
func currentMembership(user *models.User) (*cohortModels.CohortMembership, error) {
	if user.CurrentCohortID == nil {
		return nil, nil
	}
	var membership cohortModels.CohortMembership
	err := database.Database.Db.
		Where("user_id = ? AND cohort_id = ? AND status = ? AND is_deleted = ?",
			user.ID, *user.CurrentCohortID, cohortModels.MembershipEnrolled, false).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// GetQuestions lists the released questions of the learner's current cohort
// with a freshly resolved availability for each
func GetQuestions(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	membership, err := currentMembership(&user)
	if err != nil || membership == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No active cohort enrollment!", nil)
	}

	var questions []cohortModels.Question
	err = database.Database.Db.
		Where("cohort_id = ? AND is_released = ? AND is_deleted = ?", membership.CohortID, true, false).
		Order("order_index asc").
		Find(&questions).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch questions!", nil)
	}

	type questionView struct {
		cohortModels.Question
		Availability cohortModels.AvailabilityState `json:"availability"`
	}

	views := make([]questionView, 0, len(questions))
	for i := range questions {
		state, err := cohortModels.ResolveForLearner(database.Database.Db, membership, &questions[i], userId)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to resolve availability!", nil)
		}
		views = append(views, questionView{Question: questions[i], Availability: state})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Questions fetched successfully!", views)
}

// GetQuestionDetail returns a question with its sections, released mini
// questions and the learner's own mini answers. Unreleased mini questions are
// never exposed.
func GetQuestionDetail(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	membership, err := currentMembership(&user)
	if err != nil || membership == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No active cohort enrollment!", nil)
	}

	questionID := c.Locals("questionID").(int)

	var question cohortModels.Question
	err = database.Database.Db.
		Where("id = ? AND cohort_id = ? AND is_released = ? AND is_deleted = ?",
			questionID, membership.CohortID, true, false).
		First(&question).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}

	state, err := cohortModels.ResolveForLearner(database.Database.Db, membership, &question, userId)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to resolve availability!", nil)
	}
	if state == cohortModels.AvailabilityLocked {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Question is locked!", nil)
	}

	var sections []cohortModels.ContentSection
	err = database.Database.Db.
		Where("question_id = ? AND is_deleted = ?", question.ID, false).
		Order("order_index asc").
		Find(&sections).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch content!", nil)
	}

	type sectionView struct {
		cohortModels.ContentSection
		MiniQuestions []cohortModels.MiniQuestion `json:"mini_questions"`
	}

	sectionViews := make([]sectionView, 0, len(sections))
	for _, sec := range sections {
		var minis []cohortModels.MiniQuestion
		err := database.Database.Db.
			Where("content_section_id = ? AND is_released = ? AND is_deleted = ?", sec.ID, true, false).
			Order("order_index asc").
			Find(&minis).Error
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch content!", nil)
		}
		sectionViews = append(sectionViews, sectionView{ContentSection: sec, MiniQuestions: minis})
	}

	var miniAnswers []cohortModels.MiniAnswer
	err = database.Database.Db.
		Where("user_id = ? AND cohort_id = ? AND is_deleted = ?", userId, membership.CohortID, false).
		Find(&miniAnswers).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch mini answers!", nil)
	}

	response := map[string]interface{}{
		"question":     question,
		"availability": state,
		"sections":     sectionViews,
		"mini_answers": miniAnswers,
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question fetched successfully!", response)
}
