package controllers

import (
	"encoding/json"
	"time"

	"trainhub/config"
	"trainhub/database"
	"trainhub/middleware"
	"trainhub/models"
	cohortModels "trainhub/models/cohort"
	"trainhub/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SubmitAnswer records the learner's answer to a question. Attachments come
// in as multipart files and are stored before the write; the engine itself
// re-checks the availability gate and the single-open-answer invariant.
func SubmitAnswer(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	questionID := c.Locals("questionID").(int)

	reqData, ok := c.Locals("validatedAnswer").(*struct {
		Text string `json:"text" form:"text"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Store attachments first; keys ride along on the answer row
	var keys []string
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, file := range form.File["attachments"] {
			key, err := utils.SaveUploadedFile(file, config.AppConfig.UploadDir)
			if err != nil {
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to store attachment!", nil)
			}
			keys = append(keys, key)
		}
	}
	var attachments datatypes.JSON
	if len(keys) > 0 {
		raw, _ := json.Marshal(keys)
		attachments = datatypes.JSON(raw)
	}

	answer, err := cohortModels.SubmitAnswer(
		database.Database.Db, userId, uint(questionID), reqData.Text, attachments, time.Now())
	switch err {
	case nil:
	case cohortModels.ErrQuestionLocked:
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Question is locked!", nil)
	case cohortModels.ErrMiniQuestionsIncomplete:
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Complete all released mini questions first!", nil)
	case cohortModels.ErrAlreadyPending:
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "An answer is already pending review!", nil)
	case cohortModels.ErrAlreadyApproved:
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Question already has an approved answer!", nil)
	case gorm.ErrRecordNotFound:
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	default:
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit answer!", nil)
	}

	go utils.NotifyWebhook("answer.submitted", map[string]interface{}{
		"answer_id":   answer.ID,
		"question_id": answer.QuestionID,
		"user_id":     answer.UserID,
	})

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Answer submitted successfully!", answer)
}

// SubmitMiniAnswer records the learner's link submission for a mini question
func SubmitMiniAnswer(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	miniQuestionID := c.Locals("miniQuestionID").(int)

	reqData, ok := c.Locals("validatedMiniAnswer").(*struct {
		LinkURL string `json:"link_url"`
		Notes   string `json:"notes"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	ma, err := cohortModels.SubmitMiniAnswer(
		database.Database.Db, userId, uint(miniQuestionID), reqData.LinkURL, reqData.Notes, time.Now())
	switch err {
	case nil:
	case cohortModels.ErrNotReleased:
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Mini question is not released yet!", nil)
	case cohortModels.ErrAlreadyPending:
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Mini answer already submitted; a resubmission must be approved first!", nil)
	case gorm.ErrRecordNotFound:
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Mini question not found!", nil)
	default:
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit mini answer!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Mini answer submitted successfully!", ma)
}
