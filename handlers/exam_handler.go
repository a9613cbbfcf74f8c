package handlers

import (
	"time"

	"github.com/anviedo/examline/database"
	"github.com/anviedo/examline/models"
	"github.com/anviedo/examline/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ExamRequest struct {
	Title    string     `json:"title" validate:"required"`
	Weight   float64    `json:"weight" validate:"required,gt=0"`
	CourseID string     `json:"course_id" validate:"required,uuid4"`
	OpensAt  *time.Time `json:"opens_at"`
	ClosesAt *time.Time `json:"closes_at"`
}

func CreateExam(c *fiber.Ctx) error {
	var req ExamRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	// An inverted window must never be persisted; the recovery sweep would
	// trip over it on every pass.
	if err := services.ValidateExamWindow(req.OpensAt, req.ClosesAt); err != nil {
		return serviceError(c, err)
	}

	courseID, _ := uuid.Parse(req.CourseID)
	exam := models.Exam{
		Title:    req.Title,
		Weight:   req.Weight,
		CourseID: courseID,
		Status:   models.ExamInconcluso,
		OpensAt:  req.OpensAt,
		ClosesAt: req.ClosesAt,
	}

	if err := database.DB.Create(&exam).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create exam"})
	}

	if err := lifecycleSvc.ScheduleExamWindow(exam.ID, exam.OpensAt, exam.ClosesAt); err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(exam)
}

func ListExams(c *fiber.Ctx) error {
	var exams []models.Exam
	database.DB.Find(&exams)
	return c.JSON(exams)
}

func GetExam(c *fiber.Ctx) error {
	examID := c.Params("examId")
	var exam models.Exam
	if err := database.DB.Preload("Questions.Answers").First(&exam, "id = ?", examID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Exam not found"})
	}
	return c.JSON(exam)
}

func UpdateExam(c *fiber.Ctx) error {
	examID := c.Params("examId")
	var exam models.Exam
	if err := database.DB.First(&exam, "id = ?", examID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Exam not found"})
	}

	var req ExamRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := services.ValidateExamWindow(req.OpensAt, req.ClosesAt); err != nil {
		return serviceError(c, err)
	}

	courseID, _ := uuid.Parse(req.CourseID)
	exam.Title = req.Title
	exam.Weight = req.Weight
	exam.CourseID = courseID
	exam.OpensAt = req.OpensAt
	exam.ClosesAt = req.ClosesAt
	if err := database.DB.Save(&exam).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update exam"})
	}

	// Editing the window moves the pending jobs; the registry is
	// last-write-wins per exam id.
	if err := lifecycleSvc.ScheduleExamWindow(exam.ID, exam.OpensAt, exam.ClosesAt); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(exam)
}

func DeleteExam(c *fiber.Ctx) error {
	examID := c.Params("examId")
	id, err := uuid.Parse(examID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid exam id"})
	}

	result := database.DB.Delete(&models.Exam{}, "id = ?", id)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete exam"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Exam not found"})
	}

	lifecycleSvc.CancelExamWindow(id)
	return c.SendStatus(fiber.StatusNoContent)
}

type ExamStatusRequest struct {
	Status models.ExamStatus `json:"status" validate:"required"`
}

// SetExamStatus covers the instructor-driven states. Disponible and
// Finalizado belong to the scheduler and are rejected here.
func SetExamStatus(c *fiber.Ctx) error {
	examID := c.Params("examId")
	var exam models.Exam
	if err := database.DB.First(&exam, "id = ?", examID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Exam not found"})
	}

	var req ExamStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	switch req.Status {
	case models.ExamInconcluso, models.ExamActivo, models.ExamSuspendido, models.ExamInactivo:
	case models.ExamDisponible, models.ExamFinalizado:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Status is set by the exam schedule"})
	default:
		return serviceError(c, services.ErrInvalidStatus)
	}

	exam.Status = req.Status
	if err := database.DB.Save(&exam).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update exam status"})
	}
	return c.JSON(exam)
}

type QuestionRequest struct {
	Prompt          string  `json:"prompt" validate:"required"`
	Points          float64 `json:"points" validate:"gte=0"`
	DurationSeconds *int    `json:"duration_seconds" validate:"omitempty,gt=0"`
}

func CreateQuestion(c *fiber.Ctx) error {
	examID, err := uuid.Parse(c.Params("examId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid exam id"})
	}

	var req QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var exam models.Exam
	if err := database.DB.First(&exam, "id = ?", examID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Exam not found"})
	}

	question := models.Question{
		ExamID:          exam.ID,
		Prompt:          req.Prompt,
		Points:          req.Points,
		DurationSeconds: req.DurationSeconds,
	}
	if err := database.DB.Create(&question).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create question"})
	}
	return c.Status(fiber.StatusCreated).JSON(question)
}

func UpdateQuestion(c *fiber.Ctx) error {
	questionID := c.Params("questionId")
	var question models.Question
	if err := database.DB.First(&question, "id = ?", questionID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Question not found"})
	}

	var req QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	question.Prompt = req.Prompt
	question.Points = req.Points
	question.DurationSeconds = req.DurationSeconds
	database.DB.Save(&question)

	return c.JSON(question)
}

func DeleteQuestion(c *fiber.Ctx) error {
	questionID := c.Params("questionId")
	result := database.DB.Delete(&models.Question{}, "id = ?", questionID)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete question"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Question not found"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type AnswerRequest struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"is_correct"`
}

func CreateAnswer(c *fiber.Ctx) error {
	questionID, err := uuid.Parse(c.Params("questionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid question id"})
	}

	var req AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var question models.Question
	if err := database.DB.First(&question, "id = ?", questionID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Question not found"})
	}

	answer := models.Answer{
		QuestionID: question.ID,
		Text:       req.Text,
		IsCorrect:  req.IsCorrect,
	}
	if err := database.DB.Create(&answer).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create answer"})
	}
	return c.Status(fiber.StatusCreated).JSON(answer)
}

func DeleteAnswer(c *fiber.Ctx) error {
	answerID := c.Params("answerId")
	result := database.DB.Delete(&models.Answer{}, "id = ?", answerID)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete answer"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Answer not found"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
