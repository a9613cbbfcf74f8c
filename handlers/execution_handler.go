package handlers

import (
	"github.com/anviedo/examline/database"
	"github.com/anviedo/examline/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

func learnerID(c *fiber.Ctx) uuid.UUID {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	id, _ := uuid.Parse(claims["user_id"].(string))
	return id
}

// OpenExecution creates or fetches the learner's execution for an exam.
// Repeat calls return the same row.
func OpenExecution(c *fiber.Ctx) error {
	examID, err := uuid.Parse(c.Params("examId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid exam id"})
	}

	var exam models.Exam
	if err := database.DB.First(&exam, "id = ?", examID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Exam not found"})
	}
	if exam.Status != models.ExamDisponible {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Exam is not open"})
	}

	execution, err := progressSvc.OpenExecution(learnerID(c), examID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(execution)
}

// AnswerForLearner strips the correctness flag from the read path used while
// an exam is open.
type AnswerForLearner struct {
	ID   uuid.UUID `json:"id"`
	Text string    `json:"text"`
}

func GetCurrentAttempt(c *fiber.Ctx) error {
	executionID, err := uuid.Parse(c.Params("executionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid execution id"})
	}

	attempt, question, answers, err := progressSvc.CurrentAttempt(executionID)
	if err != nil {
		return serviceError(c, err)
	}
	if attempt == nil {
		return c.JSON(fiber.Map{"attempt": nil})
	}

	answersForLearner := make([]AnswerForLearner, len(answers))
	for i, a := range answers {
		answersForLearner[i] = AnswerForLearner{ID: a.ID, Text: a.Text}
	}

	return c.JSON(fiber.Map{
		"attempt":  attempt,
		"question": question,
		"answers":  answersForLearner,
	})
}

type SubmitAnswerRequest struct {
	AnswerID string `json:"answer_id" validate:"required,uuid4"`
}

// SubmitAnswer records the pending selection only; the attempt stays open
// until the learner advances or the deadline fires.
func SubmitAnswer(c *fiber.Ctx) error {
	attemptID, err := uuid.Parse(c.Params("attemptId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid attempt id"})
	}

	var req SubmitAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	answerID, _ := uuid.Parse(req.AnswerID)
	if err := progressSvc.SubmitAnswer(attemptID, answerID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Answer recorded"})
}

type AdvanceRequest struct {
	NextQuestionID *string `json:"next_question_id" validate:"omitempty,uuid4"`
}

func parseNextQuestion(req AdvanceRequest) *uuid.UUID {
	if req.NextQuestionID == nil {
		return nil
	}
	id, err := uuid.Parse(*req.NextQuestionID)
	if err != nil {
		return nil
	}
	return &id
}

func AdvanceLearner(c *fiber.Ctx) error {
	executionID, err := uuid.Parse(c.Params("executionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid execution id"})
	}

	var req AdvanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	attempt, err := progressSvc.AdvanceLearner(executionID, parseNextQuestion(req))
	if err != nil {
		return serviceError(c, err)
	}
	if attempt == nil {
		return c.JSON(fiber.Map{"attempt": nil})
	}
	return c.JSON(fiber.Map{"attempt": attempt})
}

// ForceAdvanceExam moves every learner of an exam at once: the instructor's
// "next question" action, and the same path the close deadline takes.
func ForceAdvanceExam(c *fiber.Ctx) error {
	examID, err := uuid.Parse(c.Params("examId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid exam id"})
	}

	var req AdvanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	results, err := advanceSvc.AdvanceAll(examID, parseNextQuestion(req))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"results": results})
}

func GetScore(c *fiber.Ctx) error {
	executionID, err := uuid.Parse(c.Params("executionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid execution id"})
	}

	score, err := progressSvc.Score(executionID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"score": score})
}

// GetResults reveals per-question correctness, but only once the exam is
// finalized.
func GetResults(c *fiber.Ctx) error {
	executionID := c.Params("executionId")
	var execution models.Execution
	if err := database.DB.Preload("Exam").First(&execution, "id = ?", executionID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Execution not found"})
	}
	if execution.Exam.Status != models.ExamFinalizado {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Results are available once the exam is finalized"})
	}

	var attempts []models.Attempt
	err := database.DB.
		Preload("Question").
		Preload("Answer").
		Where("execution_id = ? AND ended_at IS NOT NULL", execution.ID).
		Find(&attempts).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load results"})
	}

	type ResultItem struct {
		QuestionID uuid.UUID  `json:"question_id"`
		Prompt     string     `json:"prompt"`
		Points     float64    `json:"points"`
		AnswerID   *uuid.UUID `json:"answer_id"`
		IsCorrect  bool       `json:"is_correct"`
	}
	items := make([]ResultItem, len(attempts))
	for i, a := range attempts {
		items[i] = ResultItem{
			QuestionID: a.QuestionID,
			Prompt:     a.Question.Prompt,
			Points:     a.Question.Points,
			AnswerID:   a.AnswerID,
			IsCorrect:  a.Answer != nil && a.Answer.IsCorrect,
		}
	}
	return c.JSON(fiber.Map{"results": items})
}
