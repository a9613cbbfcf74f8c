package routes

import (
	"github.com/anviedo/examline/handlers"
	"github.com/anviedo/examline/middleware"
	"github.com/gofiber/fiber/v2"
)

func ExamRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	exams := api.Group("/exams", middleware.Protected(), middleware.InstructorRequired())
	exams.Post("", handlers.CreateExam)
	exams.Get("", handlers.ListExams)
	exams.Get("/:examId", handlers.GetExam)
	exams.Put("/:examId", handlers.UpdateExam)
	exams.Delete("/:examId", handlers.DeleteExam)
	exams.Patch("/:examId/status", handlers.SetExamStatus)
	exams.Post("/:examId/advance", handlers.ForceAdvanceExam)

	exams.Post("/:examId/questions", handlers.CreateQuestion)
	exams.Put("/questions/:questionId", handlers.UpdateQuestion)
	exams.Delete("/questions/:questionId", handlers.DeleteQuestion)
	exams.Post("/questions/:questionId/answers", handlers.CreateAnswer)
	exams.Delete("/answers/:answerId", handlers.DeleteAnswer)
}
