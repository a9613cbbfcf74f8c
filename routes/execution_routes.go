package routes

import (
	"github.com/anviedo/examline/handlers"
	"github.com/anviedo/examline/middleware"
	"github.com/gofiber/fiber/v2"
)

func ExecutionRoutes(app *fiber.App) {
	api := app.Group("/api/v1", middleware.Protected())

	api.Post("/exams/:examId/executions", handlers.OpenExecution)
	api.Get("/executions/:executionId/current", handlers.GetCurrentAttempt)
	api.Post("/executions/:executionId/advance", handlers.AdvanceLearner)
	api.Get("/executions/:executionId/score", handlers.GetScore)
	api.Get("/executions/:executionId/results", handlers.GetResults)
	api.Patch("/attempts/:attemptId/answer", handlers.SubmitAnswer)
}

func LiveRoutes(app *fiber.App) {
	app.Use("/ws", handlers.UpgradeRequired)
	app.Get("/ws/exams/:examId", handlers.ExamLive())
}
