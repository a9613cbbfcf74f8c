package services

import (
	"time"

	"github.com/anviedo/examline/models"
	"github.com/google/uuid"
)

// Store is the persistence surface the execution engine needs. The production
// implementation wraps GORM (database.NewStore); tests use an in-memory fake.
// Missing records come back as the sentinel errors in this package; anything
// else is a store failure and is surfaced as-is.
type Store interface {
	ExamByID(id uuid.UUID) (*models.Exam, error)
	SetExamStatus(examID uuid.UUID, status models.ExamStatus) error
	// ExamsWithWindows returns non-deleted, non-Finalizado exams that have an
	// opensAt or closesAt set. Used to re-derive timers after a restart.
	ExamsWithWindows() ([]models.Exam, error)

	QuestionByID(id uuid.UUID) (*models.Question, error)
	QuestionsByExam(examID uuid.UUID) ([]models.Question, error)
	AnswerByID(id uuid.UUID) (*models.Answer, error)
	AnswersByQuestion(questionID uuid.UUID) ([]models.Answer, error)

	FindOrCreateExecution(learnerID, examID uuid.UUID) (*models.Execution, error)
	ExecutionByID(id uuid.UUID) (*models.Execution, error)
	ExecutionsByExam(examID uuid.UUID) ([]models.Execution, error)
	SetCurrentAttempt(executionID uuid.UUID, attemptID *uuid.UUID) error

	FindOrCreateAttempt(executionID, questionID uuid.UUID, startedAt time.Time) (*models.Attempt, error)
	AttemptByID(id uuid.UUID) (*models.Attempt, error)
	SaveAttempt(attempt *models.Attempt) error
	// ClosedAnsweredAttempts returns attempts with endedAt and a selected
	// answer, the answer record loaded. Only these count toward a score.
	ClosedAnsweredAttempts(executionID uuid.UUID) ([]models.Attempt, error)

	// InTx runs fn against a store bound to one transaction. Transaction
	// scope is per execution, never across learners.
	InTx(fn func(tx Store) error) error
}
