package database

import (
	"errors"
	"time"

	"github.com/anviedo/examline/models"
	"github.com/anviedo/examline/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is the GORM-backed implementation of services.Store.
type Store struct {
	db   *gorm.DB
	inTx bool
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ExamByID(id uuid.UUID) (*models.Exam, error) {
	var exam models.Exam
	if err := s.db.First(&exam, "id = ?", id).Error; err != nil {
		return nil, notFound(err, services.ErrExamNotFound)
	}
	return &exam, nil
}

func (s *Store) SetExamStatus(examID uuid.UUID, status models.ExamStatus) error {
	result := s.db.Model(&models.Exam{}).Where("id = ?", examID).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return services.ErrExamNotFound
	}
	return nil
}

func (s *Store) ExamsWithWindows() ([]models.Exam, error) {
	var exams []models.Exam
	err := s.db.
		Where("status <> ? AND (opens_at IS NOT NULL OR closes_at IS NOT NULL)", models.ExamFinalizado).
		Find(&exams).Error
	if err != nil {
		return nil, err
	}
	return exams, nil
}

func (s *Store) QuestionByID(id uuid.UUID) (*models.Question, error) {
	var question models.Question
	if err := s.db.First(&question, "id = ?", id).Error; err != nil {
		return nil, notFound(err, services.ErrQuestionNotFound)
	}
	return &question, nil
}

func (s *Store) QuestionsByExam(examID uuid.UUID) ([]models.Question, error) {
	var questions []models.Question
	if err := s.db.Where("exam_id = ?", examID).Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (s *Store) AnswerByID(id uuid.UUID) (*models.Answer, error) {
	var answer models.Answer
	if err := s.db.First(&answer, "id = ?", id).Error; err != nil {
		return nil, notFound(err, services.ErrAnswerNotFound)
	}
	return &answer, nil
}

func (s *Store) AnswersByQuestion(questionID uuid.UUID) ([]models.Answer, error) {
	var answers []models.Answer
	if err := s.db.Where("question_id = ?", questionID).Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

func (s *Store) FindOrCreateExecution(learnerID, examID uuid.UUID) (*models.Execution, error) {
	var execution models.Execution
	err := s.db.
		Where(models.Execution{LearnerID: learnerID, ExamID: examID}).
		FirstOrCreate(&execution).Error
	if err != nil {
		return nil, err
	}
	return &execution, nil
}

func (s *Store) ExecutionByID(id uuid.UUID) (*models.Execution, error) {
	var execution models.Execution
	if err := s.db.First(&execution, "id = ?", id).Error; err != nil {
		return nil, notFound(err, services.ErrExecutionNotFound)
	}
	return &execution, nil
}

func (s *Store) ExecutionsByExam(examID uuid.UUID) ([]models.Execution, error) {
	var executions []models.Execution
	if err := s.db.Where("exam_id = ?", examID).Find(&executions).Error; err != nil {
		return nil, err
	}
	return executions, nil
}

func (s *Store) SetCurrentAttempt(executionID uuid.UUID, attemptID *uuid.UUID) error {
	result := s.db.Model(&models.Execution{}).Where("id = ?", executionID).Update("current_attempt_id", attemptID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return services.ErrExecutionNotFound
	}
	return nil
}

func (s *Store) FindOrCreateAttempt(executionID, questionID uuid.UUID, startedAt time.Time) (*models.Attempt, error) {
	var attempt models.Attempt
	err := s.db.
		Where(models.Attempt{ExecutionID: executionID, QuestionID: questionID}).
		Attrs(models.Attempt{StartedAt: startedAt}).
		FirstOrCreate(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (s *Store) AttemptByID(id uuid.UUID) (*models.Attempt, error) {
	var attempt models.Attempt
	if err := s.db.First(&attempt, "id = ?", id).Error; err != nil {
		return nil, notFound(err, services.ErrAttemptNotFound)
	}
	return &attempt, nil
}

func (s *Store) SaveAttempt(attempt *models.Attempt) error {
	return s.db.Save(attempt).Error
}

func (s *Store) ClosedAnsweredAttempts(executionID uuid.UUID) ([]models.Attempt, error) {
	var attempts []models.Attempt
	err := s.db.
		Preload("Answer").
		Where("execution_id = ? AND ended_at IS NOT NULL AND answer_id IS NOT NULL", executionID).
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

// InTx starts one transaction and binds fn to it. A store already inside a
// transaction runs fn directly, so nested service calls share the outer one.
func (s *Store) InTx(fn func(tx services.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, inTx: true})
	})
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
