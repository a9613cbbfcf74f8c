package services

import (
	"time"

	"github.com/anviedo/examline/models"
	"github.com/google/uuid"
)

// ProgressService tracks one learner's walk through an exam: which question
// is live, what was answered, and the final grade.
type ProgressService struct {
	store Store
}

func NewProgressService(store Store) *ProgressService {
	return &ProgressService{store: store}
}

// NextQuestion names the attempt to open when advancing an execution.
type NextQuestion struct {
	LearnerID  uuid.UUID
	ExamID     uuid.UUID
	QuestionID uuid.UUID
}

// OpenExecution creates or fetches the execution row for (learner, exam).
// Calling it again for the same pair has no side effects.
func (s *ProgressService) OpenExecution(learnerID, examID uuid.UUID) (*models.Execution, error) {
	return s.store.FindOrCreateExecution(learnerID, examID)
}

// OpenAttempt creates or fetches the attempt for (execution, question) and
// points the execution at it. StartedAt is set once, on creation; a repeat
// call is a no-op beyond the pointer update. A closed attempt never becomes
// live again: advancing onto a question the learner already finished clears
// the pointer instead, keeping it null-or-open.
func (s *ProgressService) OpenAttempt(executionID, questionID uuid.UUID) (*models.Attempt, error) {
	var attempt *models.Attempt
	err := s.store.InTx(func(tx Store) error {
		var err error
		attempt, err = tx.FindOrCreateAttempt(executionID, questionID, time.Now())
		if err != nil {
			return err
		}
		if attempt.EndedAt != nil {
			attempt = nil
			return tx.SetCurrentAttempt(executionID, nil)
		}
		return tx.SetCurrentAttempt(executionID, &attempt.ID)
	})
	if err != nil {
		return nil, err
	}
	return attempt, nil
}

// RecordAnswerAndClose stamps endedAt on the attempt, recording answerID if
// given (nil keeps whatever the learner had already selected). Closing an
// already-closed attempt is a no-op so the close path can be retried. It does
// not open the next attempt.
func (s *ProgressService) RecordAnswerAndClose(attemptID uuid.UUID, answerID *uuid.UUID, endedAt time.Time) error {
	return s.store.InTx(func(tx Store) error {
		attempt, err := tx.AttemptByID(attemptID)
		if err != nil {
			return err
		}
		if attempt.EndedAt != nil {
			return nil
		}
		if answerID != nil {
			answer, err := tx.AnswerByID(*answerID)
			if err != nil {
				return err
			}
			if answer.QuestionID != attempt.QuestionID {
				return ErrAnswerMismatch
			}
			attempt.AnswerID = answerID
		}
		attempt.EndedAt = &endedAt
		return tx.SaveAttempt(attempt)
	})
}

// SubmitAnswer records the learner's pending selection without closing the
// attempt.
func (s *ProgressService) SubmitAnswer(attemptID, answerID uuid.UUID) error {
	return s.store.InTx(func(tx Store) error {
		attempt, err := tx.AttemptByID(attemptID)
		if err != nil {
			return err
		}
		if attempt.EndedAt != nil {
			return ErrAttemptClosed
		}
		answer, err := tx.AnswerByID(answerID)
		if err != nil {
			return err
		}
		if answer.QuestionID != attempt.QuestionID {
			return ErrAnswerMismatch
		}
		attempt.AnswerID = &answerID
		return tx.SaveAttempt(attempt)
	})
}

// AdvanceOrClear moves an execution to the next question, or clears its
// pointer when next is nil, leaving the learner between questions or done.
func (s *ProgressService) AdvanceOrClear(executionID uuid.UUID, next *NextQuestion) (*models.Attempt, error) {
	if next == nil {
		if err := s.store.SetCurrentAttempt(executionID, nil); err != nil {
			return nil, err
		}
		return nil, nil
	}
	execution, err := s.OpenExecution(next.LearnerID, next.ExamID)
	if err != nil {
		return nil, err
	}
	return s.OpenAttempt(execution.ID, next.QuestionID)
}

// AdvanceLearner is the single-learner entry point: it closes the current
// attempt with whatever answer was pending and opens nextQuestionID, or
// clears the pointer when it is nil. Both halves share one transaction.
func (s *ProgressService) AdvanceLearner(executionID uuid.UUID, nextQuestionID *uuid.UUID) (*models.Attempt, error) {
	var attempt *models.Attempt
	err := s.store.InTx(func(tx Store) error {
		progress := NewProgressService(tx)
		execution, err := tx.ExecutionByID(executionID)
		if err != nil {
			return err
		}
		if execution.CurrentAttemptID != nil {
			if err := progress.RecordAnswerAndClose(*execution.CurrentAttemptID, nil, time.Now()); err != nil {
				return err
			}
		}
		var next *NextQuestion
		if nextQuestionID != nil {
			next = &NextQuestion{
				LearnerID:  execution.LearnerID,
				ExamID:     execution.ExamID,
				QuestionID: *nextQuestionID,
			}
		}
		attempt, err = progress.AdvanceOrClear(execution.ID, next)
		return err
	})
	if err != nil {
		return nil, err
	}
	return attempt, nil
}

// CurrentAttempt returns the live attempt plus its question and candidate
// answers. All three are nil when the learner is between questions.
func (s *ProgressService) CurrentAttempt(executionID uuid.UUID) (*models.Attempt, *models.Question, []models.Answer, error) {
	execution, err := s.store.ExecutionByID(executionID)
	if err != nil {
		return nil, nil, nil, err
	}
	if execution.CurrentAttemptID == nil {
		return nil, nil, nil, nil
	}
	attempt, err := s.store.AttemptByID(*execution.CurrentAttemptID)
	if err != nil {
		return nil, nil, nil, err
	}
	question, err := s.store.QuestionByID(attempt.QuestionID)
	if err != nil {
		return nil, nil, nil, err
	}
	answers, err := s.store.AnswersByQuestion(question.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	return attempt, question, answers, nil
}

// Score grades an execution on the 0-20 scale: points of correctly answered
// closed attempts × 20 over the exam's total points. An exam whose questions
// sum to zero points has no defined score.
func (s *ProgressService) Score(executionID uuid.UUID) (float64, error) {
	execution, err := s.store.ExecutionByID(executionID)
	if err != nil {
		return 0, err
	}
	questions, err := s.store.QuestionsByExam(execution.ExamID)
	if err != nil {
		return 0, err
	}

	total := 0.0
	points := make(map[uuid.UUID]float64, len(questions))
	for _, q := range questions {
		total += q.Points
		points[q.ID] = q.Points
	}
	if total == 0 {
		return 0, ErrNoPoints
	}

	attempts, err := s.store.ClosedAnsweredAttempts(executionID)
	if err != nil {
		return 0, err
	}
	correct := 0.0
	for _, a := range attempts {
		if a.Answer != nil && a.Answer.IsCorrect {
			correct += points[a.QuestionID]
		}
	}
	return correct * 20 / total, nil
}
