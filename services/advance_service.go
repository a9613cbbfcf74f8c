package services

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// AdvanceService closes and advances every learner's current attempt for one
// exam in a single pass. Both the instructor's "next question" action and the
// scheduler's deadline force-close go through here.
type AdvanceService struct {
	store Store
}

func NewAdvanceService(store Store) *AdvanceService {
	return &AdvanceService{store: store}
}

// AdvanceResult reports where one learner landed after the batch.
type AdvanceResult struct {
	LearnerID uuid.UUID  `json:"learner_id"`
	AttemptID *uuid.UUID `json:"attempt_id"`
}

// AdvanceAll closes each execution's current attempt (keeping whatever answer
// was pending) and opens nextQuestionID for everyone, or clears every pointer
// when it is nil. Learners are independent, so the work fans out one
// goroutine per execution, each in its own transaction; the first failure
// aborts the aggregate.
func (s *AdvanceService) AdvanceAll(examID uuid.UUID, nextQuestionID *uuid.UUID) ([]AdvanceResult, error) {
	executions, err := s.store.ExecutionsByExam(examID)
	if err != nil {
		return nil, err
	}

	results := make([]AdvanceResult, len(executions))
	var g errgroup.Group
	for i, execution := range executions {
		i, execution := i, execution
		g.Go(func() error {
			return s.store.InTx(func(tx Store) error {
				progress := NewProgressService(tx)

				// Close by the attempt id captured here, not "whatever is
				// open", so a racing open of the next question cannot be
				// closed by mistake.
				if execution.CurrentAttemptID != nil {
					if err := progress.RecordAnswerAndClose(*execution.CurrentAttemptID, nil, time.Now()); err != nil {
						return err
					}
				}

				var next *NextQuestion
				if nextQuestionID != nil {
					next = &NextQuestion{
						LearnerID:  execution.LearnerID,
						ExamID:     examID,
						QuestionID: *nextQuestionID,
					}
				}
				attempt, err := progress.AdvanceOrClear(execution.ID, next)
				if err != nil {
					return err
				}

				results[i] = AdvanceResult{LearnerID: execution.LearnerID}
				if attempt != nil {
					results[i].AttemptID = &attempt.ID
				}
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
