package services

import (
	"errors"
	"testing"
	"time"

	"github.com/anviedo/examline/models"
	"github.com/google/uuid"
)

func TestOpenExecutionIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := NewProgressService(store)
	exam := store.addExam(models.ExamDisponible, nil, nil)
	learner := uuid.New()

	first, err := svc.OpenExecution(learner, exam.ID)
	if err != nil {
		t.Fatalf("open execution: %v", err)
	}
	second, err := svc.OpenExecution(learner, exam.ID)
	if err != nil {
		t.Fatalf("reopen execution: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected one execution per (learner, exam), got %s and %s", first.ID, second.ID)
	}
}

func TestOpenAttemptIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := NewProgressService(store)
	exam := store.addExam(models.ExamDisponible, nil, nil)
	question := store.addQuestion(exam.ID, 1)
	execution := store.addExecution(exam.ID)

	first, err := svc.OpenAttempt(execution.ID, question.ID)
	if err != nil {
		t.Fatalf("open attempt: %v", err)
	}
	second, err := svc.OpenAttempt(execution.ID, question.ID)
	if err != nil {
		t.Fatalf("reopen attempt: %v", err)
	}

	if first.ID != second.ID {
		t.Fatal("second open created a new attempt row")
	}
	if !first.StartedAt.Equal(second.StartedAt) {
		t.Fatal("reopen reset startedAt")
	}
	got := store.execution(execution.ID)
	if got.CurrentAttemptID == nil || *got.CurrentAttemptID != first.ID {
		t.Fatal("execution pointer not set to the open attempt")
	}
}

func TestOpenAttemptDoesNotReviveClosedAttempt(t *testing.T) {
	store := newFakeStore()
	svc := NewProgressService(store)
	exam := store.addExam(models.ExamDisponible, nil, nil)
	question := store.addQuestion(exam.ID, 1)
	execution := store.addExecution(exam.ID)
	attempt := store.addOpenAttempt(execution.ID, question.ID)

	endedAt := time.Now()
	if err := svc.RecordAnswerAndClose(attempt.ID, nil, endedAt); err != nil {
		t.Fatalf("close: %v", err)
	}

	got, err := svc.OpenAttempt(execution.ID, question.ID)
	if err != nil {
		t.Fatalf("reopen finished question: %v", err)
	}
	if got != nil {
		t.Fatalf("closed attempt handed back as live: %+v", got)
	}
	if e := store.execution(execution.ID); e.CurrentAttemptID != nil {
		t.Fatal("pointer references a closed attempt")
	}
	if stored := store.attempt(attempt.ID); stored.EndedAt == nil || !stored.EndedAt.Equal(endedAt) {
		t.Fatal("closed attempt was mutated")
	}
}

func TestRecordAnswerAndCloseMissingAttempt(t *testing.T) {
	svc := NewProgressService(newFakeStore())

	err := svc.RecordAnswerAndClose(uuid.New(), nil, time.Now())
	if !errors.Is(err, ErrAttemptNotFound) {
		t.Fatalf("expected ErrAttemptNotFound, got %v", err)
	}
}

func TestRecordAnswerAndCloseIsRetrySafe(t *testing.T) {
	store := newFakeStore()
	svc := NewProgressService(store)
	exam := store.addExam(models.ExamDisponible, nil, nil)
	question := store.addQuestion(exam.ID, 1)
	answer := store.addAnswer(question.ID, true)
	execution := store.addExecution(exam.ID)
	attempt := store.addOpenAttempt(execution.ID, question.ID)

	endedAt := time.Now()
	if err := svc.RecordAnswerAndClose(attempt.ID, &answer.ID, endedAt); err != nil {
		t.Fatalf("close: %v", err)
	}
	// Retrying with a different instant must not disturb the closed attempt.
	if err := svc.RecordAnswerAndClose(attempt.ID, nil, endedAt.Add(time.Hour)); err != nil {
		t.Fatalf("retried close: %v", err)
	}

	got := store.attempt(attempt.ID)
	if got.EndedAt == nil || !got.EndedAt.Equal(endedAt) {
		t.Fatal("retry overwrote endedAt")
	}
	if got.AnswerID == nil || *got.AnswerID != answer.ID {
		t.Fatal("retry lost the recorded answer")
	}
}

func TestRecordAnswerAndCloseRejectsForeignAnswer(t *testing.T) {
	store := newFakeStore()
	svc := NewProgressService(store)
	exam := store.addExam(models.ExamDisponible, nil, nil)
	q1 := store.addQuestion(exam.ID, 1)
	q2 := store.addQuestion(exam.ID, 1)
	foreign := store.addAnswer(q2.ID, true)
	execution := store.addExecution(exam.ID)
	attempt := store.addOpenAttempt(execution.ID, q1.ID)

	err := svc.RecordAnswerAndClose(attempt.ID, &foreign.ID, time.Now())
	if !errors.Is(err, ErrAnswerMismatch) {
		t.Fatalf("expected ErrAnswerMismatch, got %v", err)
	}
	if got := store.attempt(attempt.ID); got.EndedAt != nil {
		t.Fatal("attempt closed despite the mismatch")
	}
}

func TestSubmitAnswer(t *testing.T) {
	store := newFakeStore()
	svc := NewProgressService(store)
	exam := store.addExam(models.ExamDisponible, nil, nil)
	question := store.addQuestion(exam.ID, 1)
	answer := store.addAnswer(question.ID, false)
	execution := store.addExecution(exam.ID)
	attempt := store.addOpenAttempt(execution.ID, question.ID)

	if err := svc.SubmitAnswer(attempt.ID, answer.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	got := store.attempt(attempt.ID)
	if got.AnswerID == nil || *got.AnswerID != answer.ID {
		t.Fatal("pending answer not recorded")
	}
	if got.EndedAt != nil {
		t.Fatal("submit must not close the attempt")
	}
}

func TestSubmitAnswerOnClosedAttempt(t *testing.T) {
	store := newFakeStore()
	svc := NewProgressService(store)
	exam := store.addExam(models.ExamDisponible, nil, nil)
	question := store.addQuestion(exam.ID, 1)
	answer := store.addAnswer(question.ID, true)
	execution := store.addExecution(exam.ID)
	attempt := store.addOpenAttempt(execution.ID, question.ID)

	if err := svc.RecordAnswerAndClose(attempt.ID, nil, time.Now()); err != nil {
		t.Fatalf("close: %v", err)
	}
	err := svc.SubmitAnswer(attempt.ID, answer.ID)
	if !errors.Is(err, ErrAttemptClosed) {
		t.Fatalf("expected ErrAttemptClosed, got %v", err)
	}
}

func TestAdvanceOrClearClearsPointer(t *testing.T) {
	store := newFakeStore()
	svc := NewProgressService(store)
	exam := store.addExam(models.ExamDisponible, nil, nil)
	question := store.addQuestion(exam.ID, 1)
	execution := store.addExecution(exam.ID)
	store.addOpenAttempt(execution.ID, question.ID)

	attempt, err := svc.AdvanceOrClear(execution.ID, nil)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if attempt != nil {
		t.Fatal("clearing must not open an attempt")
	}
	if got := store.execution(execution.ID); got.CurrentAttemptID != nil {
		t.Fatal("pointer not cleared")
	}
}

func TestAdvanceLearnerClosesCurrentAndOpensNext(t *testing.T) {
	store := newFakeStore()
	svc := NewProgressService(store)
	exam := store.addExam(models.ExamDisponible, nil, nil)
	q1 := store.addQuestion(exam.ID, 1)
	q2 := store.addQuestion(exam.ID, 3)
	answer := store.addAnswer(q1.ID, true)
	execution := store.addExecution(exam.ID)
	first := store.addOpenAttempt(execution.ID, q1.ID)

	if err := svc.SubmitAnswer(first.ID, answer.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	next, err := svc.AdvanceLearner(execution.ID, &q2.ID)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if next == nil || next.QuestionID != q2.ID {
		t.Fatalf("expected a new attempt on the next question, got %+v", next)
	}

	closed := store.attempt(first.ID)
	if closed.EndedAt == nil {
		t.Fatal("previous attempt left open")
	}
	if closed.AnswerID == nil || *closed.AnswerID != answer.ID {
		t.Fatal("pending answer lost on close")
	}
	got := store.execution(execution.ID)
	if got.CurrentAttemptID == nil || *got.CurrentAttemptID != next.ID {
		t.Fatal("pointer not moved to the new attempt")
	}
}

func TestScoreWeightsCorrectAnswers(t *testing.T) {
	store := newFakeStore()
	svc := NewProgressService(store)
	exam := store.addExam(models.ExamFinalizado, nil, nil)
	q1 := store.addQuestion(exam.ID, 1)
	q2 := store.addQuestion(exam.ID, 3)
	right := store.addAnswer(q1.ID, true)
	wrong := store.addAnswer(q2.ID, false)
	execution := store.addExecution(exam.ID)

	a1 := store.addOpenAttempt(execution.ID, q1.ID)
	if err := svc.RecordAnswerAndClose(a1.ID, &right.ID, time.Now()); err != nil {
		t.Fatalf("close q1: %v", err)
	}
	a2 := store.addOpenAttempt(execution.ID, q2.ID)
	if err := svc.RecordAnswerAndClose(a2.ID, &wrong.ID, time.Now()); err != nil {
		t.Fatalf("close q2: %v", err)
	}

	score, err := svc.Score(execution.ID)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	// 1 correct point out of 4 on the 0-20 scale.
	if score != 5 {
		t.Fatalf("expected score 5, got %v", score)
	}
}

func TestScoreIgnoresOpenAndUnansweredAttempts(t *testing.T) {
	store := newFakeStore()
	svc := NewProgressService(store)
	exam := store.addExam(models.ExamDisponible, nil, nil)
	q1 := store.addQuestion(exam.ID, 2)
	q2 := store.addQuestion(exam.ID, 2)
	right := store.addAnswer(q1.ID, true)
	execution := store.addExecution(exam.ID)

	// Open attempt with a pending correct answer: not counted.
	open := store.addOpenAttempt(execution.ID, q1.ID)
	if err := svc.SubmitAnswer(open.ID, right.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	// Closed but unanswered: not counted either.
	blank := store.addOpenAttempt(execution.ID, q2.ID)
	if err := svc.RecordAnswerAndClose(blank.ID, nil, time.Now()); err != nil {
		t.Fatalf("close: %v", err)
	}

	score, err := svc.Score(execution.ID)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if score != 0 {
		t.Fatalf("expected score 0, got %v", score)
	}
}

func TestScoreWithZeroTotalPoints(t *testing.T) {
	store := newFakeStore()
	svc := NewProgressService(store)
	exam := store.addExam(models.ExamFinalizado, nil, nil)
	store.addQuestion(exam.ID, 0)
	execution := store.addExecution(exam.ID)

	_, err := svc.Score(execution.ID)
	if !errors.Is(err, ErrNoPoints) {
		t.Fatalf("expected ErrNoPoints, got %v", err)
	}
}

func TestCurrentAttemptBetweenQuestions(t *testing.T) {
	store := newFakeStore()
	svc := NewProgressService(store)
	exam := store.addExam(models.ExamDisponible, nil, nil)
	execution := store.addExecution(exam.ID)

	attempt, question, answers, err := svc.CurrentAttempt(execution.ID)
	if err != nil {
		t.Fatalf("current attempt: %v", err)
	}
	if attempt != nil || question != nil || answers != nil {
		t.Fatal("expected nothing live for an execution with a cleared pointer")
	}
}
