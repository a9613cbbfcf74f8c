package services

import (
	"errors"
	"sync"
	"time"

	"github.com/anviedo/examline/models"
	"github.com/google/uuid"
)

// fakeStore is an in-memory Store for the engine tests. It hands out copies
// the way a database read would, so mutations only land via the save calls.
type fakeStore struct {
	mu         sync.Mutex
	exams      map[uuid.UUID]models.Exam
	questions  map[uuid.UUID]models.Question
	answers    map[uuid.UUID]models.Answer
	executions map[uuid.UUID]models.Execution
	attempts   map[uuid.UUID]models.Attempt

	failSaveAttempt bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		exams:      map[uuid.UUID]models.Exam{},
		questions:  map[uuid.UUID]models.Question{},
		answers:    map[uuid.UUID]models.Answer{},
		executions: map[uuid.UUID]models.Execution{},
		attempts:   map[uuid.UUID]models.Attempt{},
	}
}

func (s *fakeStore) addExam(status models.ExamStatus, opensAt, closesAt *time.Time) *models.Exam {
	s.mu.Lock()
	defer s.mu.Unlock()
	exam := models.Exam{ID: uuid.New(), Title: "exam", Weight: 1, CourseID: uuid.New(), Status: status, OpensAt: opensAt, ClosesAt: closesAt}
	s.exams[exam.ID] = exam
	return &exam
}

func (s *fakeStore) addQuestion(examID uuid.UUID, points float64) *models.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := models.Question{ID: uuid.New(), ExamID: examID, Prompt: "q", Points: points}
	s.questions[q.ID] = q
	return &q
}

func (s *fakeStore) addAnswer(questionID uuid.UUID, correct bool) *models.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := models.Answer{ID: uuid.New(), QuestionID: questionID, Text: "a", IsCorrect: correct}
	s.answers[a.ID] = a
	return &a
}

func (s *fakeStore) addExecution(examID uuid.UUID) *models.Execution {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := models.Execution{ID: uuid.New(), LearnerID: uuid.New(), ExamID: examID}
	s.executions[e.ID] = e
	return &e
}

func (s *fakeStore) addOpenAttempt(executionID, questionID uuid.UUID) *models.Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := models.Attempt{ID: uuid.New(), ExecutionID: executionID, QuestionID: questionID, StartedAt: time.Now()}
	s.attempts[a.ID] = a
	e := s.executions[executionID]
	e.CurrentAttemptID = &a.ID
	s.executions[executionID] = e
	return &a
}

func (s *fakeStore) execution(id uuid.UUID) models.Execution {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.executions[id]
}

func (s *fakeStore) attempt(id uuid.UUID) models.Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts[id]
}

func (s *fakeStore) ExamByID(id uuid.UUID) (*models.Exam, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exam, ok := s.exams[id]
	if !ok {
		return nil, ErrExamNotFound
	}
	return &exam, nil
}

func (s *fakeStore) SetExamStatus(examID uuid.UUID, status models.ExamStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exam, ok := s.exams[examID]
	if !ok {
		return ErrExamNotFound
	}
	exam.Status = status
	s.exams[examID] = exam
	return nil
}

func (s *fakeStore) ExamsWithWindows() ([]models.Exam, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Exam
	for _, exam := range s.exams {
		if exam.Status == models.ExamFinalizado {
			continue
		}
		if exam.OpensAt == nil && exam.ClosesAt == nil {
			continue
		}
		out = append(out, exam)
	}
	return out, nil
}

func (s *fakeStore) QuestionByID(id uuid.UUID) (*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[id]
	if !ok {
		return nil, ErrQuestionNotFound
	}
	return &q, nil
}

func (s *fakeStore) QuestionsByExam(examID uuid.UUID) ([]models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Question
	for _, q := range s.questions {
		if q.ExamID == examID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *fakeStore) AnswerByID(id uuid.UUID) (*models.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.answers[id]
	if !ok {
		return nil, ErrAnswerNotFound
	}
	return &a, nil
}

func (s *fakeStore) AnswersByQuestion(questionID uuid.UUID) ([]models.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Answer
	for _, a := range s.answers {
		if a.QuestionID == questionID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeStore) FindOrCreateExecution(learnerID, examID uuid.UUID) (*models.Execution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.executions {
		if e.LearnerID == learnerID && e.ExamID == examID {
			return &e, nil
		}
	}
	e := models.Execution{ID: uuid.New(), LearnerID: learnerID, ExamID: examID}
	s.executions[e.ID] = e
	return &e, nil
}

func (s *fakeStore) ExecutionByID(id uuid.UUID) (*models.Execution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.executions[id]
	if !ok {
		return nil, ErrExecutionNotFound
	}
	return &e, nil
}

func (s *fakeStore) ExecutionsByExam(examID uuid.UUID) ([]models.Execution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Execution
	for _, e := range s.executions {
		if e.ExamID == examID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeStore) SetCurrentAttempt(executionID uuid.UUID, attemptID *uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.executions[executionID]
	if !ok {
		return ErrExecutionNotFound
	}
	e.CurrentAttemptID = attemptID
	s.executions[executionID] = e
	return nil
}

func (s *fakeStore) FindOrCreateAttempt(executionID, questionID uuid.UUID, startedAt time.Time) (*models.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.attempts {
		if a.ExecutionID == executionID && a.QuestionID == questionID {
			return &a, nil
		}
	}
	a := models.Attempt{ID: uuid.New(), ExecutionID: executionID, QuestionID: questionID, StartedAt: startedAt}
	s.attempts[a.ID] = a
	return &a, nil
}

func (s *fakeStore) AttemptByID(id uuid.UUID) (*models.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[id]
	if !ok {
		return nil, ErrAttemptNotFound
	}
	return &a, nil
}

func (s *fakeStore) SaveAttempt(attempt *models.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSaveAttempt {
		return errors.New("store unavailable")
	}
	if _, ok := s.attempts[attempt.ID]; !ok {
		return ErrAttemptNotFound
	}
	s.attempts[attempt.ID] = *attempt
	return nil
}

func (s *fakeStore) ClosedAnsweredAttempts(executionID uuid.UUID) ([]models.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Attempt
	for _, a := range s.attempts {
		if a.ExecutionID != executionID || a.EndedAt == nil || a.AnswerID == nil {
			continue
		}
		if answer, ok := s.answers[*a.AnswerID]; ok {
			a.Answer = &answer
		}
		out = append(out, a)
	}
	return out, nil
}

// InTx runs fn directly; the fake has no transactions to speak of.
func (s *fakeStore) InTx(fn func(tx Store) error) error {
	return fn(s)
}
