package services

import (
	"log"
	"time"

	"github.com/anviedo/examline/models"
	"github.com/anviedo/examline/scheduler"
	"github.com/google/uuid"
)

const (
	openJobPrefix  = "open-"
	closeJobPrefix = "close-"

	EventExamOpened        = "exam:opened"
	EventExecutionAdvanced = "execution:advanced"
	EventExamFinished      = "exam:finished"
)

// Broadcaster pushes an event to everyone subscribed to a channel. Satisfied
// by the websocket hub.
type Broadcaster interface {
	Broadcast(channel, event string, payload interface{})
}

// LifecycleService drives the scheduled half of the exam state machine:
// Disponible when the window opens, force-advance plus Finalizado when it
// closes. Instructor-driven states (Activo, Suspendido, Inactivo) never pass
// through here.
type LifecycleService struct {
	store    Store
	registry *scheduler.Registry
	advance  *AdvanceService
	hub      Broadcaster
}

func NewLifecycleService(store Store, registry *scheduler.Registry, advance *AdvanceService, hub Broadcaster) *LifecycleService {
	return &LifecycleService{store: store, registry: registry, advance: advance, hub: hub}
}

// ValidateExamWindow rejects windows that close at or before they open.
// Callers persisting a window must check this before writing, so an inverted
// window never reaches the store.
func ValidateExamWindow(opensAt, closesAt *time.Time) error {
	if opensAt != nil && closesAt != nil && !closesAt.After(*opensAt) {
		return ErrInvalidWindow
	}
	return nil
}

// ScheduleExamWindow (re)registers the open and close jobs for an exam. A nil
// instant cancels the corresponding job, so edits that drop a deadline do not
// leave a stale timer behind. Deadlines already in the past fire inline.
func (s *LifecycleService) ScheduleExamWindow(examID uuid.UUID, opensAt, closesAt *time.Time) error {
	if err := ValidateExamWindow(opensAt, closesAt); err != nil {
		return err
	}

	if opensAt != nil {
		s.registry.Reschedule(openJobPrefix+examID.String(), *opensAt, func() { s.openExam(examID) })
	} else {
		s.registry.Cancel(openJobPrefix + examID.String())
	}

	if closesAt != nil {
		s.registry.Reschedule(closeJobPrefix+examID.String(), *closesAt, func() { s.closeExam(examID) })
	} else {
		s.registry.Cancel(closeJobPrefix + examID.String())
	}
	return nil
}

// CancelExamWindow forgets both jobs for an exam, e.g. when it is deleted.
func (s *LifecycleService) CancelExamWindow(examID uuid.UUID) {
	s.registry.Cancel(openJobPrefix + examID.String())
	s.registry.Cancel(closeJobPrefix + examID.String())
}

// RecoverExamWindows re-derives jobs from persisted deadlines. Called once at
// startup and periodically from the reconciliation job, since the registry
// itself does not survive a restart. Past-due close deadlines fire inline
// here, finalizing exams the previous process slept through.
func (s *LifecycleService) RecoverExamWindows() error {
	exams, err := s.store.ExamsWithWindows()
	if err != nil {
		return err
	}
	now := time.Now()
	for _, exam := range exams {
		opensAt := exam.OpensAt
		// A past open for an exam already moved beyond Inconcluso has done
		// its work; re-firing it every sweep would re-broadcast the opening.
		if opensAt != nil && !opensAt.After(now) && exam.Status != models.ExamInconcluso {
			opensAt = nil
		}
		if err := s.ScheduleExamWindow(exam.ID, opensAt, exam.ClosesAt); err != nil {
			log.Printf("🔥 Failed to recover window for exam %s: %v", exam.ID, err)
		}
	}
	return nil
}

func (s *LifecycleService) openExam(examID uuid.UUID) {
	if err := s.store.SetExamStatus(examID, models.ExamDisponible); err != nil {
		log.Printf("🔥 Failed to open exam %s: %v", examID, err)
		return
	}
	s.hub.Broadcast(ExamChannel(examID), EventExamOpened, map[string]interface{}{"exam_id": examID})
	log.Printf("✅ Exam %s is now open", examID)
}

// closeExam force-closes every learner's current attempt, then finalizes the
// exam. Each half is idempotent on its own, so a failure here is recoverable:
// the reconciliation sweep reschedules the close job and the retry picks up
// where this run stopped.
func (s *LifecycleService) closeExam(examID uuid.UUID) {
	if _, err := s.advance.AdvanceAll(examID, nil); err != nil {
		log.Printf("🔥 Failed to force-advance exam %s: %v", examID, err)
		return
	}
	if err := s.store.SetExamStatus(examID, models.ExamFinalizado); err != nil {
		log.Printf("🔥 Failed to finalize exam %s: %v", examID, err)
		return
	}
	s.hub.Broadcast(ExamChannel(examID), EventExecutionAdvanced, map[string]interface{}{"exam_id": examID})
	s.hub.Broadcast(ExamChannel(examID), EventExamFinished, map[string]interface{}{"exam_id": examID})
	log.Printf("✅ Exam %s finalized", examID)
}

// ExamChannel names the broadcast channel for one exam's lifecycle events.
func ExamChannel(examID uuid.UUID) string {
	return "exam:" + examID.String()
}
