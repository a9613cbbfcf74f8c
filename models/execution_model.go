package models

import (
	"time"

	"github.com/google/uuid"
)

// Execution is the per-(learner, exam) progress record. The composite unique
// index makes creation an idempotent upsert.
type Execution struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	LearnerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_executions_learner_exam" json:"learner_id"`
	ExamID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_executions_learner_exam" json:"exam_id"`

	// Points at the open Attempt the learner is currently on, or null when the
	// learner is between questions or done.
	CurrentAttemptID *uuid.UUID `gorm:"type:uuid" json:"current_attempt_id"`

	Learner User `gorm:"foreignkey:LearnerID" json:"-"`
	Exam    Exam `gorm:"foreignkey:ExamID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
