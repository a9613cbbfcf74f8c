package models

import (
	"time"

	"github.com/google/uuid"
)

// Attempt records when a question was live for one execution and what was
// answered. Open while EndedAt is null; immutable once closed.
type Attempt struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ExecutionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_attempts_execution_question" json:"execution_id"`
	QuestionID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_attempts_execution_question" json:"question_id"`

	StartedAt time.Time  `gorm:"not null" json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
	AnswerID  *uuid.UUID `gorm:"type:uuid" json:"answer_id"`

	Question Question `gorm:"foreignkey:QuestionID" json:"-"`
	Answer   *Answer  `gorm:"foreignkey:AnswerID" json:"-"`
}
