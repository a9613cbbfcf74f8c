package models

import "github.com/google/uuid"

type Answer struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id"`
	Text       string    `gorm:"type:text;not null" json:"text"`

	// Never serialized on learner-facing reads while the exam is open.
	IsCorrect bool `gorm:"not null;default:false" json:"-"`
}
