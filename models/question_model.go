package models

import "github.com/google/uuid"

type Question struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ExamID          uuid.UUID `gorm:"type:uuid;not null;index" json:"exam_id"`
	Prompt          string    `gorm:"type:text;not null" json:"prompt"`
	Points          float64   `gorm:"type:numeric(5,2);not null" json:"points"`
	DurationSeconds *int      `json:"duration_seconds"`

	Answers []Answer `gorm:"foreignKey:QuestionID" json:"answers,omitempty"`
}
