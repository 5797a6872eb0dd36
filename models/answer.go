package models

import "time"

// Answer is a single submission against a form.
type Answer struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FormID    uint      `gorm:"not null;index" json:"form_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	QuestionsAnswers []QuestionsAnswer `gorm:"foreignKey:AnswerID;constraint:OnDelete:CASCADE" json:"-"`
}
