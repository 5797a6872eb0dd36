package models

import "time"

type QuestionsAnswer struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	AnswerID   uint      `gorm:"not null;index" json:"answer_id"`
	QuestionID uint      `gorm:"not null;index" json:"question_id"`
	Content    string    `gorm:"type:text" json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (QuestionsAnswer) TableName() string {
	return "questions_answers"
}
