package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

type QuestionType string

const (
	QuestionShortText QuestionType = "short_text"
	QuestionLongText  QuestionType = "long_text"
	QuestionInteger   QuestionType = "integer"
	QuestionBoolean   QuestionType = "boolean"
)

// ShortTextMaxLen caps short_text answers, in characters.
const ShortTextMaxLen = 255

var (
	ErrInvalidQuestionType = errors.New("invalid question type")
	ErrInvalidContent      = errors.New("invalid content")
)

var QuestionTypes = []QuestionType{QuestionShortText, QuestionLongText, QuestionInteger, QuestionBoolean}

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionShortText, QuestionLongText, QuestionInteger, QuestionBoolean:
		return true
	}
	return false
}

// ValidateContent checks a submitted answer against the question type.
// Empty content means the question was left unanswered and is always accepted.
func (t QuestionType) ValidateContent(content string) error {
	if content == "" {
		return nil
	}
	switch t {
	case QuestionShortText:
		if utf8.RuneCountInString(content) > ShortTextMaxLen {
			return fmt.Errorf("%w: short_text longer than %d characters", ErrInvalidContent, ShortTextMaxLen)
		}
	case QuestionLongText:
	case QuestionInteger:
		if _, err := strconv.ParseInt(strings.TrimSpace(content), 10, 64); err != nil {
			return fmt.Errorf("%w: %q is not an integer", ErrInvalidContent, content)
		}
	case QuestionBoolean:
		if _, err := strconv.ParseBool(strings.TrimSpace(content)); err != nil {
			return fmt.Errorf("%w: %q is not a boolean", ErrInvalidContent, content)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidQuestionType, string(t))
	}
	return nil
}

type Question struct {
	ID           uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	Title        string       `gorm:"type:text;not null" json:"title"`
	QuestionType QuestionType `gorm:"size:20;not null" json:"question_type"`
	Position     int          `gorm:"not null;default:0" json:"position"`
	FormID       uint         `gorm:"not null;index" json:"form_id"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	QuestionsAnswers []QuestionsAnswer `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`
}
