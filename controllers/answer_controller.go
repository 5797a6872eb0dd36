package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vnkhanh/form-builder/config"
	"github.com/vnkhanh/form-builder/middleware"
	"github.com/vnkhanh/form-builder/models"
)

type answerDetail struct {
	models.Answer
	QuestionsAnswers []models.QuestionsAnswer `json:"questions_answers"`
}

func newAnswerDetail(a models.Answer) answerDetail {
	qas := a.QuestionsAnswers
	if qas == nil {
		qas = []models.QuestionsAnswer{}
	}
	return answerDetail{Answer: a, QuestionsAnswers: qas}
}

/* ========== List answers of a form (owner-only) ========== */

func ListAnswers(c *gin.Context) {
	db := config.DB.WithContext(c.Request.Context())

	formID, err := strconv.ParseUint(c.Query("form_id"), 10, 64)
	if err != nil || formID == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Form not found"})
		return
	}

	var f models.Form
	if err := db.First(&f, formID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Form not found"})
			return
		}
		dbError(c, "load form", err)
		return
	}
	if !f.OwnedBy(middleware.CurrentUserID(c)) {
		c.JSON(http.StatusForbidden, gin.H{"message": "You are not the owner of this form"})
		return
	}

	answers := []models.Answer{}
	if err := db.Where("form_id = ?", f.ID).Order("id ASC").Find(&answers).Error; err != nil {
		dbError(c, "list answers", err)
		return
	}
	c.JSON(http.StatusOK, answers)
}

/* ========== Show one answer with its contents (owner-only) ========== */

func GetAnswer(c *gin.Context) {
	a := c.MustGet(middleware.CtxAnswer).(models.Answer)

	if err := config.DB.WithContext(c.Request.Context()).
		Where("answer_id = ?", a.ID).
		Order("id ASC").
		Find(&a.QuestionsAnswers).Error; err != nil {
		dbError(c, "load questions_answers", err)
		return
	}
	c.JSON(http.StatusOK, newAnswerDetail(a))
}

/* ========== Submit an answer ========== */

type answerItem struct {
	QuestionID uint   `json:"question_id"`
	Content    string `json:"content"`
}

type createAnswerReq struct {
	FormID           uint         `json:"form_id"`
	QuestionsAnswers []answerItem `json:"questions_answers"`
}

func CreateAnswer(c *gin.Context) {
	var req createAnswerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	db := config.DB.WithContext(c.Request.Context())

	if req.FormID == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Form not found"})
		return
	}

	var f models.Form
	err := db.Preload("Questions").First(&f, req.FormID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Form not found"})
		return
	}
	if err != nil {
		dbError(c, "load form", err)
		return
	}
	if !f.VisibleTo(middleware.CurrentUserID(c)) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Form not found"})
		return
	}

	qas, err := buildQuestionsAnswers(f.Questions, req.QuestionsAnswers)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid parameters", "error": err.Error()})
		return
	}

	answer := models.Answer{FormID: f.ID, QuestionsAnswers: qas}
	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&answer).Error
	}); err != nil {
		dbError(c, "create answer", err)
		return
	}

	config.Log.Info("answer submitted",
		zap.Uint("answer_id", answer.ID),
		zap.Uint("form_id", f.ID),
		zap.Int("items", len(qas)),
	)
	c.JSON(http.StatusOK, newAnswerDetail(answer))
}

// buildQuestionsAnswers checks every item against the form's questions.
// The same question may appear more than once.
func buildQuestionsAnswers(questions []models.Question, items []answerItem) ([]models.QuestionsAnswer, error) {
	byID := make(map[uint]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	out := make([]models.QuestionsAnswer, 0, len(items))
	for i, it := range items {
		q, ok := byID[it.QuestionID]
		if !ok {
			return nil, fmt.Errorf("questions_answers[%d]: question %d does not belong to this form", i, it.QuestionID)
		}
		if err := q.QuestionType.ValidateContent(it.Content); err != nil {
			return nil, fmt.Errorf("questions_answers[%d]: %w", i, err)
		}
		out = append(out, models.QuestionsAnswer{QuestionID: q.ID, Content: it.Content})
	}
	return out, nil
}

/* ========== Delete an answer (owner-only), cascades its contents ========== */

func DeleteAnswer(c *gin.Context) {
	a := c.MustGet(middleware.CtxAnswer).(models.Answer)

	if err := config.DB.WithContext(c.Request.Context()).Delete(&models.Answer{}, a.ID).Error; err != nil {
		dbError(c, "delete answer", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgOK})
}
