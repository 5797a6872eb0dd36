package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vnkhanh/form-builder/config"
	"github.com/vnkhanh/form-builder/middleware"
	"github.com/vnkhanh/form-builder/models"
)

var errMissingQuestion = errors.New("param is missing or the value is empty: question")

/* ========== Create question (owner-only) ========== */

type createQuestionReq struct {
	FormID   uint            `json:"form_id"`
	Question json.RawMessage `json:"question"`
}

type questionFields struct {
	Title        string              `json:"title" binding:"required"`
	QuestionType models.QuestionType `json:"question_type" binding:"required,question_type"`
}

func CreateQuestion(c *gin.Context) {
	var req createQuestionReq
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
	err := db.First(&f, req.FormID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Form not found"})
		return
	}
	if err != nil {
		dbError(c, "load form", err)
		return
	}
	if !f.OwnedBy(middleware.CurrentUserID(c)) {
		c.JSON(http.StatusForbidden, gin.H{"message": "You are not the owner of this form"})
		return
	}

	// The question body is validated only once the caller is known to own the form.
	var fields questionFields
	if len(req.Question) == 0 || string(req.Question) == "null" {
		badRequest(c, errMissingQuestion)
		return
	}
	if err := binding.JSON.BindBody(req.Question, &fields); err != nil {
		badRequest(c, err)
		return
	}
	title := strings.TrimSpace(fields.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Title can't be blank"})
		return
	}

	q := models.Question{
		Title:        title,
		QuestionType: fields.QuestionType,
		FormID:       f.ID,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := lockForm(tx, f.ID); err != nil {
			return err
		}
		// Next position = MAX(position)+1, 0-based.
		var next struct{ Next int }
		if err := tx.Model(&models.Question{}).
			Where("form_id = ?", f.ID).
			Select("COALESCE(MAX(position), -1) + 1 AS next").
			Scan(&next).Error; err != nil {
			return err
		}
		q.Position = next.Next
		return tx.Create(&q).Error
	})
	if err != nil {
		dbError(c, "create question", err)
		return
	}

	config.Log.Debug("question created", zap.Uint("question_id", q.ID), zap.Uint("form_id", f.ID))
	c.JSON(http.StatusOK, q)
}

/* ========== Update question (owner-only) ========== */

type updateQuestionFields struct {
	Title        *string              `json:"title"`
	QuestionType *models.QuestionType `json:"question_type" binding:"omitempty,question_type"`
}

type updateQuestionReq struct {
	Question *updateQuestionFields `json:"question" binding:"required"`
}

func UpdateQuestion(c *gin.Context) {
	q := c.MustGet(middleware.CtxQuestion).(models.Question)

	var req updateQuestionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	updates := map[string]interface{}{}
	if req.Question.Title != nil {
		title := strings.TrimSpace(*req.Question.Title)
		if title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Title can't be blank"})
			return
		}
		updates["title"] = title
	}
	if req.Question.QuestionType != nil {
		updates["question_type"] = *req.Question.QuestionType
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Nothing to update"})
		return
	}

	db := config.DB.WithContext(c.Request.Context())
	if err := db.Model(&models.Question{}).Where("id = ?", q.ID).Updates(updates).Error; err != nil {
		dbError(c, "update question", err)
		return
	}
	if err := db.First(&q, q.ID).Error; err != nil {
		dbError(c, "reload question", err)
		return
	}
	c.JSON(http.StatusOK, q)
}

/* ========== Delete question (owner-only), later positions shift down ========== */

func DeleteQuestion(c *gin.Context) {
	q := c.MustGet(middleware.CtxQuestion).(models.Question)

	err := config.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := lockForm(tx, q.FormID); err != nil {
			return err
		}
		if err := tx.Delete(&models.Question{}, q.ID).Error; err != nil {
			return err
		}
		return tx.Model(&models.Question{}).
			Where("form_id = ? AND position > ?", q.FormID, q.Position).
			Update("position", gorm.Expr("position - 1")).Error
	})
	if err != nil {
		dbError(c, "delete question", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msgOK})
}
