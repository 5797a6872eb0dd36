package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vnkhanh/form-builder/config"
	"github.com/vnkhanh/form-builder/models"
)

// ParseID reads a positive numeric path parameter. Anything else is treated
// as a missing record by callers.
func ParseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// CheckFormOwner loads the form named by :friendly_id and lets only its owner through.
func CheckFormOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		var f models.Form
		err := config.DB.WithContext(c.Request.Context()).
			Where("friendly_id = ?", c.Param("friendly_id")).
			First(&f).Error
		if !loaded(c, err, "Form not found", "load form") {
			return
		}

		if !f.OwnedBy(CurrentUserID(c)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "You are not the owner of this form"})
			return
		}

		c.Set(CtxForm, f)
		c.Next()
	}
}

// CheckQuestionOwner loads question :id and checks ownership through its form.
func CheckQuestionOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		qid, ok := ParseID(c, "id")
		if !ok {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Question not found"})
			return
		}

		db := config.DB.WithContext(c.Request.Context())
		var q models.Question
		if !loaded(c, db.First(&q, qid).Error, "Question not found", "load question") {
			return
		}
		if !ownsForm(c, db, q.FormID) {
			return
		}

		c.Set(CtxQuestion, q)
		c.Next()
	}
}

// CheckAnswerOwner loads answer :id; only the owner of the answered form may touch it.
func CheckAnswerOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		aid, ok := ParseID(c, "id")
		if !ok {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Answer not found"})
			return
		}

		db := config.DB.WithContext(c.Request.Context())
		var a models.Answer
		if !loaded(c, db.First(&a, aid).Error, "Answer not found", "load answer") {
			return
		}
		if !ownsForm(c, db, a.FormID) {
			return
		}

		c.Set(CtxAnswer, a)
		c.Next()
	}
}

func ownsForm(c *gin.Context, db *gorm.DB, formID uint) bool {
	var f models.Form
	if !loaded(c, db.Select("id, user_id").First(&f, formID).Error, "Form not found", "load form") {
		return false
	}
	if !f.OwnedBy(CurrentUserID(c)) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "You are not the owner of this form"})
		return false
	}
	return true
}

// loaded aborts with 404 on a missing record and 500 on any other error.
func loaded(c *gin.Context, err error, notFound, op string) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": notFound})
		return false
	}
	config.Log.Error(op, zap.String("path", c.FullPath()), zap.Error(err))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Database error"})
	return false
}
