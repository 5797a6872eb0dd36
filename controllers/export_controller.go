package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vnkhanh/form-builder/config"
	"github.com/vnkhanh/form-builder/middleware"
	"github.com/vnkhanh/form-builder/models"
	"github.com/vnkhanh/form-builder/utils"
)

const (
	mimeCSV  = "text/csv; charset=utf-8"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// GET /api/v1/forms/:friendly_id/answers/export?format=csv|xlsx&from=&to=
func ExportAnswers(c *gin.Context) {
	f := c.MustGet(middleware.CtxForm).(models.Form)

	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Unsupported format, use csv or xlsx"})
		return
	}

	from, ok := parseRangeBound(c, "from")
	if !ok {
		return
	}
	to, ok := parseRangeBound(c, "to")
	if !ok {
		return
	}

	db := config.DB.WithContext(c.Request.Context())

	var questions []models.Question
	if err := orderedQuestions(db.Where("form_id = ?", f.ID)).Find(&questions).Error; err != nil {
		dbError(c, "list questions", err)
		return
	}

	q := db.Where("form_id = ?", f.ID).
		Preload("QuestionsAnswers", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
	if from != nil {
		q = q.Where("created_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("created_at <= ?", *to)
	}
	var answers []models.Answer
	if err := q.Order("id ASC").Find(&answers).Error; err != nil {
		dbError(c, "list answers", err)
		return
	}

	table := utils.BuildAnswerTable(questions, answers)

	var (
		body []byte
		mime string
		err  error
	)
	if format == "xlsx" {
		body, err = table.XLSX()
		mime = mimeXLSX
	} else {
		body, err = table.CSV()
		mime = mimeCSV
	}
	if err != nil {
		config.Log.Error("render export", zap.Uint("form_id", f.ID), zap.String("format", format), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not render export"})
		return
	}

	filename := fmt.Sprintf("%s-answers-%s.%s", f.FriendlyID, time.Now().UTC().Format("20060102"), format)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, mime, body)
}

// parseRangeBound reads an optional RFC3339 query parameter, normalized to
// UTC so it compares correctly against stored timestamps.
func parseRangeBound(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("%s must be an RFC3339 timestamp", name)})
		return nil, false
	}
	t = t.UTC()
	return &t, true
}
