package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vnkhanh/form-builder/config"
	"github.com/vnkhanh/form-builder/middleware"
	"github.com/vnkhanh/form-builder/models"
	"github.com/vnkhanh/form-builder/utils"
)

const maxSlugAttempts = 5

var (
	errSlugExhausted   = errors.New("could not find a free friendly_id")
	errIncompleteOrder = errors.New("order does not list every question of the form")
)

type formDetail struct {
	models.Form
	Questions []models.Question `json:"questions"`
}

func orderedQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, id ASC")
}

/* ========== List the current user's forms ========== */

func ListForms(c *gin.Context) {
	uid := middleware.CurrentUserID(c)

	forms := []models.Form{}
	if err := config.DB.WithContext(c.Request.Context()).
		Where("user_id = ?", uid).
		Order("id ASC").
		Find(&forms).Error; err != nil {
		dbError(c, "list forms", err)
		return
	}
	c.JSON(http.StatusOK, forms)
}

/* ========== Show a form with its questions ========== */

func GetForm(c *gin.Context) {
	var f models.Form
	err := config.DB.WithContext(c.Request.Context()).
		Where("friendly_id = ?", c.Param("friendly_id")).
		Preload("Questions", orderedQuestions).
		First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Form not found"})
		return
	}
	if err != nil {
		dbError(c, "load form", err)
		return
	}

	// Disabled forms are hidden from everyone but the owner.
	if !f.VisibleTo(middleware.CurrentUserID(c)) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Form not found"})
		return
	}

	questions := f.Questions
	if questions == nil {
		questions = []models.Question{}
	}
	c.JSON(http.StatusOK, formDetail{Form: f, Questions: questions})
}

/* ========== Create ========== */

type createFormFields struct {
	Title        string `json:"title" binding:"required,max=255"`
	Description  string `json:"description"`
	PrimaryColor string `json:"primary_color" binding:"omitempty,hexcolor"`
	Enable       bool   `json:"enable"`
}

type createFormReq struct {
	Form *createFormFields `json:"form" binding:"required"`
}

func CreateForm(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	var req createFormReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	title := strings.TrimSpace(req.Form.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Title can't be blank"})
		return
	}

	db := config.DB.WithContext(c.Request.Context())
	base := slugBase(title)
	slug, err := uniqueFriendlyID(db, base)
	if err != nil {
		dbError(c, "generate friendly_id", err)
		return
	}

	form := models.Form{
		Title:        title,
		Description:  req.Form.Description,
		PrimaryColor: req.Form.PrimaryColor,
		Enable:       req.Form.Enable,
		FriendlyID:   slug,
		UserID:       u.ID,
	}
	if err := insertForm(db, &form, base); err != nil {
		dbError(c, "create form", err)
		return
	}

	config.Log.Info("form created", zap.Uint("form_id", form.ID), zap.String("friendly_id", form.FriendlyID))
	c.JSON(http.StatusOK, form)
}

func slugBase(title string) string {
	if base := utils.Slugify(title); base != "" {
		return base
	}
	return utils.SlugSuffix()
}

// uniqueFriendlyID appends a random suffix to base until the slug is unused.
func uniqueFriendlyID(db *gorm.DB, base string) (string, error) {
	candidate := base
	for i := 0; i < maxSlugAttempts; i++ {
		var count int64
		if err := db.Model(&models.Form{}).Where("friendly_id = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = base + "-" + utils.SlugSuffix()
	}
	return "", errSlugExhausted
}

// insertForm creates f. When another request claimed the same friendly_id
// after the lookup, it retries with a new suffix.
func insertForm(db *gorm.DB, f *models.Form, base string) error {
	for i := 0; i < maxSlugAttempts; i++ {
		err := db.Create(f).Error
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		config.Log.Warn("friendly_id taken on insert, retrying", zap.String("friendly_id", f.FriendlyID))
		f.ID = 0
		f.FriendlyID = base + "-" + utils.SlugSuffix()
	}
	return errSlugExhausted
}

/* ========== Update (owner-only) ========== */

type updateFormFields struct {
	Title        *string `json:"title" binding:"omitempty,max=255"`
	Description  *string `json:"description"`
	PrimaryColor *string `json:"primary_color" binding:"omitempty,eq=|hexcolor"` // "" clears the color
	Enable       *bool   `json:"enable"`
}

type updateFormReq struct {
	Form *updateFormFields `json:"form" binding:"required"`
}

func UpdateForm(c *gin.Context) {
	f := c.MustGet(middleware.CtxForm).(models.Form)

	var req updateFormReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	updates := map[string]interface{}{}
	if req.Form.Title != nil {
		title := strings.TrimSpace(*req.Form.Title)
		if title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Title can't be blank"})
			return
		}
		updates["title"] = title
	}
	if req.Form.Description != nil {
		updates["description"] = *req.Form.Description
	}
	if req.Form.PrimaryColor != nil {
		updates["primary_color"] = *req.Form.PrimaryColor
	}
	if req.Form.Enable != nil {
		updates["enable"] = *req.Form.Enable
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Nothing to update"})
		return
	}

	db := config.DB.WithContext(c.Request.Context())
	if err := db.Model(&models.Form{}).Where("id = ?", f.ID).Updates(updates).Error; err != nil {
		dbError(c, "update form", err)
		return
	}
	if err := db.First(&f, f.ID).Error; err != nil {
		dbError(c, "reload form", err)
		return
	}
	c.JSON(http.StatusOK, f)
}

/* ========== Delete (owner-only), cascades questions and answers ========== */

func DeleteForm(c *gin.Context) {
	f := c.MustGet(middleware.CtxForm).(models.Form)

	if err := config.DB.WithContext(c.Request.Context()).Delete(&models.Form{}, f.ID).Error; err != nil {
		dbError(c, "delete form", err)
		return
	}

	config.Log.Info("form deleted", zap.Uint("form_id", f.ID))
	c.JSON(http.StatusOK, gin.H{"message": msgOK})
}

/* ========== Reorder questions (owner-only) ========== */

type reorderReq struct {
	Order []uint `json:"order" binding:"required,min=1,dive,required"`
}

func ReorderQuestions(c *gin.Context) {
	f := c.MustGet(middleware.CtxForm).(models.Form)

	var req reorderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	seen := make(map[uint]struct{}, len(req.Order))
	for _, id := range req.Order {
		if _, dup := seen[id]; dup {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Order contains duplicate question ids"})
			return
		}
		seen[id] = struct{}{}
	}

	db := config.DB.WithContext(c.Request.Context())
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := lockForm(tx, f.ID); err != nil {
			return err
		}

		// The order must name every question of the form exactly once.
		var total, matched int64
		if err := tx.Model(&models.Question{}).Where("form_id = ?", f.ID).Count(&total).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Question{}).
			Where("form_id = ? AND id IN ?", f.ID, req.Order).
			Count(&matched).Error; err != nil {
			return err
		}
		if matched != int64(len(req.Order)) || total != matched {
			return errIncompleteOrder
		}

		for idx, qID := range req.Order {
			if err := tx.Model(&models.Question{}).
				Where("id = ? AND form_id = ?", qID, f.ID).
				Update("position", idx).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, errIncompleteOrder) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Order must list every question of this form"})
		return
	}
	if err != nil {
		dbError(c, "reorder questions", err)
		return
	}

	questions := []models.Question{}
	if err := orderedQuestions(db.Where("form_id = ?", f.ID)).Find(&questions).Error; err != nil {
		dbError(c, "list questions", err)
		return
	}
	c.JSON(http.StatusOK, questions)
}
