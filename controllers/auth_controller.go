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

type registerReq struct {
	Name     string `json:"name" binding:"required,min=1,max=255"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	email := normalizeEmail(req.Email)
	db := config.DB.WithContext(c.Request.Context())

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		dbError(c, "count users by email", err)
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"message": "Email already taken"})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		config.Log.Error("hash password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not hash password"})
		return
	}

	user := models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"message": "Email already taken"})
			return
		}
		dbError(c, "create user", err)
		return
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		config.Log.Error("sign token", zap.Uint("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not issue token"})
		return
	}

	config.Log.Info("user registered", zap.Uint("user_id", user.ID))
	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

func Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var user models.User
	err := config.DB.WithContext(c.Request.Context()).
		Where("email = ?", normalizeEmail(req.Email)).
		First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		dbError(c, "load user by email", err)
		return
	}
	if err != nil || !utils.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		config.Log.Error("sign token", zap.Uint("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

func Me(c *gin.Context) {
	user := c.MustGet(middleware.CtxUser).(models.User)
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
