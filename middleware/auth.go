package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vnkhanh/form-builder/config"
	"github.com/vnkhanh/form-builder/models"
	"github.com/vnkhanh/form-builder/utils"
)

const (
	CtxUser     = "user"
	CtxForm     = "formObj"
	CtxQuestion = "questionObj"
	CtxAnswer   = "answerObj"
)

var errNoBearer = errors.New("missing bearer token")

// AuthJWT requires Authorization: Bearer <token> and injects the user into the context.
func AuthJWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := userFromRequest(c)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, errNoBearer) {
				msg = "Missing or invalid Authorization header"
			} else if errors.Is(err, gorm.ErrRecordNotFound) {
				msg = "User not found"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msg})
			return
		}

		c.Set(CtxUser, user)
		c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is sent and otherwise
// lets the request through anonymously.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, err := userFromRequest(c); err == nil {
			c.Set(CtxUser, user)
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user, if any.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(CtxUser)
	if !ok {
		return models.User{}, false
	}
	u, ok := v.(models.User)
	return u, ok
}

// CurrentUserID is 0 for anonymous requests.
func CurrentUserID(c *gin.Context) uint {
	u, _ := CurrentUser(c)
	return u.ID
}

func userFromRequest(c *gin.Context) (models.User, error) {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "bearer ") {
		return models.User{}, errNoBearer
	}
	rawToken := strings.TrimSpace(authHeader[7:])
	if rawToken == "" {
		return models.User{}, errNoBearer
	}

	uid, err := utils.VerifyToken(rawToken)
	if err != nil {
		return models.User{}, err
	}

	var user models.User
	if err := config.DB.WithContext(c.Request.Context()).First(&user, uid).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			config.Log.Error("load authenticated user", zap.Uint("user_id", uid), zap.Error(err))
		}
		return models.User{}, err
	}
	return user, nil
}
