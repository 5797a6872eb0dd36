package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/form-builder/config"
	"github.com/vnkhanh/form-builder/models"
)

const msgOK = "Ok"

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid parameters", "error": err.Error()})
}

func dbError(c *gin.Context, op string, err error) {
	config.Log.Error(op, zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Database error"})
}

// lockForm takes a row lock on the form so transactions that read or shift
// its question positions run one at a time. SQLite ignores the clause and
// serializes writers on its own.
func lockForm(tx *gorm.DB, formID uint) error {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&models.Form{}, formID).Error
}
