package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vnkhanh/form-builder/config"
	"github.com/vnkhanh/form-builder/middleware"
)

func HealthCheck(c *gin.Context) {
	response := gin.H{
		"status": "ok",
		"db":     "ok",
	}

	sqlDB, err := config.DB.DB()
	if err != nil {
		config.Log.Error("health: get sql.DB", zap.Error(err))
		response["status"] = "degraded"
		response["db"] = "error: cannot get DB instance"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	middleware.RecordDBPoolStats(sqlDB.Stats())

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		config.Log.Warn("health: ping failed", zap.Error(err))
		response["status"] = "degraded"
		response["db"] = "error: cannot connect to DB"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	c.JSON(http.StatusOK, response)
}
