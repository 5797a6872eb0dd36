package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vnkhanh/form-builder/config"
	"github.com/vnkhanh/form-builder/controllers"
	"github.com/vnkhanh/form-builder/middleware"
	"github.com/vnkhanh/form-builder/utils"
)

const limiterTTL = 10 * time.Minute

// SetupRoutes registers every route. The returned func stops the rate
// limiters' cleanup goroutines and must be called on shutdown.
func SetupRoutes(r *gin.Engine) (stop func()) {
	if err := utils.RegisterValidators(); err != nil {
		config.Log.Error("register validators", zap.Error(err))
	}

	formsLimiter := middleware.NewIPRateLimiter(config.App.FormsPerMin, config.App.FormsBurst, limiterTTL)
	answersLimiter := middleware.NewIPRateLimiter(config.App.AnswersPerMin, config.App.AnswersBurst, limiterTTL)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", controllers.Register)
			auth.POST("/login", controllers.Login)
			auth.GET("/me", middleware.AuthJWT(), controllers.Me)
		}

		// Public show; the owner also sees disabled forms.
		api.GET("/forms/:friendly_id", middleware.OptionalAuth(), controllers.GetForm)

		forms := api.Group("/forms")
		forms.Use(middleware.AuthJWT())
		{
			forms.GET("", controllers.ListForms)
			forms.POST("", middleware.RateLimitByIP(formsLimiter), controllers.CreateForm)
			forms.PUT("/:friendly_id", middleware.CheckFormOwner(), controllers.UpdateForm)
			forms.DELETE("/:friendly_id", middleware.CheckFormOwner(), controllers.DeleteForm)
			forms.PUT("/:friendly_id/questions/reorder", middleware.CheckFormOwner(), controllers.ReorderQuestions)
			forms.GET("/:friendly_id/answers/export", middleware.CheckFormOwner(), controllers.ExportAnswers)
		}

		questions := api.Group("/questions")
		questions.Use(middleware.AuthJWT())
		{
			questions.POST("", controllers.CreateQuestion)
			questions.PUT("/:id", middleware.CheckQuestionOwner(), controllers.UpdateQuestion)
			questions.DELETE("/:id", middleware.CheckQuestionOwner(), controllers.DeleteQuestion)
		}

		answers := api.Group("/answers")
		answers.Use(middleware.AuthJWT())
		{
			answers.GET("", controllers.ListAnswers)
			answers.POST("", middleware.RateLimitByIP(answersLimiter), controllers.CreateAnswer)
			answers.GET("/:id", middleware.CheckAnswerOwner(), controllers.GetAnswer)
			answers.DELETE("/:id", middleware.CheckAnswerOwner(), controllers.DeleteAnswer)
		}
	}

	return func() {
		formsLimiter.Stop()
		answersLimiter.Stop()
	}
}
