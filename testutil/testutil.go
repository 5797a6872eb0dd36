// Package testutil wires an in-memory database and the real router for tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/form-builder/config"
	"github.com/vnkhanh/form-builder/middleware"
	"github.com/vnkhanh/form-builder/models"
	"github.com/vnkhanh/form-builder/routes"
	"github.com/vnkhanh/form-builder/utils"
)

// TestPassword is the password of every user made by CreateUser.
const TestPassword = "secret123"

// TestSecret signs the JWTs issued during tests.
const TestSecret = "test-secret"

var seq atomic.Int64

// SetupTestDB points config.DB at a fresh in-memory SQLite database with
// foreign keys on, and resets config.App to test settings.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.GormConfig()
	cfg.Logger = logger.Default.LogMode(logger.Silent)
	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), cfg)
	require.NoError(t, err, "open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps the whole test on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db), "migrate")

	settings := config.DefaultSettings()
	settings.JWTSecret = TestSecret
	settings.FormsPerMin = 10000
	settings.FormsBurst = 10000
	settings.AnswersPerMin = 10000
	settings.AnswersBurst = 10000

	prevDB, prevApp := config.DB, config.App
	config.DB, config.App = db, settings
	t.Cleanup(func() {
		config.DB, config.App = prevDB, prevApp
		_ = sqlDB.Close()
	})
	return db
}

// NewRouter builds the production route table with the test middleware chain.
// The rate limiters are stopped when the test ends.
func NewRouter(t *testing.T) *gin.Engine {
	t.Helper()
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.Metrics())
	t.Cleanup(routes.SetupRoutes(r))
	return r
}

func CreateUser(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	n := seq.Add(1)

	hash, err := utils.HashPassword(TestPassword)
	require.NoError(t, err)

	u := models.User{
		Name:         fmt.Sprintf("User %d", n),
		Email:        fmt.Sprintf("user%d@example.com", n),
		PasswordHash: hash,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// Token issues a bearer token for u.
func Token(t *testing.T, u models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(u.ID)
	require.NoError(t, err)
	return token
}

func CreateForm(t *testing.T, db *gorm.DB, owner models.User, enable bool) models.Form {
	t.Helper()
	n := seq.Add(1)

	f := models.Form{
		Title:        fmt.Sprintf("Form %d", n),
		Description:  "a test form",
		PrimaryColor: "#336699",
		Enable:       enable,
		FriendlyID:   fmt.Sprintf("form-%d", n),
		UserID:       owner.ID,
	}
	require.NoError(t, db.Create(&f).Error)
	return f
}

func CreateQuestion(t *testing.T, db *gorm.DB, f models.Form, qt models.QuestionType, position int) models.Question {
	t.Helper()
	q := models.Question{
		Title:        fmt.Sprintf("Question %d", seq.Add(1)),
		QuestionType: qt,
		Position:     position,
		FormID:       f.ID,
	}
	require.NoError(t, db.Create(&q).Error)
	return q
}

// CreateAnswer stores an answer for f with one questions_answer per content,
// keyed by question id.
func CreateAnswer(t *testing.T, db *gorm.DB, f models.Form, contents map[uint]string) models.Answer {
	t.Helper()
	a := models.Answer{FormID: f.ID}
	for qid, content := range contents {
		a.QuestionsAnswers = append(a.QuestionsAnswers, models.QuestionsAnswer{QuestionID: qid, Content: content})
	}
	require.NoError(t, db.Create(&a).Error)
	return a
}

// PerformRequest sends body as JSON (unless nil) with an optional bearer token.
func PerformRequest(t *testing.T, r http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), "body: %s", w.Body.String())
}
