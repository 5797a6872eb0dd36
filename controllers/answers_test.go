package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/form-builder/models"
	"github.com/vnkhanh/form-builder/testutil"
)

type answerWithContents struct {
	models.Answer
	QuestionsAnswers []models.QuestionsAnswer `json:"questions_answers"`
}

func TestListAnswers(t *testing.T) {
	db, r := setup(t)
	owner := testutil.CreateUser(t, db)
	other := testutil.CreateUser(t, db)
	f := testutil.CreateForm(t, db, owner, true)
	a1 := testutil.CreateAnswer(t, db, f, nil)
	a2 := testutil.CreateAnswer(t, db, f, nil)
	testutil.CreateAnswer(t, db, testutil.CreateForm(t, db, owner, true), nil)
	path := fmt.Sprintf("/api/v1/answers?form_id=%d", f.ID)

	t.Run("owner lists answers in order", func(t *testing.T) {
		w := testutil.PerformRequest(t, r, http.MethodGet, path, nil, testutil.Token(t, owner))
		require.Equal(t, http.StatusOK, w.Code)

		var got []models.Answer
		testutil.DecodeJSON(t, w, &got)
		require.Len(t, got, 2)
		assert.Equal(t, a1.ID, got[0].ID)
		assert.Equal(t, a2.ID, got[1].ID)
		assert.Equal(t, f.ID, got[0].FormID)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		w := testutil.PerformRequest(t, r, http.MethodGet, path, nil, testutil.Token(t, other))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	for _, q := range []string{"", "?form_id=9999", "?form_id=abc"} {
		t.Run("missing form "+q, func(t *testing.T) {
			w := testutil.PerformRequest(t, r, http.MethodGet, "/api/v1/answers"+q, nil, testutil.Token(t, owner))
			assert.Equal(t, http.StatusNotFound, w.Code)
		})
	}

	t.Run("requires authentication", func(t *testing.T) {
		w := testutil.PerformRequest(t, r, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGetAnswer(t *testing.T) {
	db, r := setup(t)
	owner := testutil.CreateUser(t, db)
	other := testutil.CreateUser(t, db)
	f := testutil.CreateForm(t, db, owner, true)
	q := testutil.CreateQuestion(t, db, f, models.QuestionShortText, 0)

	a := models.Answer{FormID: f.ID, QuestionsAnswers: []models.QuestionsAnswer{
		{QuestionID: q.ID, Content: "first"},
		{QuestionID: q.ID, Content: "second"},
	}}
	require.NoError(t, db.Create(&a).Error)
	path := fmt.Sprintf("/api/v1/answers/%d", a.ID)

	t.Run("owner sees contents", func(t *testing.T) {
		w := testutil.PerformRequest(t, r, http.MethodGet, path, nil, testutil.Token(t, owner))
		require.Equal(t, http.StatusOK, w.Code)

		var got answerWithContents
		testutil.DecodeJSON(t, w, &got)
		assert.Equal(t, a.ID, got.ID)
		assert.Equal(t, f.ID, got.FormID)
		require.Len(t, got.QuestionsAnswers, 2)
		assert.Equal(t, "first", got.QuestionsAnswers[0].Content)
		assert.Equal(t, "second", got.QuestionsAnswers[1].Content)
		assert.Equal(t, a.ID, got.QuestionsAnswers[0].AnswerID)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		w := testutil.PerformRequest(t, r, http.MethodGet, path, nil, testutil.Token(t, other))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	for _, id := range []string{"9999", "lorem"} {
		t.Run("missing answer "+id, func(t *testing.T) {
			w := testutil.PerformRequest(t, r, http.MethodGet, "/api/v1/answers/"+id, nil, testutil.Token(t, owner))
			assert.Equal(t, http.StatusNotFound, w.Code)
		})
	}
}

func TestCreateAnswer(t *testing.T) {
	db, r := setup(t)
	owner := testutil.CreateUser(t, db)
	respondent := testutil.CreateUser(t, db)
	f := testutil.CreateForm(t, db, owner, true)
	text := testutil.CreateQuestion(t, db, f, models.QuestionShortText, 0)
	num := testutil.CreateQuestion(t, db, f, models.QuestionInteger, 1)
	yes := testutil.CreateQuestion(t, db, f, models.QuestionBoolean, 2)

	body := gin.H{
		"form_id": f.ID,
		"questions_answers": []gin.H{
			{"question_id": text.ID, "content": "Ana"},
			{"question_id": num.ID, "content": "42"},
			{"question_id": yes.ID, "content": "true"},
			{"question_id": text.ID, "content": ""},
		},
	}
	w := testutil.PerformRequest(t, r, http.MethodPost, "/api/v1/answers", body, testutil.Token(t, respondent))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got answerWithContents
	testutil.DecodeJSON(t, w, &got)
	assert.NotZero(t, got.ID)
	assert.Equal(t, f.ID, got.FormID)
	require.Len(t, got.QuestionsAnswers, 4)
	for _, qa := range got.QuestionsAnswers {
		assert.NotZero(t, qa.ID)
		assert.Equal(t, got.ID, qa.AnswerID)
	}

	var stored []models.QuestionsAnswer
	require.NoError(t, db.Where("answer_id = ?", got.ID).Order("id ASC").Find(&stored).Error)
	require.Len(t, stored, 4)
	assert.Equal(t, "Ana", stored[0].Content)
	assert.Equal(t, num.ID, stored[1].QuestionID)
}

func TestCreateAnswer_FormVisibility(t *testing.T) {
	db, r := setup(t)
	owner := testutil.CreateUser(t, db)
	other := testutil.CreateUser(t, db)
	disabled := testutil.CreateForm(t, db, owner, false)
	q := testutil.CreateQuestion(t, db, disabled, models.QuestionLongText, 0)
	body := gin.H{"form_id": disabled.ID, "questions_answers": []gin.H{{"question_id": q.ID, "content": "x"}}}

	t.Run("disabled form is not found for others", func(t *testing.T) {
		w := testutil.PerformRequest(t, r, http.MethodPost, "/api/v1/answers", body, testutil.Token(t, other))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("owner may submit to a disabled form", func(t *testing.T) {
		w := testutil.PerformRequest(t, r, http.MethodPost, "/api/v1/answers", body, testutil.Token(t, owner))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("form_id zero", func(t *testing.T) {
		w := testutil.PerformRequest(t, r, http.MethodPost, "/api/v1/answers", gin.H{"form_id": 0}, testutil.Token(t, owner))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown form", func(t *testing.T) {
		w := testutil.PerformRequest(t, r, http.MethodPost, "/api/v1/answers", gin.H{"form_id": 9999}, testutil.Token(t, owner))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("requires authentication", func(t *testing.T) {
		w := testutil.PerformRequest(t, r, http.MethodPost, "/api/v1/answers", body, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	assert.Equal(t, int64(1), count(t, db, &models.Answer{}))
}

func TestCreateAnswer_InvalidContents(t *testing.T) {
	db, r := setup(t)
	owner := testutil.CreateUser(t, db)
	f := testutil.CreateForm(t, db, owner, true)
	text := testutil.CreateQuestion(t, db, f, models.QuestionShortText, 0)
	num := testutil.CreateQuestion(t, db, f, models.QuestionInteger, 1)
	yes := testutil.CreateQuestion(t, db, f, models.QuestionBoolean, 2)
	foreign := testutil.CreateQuestion(t, db, testutil.CreateForm(t, db, owner, true), models.QuestionShortText, 0)

	long := make([]byte, models.ShortTextMaxLen+1)
	for i := range long {
		long[i] = 'a'
	}

	cases := map[string][]gin.H{
		"foreign question":    {{"question_id": text.ID, "content": "ok"}, {"question_id": foreign.ID, "content": "x"}},
		"unknown question":    {{"question_id": 9999, "content": "x"}},
		"not an integer":      {{"question_id": num.ID, "content": "4.2"}},
		"not a boolean":       {{"question_id": yes.ID, "content": "maybe"}},
		"short text too long": {{"question_id": text.ID, "content": string(long)}},
	}
	for name, items := range cases {
		t.Run(name, func(t *testing.T) {
			body := gin.H{"form_id": f.ID, "questions_answers": items}
			w := testutil.PerformRequest(t, r, http.MethodPost, "/api/v1/answers", body, testutil.Token(t, owner))
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}

	assert.Zero(t, count(t, db, &models.Answer{}))
	assert.Zero(t, count(t, db, &models.QuestionsAnswer{}))
}

func TestDeleteAnswer(t *testing.T) {
	db, r := setup(t)
	owner := testutil.CreateUser(t, db)
	other := testutil.CreateUser(t, db)
	f := testutil.CreateForm(t, db, owner, true)
	q := testutil.CreateQuestion(t, db, f, models.QuestionShortText, 0)
	a := testutil.CreateAnswer(t, db, f, map[uint]string{q.ID: "bye"})
	path := fmt.Sprintf("/api/v1/answers/%d", a.ID)

	t.Run("non-owner is forbidden", func(t *testing.T) {
		w := testutil.PerformRequest(t, r, http.MethodDelete, path, nil, testutil.Token(t, other))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, int64(1), count(t, db, &models.Answer{}))
	})

	t.Run("owner deletes with cascade", func(t *testing.T) {
		w := testutil.PerformRequest(t, r, http.MethodDelete, path, nil, testutil.Token(t, owner))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Zero(t, count(t, db, &models.Answer{}))
		assert.Zero(t, count(t, db, &models.QuestionsAnswer{}))
		assert.Equal(t, int64(1), count(t, db, &models.Question{}))
	})

	t.Run("missing answer", func(t *testing.T) {
		w := testutil.PerformRequest(t, r, http.MethodDelete, "/api/v1/answers/questionary", nil, testutil.Token(t, owner))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
