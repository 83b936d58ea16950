package routes_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/survey-api/app"
	"github.com/mbolis/survey-api/config"
	"github.com/mbolis/survey-api/database"
	"github.com/mbolis/survey-api/database/dbtest"
	"github.com/mbolis/survey-api/httpx"
	"github.com/mbolis/survey-api/model"
	"github.com/mbolis/survey-api/routes"
)

type server struct {
	t       *testing.T
	db      *sql.DB
	handler http.Handler
	today   model.Date
}

func newServer(t *testing.T) *server {
	db := dbtest.Open(t)
	cfg := config.Config{
		TokenSecret: "test-secret",
		TokenTTL:    time.Minute,
		Location:    time.UTC,
	}
	a := app.App{
		DB:           db,
		BearerServer: httpx.NewBearerServer(db, cfg),
		Config:       cfg,
	}
	return &server{t: t, db: db, handler: routes.Wire(a), today: a.Today()}
}

func (s *server) do(method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(s.t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type obj = map[string]any

func TestListActiveSurveys(t *testing.T) {
	s := newServer(t)
	active := dbtest.Survey(t, s.db, "S1", s.today, s.today.AddDays(1))
	dbtest.Survey(t, s.db, "S3", s.today.AddDays(-7), s.today.AddDays(-1))

	for _, path := range []string{"/survey/", "/survey"} {
		rec := s.do(http.MethodGet, path, nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

		assert.Equal(t, []obj{{
			"id":          float64(active.ID),
			"name":        "S1",
			"start_at":    s.today.String(),
			"end_at":      s.today.AddDays(1).String(),
			"description": nil,
		}}, decode[[]obj](t, rec))
	}
}

func TestListActiveSurveysEmpty(t *testing.T) {
	s := newServer(t)

	rec := s.do(http.MethodGet, "/survey/", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetActiveSurvey(t *testing.T) {
	s := newServer(t)
	survey := dbtest.Survey(t, s.db, "S1", s.today, s.today)
	q := dbtest.Question(t, s.db, survey.ID, "Q1", model.QuestionRadio, "C1", "C2")
	ended := dbtest.Survey(t, s.db, "S2", s.today.AddDays(-2), s.today.AddDays(-1))

	rec := s.do(http.MethodGet, fmt.Sprintf("/survey/%d/", survey.ID), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, obj{
		"id":          float64(survey.ID),
		"name":        "S1",
		"start_at":    s.today.String(),
		"end_at":      s.today.String(),
		"description": nil,
		"questions": []any{obj{
			"id":   float64(q.ID),
			"text": "Q1",
			"type": "radio",
			"choices": []any{
				obj{"id": float64(q.Choices[0].ID), "text": "C1"},
				obj{"id": float64(q.Choices[1].ID), "text": "C2"},
			},
		}},
	}, decode[obj](t, rec))

	rec = s.do(http.MethodGet, fmt.Sprintf("/survey/%d/", ended.ID), nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/survey/12345/", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/survey/abc/", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", decode[httpx.ErrResponse](t, rec).Error)
}

func TestSubmitChoiceThenReadResults(t *testing.T) {
	s := newServer(t)
	s1 := dbtest.Survey(t, s.db, "S1", s.today, s.today.AddDays(1))
	q1 := dbtest.Question(t, s.db, s1.ID, "Q1", model.QuestionRadio, "C1", "C2", "C3")
	c2 := q1.Choices[1]

	rec := s.do(http.MethodPost, "/result/", obj{
		"survey":   s1.ID,
		"question": q1.ID,
		"choice":   c2.ID,
		"user_id":  1,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[obj](t, rec)
	assert.NotZero(t, created["id"])
	assert.Equal(t, obj{
		"id":       created["id"],
		"survey":   float64(s1.ID),
		"question": float64(q1.ID),
		"choice":   float64(c2.ID),
		"text":     nil,
		"user_id":  float64(1),
	}, created)
	assert.Equal(t, 1, dbtest.Count(t, s.db, "answer"))

	rec = s.do(http.MethodGet, "/result/?user_id=1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []obj{{
		"id":          float64(s1.ID),
		"name":        "S1",
		"start_at":    s.today.String(),
		"end_at":      s.today.AddDays(1).String(),
		"description": nil,
		"answers": []any{obj{
			"id":       created["id"],
			"user_id":  float64(1),
			"survey":   float64(s1.ID),
			"question": obj{"id": float64(q1.ID), "text": "Q1", "type": "radio"},
			"choice":   obj{"id": float64(c2.ID), "text": "C2"},
			"text":     nil,
		}},
	}}, decode[[]obj](t, rec))
}

func TestSubmitTextRoundTrip(t *testing.T) {
	s := newServer(t)
	s1 := dbtest.Survey(t, s.db, "S1", s.today, s.today)
	q := dbtest.Question(t, s.db, s1.ID, "Why?", model.QuestionText)

	for _, text := range []string{"first", "second"} {
		rec := s.do(http.MethodPost, "/result", obj{"survey": s1.ID, "question": q.ID, "text": text, "user_id": 5}, nil)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := s.do(http.MethodGet, "/result?user_id=5", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	results := decode[[]model.Result](t, rec)
	require.Len(t, results, 1)
	require.Len(t, results[0].Answers, 2)
	for i, text := range []string{"first", "second"} {
		a := results[0].Answers[i]
		assert.Equal(t, text, *a.Text)
		assert.Nil(t, a.Choice)
		assert.Equal(t, 5, a.UserID)
		assert.Equal(t, q.Question, a.Question)
	}

	rec = s.do(http.MethodGet, "/result?user_id=6", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestSubmitWithoutTextOrChoice(t *testing.T) {
	s := newServer(t)
	s1 := dbtest.Survey(t, s.db, "S1", s.today, s.today.AddDays(1))
	q1 := dbtest.Question(t, s.db, s1.ID, "Q1", model.QuestionRadio, "C1")

	for _, body := range []any{
		obj{"survey": s1.ID, "question": q1.ID, "user_id": 1},
		obj{"survey": s1.ID, "question": q1.ID, "user_id": 1, "text": "", "choice": nil},
	} {
		rec := s.do(http.MethodPost, "/result/", body, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, model.MsgTextOrChoice, decode[httpx.ErrResponse](t, rec).Error)
	}

	assert.Equal(t, 0, dbtest.Count(t, s.db, "answer"))
}

func TestSubmitInvalidBodies(t *testing.T) {
	s := newServer(t)
	s1 := dbtest.Survey(t, s.db, "S1", s.today, s.today)
	q1 := dbtest.Question(t, s.db, s1.ID, "Q1", model.QuestionText)

	for name, body := range map[string]any{
		"malformed json":   `{"survey": `,
		"wrong type":       obj{"survey": "one", "question": q1.ID, "text": "x", "user_id": 1},
		"missing user":     obj{"survey": s1.ID, "question": q1.ID, "text": "x"},
		"unknown question": obj{"survey": s1.ID, "question": q1.ID + 100, "text": "x", "user_id": 1},
	} {
		t.Run(name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/result/", body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	assert.Equal(t, 0, dbtest.Count(t, s.db, "answer"))
}

func TestListResultsRequiresUserID(t *testing.T) {
	s := newServer(t)

	rec := s.do(http.MethodGet, "/result/", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "user_id is required", decode[httpx.ErrResponse](t, rec).Error)

	rec = s.do(http.MethodGet, "/result/?user_id=abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRequiresToken(t *testing.T) {
	s := newServer(t)

	rec := s.do(http.MethodGet, "/admin/survey", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/admin/survey", nil, http.Header{"Authorization": {"Bearer forged"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/login", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (s *server) login(user, pass string) *httptest.ResponseRecorder {
	s.t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.SetBasicAuth(user, pass)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestAdminSurveyLifecycle(t *testing.T) {
	s := newServer(t)
	require.NoError(t, database.EnsureAdmin(context.Background(), s.db, "admin", "hunter2"))

	rec := s.login("admin", "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.login("admin", "hunter2")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tokens := decode[tokenResponse](t, rec)
	require.NotEmpty(t, tokens.AccessToken)
	auth := http.Header{"Authorization": {"Bearer " + tokens.AccessToken}}

	// validation failures write nothing
	rec = s.do(http.MethodPost, "/admin/survey", obj{"name": "S", "start_at": s.today.AddDays(1).String(), "end_at": s.today.String()}, auth)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.MsgDateOrder, decode[httpx.ErrResponse](t, rec).Error)

	rec = s.do(http.MethodPost, "/admin/survey", obj{"name": "S", "start_at": "yesterday", "end_at": s.today.String()}, auth)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.MsgInvalidDate, decode[httpx.ErrResponse](t, rec).Error)
	assert.Equal(t, 0, dbtest.Count(t, s.db, "survey"))

	rec = s.do(http.MethodPost, "/admin/survey", obj{"name": "S", "start_at": s.today.String(), "end_at": s.today.String(), "description": "about"}, auth)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	survey := decode[model.Survey](t, rec)
	assert.Equal(t, "about", *survey.Description)

	rec = s.do(http.MethodPost, fmt.Sprintf("/admin/survey/%d/question", survey.ID), obj{
		"text":    "Pick one",
		"type":    "radio",
		"choices": []obj{{"text": "A"}, {"text": "B"}},
	}, auth)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	question := decode[model.QuestionDetail](t, rec)
	require.Len(t, question.Choices, 2)

	rec = s.do(http.MethodPost, fmt.Sprintf("/admin/question/%d/choice", question.ID), obj{"text": "C"}, auth)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPut, fmt.Sprintf("/admin/survey/%d", survey.ID), obj{"name": "renamed", "start_at": s.today.AddDays(-9).String(), "end_at": s.today.AddDays(3).String()}, auth)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[model.Survey](t, rec)
	assert.Equal(t, s.today, updated.StartAt)
	assert.Equal(t, s.today.AddDays(3), updated.EndAt)

	rec = s.do(http.MethodGet, fmt.Sprintf("/survey/%d", survey.ID), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[model.SurveyDetail](t, rec)
	assert.Equal(t, "renamed", detail.Name)
	require.Len(t, detail.Questions, 1)
	assert.Len(t, detail.Questions[0].Choices, 3)

	rec = s.do(http.MethodPost, "/result", obj{"survey": survey.ID, "question": question.ID, "choice": question.Choices[0].ID, "user_id": 3}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(http.MethodGet, fmt.Sprintf("/admin/survey/%d/answers", survey.ID), nil, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Answer](t, rec), 1)

	rec = s.do(http.MethodGet, "/admin/survey", nil, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Survey](t, rec), 1)

	rec = s.do(http.MethodDelete, fmt.Sprintf("/admin/survey/%d", survey.ID), nil, auth)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, dbtest.Count(t, s.db, "answer"))

	rec = s.do(http.MethodGet, fmt.Sprintf("/admin/survey/%d", survey.ID), nil, auth)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRefreshToken(t *testing.T) {
	s := newServer(t)
	require.NoError(t, database.EnsureAdmin(context.Background(), s.db, "admin", "hunter2"))

	rec := s.login("admin", "hunter2")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tokens := decode[tokenResponse](t, rec)
	refresh := http.Header{"Authorization": {"Refresh " + tokens.RefreshToken}}

	rec = s.do(http.MethodPost, "/refresh", nil, refresh)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, decode[tokenResponse](t, rec).AccessToken)

	rec = s.do(http.MethodPost, "/refresh", nil, refresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "a refresh token is single use")

	rec = s.do(http.MethodPost, "/refresh", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
