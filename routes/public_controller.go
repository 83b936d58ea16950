package routes

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"github.com/mbolis/survey-api/app"
	"github.com/mbolis/survey-api/httpx"
	"github.com/mbolis/survey-api/log"
	"github.com/mbolis/survey-api/model"
	"github.com/mbolis/survey-api/store"
)

func ListActiveSurveys(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveys, err := store.ActiveSurveys(r.Context(), app.DB, app.Today())
		if err != nil {
			httpx.LogInternalError(w, r, "get_active_surveys", err)
			return
		}

		render.JSON(w, r, surveys)
	}
}

func GetActiveSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := urlID(w, r)
		if !ok {
			return
		}

		survey, err := store.ActiveSurveyDetail(r.Context(), app.DB, surveyId, app.Today())
		if err != nil {
			httpx.LogError(w, r, "get_active_survey", surveyId, err)
			return
		}

		render.JSON(w, r, survey)
	}
}

func ListResults(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		param := r.URL.Query().Get("user_id")
		if param == "" {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.get_query_param.user_id", "user_id is required")
			return
		}
		userId, err := strconv.Atoi(param)
		if err != nil {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.get_query_param.user_id", "user_id must be an integer, got %q", param)
			return
		}

		results, err := store.UserResults(r.Context(), app.DB, userId)
		if err != nil {
			httpx.LogInternalError(w, r, "get_results", err)
			return
		}

		render.JSON(w, r, results)
	}
}

func CreateResult(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		answer := model.AnswerInput{}
		err := render.DecodeJSON(r.Body, &answer)
		if err != nil {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "malformed answer: %s", err)
			return
		}

		err = store.InTx(r.Context(), app.DB, func(tx *sql.Tx) error {
			answer, err = store.CreateAnswer(r.Context(), tx, answer)
			return err
		})
		if err != nil {
			httpx.LogError(w, r, "create_result", answer.Survey, err)
			return
		}

		log.WithFields(log.Fields{
			"answer":  answer.ID,
			"survey":  answer.Survey,
			"user_id": *answer.UserID,
		}).Debug("answer stored")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, answer)
	}
}
