package routes

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/survey-api/app"
	"github.com/mbolis/survey-api/httpx"
	"github.com/mbolis/survey-api/log"
	"github.com/mbolis/survey-api/model"
	"github.com/mbolis/survey-api/store"
)

func ListSurveys(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveys, err := store.ListSurveys(r.Context(), app.DB)
		if err != nil {
			httpx.LogInternalError(w, r, "get_surveys", err)
			return
		}

		render.JSON(w, r, surveys)
	}
}

func CreateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		survey := model.Survey{}
		err := render.DecodeJSON(r.Body, &survey)
		if err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		survey, err = store.CreateSurvey(r.Context(), app.DB, survey)
		if err != nil {
			httpx.LogError(w, r, "create_survey", nil, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, survey)
	}
}

func GetSurveyById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := urlID(w, r)
		if !ok {
			return
		}

		survey, err := store.SurveyDetail(r.Context(), app.DB, surveyId)
		if err != nil {
			httpx.LogError(w, r, "get_survey", surveyId, err)
			return
		}

		render.JSON(w, r, survey)
	}
}

func UpdateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := urlID(w, r)
		if !ok {
			return
		}

		survey := model.Survey{}
		err := render.DecodeJSON(r.Body, &survey)
		if err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		err = store.InTx(r.Context(), app.DB, func(tx *sql.Tx) error {
			survey, err = store.UpdateSurvey(r.Context(), tx, surveyId, survey)
			return err
		})
		if err != nil {
			httpx.LogError(w, r, "update_survey", surveyId, err)
			return
		}

		render.JSON(w, r, survey)
	}
}

func DeleteSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := urlID(w, r)
		if !ok {
			return
		}

		err := store.DeleteSurvey(r.Context(), app.DB, surveyId)
		if err != nil {
			httpx.LogError(w, r, "delete_survey", surveyId, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func GetSurveyAnswers(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := urlID(w, r)
		if !ok {
			return
		}

		answers, err := store.SurveyAnswers(r.Context(), app.DB, surveyId)
		if err != nil {
			httpx.LogError(w, r, "get_answers", surveyId, err)
			return
		}

		render.JSON(w, r, answers)
	}
}

func CreateQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := urlID(w, r)
		if !ok {
			return
		}

		question := model.QuestionDetail{}
		err := render.DecodeJSON(r.Body, &question)
		if err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		err = store.InTx(r.Context(), app.DB, func(tx *sql.Tx) error {
			question, err = store.CreateQuestion(r.Context(), tx, surveyId, question)
			return err
		})
		if err != nil {
			httpx.LogError(w, r, "create_question", surveyId, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, question)
	}
}

func DeleteQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionId, ok := urlID(w, r)
		if !ok {
			return
		}

		err := store.DeleteQuestion(r.Context(), app.DB, questionId)
		if err != nil {
			httpx.LogError(w, r, "delete_question", questionId, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func CreateChoice(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionId, ok := urlID(w, r)
		if !ok {
			return
		}

		choice := model.Choice{}
		err := render.DecodeJSON(r.Body, &choice)
		if err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		err = store.InTx(r.Context(), app.DB, func(tx *sql.Tx) error {
			choice, err = store.CreateChoice(r.Context(), tx, questionId, choice)
			return err
		})
		if err != nil {
			httpx.LogError(w, r, "create_choice", questionId, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, choice)
	}
}

func DeleteChoice(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		choiceId, ok := urlID(w, r)
		if !ok {
			return
		}

		err := store.DeleteChoice(r.Context(), app.DB, choiceId)
		if err != nil {
			httpx.LogError(w, r, "delete_choice", choiceId, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
