package routes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mbolis/survey-api/app"
	"github.com/mbolis/survey-api/httpx"
	"github.com/mbolis/survey-api/log"
	"github.com/mbolis/survey-api/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(
		middleware.RequestID,
		middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: log.Logger, NoColor: true}),
		middleware.Recoverer,
		middleware.StripSlashes,
	)

	root.Get("/survey", ListActiveSurveys(app))
	root.Get("/survey/{id}", GetActiveSurvey(app))

	root.Get("/result", ListResults(app))
	root.Post("/result", CreateResult(app))

	root.Post("/login", Login(app))
	root.Post("/refresh", Refresh(app))

	root.Mount("/admin", adminRouter(app))

	return root
}

func adminRouter(app app.App) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewares.Admin(app.TokenSecret))

	r.Get("/survey", ListSurveys(app))
	r.Post("/survey", CreateSurvey(app))
	r.Get(`/survey/{id:^\d+$}`, GetSurveyById(app))
	r.Put(`/survey/{id:^\d+$}`, UpdateSurvey(app))
	r.Delete(`/survey/{id:^\d+$}`, DeleteSurvey(app))
	r.Get(`/survey/{id:^\d+$}/answers`, GetSurveyAnswers(app))

	r.Post(`/survey/{id:^\d+$}/question`, CreateQuestion(app))
	r.Delete(`/question/{id:^\d+$}`, DeleteQuestion(app))

	r.Post(`/question/{id:^\d+$}/choice`, CreateChoice(app))
	r.Delete(`/choice/{id:^\d+$}`, DeleteChoice(app))

	return r
}

// urlID reads the numeric {id} path parameter. An id that is not a number
// names no object, so it is answered with 404.
func urlID(w http.ResponseWriter, r *http.Request) (int, bool) {
	param := chi.URLParam(r, "id")
	id, err := strconv.Atoi(param)
	if err != nil {
		httpx.LogNotFound(w, r, "request.get_url_param.id", param)
		return 0, false
	}
	return id, true
}
