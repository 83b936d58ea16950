package httpx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/survey-api/log"
	"github.com/mbolis/survey-api/model"
)

// ErrResponse is the JSON body of every error reply.
type ErrResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, body ErrResponse) {
	render.Status(r, status)
	render.JSON(w, r, body)
}

// Will log an error, and send an HTTP response with status 500 and default text
func LogInternalError(w http.ResponseWriter, r *http.Request, code string, err error) {
	log.Errorf("%s: %s", code, err)
	writeError(w, r, http.StatusInternalServerError, ErrResponse{Error: http.StatusText(http.StatusInternalServerError)})
}

// Will log a debug message, and send an HTTP response with status 404
func LogNotFound(w http.ResponseWriter, r *http.Request, code string, id any) {
	log.Debugf("%s: not found (%v)", code, id)
	writeError(w, r, http.StatusNotFound, ErrResponse{Error: model.ErrNotFound.Error()})
}

// Will log an error code at the given level, and send
// an HTTP response with status and default text
func LogStatus(w http.ResponseWriter, r *http.Request, status int, level log.Level, code string) {
	log.Log(level, code)
	writeError(w, r, status, ErrResponse{Error: http.StatusText(status)})
}

// Will log an error code and message at the given level,
// and send an HTTP response with the given status and formatted message
func LogStatusMsg(w http.ResponseWriter, r *http.Request, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.Log(level, code+":", errMsg)
	writeError(w, r, status, ErrResponse{Error: errMsg})
}

// LogError picks the response for an error coming out of the store:
// 404 for missing rows, 400 for rejected input, 500 otherwise.
func LogError(w http.ResponseWriter, r *http.Request, code string, id any, err error) {
	var verr *model.ValidationError
	switch {
	case errors.Is(err, model.ErrNotFound):
		LogNotFound(w, r, code, id)
	case errors.As(err, &verr):
		log.Debugf("%s: invalid input: %s", code, verr)
		writeError(w, r, http.StatusBadRequest, ErrResponse{Error: verr.Messages[0], Details: verr.Messages})
	default:
		LogInternalError(w, r, code, err)
	}
}
