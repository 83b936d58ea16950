package routes

import (
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/mbolis/survey-api/app"
	"github.com/mbolis/survey-api/httpx"
	"github.com/mbolis/survey-api/log"
)

var reRefreshAuth = regexp.MustCompile(`(?i)^refresh\s+(.*)`)

// Login trades HTTP Basic credentials for an access and refresh token pair.
func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok {
			httpx.LogStatus(w, r, http.StatusUnauthorized, log.DebugLevel, "login.basic_auth")
			return
		}

		setForm(r, url.Values{
			"grant_type": {"password"},
			"username":   {user},
			"password":   {pass},
		})

		grant(w, r, app, "login", user)
	}
}

// Refresh trades the refresh token in "Authorization: Refresh <token>" for a new pair.
func Refresh(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match := reRefreshAuth.FindStringSubmatch(r.Header.Get("authorization"))
		if len(match) == 0 {
			httpx.LogStatus(w, r, http.StatusUnauthorized, log.DebugLevel, "refresh.token")
			return
		}

		setForm(r, url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {match[1]},
		})

		grant(w, r, app, "refresh", "")
	}
}

func setForm(r *http.Request, body url.Values) {
	encoded := body.Encode()
	r.Body = io.NopCloser(strings.NewReader(encoded))
	r.ContentLength = int64(len(encoded))
	r.Header.Set("content-type", "application/x-www-form-urlencoded")
	r.Header.Set("content-length", strconv.Itoa(len(encoded)))
}

func grant(w http.ResponseWriter, r *http.Request, app app.App, code string, user string) {
	resp := httpx.NewResponseBuffer()
	app.UserCredentials(resp, r)

	entry := log.WithFields(log.Fields{"status": resp.Status(), "user": user})
	if resp.Status() == http.StatusOK {
		entry.Info(code + ": token issued")
	} else {
		entry.Debug(code + ": token refused")
	}

	err := resp.Flush(w)
	if err != nil {
		log.Errorf("%s.flush: %s", code, err)
	}
}
