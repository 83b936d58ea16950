package app

import (
	"database/sql"
	"time"

	"github.com/go-chi/oauth"

	"github.com/mbolis/survey-api/config"
	"github.com/mbolis/survey-api/model"
)

type App struct {
	*sql.DB
	*oauth.BearerServer
	config.Config
}

// Today is the date survey availability is checked against.
func (app App) Today() model.Date {
	loc := app.Location
	if loc == nil {
		loc = time.Local
	}
	return model.Today(loc)
}
