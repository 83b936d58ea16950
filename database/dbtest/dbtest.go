// Package dbtest opens throwaway databases for tests, migrated like the real one.
package dbtest

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mbolis/survey-api/config"
	"github.com/mbolis/survey-api/database"
	"github.com/mbolis/survey-api/model"
	"github.com/mbolis/survey-api/store"
)

var seq atomic.Int64

// Open returns a fresh in-memory database, closed when the test ends.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	url := fmt.Sprintf("file:dbtest%d?mode=memory&cache=shared", seq.Add(1))
	db, err := database.Open(config.Config{DBUrl: url})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

// OpenFile returns a database backed by a file in a temporary directory.
func OpenFile(t testing.TB) *sql.DB {
	t.Helper()

	url := filepath.Join(t.TempDir(), "survey.sqlite")
	db, err := database.Open(config.Config{DBUrl: url})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func Survey(t testing.TB, db *sql.DB, name string, start, end model.Date) model.Survey {
	t.Helper()

	s, err := store.CreateSurvey(context.Background(), db, model.Survey{Name: name, StartAt: start, EndAt: end})
	require.NoError(t, err)
	return s
}

// Question adds a question with one choice per given text.
func Question(t testing.TB, db *sql.DB, surveyID int, text string, typ model.QuestionType, choices ...string) model.QuestionDetail {
	t.Helper()

	qd := model.QuestionDetail{Question: model.Question{Text: text, Type: typ}}
	for _, c := range choices {
		qd.Choices = append(qd.Choices, model.Choice{Text: c})
	}

	qd, err := store.CreateQuestion(context.Background(), db, surveyID, qd)
	require.NoError(t, err)
	return qd
}

func Answer(t testing.TB, db *sql.DB, in model.AnswerInput) model.AnswerInput {
	t.Helper()

	in, err := store.CreateAnswer(context.Background(), db, in)
	require.NoError(t, err)
	return in
}

func Count(t testing.TB, db *sql.DB, table string) (n int) {
	t.Helper()

	err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n)
	require.NoError(t, err)
	return
}

func Ptr[T any](v T) *T {
	return &v
}
