package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/mbolis/survey-api/model"
)

const answerColumns = `
	a.id, a.user_id, a.survey_id, a.text,
	q.id, q.text, q.type,
	c.id, c.text`

const answerJoins = `
	INNER JOIN question q ON (q.id = a.question_id)
	LEFT OUTER JOIN choice c ON (c.id = a.choice_id)`

func scanAnswer(sc scanner, a *model.Answer, before ...any) error {
	var choiceID sql.NullInt64
	var choiceText sql.NullString
	dest := append(before,
		&a.ID, &a.UserID, &a.Survey, &a.Text,
		&a.Question.ID, &a.Question.Text, &a.Question.Type,
		&choiceID, &choiceText,
	)
	err := sc.Scan(dest...)
	if err != nil {
		return err
	}

	a.Choice = nil
	if choiceID.Valid {
		a.Choice = &model.Choice{ID: int(choiceID.Int64), Text: choiceText.String}
	}
	return nil
}

// UserResults returns every survey the user answered, each one once and
// carrying only that user's answers.
func UserResults(ctx context.Context, q Querier, userID int) ([]model.Result, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+surveyColumns+`, `+answerColumns+`
		FROM answer a
		INNER JOIN survey s ON (s.id = a.survey_id)`+answerJoins+`
		WHERE a.user_id = ?
		ORDER BY s.id, a.id`,
		userID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "db.get_results")
	}
	defer rows.Close()

	results := []model.Result{}
	for rows.Next() {
		s := model.Survey{}
		a := model.Answer{}
		err = scanAnswer(rows, &a, &s.ID, &s.Name, &s.StartAt, &s.EndAt, &s.Description)
		if err != nil {
			return nil, errors.Wrap(err, "db.get_results.scan")
		}

		lastIdx := len(results) - 1
		if lastIdx > -1 && results[lastIdx].ID == s.ID {
			results[lastIdx].Answers = append(results[lastIdx].Answers, a)
		} else {
			results = append(results, model.Result{Survey: s, Answers: []model.Answer{a}})
		}
	}
	return results, errors.Wrap(rows.Err(), "db.get_results")
}

// SurveyAnswers lists all answers given to a survey, by any user.
func SurveyAnswers(ctx context.Context, q Querier, surveyID int) ([]model.Answer, error) {
	ok, err := exists(ctx, q, "survey", surveyID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrNotFound
	}

	rows, err := q.QueryContext(ctx, `
		SELECT `+answerColumns+`
		FROM answer a`+answerJoins+`
		WHERE a.survey_id = ?
		ORDER BY a.id`,
		surveyID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "db.get_answers")
	}
	defer rows.Close()

	answers := []model.Answer{}
	for rows.Next() {
		a := model.Answer{}
		err = scanAnswer(rows, &a)
		if err != nil {
			return nil, errors.Wrap(err, "db.get_answers.scan")
		}
		answers = append(answers, a)
	}
	return answers, errors.Wrap(rows.Err(), "db.get_answers")
}

// CreateAnswer validates and stores a submitted answer. Run it in a
// transaction: the reference checks and the insert must see the same rows.
func CreateAnswer(ctx context.Context, q Querier, in model.AnswerInput) (model.AnswerInput, error) {
	in.Normalize()
	err := in.Validate()
	if err != nil {
		return in, err
	}

	refs := []struct {
		table string
		id    *int
	}{
		{"survey", &in.Survey},
		{"question", &in.Question},
		{"choice", in.Choice},
	}
	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		ok, err := exists(ctx, q, ref.table, *ref.id)
		if err != nil {
			return in, err
		}
		if !ok {
			return in, model.MissingObject(ref.table, *ref.id)
		}
	}

	err = q.QueryRowContext(ctx, `
		INSERT INTO answer (survey_id, question_id, choice_id, text, user_id)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		in.Survey,
		in.Question,
		in.Choice,
		in.Text,
		in.UserID,
	).Scan(&in.ID)
	return in, errors.Wrap(err, "db.insert_answer")
}
