package store

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mbolis/survey-api/model"
)

// CreateQuestion adds a question, with its choices, to an existing survey.
func CreateQuestion(ctx context.Context, q Querier, surveyID int, qd model.QuestionDetail) (model.QuestionDetail, error) {
	err := qd.Validate()
	if err != nil {
		return qd, err
	}

	ok, err := exists(ctx, q, "survey", surveyID)
	if err != nil {
		return qd, err
	}
	if !ok {
		return qd, model.ErrNotFound
	}

	err = q.QueryRowContext(ctx, `
		INSERT INTO question (survey_id, text, type) VALUES (?, ?, ?)
		RETURNING id`,
		surveyID,
		qd.Text,
		qd.Type,
	).Scan(&qd.ID)
	if err != nil {
		return qd, errors.Wrap(err, "db.insert_question")
	}

	choices := make([]model.Choice, 0, len(qd.Choices))
	for _, c := range qd.Choices {
		c, err = insertChoice(ctx, q, qd.ID, c)
		if err != nil {
			return qd, err
		}
		choices = append(choices, c)
	}
	qd.Choices = choices

	return qd, nil
}

// DeleteQuestion removes a question together with its choices and answers.
func DeleteQuestion(ctx context.Context, q Querier, id int) error {
	return deleteByID(ctx, q, "question", id)
}

func CreateChoice(ctx context.Context, q Querier, questionID int, c model.Choice) (model.Choice, error) {
	err := c.Validate()
	if err != nil {
		return c, err
	}

	ok, err := exists(ctx, q, "question", questionID)
	if err != nil {
		return c, err
	}
	if !ok {
		return c, model.ErrNotFound
	}

	return insertChoice(ctx, q, questionID, c)
}

func insertChoice(ctx context.Context, q Querier, questionID int, c model.Choice) (model.Choice, error) {
	err := q.QueryRowContext(ctx, `
		INSERT INTO choice (question_id, text) VALUES (?, ?)
		RETURNING id`,
		questionID,
		c.Text,
	).Scan(&c.ID)
	return c, errors.Wrap(err, "db.insert_choice")
}

// DeleteChoice removes a choice and the answers that picked it.
func DeleteChoice(ctx context.Context, q Querier, id int) error {
	return deleteByID(ctx, q, "choice", id)
}
