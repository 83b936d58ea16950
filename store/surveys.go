package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/mbolis/survey-api/model"
)

type scanner interface {
	Scan(dest ...any) error
}

const surveyColumns = `s.id, s.name, s.start_at, s.end_at, s.description`

func scanSurvey(sc scanner, s *model.Survey, more ...any) error {
	dest := append([]any{&s.ID, &s.Name, &s.StartAt, &s.EndAt, &s.Description}, more...)
	return sc.Scan(dest...)
}

// ActiveSurveys lists the surveys whose date range contains today.
func ActiveSurveys(ctx context.Context, q Querier, today model.Date) ([]model.Survey, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+surveyColumns+`
		FROM survey s
		WHERE s.start_at <= ?
			AND s.end_at >= ?
		ORDER BY s.id`,
		today,
		today,
	)
	if err != nil {
		return nil, errors.Wrap(err, "db.get_active_surveys")
	}
	return collectSurveys(rows, "db.get_active_surveys")
}

func ListSurveys(ctx context.Context, q Querier) ([]model.Survey, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+surveyColumns+`
		FROM survey s
		ORDER BY s.id`)
	if err != nil {
		return nil, errors.Wrap(err, "db.get_surveys")
	}
	return collectSurveys(rows, "db.get_surveys")
}

func collectSurveys(rows *sql.Rows, code string) ([]model.Survey, error) {
	defer rows.Close()

	surveys := []model.Survey{}
	for rows.Next() {
		s := model.Survey{}
		err := scanSurvey(rows, &s)
		if err != nil {
			return nil, errors.Wrap(err, code+".scan")
		}
		surveys = append(surveys, s)
	}
	return surveys, errors.Wrap(rows.Err(), code)
}

func GetSurvey(ctx context.Context, q Querier, id int) (s model.Survey, err error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+surveyColumns+`
		FROM survey s
		WHERE s.id = ?`,
		id,
	)
	err = scanSurvey(row, &s)
	if errors.Is(err, sql.ErrNoRows) {
		return s, model.ErrNotFound
	}
	return s, errors.Wrap(err, "db.get_survey")
}

// ActiveSurveyDetail loads a survey with its questions and their choices,
// as long as it is active today.
func ActiveSurveyDetail(ctx context.Context, q Querier, id int, today model.Date) (detail model.SurveyDetail, err error) {
	detail, err = SurveyDetail(ctx, q, id)
	if err != nil {
		return
	}
	if !detail.IsActive(today) {
		return model.SurveyDetail{}, model.ErrNotFound
	}
	return
}

// SurveyDetail loads a survey, its questions and their choices in one query.
func SurveyDetail(ctx context.Context, q Querier, id int) (detail model.SurveyDetail, err error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+surveyColumns+`,
			q.id, q.text, q.type,
			c.id, c.text
		FROM survey s
		LEFT OUTER JOIN question q ON (s.id = q.survey_id)
		LEFT OUTER JOIN choice c ON (q.id = c.question_id)
		WHERE s.id = ?
		ORDER BY q.id, c.id`,
		id,
	)
	if err != nil {
		return detail, errors.Wrap(err, "db.get_survey_detail")
	}
	defer rows.Close()

	found := false
	detail.Questions = []model.QuestionDetail{}
	for rows.Next() {
		var (
			questionID   sql.NullInt64
			questionText sql.NullString
			questionType sql.NullString
			choiceID     sql.NullInt64
			choiceText   sql.NullString
		)
		err = scanSurvey(rows, &detail.Survey, &questionID, &questionText, &questionType, &choiceID, &choiceText)
		if err != nil {
			return model.SurveyDetail{}, errors.Wrap(err, "db.get_survey_detail.scan")
		}
		found = true
		if !questionID.Valid {
			continue
		}

		lastIdx := len(detail.Questions) - 1
		if lastIdx < 0 || detail.Questions[lastIdx].ID != int(questionID.Int64) {
			detail.Questions = append(detail.Questions, model.QuestionDetail{
				Question: model.Question{
					ID:   int(questionID.Int64),
					Text: questionText.String,
					Type: model.QuestionType(questionType.String),
				},
				Choices: []model.Choice{},
			})
			lastIdx++
		}
		if choiceID.Valid {
			detail.Questions[lastIdx].Choices = append(detail.Questions[lastIdx].Choices, model.Choice{
				ID:   int(choiceID.Int64),
				Text: choiceText.String,
			})
		}
	}
	if err = rows.Err(); err != nil {
		return model.SurveyDetail{}, errors.Wrap(err, "db.get_survey_detail")
	}
	if !found {
		return model.SurveyDetail{}, model.ErrNotFound
	}
	return detail, nil
}

// CreateSurvey validates s and stores it, returning it with its new ID.
func CreateSurvey(ctx context.Context, q Querier, s model.Survey) (model.Survey, error) {
	err := s.Validate()
	if err != nil {
		return s, err
	}

	err = q.QueryRowContext(ctx, `
		INSERT INTO survey (name, start_at, end_at, description) VALUES (?, ?, ?, ?)
		RETURNING id`,
		s.Name,
		s.StartAt,
		s.EndAt,
		s.Description,
	).Scan(&s.ID)
	return s, errors.Wrap(err, "db.insert_survey")
}

// UpdateSurvey replaces name, end date and description of a survey. The
// start date of an existing survey never changes.
func UpdateSurvey(ctx context.Context, q Querier, id int, s model.Survey) (model.Survey, error) {
	current, err := GetSurvey(ctx, q, id)
	if err != nil {
		return s, err
	}

	s.ID = id
	s.StartAt = current.StartAt
	err = s.Validate()
	if err != nil {
		return s, err
	}

	res, err := q.ExecContext(ctx, `
		UPDATE survey
		SET
			name = ?,
			end_at = ?,
			description = ?
		WHERE id = ?`,
		s.Name,
		s.EndAt,
		s.Description,
		id,
	)
	if err != nil {
		return s, errors.Wrap(err, "db.update_survey")
	}
	return s, verifyAffected(res, "db.update_survey.verify")
}

// DeleteSurvey removes a survey; its questions, choices and answers go with it.
func DeleteSurvey(ctx context.Context, q Querier, id int) error {
	return deleteByID(ctx, q, "survey", id)
}

func verifyAffected(res sql.Result, code string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, code)
	}
	if n < 1 {
		return model.ErrNotFound
	}
	return nil
}
