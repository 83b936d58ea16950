package model

type QuestionType string

const (
	QuestionText     QuestionType = "text"
	QuestionRadio    QuestionType = "radio"
	QuestionCheckbox QuestionType = "checkbox"
)

type Survey struct {
	ID          int     `json:"id"`
	Name        string  `json:"name" validate:"required,max=255"`
	StartAt     Date    `json:"start_at"`
	EndAt       Date    `json:"end_at"`
	Description *string `json:"description"`
}

// IsActive reports whether today falls within the survey's date range, bounds included.
func (s Survey) IsActive(today Date) bool {
	return !today.Before(s.StartAt) && !today.After(s.EndAt)
}

type SurveyDetail struct {
	Survey
	Questions []QuestionDetail `json:"questions"`
}

type Question struct {
	ID   int          `json:"id"`
	Text string       `json:"text" validate:"required"`
	Type QuestionType `json:"type" validate:"required,oneof=text radio checkbox"`
}

type QuestionDetail struct {
	Question
	Choices []Choice `json:"choices" validate:"dive"`
}

type Choice struct {
	ID   int    `json:"id"`
	Text string `json:"text" validate:"required,max=100"`
}

// Answer is the read side of an answer row, with its question and choice joined in.
type Answer struct {
	ID       int      `json:"id"`
	UserID   int      `json:"user_id"`
	Survey   int      `json:"survey"`
	Question Question `json:"question"`
	Choice   *Choice  `json:"choice"`
	Text     *string  `json:"text"`
}

// Result is a survey together with one user's answers to it.
type Result struct {
	Survey
	Answers []Answer `json:"answers"`
}

// AnswerInput is the payload accepted when submitting an answer. It is
// echoed back, with ID set, once stored.
type AnswerInput struct {
	ID       int     `json:"id"`
	Survey   int     `json:"survey" validate:"required"`
	Question int     `json:"question" validate:"required"`
	Choice   *int    `json:"choice"`
	Text     *string `json:"text"`
	UserID   *int    `json:"user_id" validate:"required"`
}
