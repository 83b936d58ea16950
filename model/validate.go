package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func init() {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Validate checks the survey before it is written: name rules and a
// complete, ordered date range.
func (s Survey) Validate() error {
	msgs := structErrors(s)

	switch {
	case s.StartAt.IsZero() || s.EndAt.IsZero():
		msgs = append(msgs, MsgInvalidDate)
	case s.StartAt.After(s.EndAt):
		msgs = append(msgs, MsgDateOrder)
	}

	return asError(msgs)
}

func (q QuestionDetail) Validate() error {
	return asError(structErrors(q))
}

func (c Choice) Validate() error {
	return asError(structErrors(c))
}

// Normalize trims the free text answer and drops it when blank.
func (a *AnswerInput) Normalize() {
	if a.Text == nil {
		return
	}
	text := strings.TrimSpace(*a.Text)
	if text == "" {
		a.Text = nil
	} else {
		a.Text = &text
	}
}

// Validate requires the references and either some text or a choice.
// Whether the choice belongs to the question is not checked.
func (a AnswerInput) Validate() error {
	msgs := structErrors(a)

	blank := a.Text == nil || strings.TrimSpace(*a.Text) == ""
	if blank && a.Choice == nil {
		msgs = append(msgs, MsgTextOrChoice)
	}

	return asError(msgs)
}

func structErrors(v any) []string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldPath(fe)+": "+fieldMessage(fe))
	}
	return msgs
}

// fieldPath turns "QuestionDetail.choices[0].text" into "choices[0].text",
// dropping Go type and embedded struct names.
func fieldPath(fe validator.FieldError) string {
	var path []string
	for _, part := range strings.Split(fe.Namespace(), ".") {
		if part == "" || unicode.IsUpper(rune(part[0])) {
			continue
		}
		path = append(path, part)
	}
	if len(path) == 0 {
		return fe.Field()
	}
	return strings.Join(path, ".")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "max":
		return fmt.Sprintf("ensure this field has no more than %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("%q is not a valid choice", fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

func asError(msgs []string) error {
	if len(msgs) == 0 {
		return nil
	}
	return &ValidationError{Messages: msgs}
}
