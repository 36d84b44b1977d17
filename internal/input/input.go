// Package input validates and normalizes user-entered task data before it
// reaches the engine. The engine itself accepts whatever it is given.
package input

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tgienger/todo/internal/engine"
	"github.com/tgienger/todo/internal/models"
)

// validate is a singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Register custom validation for non-empty trimmed strings
	_ = validate.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = validate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, err := models.ParseCategory(s)
		return err == nil
	})
	_ = validate.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, err := models.ParsePriority(s)
		return err == nil
	})
	_ = validate.RegisterValidation("duedate", func(fl validator.FieldLevel) bool {
		_, err := ParseDue(fl.Field().String(), time.Now())
		return err == nil
	})
}

// Error lists every field that failed validation
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	var parts []string
	for _, f := range []string{"Text", "Category", "Priority", "Due", "Tags"} {
		if msg, ok := e.Fields[f]; ok {
			parts = append(parts, msg)
		}
	}
	return strings.Join(parts, "; ")
}

// ErrBlank is returned for text that is empty after trimming
var ErrBlank = errors.New("text must not be blank")

// TaskForm holds the raw values of the add-task form. Empty category and
// priority fall back to Work and medium.
type TaskForm struct {
	Text     string `validate:"nonblank"`
	Category string `validate:"category"`
	Priority string `validate:"priority"`
	Due      string `validate:"duedate"`
	Tags     string
}

// Validate checks the form without building anything
func (f TaskForm) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &Error{Fields: map[string]string{}}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = formatFieldError(fe)
	}
	return out
}

// Build validates the form and converts it into engine input. now anchors
// relative due dates such as "tomorrow".
func (f TaskForm) Build(now time.Time) (engine.NewTask, error) {
	if err := f.Validate(); err != nil {
		return engine.NewTask{}, err
	}
	in := engine.NewTask{
		Text:     f.Text,
		Category: models.CategoryWork,
		Priority: models.PriorityMedium,
		Tags:     ParseTags(f.Tags),
	}
	if f.Category != "" {
		in.Category, _ = models.ParseCategory(f.Category)
	}
	if f.Priority != "" {
		in.Priority, _ = models.ParsePriority(f.Priority)
	}
	in.DueDate, _ = ParseDue(f.Due, now)
	return in, nil
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "nonblank":
		return "task text must not be blank"
	case "category":
		return fmt.Sprintf("unknown category %q", fe.Value())
	case "priority":
		return fmt.Sprintf("unknown priority %q", fe.Value())
	case "duedate":
		return fmt.Sprintf("invalid due date %q (use YYYY-MM-DD, today or tomorrow)", fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

// ParseTags splits a comma-separated list, trimming each tag and dropping
// blanks. Duplicates are kept.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// ParseDue parses a due date. Empty input means no due date.
func ParseDue(raw string, now time.Time) (*models.Date, error) {
	raw = strings.TrimSpace(raw)
	switch strings.ToLower(raw) {
	case "":
		return nil, nil
	case "today":
		return models.DateOf(now).Ptr(), nil
	case "tomorrow":
		return models.DateOf(now.AddDate(0, 0, 1)).Ptr(), nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return d.Ptr(), nil
}

// SubtaskText checks subtask text entered by the user
func SubtaskText(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrBlank
	}
	return raw, nil
}
