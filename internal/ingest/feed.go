package ingest

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/reviewlog/logsearch/internal/config"
)

// ErrMissingSlug is returned when a feed entry has no slug. Without a slug
// the entry cannot be keyed, so the whole feed is rejected.
var ErrMissingSlug = errors.New("feed entry is missing a slug")

// Entry is one item of an updates.json feed. Movie feeds carry Year and
// Genres; book feeds carry Authors, Kind and WorkYear.
type Entry struct {
	Slug    string   `json:"slug" validate:"required"`
	Title   string   `json:"title" validate:"required"`
	Image   string   `json:"image" validate:"required"`
	Date    string   `json:"date" validate:"required,feeddate"`
	Stars   *float64 `json:"stars" validate:"required,min=0,max=5"`
	Excerpt string   `json:"excerpt"`

	Year   string   `json:"year,omitempty"`
	Genres []string `json:"genres,omitempty"`

	Authors  []string `json:"authors,omitempty"`
	Kind     string   `json:"kind,omitempty"`
	WorkYear string   `json:"workYear,omitempty"`
}

// Problem is one failed rule on one entry.
type Problem struct {
	Path    string // index.field, e.g. "3.year"
	Message string
}

func (p Problem) String() string {
	return p.Path + ": " + p.Message
}

// ValidationError lists every problem found in a feed.
type ValidationError struct {
	Source   string
	Problems []Problem
}

func (e *ValidationError) Error() string {
	lines := make([]string, 0, len(e.Problems)+1)
	lines = append(lines, fmt.Sprintf("validation error in %s updates:", e.Source))
	for _, p := range e.Problems {
		lines = append(lines, "- "+p.String())
	}
	return strings.Join(lines, "\n")
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// dateLayouts are the date forms accepted in feeds.
var dateLayouts = []string{"2006-01-02", time.RFC3339, time.RFC3339Nano}

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("feeddate", func(fl validator.FieldLevel) bool {
			_, ok := parseDate(fl.Field().String())
			return ok
		})
	})
	return validate
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeDate returns the entry date as YYYY-MM-DD.
func (e Entry) NormalizeDate() string {
	t, ok := parseDate(e.Date)
	if !ok {
		return e.Date
	}
	return t.UTC().Format("2006-01-02")
}

// ParseFeed decodes and validates a feed. A missing slug fails fast with
// ErrMissingSlug; every other problem is collected into a *ValidationError.
func ParseFeed(source config.SourceConfig, data []byte) ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode %s feed: %w", source.Name, err)
	}

	for i, e := range entries {
		if strings.TrimSpace(e.Slug) == "" {
			return nil, fmt.Errorf("%w: %s entry %d", ErrMissingSlug, source.Name, i)
		}
	}

	var problems []Problem
	for i, e := range entries {
		problems = append(problems, validateEntry(source.Kind, i, e)...)
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Source: source.Name, Problems: problems}
	}
	return entries, nil
}

func validateEntry(kind config.SourceKind, index int, e Entry) []Problem {
	v := getValidator()
	var problems []Problem

	if err := v.Struct(e); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return []Problem{{Path: fmt.Sprint(index), Message: err.Error()}}
		}
		for _, fe := range fieldErrs {
			problems = append(problems, Problem{
				Path:    fmt.Sprintf("%d.%s", index, fe.Field()),
				Message: describe(fe.Tag(), fe.Param()),
			})
		}
	}

	switch kind {
	case config.SourceMovie:
		if err := v.Var(e.Year, "required"); err != nil {
			problems = append(problems, Problem{Path: fmt.Sprintf("%d.year", index), Message: describe("required", "")})
		}
	case config.SourceBook:
		if err := v.Var(e.Authors, "required,min=1,dive,required"); err != nil {
			problems = append(problems, Problem{Path: fmt.Sprintf("%d.authors", index), Message: describe("required", "")})
		}
	}
	return problems
}

func describe(tag, param string) string {
	switch tag {
	case "required":
		return "required"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "feeddate":
		return "invalid date"
	default:
		return "failed " + tag
	}
}
