// Package validation checks TV show records before they are written.
//
// Rules run through a singleton go-playground validator, one field at a
// time, so every violation can carry the property name and message that
// the HTTP API reports back to clients.
package validation

import (
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"tvshow-api/internal/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Violation is a single field rule failure
type Violation struct {
	PropertyName string `json:"propertyName"`
	ErrorMessage string `json:"errorMessage"`
}

// Violations is the full set of failures for one record
type Violations []Violation

// Valid reports whether no rule failed
func (v Violations) Valid() bool {
	return len(v) == 0
}

// Error joins every message, so Violations can travel as an error
func (v Violations) Error() string {
	messages := make([]string, 0, len(v))
	for _, violation := range v {
		messages = append(messages, violation.PropertyName+": "+violation.ErrorMessage)
	}
	return strings.Join(messages, "; ")
}

type rule struct {
	property string
	tag      string
	value    func(*models.TVShow) any
	message  string
}

// rules are evaluated in order; each field gets at most one violation.
var tvShowRules = []rule{
	{
		property: "Id",
		tag:      "gt=0",
		value:    func(s *models.TVShow) any { return s.ID },
		message:  "'Id' must be greater than '0'.",
	},
	{
		property: "Title",
		tag:      "notblank",
		value:    func(s *models.TVShow) any { return s.Title },
		message:  "'Title' must not be empty.",
	},
	{
		property: "ReleaseDate",
		tag:      "notzerotime",
		value:    func(s *models.TVShow) any { return s.ReleaseDate.Time },
		message:  "'Release Date' must not be empty.",
	},
	{
		property: "Favourite",
		tag:      "min=0,max=1",
		value:    func(s *models.TVShow) any { return s.Favourite },
		message:  "Value must be 0 or 1",
	},
}

// GetValidator returns the shared validator with the custom tags registered
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = validate.RegisterValidation("notzerotime", func(fl validator.FieldLevel) bool {
			t, ok := fl.Field().Interface().(time.Time)
			return ok && !t.IsZero()
		})
	})
	return validate
}

// ValidateTVShow returns every rule the show breaks. It never modifies show.
func ValidateTVShow(show *models.TVShow) Violations {
	v := GetValidator()

	violations := Violations{}
	for _, r := range tvShowRules {
		if err := v.Var(r.value(show), r.tag); err != nil {
			violations = append(violations, Violation{
				PropertyName: r.property,
				ErrorMessage: r.message,
			})
		}
	}
	return violations
}

// DuplicateID is reported when a show with the same Id already exists
func DuplicateID() Violations {
	return Violations{{
		PropertyName: "Id",
		ErrorMessage: "A tvShow with this Id already created",
	}}
}
