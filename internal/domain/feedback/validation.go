package feedback

import (
	"fmt"
	"strings"
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"message"`
}

func (e FieldError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Msg) }

// ValidationError groups the field errors of one rejected input.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "invalid input"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Error())
	}
	return strings.Join(parts, "; ")
}

// Input is what a submitter provides.
type Input struct {
	Rating int    `json:"rating" form:"rating"`
	Review string `json:"review" form:"review"`
}

// Validate checks in against the submission constraints. The review is
// judged after trimming surrounding whitespace.
func Validate(in Input) *ValidationError {
	var errs []FieldError
	review := strings.TrimSpace(in.Review)
	switch {
	case review == "":
		errs = append(errs, FieldError{Field: "review", Msg: "Please provide a comment before submitting."})
	case ReviewLength(review) > MaxReviewRunes:
		errs = append(errs, FieldError{Field: "review", Msg: fmt.Sprintf("must be at most %d characters", MaxReviewRunes)})
	}
	if in.Rating < MinRating || in.Rating > MaxRating {
		errs = append(errs, FieldError{Field: "rating", Msg: fmt.Sprintf("must be between %d and %d", MinRating, MaxRating)})
	}
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Fields: errs}
}
