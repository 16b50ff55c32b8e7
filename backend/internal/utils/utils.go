package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/threadly-dev/threadly/shared/config"
	"github.com/threadly-dev/threadly/shared/errors"
)

var handlePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

const (
	maxHandleLength = 30
	maxNameLength   = 50
	maxBioLength    = 1000
)

// TextValidator checks thread bodies against the configured bounds.
// Length is counted in runes after trimming surrounding whitespace.
type TextValidator struct {
	min, max int
}

func NewTextValidator(cfg *config.Public) *TextValidator {
	return &TextValidator{min: cfg.MinTextLength, max: cfg.MaxTextLength}
}

func (v *TextValidator) Text(text string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(text))
	if n < v.min {
		return errors.Validation("text must be at least %d characters", v.min)
	}
	if n > v.max {
		return errors.Validation("text must be at most %d characters", v.max)
	}
	return nil
}

// ProfileValidator checks user and community profile fields.
type ProfileValidator struct{}

func NewProfileValidator() *ProfileValidator {
	return &ProfileValidator{}
}

// Handle expects an already lower-cased handle.
func (v *ProfileValidator) Handle(handle string) error {
	n := utf8.RuneCountInString(handle)
	if n == 0 || n > maxHandleLength {
		return errors.Validation("username must be 1 to %d characters", maxHandleLength)
	}
	if !handlePattern.MatchString(handle) {
		return errors.Validation("username may contain only lowercase letters, digits and underscores")
	}
	return nil
}

func (v *ProfileValidator) Name(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n == 0 || n > maxNameLength {
		return errors.Validation("name must be 1 to %d characters", maxNameLength)
	}
	return nil
}

func (v *ProfileValidator) Bio(bio string) error {
	if utf8.RuneCountInString(bio) > maxBioLength {
		return errors.Validation("bio must be at most %d characters", maxBioLength)
	}
	return nil
}
