package store

import (
	"fmt"
	"net/url"
	"strings"
)

// Validation runs against the prospective post-trim value. Duplicate checks
// are case-insensitive and the caller excludes the entity being edited from
// the sibling list, so a rename never collides with itself.

const (
	nameMinLen  = 2
	nameMaxLen  = 100
	titleMinLen = 3
	titleMaxLen = 200
)

// ValidateName checks a topic or sub-topic name against its siblings.
// The field label ("Topic name", "Sub-topic name") prefixes every reason.
func ValidateName(field, candidate string, siblings []string) error {
	return validateLabel(field, candidate, siblings, nameMinLen, nameMaxLen)
}

// ValidateQuestionTitle checks a question title against the titles of the
// other questions in the same sub-topic.
func ValidateQuestionTitle(candidate string, siblings []string) error {
	return validateLabel("Question title", candidate, siblings, titleMinLen, titleMaxLen)
}

func validateLabel(field, candidate string, siblings []string, minLen, maxLen int) error {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return &ValidationError{Field: field, Reason: "cannot be empty"}
	}
	if len(trimmed) < minLen {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("must be at least %d characters", minLen)}
	}
	if len(trimmed) > maxLen {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("must be at most %d characters", maxLen)}
	}
	for _, sib := range siblings {
		if strings.EqualFold(strings.TrimSpace(sib), trimmed) {
			return &ValidationError{Field: field, Reason: "already exists"}
		}
	}
	return nil
}

// ValidateURL accepts the empty string (the link is optional) or an absolute
// http/https URL.
func ValidateURL(candidate string) error {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return nil
	}
	u, err := url.Parse(trimmed)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ValidationError{Field: "Link", Reason: "Invalid URL format"}
	}
	return nil
}

// ValidateDifficulty accepts the empty value or exactly Easy, Medium, Hard.
func ValidateDifficulty(candidate Difficulty) error {
	switch candidate {
	case "", DifficultyEasy, DifficultyMedium, DifficultyHard:
		return nil
	}
	return &ValidationError{Field: "Difficulty", Reason: "must be one of Easy, Medium, Hard"}
}
