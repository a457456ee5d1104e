package model

import (
	"fmt"
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

// Contact is a greeting recipient.
type Contact struct {
	Name          string `json:"name" yaml:"name"`
	Email         string `json:"email" yaml:"email"`
	PreferredTime Clock  `json:"preferred_time" yaml:"preferred_time"`
}

// NewContact validates the raw fields and builds a Contact. An empty
// preferredTime selects DefaultPreferredTime.
func NewContact(name, email, preferredTime string) (Contact, error) {
	n, err := ValidateName(name)
	if err != nil {
		return Contact{}, err
	}
	e, err := ValidateEmail(email)
	if err != nil {
		return Contact{}, err
	}
	clock := DefaultPreferredTime
	if strings.TrimSpace(preferredTime) != "" {
		if clock, err = ParseClock(preferredTime); err != nil {
			return Contact{}, err
		}
	}
	return Contact{Name: n, Email: e, PreferredTime: clock}, nil
}

// ValidateName trims name and rejects empty values.
func ValidateName(name string) (string, error) {
	n := strings.TrimSpace(name)
	if n == "" {
		return "", ErrInvalidName
	}
	return n, nil
}

// ValidateEmail checks the local@domain.tld shape.
func ValidateEmail(email string) (string, error) {
	e := strings.TrimSpace(email)
	if !emailPattern.MatchString(e) {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return e, nil
}

func (c Contact) String() string {
	return fmt.Sprintf("Name: %s, Email: %s, Preferred Time: %s", c.Name, c.Email, c.PreferredTime)
}
