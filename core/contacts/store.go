// Package contacts holds the ordered in-memory address book.
package contacts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kilianp07/greetd/core/model"
)

var (
	// ErrNotFound is returned by lookups that match no contact.
	ErrNotFound = errors.New("contact not found")
	// ErrDuplicateEmail is returned when an email is already present in the store.
	ErrDuplicateEmail = fmt.Errorf("%w: contact email already exists", model.ErrValidation)
)

// Store keeps contacts in insertion order. Email is the unique key.
// Callers only ever receive copies of the stored contacts.
type Store struct {
	contacts []model.Contact
}

// NewStore returns an empty store.
func NewStore() *Store { return &Store{} }

// Update describes mutable fields. Empty values keep the current value.
type Update struct {
	Email         string
	PreferredTime string
}

// Add validates and appends a new contact. The store is unchanged on error.
func (s *Store) Add(name, email, preferredTime string) (model.Contact, error) {
	c, err := model.NewContact(name, email, preferredTime)
	if err != nil {
		return model.Contact{}, err
	}
	if s.indexOf(c.Email) >= 0 {
		return model.Contact{}, fmt.Errorf("%w: %s", ErrDuplicateEmail, c.Email)
	}
	s.contacts = append(s.contacts, c)
	return c, nil
}

// List returns a copy of all contacts in insertion order.
func (s *Store) List() []model.Contact {
	return append([]model.Contact(nil), s.contacts...)
}

// Len returns the number of contacts.
func (s *Store) Len() int { return len(s.contacts) }

// FindByEmail returns the contact with exactly this email.
func (s *Store) FindByEmail(email string) (model.Contact, error) {
	i := s.indexOf(email)
	if i < 0 {
		return model.Contact{}, fmt.Errorf("%w: email %s", ErrNotFound, email)
	}
	return s.contacts[i], nil
}

// FindByName returns all contacts whose name matches case-insensitively.
func (s *Store) FindByName(name string) ([]model.Contact, error) {
	var res []model.Contact
	for _, c := range s.contacts {
		if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			res = append(res, c)
		}
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("%w: name %s", ErrNotFound, name)
	}
	return res, nil
}

// Lookup resolves key as an exact email first and as a name otherwise.
func (s *Store) Lookup(key string) ([]model.Contact, error) {
	key = strings.TrimSpace(key)
	if c, err := s.FindByEmail(key); err == nil {
		return []model.Contact{c}, nil
	}
	res, err := s.FindByName(key)
	if err != nil {
		return nil, fmt.Errorf("%w: name or email %s", ErrNotFound, key)
	}
	return res, nil
}

// Update changes the email and/or preferred time of the contact identified by email.
// Both fields are validated before anything is written.
func (s *Store) Update(email string, u Update) (model.Contact, error) {
	i := s.indexOf(email)
	if i < 0 {
		return model.Contact{}, fmt.Errorf("%w: email %s", ErrNotFound, email)
	}
	c := s.contacts[i]
	if strings.TrimSpace(u.Email) != "" {
		e, err := model.ValidateEmail(u.Email)
		if err != nil {
			return model.Contact{}, err
		}
		if j := s.indexOf(e); j >= 0 && j != i {
			return model.Contact{}, fmt.Errorf("%w: %s", ErrDuplicateEmail, e)
		}
		c.Email = e
	}
	if strings.TrimSpace(u.PreferredTime) != "" {
		clock, err := model.ParseClock(u.PreferredTime)
		if err != nil {
			return model.Contact{}, err
		}
		c.PreferredTime = clock
	}
	s.contacts[i] = c
	return c, nil
}

// RemoveByEmail deletes the contact with this email and reports whether one was removed.
func (s *Store) RemoveByEmail(email string) bool {
	return s.removeWhere(func(c model.Contact) bool { return c.Email == email })
}

// RemoveByName deletes every contact with this exact name and reports whether any was removed.
func (s *Store) RemoveByName(name string) bool {
	return s.removeWhere(func(c model.Contact) bool { return c.Name == name })
}

func (s *Store) removeWhere(match func(model.Contact) bool) bool {
	kept := s.contacts[:0:0]
	for _, c := range s.contacts {
		if !match(c) {
			kept = append(kept, c)
		}
	}
	removed := len(kept) < len(s.contacts)
	s.contacts = kept
	return removed
}

func (s *Store) indexOf(email string) int {
	for i, c := range s.contacts {
		if c.Email == email {
			return i
		}
	}
	return -1
}
