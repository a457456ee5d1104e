package config

import "github.com/kilianp07/greetd/core/model"

// ContactConfig is a contact seeded into the store at start-up.
type ContactConfig struct {
	Name          string `json:"name" yaml:"name"`
	Email         string `json:"email" yaml:"email"`
	PreferredTime string `json:"preferred_time" yaml:"preferred_time"`
}

// DemoContacts are seeded when no contacts are configured.
var DemoContacts = []ContactConfig{
	{Name: "Jens", Email: "jens@python.org"},
	{Name: "Nils", Email: "nils@goolge.com", PreferredTime: "10:30 AM"},
	{Name: "Knut", Email: "knut@microsoft.com", PreferredTime: "06:43 PM"},
}

// Validate applies the contact field rules.
func (c ContactConfig) Validate() error {
	_, err := model.NewContact(c.Name, c.Email, c.PreferredTime)
	return err
}
