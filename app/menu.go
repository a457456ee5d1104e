package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kilianp07/greetd/core/contacts"
	"github.com/kilianp07/greetd/core/dispatch"
	"github.com/kilianp07/greetd/core/model"
)

const separator = "---------------------------------------------------------------------"

// errExit ends the menu loop.
var errExit = errors.New("exit")

// Menu is the interactive text front end. It reads one answer per line.
type Menu struct {
	svc *Service
	in  *bufio.Scanner
	out io.Writer
}

func NewMenu(svc *Service, in io.Reader, out io.Writer) *Menu {
	return &Menu{svc: svc, in: bufio.NewScanner(in), out: out}
}

// Run shows the menu until the user exits, the input ends or ctx is canceled.
func (m *Menu) Run(ctx context.Context) error {
	m.printf("\nCurrent Time: %s\n\n", m.svc.Now().Format("03:04 PM"))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.printf("%s\nChoose an option:\n", separator)
		m.printf("1. Force send messages to all contacts\n")
		m.printf("2. Send messages to only appropriate contacts (check preferred time)\n")
		m.printf("3. View all contacts\n")
		m.printf("4. Add a new contact\n")
		m.printf("5. Update a contact\n")
		m.printf("6. Delete a contact\n")
		m.printf("7. Print logs from current and previous days\n")
		m.printf("8. Exit\n")

		choice, ok := m.prompt("\nEnter your choice (1/2/3/4/5/6/7/8): ")
		if !ok {
			m.printf("Exiting...\n")
			return nil
		}
		err := m.handle(ctx, choice)
		switch {
		case errors.Is(err, errExit):
			m.printf("Exiting...\n")
			return nil
		case errors.Is(err, io.EOF):
			m.printf("Exiting...\n")
			return nil
		case err != nil:
			m.printf("An error occurred: %v. Please try again.\n", err)
		}
	}
}

func (m *Menu) handle(ctx context.Context, choice string) error {
	switch strings.TrimSpace(choice) {
	case "1":
		m.printf("\nForcing send messages to all contacts...\n\n")
		m.printReport(m.svc.Manager.Run(ctx, dispatch.Force))
	case "2":
		m.printf("\nSending messages to appropriate contacts based on their preferred time...\n\n")
		m.printReport(m.svc.Manager.Run(ctx, dispatch.Windowed))
	case "3":
		m.viewContacts()
	case "4":
		return m.addContact()
	case "5":
		return m.updateContact()
	case "6":
		return m.deleteContact()
	case "7":
		return m.printLogs(ctx)
	case "8":
		return errExit
	default:
		m.printf("Invalid choice. Please enter a valid option.\n")
	}
	return nil
}

func (m *Menu) printReport(r dispatch.Report) {
	for _, o := range r.Outcomes {
		m.printf("%s\n", o)
	}
}

func (m *Menu) viewContacts() {
	list := m.svc.Contacts.List()
	if len(list) == 0 {
		m.printf("No contacts available.\n")
		return
	}
	m.printf("\nList of Contacts:\n")
	printNumbered(m.out, list)
}

func printNumbered(w io.Writer, list []model.Contact) {
	for i, c := range list {
		_, _ = fmt.Fprintf(w, "%d. %s\n", i+1, c)
	}
}

func (m *Menu) addContact() error {
	name, ok := m.prompt("Enter contact's name: ")
	if !ok {
		return io.EOF
	}
	email, ok := m.prompt("Enter contact's email: ")
	if !ok {
		return io.EOF
	}
	pt, ok := m.prompt("Enter preferred time (e.g., 08:00 AM): ")
	if !ok {
		return io.EOF
	}
	c, err := m.svc.Contacts.Add(name, email, pt)
	if err != nil {
		m.printf("Error adding contact: %v. Please try again.\n", err)
		return nil
	}
	m.printf("Contact '%s' added successfully.\n", c.Name)
	return nil
}

func (m *Menu) updateContact() error {
	key, ok := m.prompt("\nEnter the contact's name or email to update: ")
	if !ok {
		return io.EOF
	}
	matches, err := m.svc.Contacts.Lookup(key)
	if errors.Is(err, contacts.ErrNotFound) {
		m.printf("No contact found with name or email '%s'.\n", strings.TrimSpace(key))
		return nil
	} else if err != nil {
		return err
	}

	c := matches[0]
	if len(matches) > 1 {
		m.printf("\nMultiple contacts found with the same name:\n")
		printNumbered(m.out, matches)
		answer, ok := m.prompt("\nEnter the number of the contact you want to update: ")
		if !ok {
			return io.EOF
		}
		n, err := strconv.Atoi(strings.TrimSpace(answer))
		if err != nil || n < 1 || n > len(matches) {
			m.printf("Invalid selection.\n")
			return nil
		}
		c = matches[n-1]
	}

	m.printf("\nUpdating contact: %s (%s)\n", c.Name, c.Email)
	email, ok := m.prompt(fmt.Sprintf("Enter new email (leave blank to keep '%s'): ", c.Email))
	if !ok {
		return io.EOF
	}
	pt, ok := m.prompt(fmt.Sprintf("Enter new preferred time (leave blank to keep '%s'): ", c.PreferredTime))
	if !ok {
		return io.EOF
	}
	if _, err := m.svc.Contacts.Update(c.Email, contacts.Update{Email: email, PreferredTime: pt}); err != nil {
		m.printf("Error updating contact: %v. Please try again.\n", err)
		return nil
	}
	m.printf("Contact '%s' updated successfully.\n", c.Name)
	return nil
}

func (m *Menu) deleteContact() error {
	m.viewContacts()
	name, ok := m.prompt("\nEnter the name of the contact you want to delete: ")
	if !ok {
		return io.EOF
	}
	name = strings.TrimSpace(name)
	if m.svc.Contacts.RemoveByName(name) {
		m.printf("Contact '%s' deleted successfully.\n", name)
	} else {
		m.printf("No contact found with the name '%s'.\n", name)
	}
	return nil
}

func (m *Menu) printLogs(ctx context.Context) error {
	days := m.svc.Config.Dispatch.RecentDays
	m.printf("\nLog entries from today and the previous %d day(s):\n\n", max(days-1, 0))
	n := 0
	for line, err := range m.svc.Log.Recent(ctx, m.svc.Now(), days) {
		if err != nil {
			return fmt.Errorf("read delivery log: %w", err)
		}
		m.printf("%s\n", line)
		n++
	}
	if n == 0 {
		m.printf("No log entries found.\n")
	}
	return nil
}

// prompt prints label and reads one line. ok is false at end of input.
func (m *Menu) prompt(label string) (string, bool) {
	m.printf("%s", label)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(m.out, format, args...)
}
