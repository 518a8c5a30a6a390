// Package shell implements the interactive menu of the vault client.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atinyakov/GophVault/internal/client/prompt"
	"github.com/atinyakov/GophVault/internal/client/session"
	"github.com/atinyakov/GophVault/internal/client/transport"
	"github.com/atinyakov/GophVault/internal/hasher"
	"github.com/atinyakov/GophVault/internal/models"
)

const (
	menu = "\nWould you like to\nA - View existing entries?\nB - Add a new entry?\nC - Quit\nPlease enter A, B, or C."

	farewell = "Thank you for using GophVault. Powering down."
)

// API is the vault client used by the shell.
type API interface {
	session.API
	Add(ctx context.Context, entry models.NewEntry) (models.CredentialRecord, error)
}

// Hasher turns a plaintext password into a digest before it leaves the client.
type Hasher interface {
	Hash(plaintext string) (string, error)
}

// Shell runs the menu loop for one operator.
type Shell struct {
	console *prompt.Console
	api     API
	hasher  Hasher
	session *session.Session
}

// New returns a Shell talking to api.
func New(console *prompt.Console, api API, h Hasher) *Shell {
	return &Shell{
		console: console,
		api:     api,
		hasher:  h,
		session: session.New(api),
	}
}

// Run greets the operator and serves the menu until they quit, input ends
// or ctx is cancelled. Only failures the operator cannot recover from, like
// a broken entropy source, are returned.
func (s *Shell) Run(ctx context.Context) error {
	err := s.run(ctx)
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		err = nil
	}
	s.console.Println()
	s.console.Status(prompt.Info, farewell)
	return err
}

func (s *Shell) run(ctx context.Context) error {
	s.console.Status(prompt.Info, "Hello! This is the GophVault password manager.")
	name, err := s.console.ReadLine("Please enter your name: ")
	if err != nil {
		return err
	}
	s.console.Printf("Hello there %s!\n", name)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.console.Println(menu)
		choice, err := s.console.ReadLine("> ")
		if err != nil {
			return err
		}

		switch strings.ToUpper(choice) {
		case "A":
			err = s.view(ctx)
		case "B":
			err = s.add(ctx)
		case "C", "QUIT":
			return nil
		default:
			s.console.Status(prompt.Warn, "Invalid choice, please try again.")
		}
		if err != nil {
			return err
		}
	}
}

func (s *Shell) view(ctx context.Context) error {
	defer s.session.Reset()

	owner, err := s.console.ReadLine("\nPlease type in the account owner's name to see their records: ")
	if err != nil {
		return err
	}

	records, err := s.session.List(ctx, owner)
	if err != nil {
		s.report(err)
		return nil
	}
	if len(records) == 0 {
		s.console.Println("No entries found.")
		return nil
	}

	s.console.Println("Entries for the owner:")
	for i, r := range records {
		s.console.Printf("%d. Account: %s\n", i+1, r.Name)
		s.console.Printf("   Username: %s\n", r.Username)
		s.console.Printf("   Password (hashed): %s\n", prompt.Faint.Sprint(r.PasswordHash))
	}

	s.console.Println("\nOptions:")
	s.console.Println("  c - check the password of an entry (or just its number, e.g. 2)")
	s.console.Println("  d - delete an entry (or d<number>, e.g. d2)")
	s.console.Println("  Enter - skip")
	action, err := s.console.ReadLine("> ")
	if err != nil {
		return err
	}
	if action == "" {
		s.console.Println("Skipped.")
		return nil
	}

	sel, err := s.selection(action)
	if err != nil {
		return err
	}

	if _, err := s.session.Select(sel); err != nil {
		s.report(err)
		return nil
	}

	label := "Enter the password to check: "
	if sel.Intent == session.Delete {
		if n := s.session.Duplicates(); n > 1 {
			s.console.Status(prompt.Warn, "%d entries share this owner and account name; all of them will be deleted.", n)
			answer, err := s.console.ReadLine("Continue? [y/N]: ")
			if err != nil {
				return err
			}
			if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
				s.console.Println("Deletion cancelled.")
				return nil
			}
		}
		label = "Enter the password to confirm deletion: "
	}

	plaintext, err := s.console.ReadSecret(label)
	if err != nil {
		return err
	}

	outcome, err := s.session.Verify(ctx, plaintext)
	if err != nil {
		s.report(err)
		return nil
	}
	switch outcome {
	case session.Correct:
		s.console.Status(prompt.Good, "Correct password.")
	case session.Incorrect:
		if sel.Intent == session.Delete {
			s.console.Status(prompt.Bad, "Incorrect password. Entry not deleted.")
		} else {
			s.console.Status(prompt.Bad, "Incorrect password.")
		}
	case session.Deleted:
		s.console.Status(prompt.Good, "Record deleted.")
	case session.NotFound:
		s.console.Status(prompt.Warn, "No matching records found.")
	}
	return nil
}

// selection maps the operator's action to a Selection. "c" and "d" ask for
// the entry number; "2" and "d2" carry it inline. Anything unparseable,
// including numbers too large for an int, yields index 0, which the session
// rejects.
func (s *Shell) selection(action string) (session.Selection, error) {
	sel := session.Selection{Intent: session.Inspect}
	rest := action
	switch {
	case strings.HasPrefix(strings.ToLower(action), "d"):
		sel.Intent = session.Delete
		rest = action[1:]
	case strings.HasPrefix(strings.ToLower(action), "c"):
		rest = action[1:]
	}

	rest = strings.TrimSpace(rest)
	if rest == "" {
		var err error
		if rest, err = s.console.ReadLine("Entry number: "); err != nil {
			return sel, err
		}
	}
	index, err := strconv.Atoi(rest)
	if err != nil {
		// Index 0 is never a valid position.
		index = 0
	}
	sel.Index = index
	return sel, nil
}

func (s *Shell) add(ctx context.Context) error {
	s.console.Println("\nPlease enter the data for the new entry.")

	var entry models.NewEntry
	fields := []struct {
		label string
		dst   *string
	}{
		{"Enter account owner: ", &entry.Owner},
		{"Enter account name: ", &entry.Name},
		{"Enter account username: ", &entry.Username},
	}
	for _, f := range fields {
		v, err := s.console.ReadLine(f.label)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	if entry.Owner == "" || entry.Name == "" {
		s.console.Status(prompt.Warn, "Owner and account name are required.")
		return nil
	}

	plaintext, err := s.console.ReadSecret("Enter account password: ")
	if err != nil {
		return err
	}
	digest, err := s.hasher.Hash(plaintext)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	entry.Password = digest

	rec, err := s.api.Add(ctx, entry)
	if err != nil {
		s.report(err)
		return nil
	}

	s.console.Status(prompt.Good, "\nSuccessfully added new entry.")
	s.console.Printf("  Owner: %s\n", rec.Owner)
	s.console.Printf("  Name: %s\n", rec.Name)
	s.console.Printf("  Username: %s\n", rec.Username)
	s.console.Printf("  Password (hashed): %s\n", prompt.Faint.Sprint(rec.PasswordHash))
	return nil
}

func (s *Shell) report(err error) {
	var serverErr *transport.ServerError
	switch {
	case errors.Is(err, session.ErrEmptyOwner):
		s.console.Status(prompt.Warn, "Please enter an owner name.")
	case errors.Is(err, session.ErrInvalidSelection):
		s.console.Status(prompt.Warn, "Invalid selection.")
	case errors.Is(err, session.ErrNoDigest):
		s.console.Status(prompt.Warn, "Selected entry has no stored password hash.")
	case errors.Is(err, hasher.ErrMalformedDigest):
		s.console.Status(prompt.Bad, "Record unreadable: stored digest is corrupt.")
	case errors.Is(err, transport.ErrTransport):
		s.console.Status(prompt.Bad, "Failed to contact server: %v", err)
	case errors.As(err, &serverErr):
		s.console.Status(prompt.Bad, "Server rejected the request: %s", serverErr.Message)
	default:
		s.console.Status(prompt.Bad, "Error: %v", err)
	}
}
