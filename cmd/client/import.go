package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/atinyakov/GophVault/internal/client/prompt"
	"github.com/atinyakov/GophVault/internal/hasher"
	"github.com/atinyakov/GophVault/internal/models"
	"github.com/spf13/cobra"
)

// importRecord is one entry of an import file. Password is plaintext.
type importRecord struct {
	Owner    string `json:"account_owner"`
	Name     string `json:"account_name"`
	Username string `json:"account_username"`
	Password string `json:"account_password"`
}

type adder interface {
	Add(ctx context.Context, entry models.NewEntry) (models.CredentialRecord, error)
}

type digester interface {
	Hash(plaintext string) (string, error)
}

func importCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Hash and upload records from a JSON file",
		Long: "Reads a JSON array of {account_owner, account_name, account_username, account_password}\n" +
			"objects with plaintext passwords, hashes each password locally and adds the record.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			added, failed, err := importRecords(ctx, f, opts.client, hasher.Default(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d record(s), %d failed.\n", added, failed)
			if failed > 0 {
				return fmt.Errorf("%d record(s) failed to import", failed)
			}
			return nil
		},
	}
}

// importRecords adds every record read from r, reporting failures per
// record and carrying on. Only an unreadable file, an entropy failure or
// cancellation stop the run.
func importRecords(ctx context.Context, r io.Reader, api adder, h digester, out io.Writer) (added, failed int, err error) {
	var records []importRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return 0, 0, fmt.Errorf("decode import file: %w", err)
	}

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return added, failed, err
		}

		digest, err := h.Hash(rec.Password)
		if err != nil {
			return added, failed, fmt.Errorf("hash password: %w", err)
		}

		_, err = api.Add(ctx, models.NewEntry{
			Owner:    rec.Owner,
			Name:     rec.Name,
			Username: rec.Username,
			Password: digest,
		})
		if err != nil {
			failed++
			prompt.Bad.Fprintf(out, "record %d (%s/%s): %v\n", i+1, rec.Owner, rec.Name, err)
			continue
		}
		added++
		prompt.Good.Fprintf(out, "record %d (%s/%s): added\n", i+1, rec.Owner, rec.Name)
	}
	return added, failed, nil
}
