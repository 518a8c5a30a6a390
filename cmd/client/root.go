package main

import (
	"cmp"
	"fmt"
	"net/http"

	"github.com/atinyakov/GophVault/internal/client/prompt"
	"github.com/atinyakov/GophVault/internal/client/shell"
	"github.com/atinyakov/GophVault/internal/client/transport"
	"github.com/atinyakov/GophVault/internal/hasher"
	"github.com/spf13/cobra"
)

// options are the resolved client settings shared by all commands.
type options struct {
	configPath string
	url        string
	timeout    string

	client *transport.Client
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "gophvault",
		Short:         "GophVault password vault client",
		Version:       cmp.Or(version, "N/A"),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.resolve(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			console := prompt.New(cmd.InOrStdin(), cmd.OutOrStdout())
			return shell.New(console, opts.client, hasher.Default()).Run(cmd.Context())
		},
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf("GophVault Client\nVersion: {{ .Version }}\nBuild Date: %s\n", cmp.Or(buildDate, "N/A")))

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to client config (default $XDG_CONFIG_HOME/gophvault/client.toml)")
	flags.StringVar(&opts.url, "url", defaultURL, "vault server base URL")
	flags.StringVar(&opts.timeout, "timeout", defaultTimeout.String(), "per-request timeout")

	rootCmd.AddCommand(importCmd(opts))

	return rootCmd
}

// resolve merges the config file and flags; flags set on the command line win.
func (o *options) resolve(cmd *cobra.Command) error {
	s, err := loadSettings(o.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("url") {
		s.URL = o.url
	}
	if cmd.Flags().Changed("timeout") {
		s.Timeout = o.timeout
	}

	timeout, err := s.timeout()
	if err != nil {
		return err
	}
	o.url, o.timeout = s.URL, s.Timeout
	o.client = transport.New(&http.Client{Timeout: timeout}, s.URL)
	return nil
}
