package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/evergreen-ci/kvconfig"
	"github.com/evergreen-ci/kvconfig/config"
	"github.com/evergreen-ci/kvconfig/identity"
	"github.com/evergreen-ci/kvconfig/keyvault"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	formatYAML = "yaml"
	formatEnv  = "env"
)

type getFlags struct {
	connectionString string
	vaultName        string
	clientID         string
	clientSecret     string
	tenantID         string
	authorityHost    string
	configFile       string
	secrets          []string
	format           string
	watch            bool
}

// newGetCommand returns the get command. The extra options are applied after
// the ones from the flags.
func newGetCommand(extra ...*keyvault.ProviderOptions) *cobra.Command {
	var flags getFlags

	cmd := &cobra.Command{
		Use:           "get",
		Short:         "Get secrets from a vault",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `Load the named secrets from an Azure Key Vault and print them to stdout.

The vault is given either as a connection string of the form
"VaultName=...;ClientId=...;ClientSecret=...", as the individual parts, or
in a YAML options file. Each of these values may instead be the name of an
environment variable that holds it.

Examples:
  kvconfig get --connection-string KEYVAULT_CONNECTION --secret db-password --secret api-key
  kvconfig get --vault-name myvault --client-id APP_ID --client-secret APP_SECRET --secret db-password --format env
  kvconfig get --config vault.yaml --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return runGet(ctx, cmd.OutOrStdout(), flags, extra...)
		},
	}

	cmd.Flags().StringVar(&flags.connectionString, "connection-string", "", "Vault connection string, or the environment variable holding it")
	cmd.Flags().StringVar(&flags.vaultName, "vault-name", "", "Vault name, or the environment variable holding it")
	cmd.Flags().StringVar(&flags.clientID, "client-id", "", "Application (client) ID, or the environment variable holding it")
	cmd.Flags().StringVar(&flags.clientSecret, "client-secret", "", "Client secret, or the environment variable holding it")
	cmd.Flags().StringVar(&flags.tenantID, "tenant-id", "", "Tenant to use if the vault does not name one")
	cmd.Flags().StringVar(&flags.authorityHost, "authority-host", "", "Identity authority host")
	cmd.Flags().StringVar(&flags.configFile, "config", "", "YAML options file")
	cmd.Flags().StringArrayVar(&flags.secrets, "secret", nil, "Name of a secret to load (repeatable)")
	cmd.Flags().StringVar(&flags.format, "format", formatYAML, "Output format (yaml or env)")
	cmd.Flags().BoolVar(&flags.watch, "watch", false, "Reload whenever the options file changes (requires --config)")

	return cmd
}

func runGet(ctx context.Context, w io.Writer, flags getFlags, extra ...*keyvault.ProviderOptions) error {
	if flags.format != formatYAML && flags.format != formatEnv {
		return errors.Errorf("unrecognized output format '%s'", flags.format)
	}
	if flags.watch && flags.configFile == "" {
		return errors.New("cannot watch without an options file")
	}

	cache := identity.NewMemoryTokenCache()
	load := func() error {
		opts, err := flags.providerOptions()
		if err != nil {
			return errors.Wrap(err, "getting provider options")
		}
		if keyvault.MergeProviderOptions(extra...).TokenProvider == nil {
			opts.SetTokenCache(cache)
		}

		p, err := keyvault.NewProvider(append([]*keyvault.ProviderOptions{opts}, extra...)...)
		if err != nil {
			return errors.Wrap(err, "creating provider")
		}

		settings, err := config.NewBuilder().Add(p).Build(ctx)
		if err != nil {
			return errors.Wrap(err, "loading secrets")
		}

		return writeSettings(w, settings, flags.format)
	}

	if err := load(); err != nil {
		return err
	}
	if !flags.watch {
		return nil
	}

	return config.WatchFile(ctx, flags.configFile, func() {
		grip.Error(message.WrapError(load(), message.Fields{
			"message": "could not reload secrets",
			"path":    flags.configFile,
		}))
	})
}

// providerOptions returns the provider options from either the options file
// or the flags.
func (f getFlags) providerOptions() (*keyvault.ProviderOptions, error) {
	hasConnFlags := f.connectionString != "" || f.vaultName != "" || f.clientID != "" || f.clientSecret != ""
	if f.configFile != "" {
		if hasConnFlags {
			return nil, errors.New("cannot specify vault connection flags with an options file")
		}
		fileOpts, err := keyvault.ReadFileOptions(f.configFile)
		if err != nil {
			return nil, err
		}
		if len(f.secrets) != 0 {
			fileOpts.Secrets = append(fileOpts.Secrets, f.secrets...)
		}
		return fileOpts.Export()
	}

	fileOpts := keyvault.FileOptions{
		ConnectionString: f.connectionString,
		VaultName:        f.vaultName,
		ClientID:         f.clientID,
		ClientSecret:     f.clientSecret,
		TenantID:         f.tenantID,
		AuthorityHost:    f.authorityHost,
		Secrets:          append([]string{}, f.secrets...),
	}
	return fileOpts.Export()
}

func writeSettings(w io.Writer, settings *kvconfig.Settings, format string) error {
	switch format {
	case formatEnv:
		for _, k := range settings.Keys() {
			v, _ := settings.Get(k)
			if _, err := fmt.Fprintf(w, "%s=%s\n", envName(k), quoteEnvValue(v)); err != nil {
				return errors.Wrap(err, "writing setting")
			}
		}
		return nil
	default:
		node := &yaml.Node{Kind: yaml.MappingNode}
		for _, k := range settings.Keys() {
			v, _ := settings.Get(k)
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v},
			)
		}
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(node); err != nil {
			return errors.Wrap(err, "encoding YAML")
		}
		return errors.Wrap(enc.Close(), "closing YAML encoder")
	}
}

// envName converts a secret name into an environment variable name, so
// db-password becomes DB_PASSWORD.
func envName(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
}

func quoteEnvValue(v string) string {
	if v == "" || strings.ContainsAny(v, " \t\n\"'$`\\#") {
		return fmt.Sprintf("%q", v)
	}
	return v
}
