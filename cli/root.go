package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/kjk/rentman/config"
	"github.com/kjk/rentman/export"
	"github.com/kjk/rentman/log"
	"github.com/kjk/rentman/rental"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string
	ConfigPath string
	DataDir    string
	User       string
	Password   string

	// for tests, defaults to os.Getenv
	Getenv func(string) string

	cfg *config.Config
}

const defaultConfigPath = ".env"

func (o *RootOptions) getenv(key string) string {
	if o.Getenv != nil {
		return o.Getenv(key)
	}
	return os.Getenv(key)
}

// NewRootCommand creates the root command for the rentman CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	return newRootCommand(opts)
}

// Execute runs cmd and closes log files, also when cmd fails.
func Execute(cmd *cobra.Command) error {
	defer log.Close()
	return cmd.Execute()
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rentman",
		Short: "rentman - rental property records",
		Long: `Keeps records of properties, tenants, rent debts and maintenance
in plain text files, one record per line.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd)
		},
	}

	fl := cmd.PersistentFlags()
	fl.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	fl.StringVar(&opts.Format, "format", export.FormatText, "output format ("+strings.Join(export.Formats, "|")+")")
	fl.StringVar(&opts.ConfigPath, "config", defaultConfigPath, "path of .env config file")
	fl.StringVar(&opts.DataDir, "data", "", "directory with record files (overrides DATA_DIR)")
	fl.StringVar(&opts.User, "user", "", "user name (default $RENTMAN_USER)")
	fl.StringVar(&opts.Password, "password", "", "password (default $RENTMAN_PASSWORD)")

	cmd.AddCommand(NewUserCommand(opts))
	cmd.AddCommand(NewRecordCommand(opts, rental.Properties, "properties"))
	cmd.AddCommand(NewRecordCommand(opts, rental.Tenants, "tenants"))
	cmd.AddCommand(NewRecordCommand(opts, rental.Rents, "rent debts"))
	cmd.AddCommand(NewRecordCommand(opts, rental.Maintenances, "maintenance jobs"))
	cmd.AddCommand(NewBackupCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	return cmd
}

func (o *RootOptions) init(cmd *cobra.Command) error {
	if !export.IsValidFormat(o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, export.Formats))
	}
	// the default config file is optional
	optional := !cmd.Flags().Changed("config")
	cfg, err := config.Load(o.ConfigPath, optional, o.getenv)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading config", err)
	}
	if o.DataDir != "" {
		// files that live in data dir by default move with it
		prev := config.Default(cfg.DataDir)
		next := config.Default(o.DataDir)
		if cfg.CredentialsFile == prev.CredentialsFile {
			cfg.CredentialsFile = next.CredentialsFile
		}
		if cfg.JournalDir == prev.JournalDir {
			cfg.JournalDir = next.JournalDir
		}
		cfg.DataDir = o.DataDir
	}
	if o.User == "" {
		o.User = o.getenv("RENTMAN_USER")
	}
	if o.Password == "" {
		o.Password = o.getenv("RENTMAN_PASSWORD")
	}
	o.cfg = cfg

	log.Out = cmd.ErrOrStderr()
	log.Init(&log.Config{
		Dir:     cfg.LogDir,
		Verbose: o.Verbose || cfg.Verbose,
	})
	log.Verbosef("data: %s, journal: %s\n", cfg.DataDir, cfg.JournalDir)
	return nil
}
