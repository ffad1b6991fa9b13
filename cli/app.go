package cli

import (
	"fmt"
	"os"

	"github.com/kjk/rentman/auth"
	"github.com/kjk/rentman/export"
	"github.com/kjk/rentman/journal"
	"github.com/kjk/rentman/linestore"
	"github.com/kjk/rentman/log"
	"github.com/spf13/cobra"
)

// app is state shared by a single command invocation
type app struct {
	opts    *RootOptions
	cmd     *cobra.Command
	journal *journal.Journal
}

func newApp(opts *RootOptions, cmd *cobra.Command) (*app, error) {
	if err := os.MkdirAll(opts.cfg.DataDir, 0755); err != nil {
		return nil, WrapExitError(ExitFailure, "creating data directory", err)
	}
	j, err := journal.Open(opts.cfg.JournalDir)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "opening journal", err)
	}
	return &app{
		opts:    opts,
		cmd:     cmd,
		journal: j,
	}, nil
}

func (a *app) Close() {
	log.IfErrf(a.journal.Close())
}

// onChange records changes to record files in the journal
func (a *app) onChange(c *linestore.Change) {
	err := a.journal.Record(c)
	log.IfErrf(err, "journal: failed to record %s of '%s': %s", c.Op, c.Path, err)
}

// login checks --user and --password against stored credentials
func (a *app) login() (*auth.Session, error) {
	o := a.opts
	if o.User == "" || o.Password == "" {
		return nil, NewExitError(ExitCommandError, "--user and --password (or RENTMAN_USER and RENTMAN_PASSWORD) are required")
	}
	sess, err := auth.Login(o.cfg.CredentialsFile, o.User, o.Password)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "login failed", err)
	}
	log.Verbosef("logged in as '%s'\n", sess.User)
	return sess, nil
}

func (a *app) writeTable(t *export.Table) error {
	return export.Write(a.cmd.OutOrStdout(), a.opts.Format, t)
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.cmd.OutOrStdout(), format, args...)
}
