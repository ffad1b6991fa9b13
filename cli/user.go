package cli

import (
	"os"
	"path/filepath"

	"github.com/kjk/rentman/auth"
	"github.com/spf13/cobra"
)

// NewUserCommand creates the user command with register, login and passwd.
func NewUserCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage the user's credentials",
	}
	cmd.AddCommand(newRegisterCommand(rootOpts))
	cmd.AddCommand(newLoginCommand(rootOpts))
	cmd.AddCommand(newPasswdCommand(rootOpts))
	return cmd
}

func newRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	var recoveryKey string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register the user, replacing existing credentials",
		Long: `Register the user given with --user and --password.
The recovery key is needed to change a forgotten password.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			o := rootOpts
			path := o.cfg.CredentialsFile
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return WrapExitError(ExitFailure, "creating credentials directory", err)
			}
			if err := auth.Register(path, o.User, o.Password, recoveryKey); err != nil {
				return wrapErr("register", err)
			}
			(&app{opts: o, cmd: cmd}).printf("registered user '%s'\n", o.User)
			return nil
		},
	}
	cmd.Flags().StringVar(&recoveryKey, "recovery-key", "", "key needed to change password")
	_ = cmd.MarkFlagRequired("recovery-key")
	return cmd
}

func newLoginCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "login",
		Short:         "Check --user and --password",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := &app{opts: rootOpts, cmd: cmd}
			sess, err := a.login()
			if err != nil {
				return err
			}
			a.printf("logged in as '%s' at %s\n", sess.User, sess.LoggedInAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}

func newPasswdCommand(rootOpts *RootOptions) *cobra.Command {
	var recoveryKey, newPassword string
	cmd := &cobra.Command{
		Use:           "passwd",
		Short:         "Change password using the recovery key",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := auth.ChangePassword(rootOpts.cfg.CredentialsFile, recoveryKey, newPassword)
			if err != nil {
				return wrapErr("changing password", err)
			}
			(&app{opts: rootOpts, cmd: cmd}).printf("password changed\n")
			return nil
		},
	}
	cmd.Flags().StringVar(&recoveryKey, "recovery-key", "", "recovery key given at registration")
	cmd.Flags().StringVar(&newPassword, "new-password", "", "new password")
	_ = cmd.MarkFlagRequired("recovery-key")
	_ = cmd.MarkFlagRequired("new-password")
	return cmd
}
