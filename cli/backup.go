package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/kjk/rentman/backup"
	"github.com/kjk/rentman/config"
	"github.com/spf13/cobra"
)

// NewBackupCommand creates the backup command with create, restore and push.
func NewBackupCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create, restore and upload backups of record files",
	}
	cmd.AddCommand(newBackupCreateCommand(rootOpts))
	cmd.AddCommand(newBackupRestoreCommand(rootOpts))
	cmd.AddCommand(newBackupPushCommand(rootOpts))
	return cmd
}

func newBackupCreateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <dst>",
		Short: "Archive record files and credentials",
		Long: `Archive record files and credentials into dst.
Compression depends on the extension: .zip, .zst, .br or .gz.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if _, err = a.login(); err != nil {
				return err
			}
			cfg := rootOpts.cfg
			names, err := backup.Create(cfg.DataDir, args[0], cfg.CredentialsFile)
			if err != nil {
				return wrapErr("creating backup", err)
			}
			a.printf("backed up %s to %s\n", strings.Join(names, ", "), args[0])
			return nil
		},
	}
}

func newBackupRestoreCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "restore <src>",
		Short:         "Restore record files from a backup, overwriting current ones",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			// restoring on a fresh install, before anyone registered
			if _, err = os.Stat(rootOpts.cfg.CredentialsFile); err == nil {
				if _, err = a.login(); err != nil {
					return err
				}
			}
			names, err := backup.Restore(args[0], rootOpts.cfg.DataDir, rootOpts.cfg.CredentialsFile)
			if err != nil {
				return wrapErr("restoring backup", err)
			}
			a.printf("restored %s\n", strings.Join(names, ", "))
			return nil
		},
	}
}

const (
	targetS3   = "s3"
	targetSFTP = "sftp"
	targetHTTP = "http"
)

func newTarget(cfg *config.Config, name string, prefix string) (backup.Target, error) {
	switch name {
	case targetS3:
		c := cfg.S3
		return &backup.S3Target{
			Endpoint: c.Endpoint,
			Access:   c.Access,
			Secret:   c.Secret,
			Bucket:   c.Bucket,
			Region:   c.Region,
			Prefix:   prefix,
		}, nil
	case targetSFTP:
		c := cfg.SFTP
		return &backup.SFTPTarget{
			User:    c.User,
			Host:    c.Host,
			KeyPath: c.Key,
			Dir:     c.Dir,
		}, nil
	case targetHTTP:
		return &backup.HTTPTarget{
			URL:    cfg.HTTP.URL,
			APIKey: cfg.HTTP.APIKey,
		}, nil
	}
	msg := fmt.Sprintf("unknown target '%s', must be one of: %s, %s, %s", name, targetS3, targetSFTP, targetHTTP)
	return nil, NewExitError(ExitCommandError, msg)
}

func newBackupPushCommand(rootOpts *RootOptions) *cobra.Command {
	var to, prefix string
	cmd := &cobra.Command{
		Use:   "push <src>",
		Short: "Upload a backup file",
		Long: `Upload a backup file to S3, SFTP server or with HTTP PUT.
Servers and credentials come from config (S3_*, SFTP_*, HTTP_BACKUP_*).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := newTarget(rootOpts.cfg, to, prefix)
			if err != nil {
				return err
			}
			a := &app{opts: rootOpts, cmd: cmd}
			if err = backup.Push(cmd.Context(), target, args[0]); err != nil {
				return wrapErr("pushing backup", err)
			}
			a.printf("uploaded %s to %s\n", args[0], target)
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "target: s3, sftp or http")
	cmd.Flags().StringVar(&prefix, "prefix", "rentman", "s3: prefix of uploaded file")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
