package cli

import (
	"fmt"
	"strconv"

	"github.com/kjk/rentman/linestore"
	"github.com/kjk/rentman/log"
	"github.com/kjk/rentman/record"
	"github.com/kjk/rentman/rental"
	"github.com/spf13/cobra"
)

// NewRecordCommand creates a command managing records of a given kind
func NewRecordCommand[T rental.Entity](rootOpts *RootOptions, kind *rental.Kind[T], plural string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   kind.Name,
		Short: "Manage " + plural,
	}
	cmd.AddCommand(newAddCommand(rootOpts, kind))
	cmd.AddCommand(newListCommand(rootOpts, kind))
	cmd.AddCommand(newSortedCommand(rootOpts, kind))
	cmd.AddCommand(newSearchCommand(rootOpts, kind))
	cmd.AddCommand(newEditCommand(rootOpts, kind))
	cmd.AddCommand(newDeleteCommand(rootOpts, kind))
	return cmd
}

// runRecords logs in and runs fn with a service for kind
func runRecords[T rental.Entity](opts *RootOptions, cmd *cobra.Command, kind *rental.Kind[T], fn func(a *app, svc *rental.Service[T]) error) error {
	a, err := newApp(opts, cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	if _, err = a.login(); err != nil {
		return err
	}
	svc := rental.NewService(opts.cfg.DataDir, kind, a.onChange)
	return fn(a, svc)
}

// addFieldFlags adds a string flag for every field of kind
func addFieldFlags[T rental.Entity](cmd *cobra.Command, kind *rental.Kind[T]) map[string]*string {
	res := map[string]*string{}
	for _, f := range kind.Fields {
		usage := f.Label
		if f.Int {
			usage += " (number)"
		}
		res[f.Label] = cmd.Flags().String(f.Flag, "", usage)
	}
	return res
}

func parseNumberArg(name string, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("%s must be a number, got '%s'", name, s))
	}
	return n, nil
}

func newAddCommand[T rental.Entity](rootOpts *RootOptions, kind *rental.Kind[T]) *cobra.Command {
	var flags map[string]*string
	cmd := &cobra.Command{
		Use:           "add",
		Short:         "Add a " + kind.Name + " record",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecords(rootOpts, cmd, kind, func(a *app, svc *rental.Service[T]) error {
				values := map[string]string{}
				for label, v := range flags {
					values[label] = *v
				}
				v, err := kind.FromValues(values)
				if err != nil {
					return wrapErr("invalid "+kind.Name, err)
				}
				if err = svc.Add(v); err != nil {
					return wrapErr("adding "+kind.Name, err)
				}
				a.printf("added %s %d\n", kind.Name, v.SortKey())
				return nil
			})
		},
	}
	flags = addFieldFlags(cmd, kind)
	for _, f := range kind.Fields {
		if f.Int {
			_ = cmd.MarkFlagRequired(f.Flag)
		}
	}
	return cmd
}

func showTable[T rental.Entity](a *app, svc *rental.Service[T], items []T) error {
	return a.writeTable(svc.Kind.Table(items))
}

func newListCommand[T rental.Entity](rootOpts *RootOptions, kind *rental.Kind[T]) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List " + kind.Name + " records in file order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecords(rootOpts, cmd, kind, func(a *app, svc *rental.Service[T]) error {
				res, err := svc.Load()
				if err != nil {
					return wrapErr("loading "+kind.Name, err)
				}
				if res.Skipped > 0 {
					log.Logf("skipped %d malformed lines in '%s'\n", res.Skipped, svc.Store.Path)
				}
				return showTable(a, svc, res.Items)
			})
		},
	}
}

func newSortedCommand[T rental.Entity](rootOpts *RootOptions, kind *rental.Kind[T]) *cobra.Command {
	short := "List " + kind.Name + " records sorted by key"
	if kind.Descending {
		short += ", largest first"
	}
	return &cobra.Command{
		Use:           "sorted",
		Short:         short,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecords(rootOpts, cmd, kind, func(a *app, svc *rental.Service[T]) error {
				items, err := svc.Ordered()
				if err != nil {
					return wrapErr("loading "+kind.Name, err)
				}
				return showTable(a, svc, items)
			})
		},
	}
}

func newSearchCommand[T rental.Entity](rootOpts *RootOptions, kind *rental.Kind[T]) *cobra.Command {
	return &cobra.Command{
		Use:           "search <key>",
		Short:         "Find a " + kind.Name + " record by " + kind.Fields[keyFieldIndex(kind)].Label,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseNumberArg("key", args[0])
			if err != nil {
				return err
			}
			return runRecords(rootOpts, cmd, kind, func(a *app, svc *rental.Service[T]) error {
				v, ok, err := svc.Search(key)
				if err != nil {
					return wrapErr("searching "+kind.Name, err)
				}
				if !ok {
					return NewExitError(ExitFailure, fmt.Sprintf("no %s with key %d", kind.Name, key))
				}
				log.Dump("found", v)
				return showTable(a, svc, []T{v})
			})
		},
	}
}

// keyFieldIndex returns index of the field used as sort key
func keyFieldIndex[T rental.Entity](kind *rental.Kind[T]) int {
	for i, f := range kind.Fields {
		if f.Label == kind.KeyLabel {
			return i
		}
	}
	return 0
}

// existingValues returns field values of line n, empty if it can't be decoded
func existingValues[T rental.Entity](svc *rental.Service[T], n int) (map[string]string, error) {
	lines, err := svc.Store.ReadLines()
	if err != nil {
		return nil, err
	}
	if n < 1 || n > len(lines) {
		return nil, fmt.Errorf("%w: %d, file has %d lines", linestore.ErrInvalidLineNumber, n, len(lines))
	}
	res := map[string]string{}
	r, err := record.Unmarshal(lines[n-1].Payload)
	if err != nil {
		log.Verbosef("line %d can't be decoded: %s\n", n, err)
		return res, nil
	}
	for _, e := range r.Entries {
		res[e.Key] = e.Value
	}
	return res, nil
}

func newEditCommand[T rental.Entity](rootOpts *RootOptions, kind *rental.Kind[T]) *cobra.Command {
	var flags map[string]*string
	cmd := &cobra.Command{
		Use:           "edit <n>",
		Short:         "Change fields of " + kind.Name + " record on line n",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseNumberArg("line number", args[0])
			if err != nil {
				return err
			}
			return runRecords(rootOpts, cmd, kind, func(a *app, svc *rental.Service[T]) error {
				values, err := existingValues(svc, n)
				if err != nil {
					return wrapErr("editing "+kind.Name, err)
				}
				// only flags given on command line change the record
				for _, f := range kind.Fields {
					if cmd.Flags().Changed(f.Flag) {
						values[f.Label] = *flags[f.Label]
					}
				}
				v, err := kind.FromValues(values)
				if err != nil {
					return wrapErr("invalid "+kind.Name, err)
				}
				if err = svc.Edit(n, v); err != nil {
					return wrapErr("editing "+kind.Name, err)
				}
				a.printf("edited %s on line %d\n", kind.Name, n)
				return nil
			})
		},
	}
	flags = addFieldFlags(cmd, kind)
	return cmd
}

func newDeleteCommand[T rental.Entity](rootOpts *RootOptions, kind *rental.Kind[T]) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <n>",
		Short:         "Delete " + kind.Name + " record on line n",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseNumberArg("line number", args[0])
			if err != nil {
				return err
			}
			return runRecords(rootOpts, cmd, kind, func(a *app, svc *rental.Service[T]) error {
				if err := svc.Delete(n); err != nil {
					return wrapErr("deleting "+kind.Name, err)
				}
				a.printf("deleted %s on line %d\n", kind.Name, n)
				return nil
			})
		},
	}
}
