package cli

import (
	"strconv"
	"time"

	"github.com/kjk/rentman/export"
	"github.com/kjk/rentman/journal"
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command that shows the journal.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var file string
	var limit int
	var showDiff bool
	cmd := &cobra.Command{
		Use:           "history",
		Short:         "Show changes made to record files",
		Args:          cobra.NoArgs,
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
			entries, err := journal.ReadDir(rootOpts.cfg.JournalDir)
			if err != nil {
				return wrapErr("reading journal", err)
			}
			entries = filterEntries(entries, file, limit)
			if showDiff && rootOpts.Format == export.FormatText {
				for _, e := range entries {
					a.printf("%s %s %s line %d\n%s\n", e.Time.Format(time.DateTime), e.Op, e.File, e.Line, e.Diff)
				}
				return nil
			}
			return a.writeTable(historyTable(entries, showDiff))
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "only changes to this record file")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n latest changes")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "show diffs")
	return cmd
}

func filterEntries(entries []*journal.Entry, file string, limit int) []*journal.Entry {
	var res []*journal.Entry
	for _, e := range entries {
		if file == "" || e.File == file {
			res = append(res, e)
		}
	}
	if limit > 0 && len(res) > limit {
		res = res[len(res)-limit:]
	}
	return res
}

func historyTable(entries []*journal.Entry, withDiff bool) *export.Table {
	cols := []export.Column{
		{Name: "Time"},
		{Name: "Op"},
		{Name: "File"},
		{Name: "Line", Int: true},
		{Name: "ID"},
	}
	if withDiff {
		cols = append(cols, export.Column{Name: "Diff"})
	}
	t := export.NewTable(cols...)
	for _, e := range entries {
		row := []string{
			e.Time.Format(time.DateTime),
			e.Op,
			e.File,
			strconv.Itoa(e.Line),
			e.ID,
		}
		if withDiff {
			row = append(row, e.Diff)
		}
		_ = t.AddRow(row...)
	}
	return t
}
