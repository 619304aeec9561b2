package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/sarchlab/propjson/diagnostics"
	"github.com/spf13/cobra"
)

func newDiagnosticsCmd() *cobra.Command {
	diag := &cobra.Command{
		Use:   "diagnostics",
		Short: "Show diagnostics recorded by decode.",
		Long: "`diagnostics --db diag.sqlite3` prints the recorded " +
			"diagnostics. `--sessions` lists the recording sessions instead.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db := stringSetting(cmd, "db", envDiagnosticsDB)
			if db == "" {
				return fmt.Errorf("no diagnostics database given")
			}

			reader, err := diagnostics.NewReader(db)
			if err != nil {
				return err
			}
			defer reader.Close()

			if sessions, _ := cmd.Flags().GetBool("sessions"); sessions {
				return listSessions(cmd, reader)
			}

			params := diagnostics.QueryParams{}
			params.Session, _ = cmd.Flags().GetString("session")
			params.Kind, _ = cmd.Flags().GetString("kind")
			params.Limit, _ = cmd.Flags().GetInt("limit")
			params.Offset, _ = cmd.Flags().GetInt("offset")

			return queryDiagnostics(cmd, reader, params)
		},
	}

	diag.Flags().String("db", "",
		"SQLite file holding the diagnostics, env "+envDiagnosticsDB)
	diag.Flags().Bool("sessions", false, "List the recording sessions")
	diag.Flags().String("session", "", "Only show this session")
	diag.Flags().String("kind", "", "Only show this kind, e.g. NotWritable")
	diag.Flags().Int("limit", 0, "Maximum number of entries, 0 for all")
	diag.Flags().Int("offset", 0, "Number of entries to skip")

	return diag
}

func listSessions(cmd *cobra.Command, reader *diagnostics.Reader) error {
	sessions, err := reader.Sessions(cmd.Context())
	if err != nil {
		return err
	}

	for _, s := range sessions {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), s); err != nil {
			return err
		}
	}

	return nil
}

func queryDiagnostics(
	cmd *cobra.Command,
	reader *diagnostics.Reader,
	params diagnostics.QueryParams,
) error {
	entries, total, err := reader.Query(cmd.Context(), params)
	if err != nil {
		return err
	}

	return printEntries(cmd.OutOrStdout(), entries, total)
}

func printEntries(w io.Writer, entries []diagnostics.Entry, total int) error {
	for _, e := range entries {
		_, err := fmt.Fprintf(w, "%s %d %s %s %s.%s: %s\n",
			e.Session, e.Seq, time.Unix(0, e.Time).UTC().Format(time.RFC3339),
			e.Kind, e.Type, e.Property, e.Message)
		if err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "%d of %d entries\n", len(entries), total)

	return err
}
