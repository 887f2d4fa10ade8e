package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var snapshotJSON bool

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Inspect the offline lead snapshot",
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the leads stored in the snapshot slot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, db, err := openSnapshotStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		leads, ok, err := store.Load(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !ok {
			fmt.Fprintf(out, "no snapshot stored (%s)\n", cfg.Snapshot.Driver)
			return nil
		}

		if snapshotJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(leads)
		}

		savedAt, err := store.SavedAt(ctx)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		fmt.Fprintf(out, "%d leads, saved %s (%s)\n\n", len(leads), savedAt.Format("2006-01-02 15:04:05"), cfg.Snapshot.Driver)

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tSTATUS\tSOURCE")
		for _, l := range leads {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", l.ID, l.Name, l.Email, l.Status, l.Source)
		}
		return tw.Flush()
	},
}

func init() {
	snapshotShowCmd.Flags().BoolVar(&snapshotJSON, "json", false, "print the raw lead list as JSON")
	snapshotCmd.AddCommand(snapshotShowCmd)
}
