package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/five82/extman/internal/gateway"
	"github.com/five82/extman/internal/state"
)

func newListCmd(flags *rootFlags) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List extensions",
		Long:  "List extensions, optionally limited to active or inactive ones.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := state.ParseFilter(filter)
			if err != nil {
				return err
			}

			session, err := openLoaded(cmd, flags)
			if err != nil {
				return err
			}
			defer session.Close()

			session.Controller.OnFilterChange(f)
			snap := session.Store.Snapshot()
			visible := snap.Visible()

			if flags.json {
				return printListJSON(cmd.OutOrStdout(), visible)
			}
			return printListText(cmd.OutOrStdout(), visible, state.CountFilters(snap.Extensions), f)
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "which extensions to show: all, active or inactive")

	return cmd
}

func printListJSON(w io.Writer, items []gateway.Extension) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

func printListText(w io.Writer, items []gateway.Extension, counts state.Counts, f state.Filter) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "No extensions found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tDESCRIPTION")
	for _, ext := range items {
		status := "inactive"
		if ext.IsActive {
			status = "active"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", ext.ID, ext.Name, status, ext.Description)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d shown (%s); %d active, %d inactive\n",
		len(items), f.Label(), counts.Active, counts.Inactive)
	return err
}
