package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/five82/extman/internal/app"
	"github.com/five82/extman/internal/gateway"
)

// version is set at build time via ldflags.
var version = "dev"

// rootFlags holds the persistent flags shared by every subcommand.
type rootFlags struct {
	configPath string
	prefsPath  string
	json       bool
	verbose    bool
}

// newRootCmd builds the root command. With no subcommand it starts the TUI.
func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:     "extman",
		Short:   "Manage browser extensions",
		Long:    "Browse, enable, disable and remove extensions held by a remote store.",
		Version: version,
		Args:    cobra.NoArgs,
		// Errors are printed once by main.
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), app.Options{
				ConfigPath: flags.configPath,
				PrefsPath:  flags.prefsPath,
				Verbose:    flags.verbose,
				Version:    version,
			})
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file path (default ~/.config/extman/config.toml)")
	cmd.PersistentFlags().StringVar(&flags.prefsPath, "prefs", "", "preferences file path (default ~/.config/extman/prefs.toml)")
	cmd.PersistentFlags().BoolVar(&flags.json, "json", false, "output in JSON format")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newListCmd(flags))
	cmd.AddCommand(newToggleCmd(flags))
	cmd.AddCommand(newRemoveCmd(flags))
	cmd.AddCommand(newLogsCmd(flags))

	return cmd
}

// openLoaded builds a session that logs to the command's stderr and performs
// the initial load.
func openLoaded(cmd *cobra.Command, flags *rootFlags) (*app.Session, error) {
	session, err := app.NewSession(cmd.Context(), app.Options{
		ConfigPath: flags.configPath,
		PrefsPath:  flags.prefsPath,
		Verbose:    flags.verbose,
		Version:    version,
		LogWriter:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}
	if err := session.Controller.Load(cmd.Context()); err != nil {
		_ = session.Close()
		return nil, err
	}
	return session, nil
}

func parseIDs(args []string) ([]gateway.ID, error) {
	ids := make([]gateway.ID, 0, len(args))
	seen := make(map[gateway.ID]bool, len(args))
	for _, arg := range args {
		id, err := gateway.ParseID(arg)
		if err != nil {
			return nil, err
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

// result is one line of output from toggle or remove.
type result struct {
	ID     gateway.ID `json:"id"`
	Name   string     `json:"name,omitempty"`
	Action string     `json:"action"`
	OK     bool       `json:"ok"`
	Error  string     `json:"error,omitempty"`
}

func writeResults(w io.Writer, asJSON bool, results []result) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for _, r := range results {
		label := r.ID.String()
		if r.Name != "" {
			label += " " + r.Name
		}
		if r.OK {
			fmt.Fprintf(w, "%s: %s\n", label, r.Action)
			continue
		}
		fmt.Fprintf(w, "%s: %s failed: %s\n", label, r.Action, r.Error)
	}
	return nil
}

func failureCount(results []result) int {
	n := 0
	for _, r := range results {
		if !r.OK {
			n++
		}
	}
	return n
}
