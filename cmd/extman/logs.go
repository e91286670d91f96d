package main

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/five82/extman/internal/config"
	"github.com/five82/extman/internal/logging"
	"github.com/five82/extman/internal/logtail"
)

const defaultLogLines = 50

func newLogsCmd(flags *rootFlags) *cobra.Command {
	var (
		lines int
		level string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent entries from the TUI log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			minLevel, err := logging.ParseLevel(level)
			if err != nil {
				return err
			}
			if level == "" {
				minLevel = zerolog.TraceLevel
			}

			entries, err := logtail.Tail(cfg.LogFile, lines, minLevel)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if flags.json {
				for _, line := range entries {
					fmt.Fprintln(out, line)
				}
				return nil
			}
			console := zerolog.ConsoleWriter{Out: out, NoColor: true, TimeFormat: "2006-01-02 15:04:05"}
			for _, line := range entries {
				if !json.Valid([]byte(line)) {
					fmt.Fprintln(out, line)
					continue
				}
				if _, err := console.Write([]byte(line)); err != nil {
					fmt.Fprintln(out, line)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", defaultLogLines, "number of entries to show")
	cmd.Flags().StringVar(&level, "level", "", "minimum level to show (debug, info, warn, error)")

	return cmd
}
