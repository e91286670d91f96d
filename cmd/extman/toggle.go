package main

import (
	"github.com/spf13/cobra"

	"github.com/five82/extman/internal/controller"
	"github.com/five82/extman/internal/gateway"
)

func newToggleCmd(flags *rootFlags) *cobra.Command {
	var on, off bool

	cmd := &cobra.Command{
		Use:   "toggle <id>...",
		Short: "Activate or deactivate extensions",
		Long: `Set the active flag of one or more extensions.

Exactly one of --on or --off is required. Each id is sent independently;
the command fails if any change is rejected.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "deactivated"
			if on {
				action = "activated"
			}
			return applyAll(cmd, flags, action, args, func(ctl *controller.Controller) intent {
				return func(id gateway.ID) (*controller.Mutation, error) {
					return ctl.OnToggle(id, on)
				}
			})
		},
	}

	cmd.Flags().BoolVar(&on, "on", false, "activate the extensions")
	cmd.Flags().BoolVar(&off, "off", false, "deactivate the extensions")
	cmd.MarkFlagsMutuallyExclusive("on", "off")
	cmd.MarkFlagsOneRequired("on", "off")

	return cmd
}
