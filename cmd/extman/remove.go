package main

import (
	"github.com/spf13/cobra"

	"github.com/five82/extman/internal/controller"
)

func newRemoveCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>...",
		Aliases: []string{"rm"},
		Short:   "Remove extensions from the store",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return applyAll(cmd, flags, "removed", args, func(ctl *controller.Controller) intent {
				return ctl.OnRemove
			})
		},
	}
}
