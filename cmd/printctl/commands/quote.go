package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// quote <file>...: estimate pages and print the price.
func quoteCmd() *cobra.Command {
	var flags orderFlags
	cmd := &cobra.Command{
		Use:   "quote <file>...",
		Short: "Estimate pages and price for files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := loadOrder(cmd.Context(), cmd.ErrOrStderr(), args, flags)
			if err != nil {
				return err
			}
			if in.Len() == 0 {
				return fmt.Errorf("no files accepted")
			}
			printSummary(cmd.OutOrStdout(), in.Summary())
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
