package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/local/printdesk/internal/submit"
)

// submit <file>... --name --id: quote, then upload to the print desk.
func submitCmd() *cobra.Command {
	var (
		flags   orderFlags
		student submit.Student
	)
	cmd := &cobra.Command{
		Use:   "submit <file>...",
		Short: "Send files to the print desk",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := loadOrder(cmd.Context(), cmd.ErrOrStderr(), args, flags)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printSummary(out, in.Summary())

			client := submit.NewClient(endpoint, cfg.Client.Timeout)
			rec, err := client.Submit(cmd.Context(), student, in.List())
			if err != nil {
				return err
			}
			in.Reset()

			fmt.Fprintf(out, "\nFiles uploaded successfully!\nFolder: %s\n", student.FolderName())
			for _, f := range rec.Files {
				fmt.Fprintf(out, "  %s (%s) %s\n", f.Name, f.ColorMode, f.URL)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&student.Name, "name", "", "student name")
	cmd.Flags().StringVar(&student.ID, "id", "", "student id")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
