package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/local/printdesk/internal/filetype"
	"github.com/local/printdesk/internal/order"
	"github.com/local/printdesk/internal/preview"
)

// preview <file>: print text, write a PDF page or image to --out.
func previewCmd() *cobra.Command {
	var (
		page int
		out  string
		dpi  int
		bw   bool
	)
	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Preview a file as it will be printed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			f, err := order.FileFromPath(args[0])
			if err != nil {
				return err
			}

			p, err := preview.Render(f, page, preview.Options{DPI: dpi, Gray: bw})
			switch {
			case errors.Is(err, preview.ErrUnavailable):
				fmt.Fprintln(w, p.Notice)
				return nil
			case err != nil:
				return err
			}

			if p.Kind == filetype.KindText {
				fmt.Fprintln(w, p.Text)
				return nil
			}

			if p.Kind == filetype.KindPDF {
				// compare the estimate with what the renderer found
				in := order.NewIntake(order.IntakeOptions{Pricing: pricing(), MaxFileSize: cfg.Intake.MaxFileSize})
				if res := in.Add(cmd.Context(), f); len(res) == 1 && res[0].Err == nil {
					if changed, err := preview.Sync(in, res[0].ID); err == nil && changed {
						fmt.Fprintf(cmd.ErrOrStderr(), "page count corrected: %d -> %d\n", res[0].Estimate.Pages, p.Pages)
					}
				}
			}

			if out == "" {
				base := strings.TrimSuffix(f.Name, filepath.Ext(f.Name))
				out = fmt.Sprintf("%s_p%d.%s", base, p.Page, imageExt(p.MIMEType))
			}
			if err := os.WriteFile(out, p.Image, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(w, "Page %d of %d written to %s\n", p.Page, p.Pages, out)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page to render (PDF only)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output image path")
	cmd.Flags().IntVar(&dpi, "dpi", 96, "render resolution for PDF pages")
	cmd.Flags().BoolVar(&bw, "bw", false, "render PDF pages in black and white")
	return cmd
}

func imageExt(mime string) string {
	switch mime {
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	default:
		return "jpg"
	}
}
