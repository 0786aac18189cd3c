package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/local/printdesk/internal/order"
)

// orderFlags are the page-setting flags shared by quote and submit.
type orderFlags struct {
	color     []string
	landscape []string
}

func (f *orderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.color, "color", nil, "print NAME[=RANGES] in color (repeatable)")
	cmd.Flags().StringArrayVar(&f.landscape, "landscape", nil, "print NAME[=RANGES] in landscape (repeatable)")
}

// loadOrder adds paths to a new intake one by one, printing progress to
// w, then applies the page-setting flags.
func loadOrder(ctx context.Context, w io.Writer, paths []string, flags orderFlags) (*order.Intake, error) {
	in := order.NewIntake(order.IntakeOptions{
		Pricing:     pricing(),
		MaxFileSize: cfg.Intake.MaxFileSize,
		OnChange: func(d order.Document) {
			if d.Analyzing {
				fmt.Fprintf(w, "  analyzing %s ...\n", d.Name)
				return
			}
			fmt.Fprintf(w, "  %s: %d page(s)\n", d.Name, d.Pages)
		},
	})

	files := make([]order.File, 0, len(paths))
	for _, p := range paths {
		f, err := order.FileFromPath(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	for _, r := range in.Add(ctx, files...) {
		if errors.Is(r.Err, order.ErrFileTooLarge) {
			fmt.Fprintf(w, "File %s is too large. Maximum size is %dMB.\n", r.Name, in.MaxFileSize()>>20)
		}
	}

	if err := apply(in, flags.color, order.FieldColorMode, string(order.ColorFull)); err != nil {
		return nil, err
	}
	if err := apply(in, flags.landscape, order.FieldOrientation, string(order.Landscape)); err != nil {
		return nil, err
	}
	return in, nil
}

func apply(in *order.Intake, specs []string, field order.Field, value string) error {
	for _, s := range specs {
		spec, err := parseSpec(s)
		if err != nil {
			return err
		}
		found := false
		for _, d := range in.List() {
			if d.Name != spec.Name {
				continue
			}
			found = true
			for _, p := range spec.resolve(d.Pages) {
				in.UpdatePageSetting(d.ID, p-1, field, value)
			}
		}
		if !found {
			return fmt.Errorf("no file named %q in this order", spec.Name)
		}
	}
	return nil
}

func printSummary(w io.Writer, sum order.Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tPAGES\tB&W\tCOLOR\tLANDSCAPE\tCOST")
	for _, d := range sum.Documents {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n", d.Name, d.Pages, d.BWPages, d.ColorPages, d.LandscapePages, d.Cost)
	}
	fmt.Fprintf(tw, "TOTAL\t%d\t%d\t%d\t%d\t%d\n", sum.TotalPages, sum.BWPages, sum.ColorPages, sum.LandscapePages, sum.TotalCost)
	_ = tw.Flush()
}
