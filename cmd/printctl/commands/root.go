package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/local/printdesk/internal/config"
	"github.com/local/printdesk/internal/logger"
	"github.com/local/printdesk/internal/order"
)

var (
	envFile  string
	endpoint string
	logLevel string
	priceBW  int64
	priceCol int64

	cfg config.Config
)

func Execute() error {
	root := &cobra.Command{
		Use:          "printctl",
		Short:        "Quote and submit print orders",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				cfg = config.Load(envFile)
			} else {
				cfg = config.Load()
			}
			if endpoint == "" {
				endpoint = cfg.Client.Endpoint
			}
			if !cmd.Flags().Changed("price-bw") {
				priceBW = cfg.Pricing.BW
			}
			if !cmd.Flags().Changed("price-color") {
				priceCol = cfg.Pricing.Color
			}
			lvl := logLevel
			if lvl == "" {
				lvl = "warn"
			}
			return logger.Init(logger.Options{
				Level:   lvl,
				Pretty:  true,
				Service: "printctl",
				Console: os.Stderr,
			})
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) { logger.Close() },
	}

	root.PersistentFlags().StringVar(&envFile, "env", "", "env file to load (default .env when present)")
	root.PersistentFlags().StringVar(&endpoint, "endpoint", "", "upload endpoint (default $PRINTDESK_ENDPOINT)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (default warn)")
	root.PersistentFlags().Int64Var(&priceBW, "price-bw", order.DefaultPricing.BW, "price per black & white page")
	root.PersistentFlags().Int64Var(&priceCol, "price-color", order.DefaultPricing.Color, "price per color page")

	root.AddCommand(quoteCmd(), submitCmd(), previewCmd())
	return root.Execute()
}

func pricing() *order.Pricing {
	return &order.Pricing{BW: priceBW, Color: priceCol}
}
