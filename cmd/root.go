package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/canvass-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "canvass-cli",
	Short: "Prepare address lists for door-to-door canvassing",
	Long:  "Geocodes address lists, classifies each street as North-South or East-West, and writes them in serpentine walking order. Also converts lists between CSV and XLSX.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
