package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/canvass-cli/internal/convert"
)

var convertOut string

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Bulk-convert address lists between CSV and XLSX",
}

var csvToXLSXCmd = &cobra.Command{
	Use:   "csv-to-xlsx <dir>",
	Short: "Convert every CSV file in a directory to XLSX",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd, args[0], convert.ToXLSX)
	},
}

var xlsxToCSVCmd = &cobra.Command{
	Use:   "xlsx-to-csv <dir>",
	Short: "Convert the first sheet of every XLSX file in a directory to CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd, args[0], convert.ToCSV)
	},
}

func runConvert(cmd *cobra.Command, dir string, d convert.Direction) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("convert"); err != nil {
		return err
	}

	rep, err := convert.Dir(ctx, dir, convertOut, d)
	if rep != nil {
		zap.L().Info("conversion complete",
			zap.String("dir", dir),
			zap.String("from", d.From),
			zap.String("to", d.To),
			zap.Int("converted", len(rep.Converted)),
			zap.Int("failed", len(rep.Failed)),
		)
	}
	return err
}

func init() {
	convertCmd.PersistentFlags().StringVar(&convertOut, "out", "", "output directory (default: the input directory)")
	convertCmd.AddCommand(csvToXLSXCmd, xlsxToCSVCmd)
	rootCmd.AddCommand(convertCmd)
}
