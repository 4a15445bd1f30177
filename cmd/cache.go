package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/canvass-cli/internal/geocache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the geocode result cache",
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete cached geocode results older than cache.ttl_days",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("cache"); err != nil {
			return err
		}
		if cfg.Cache.TTLDays == 0 {
			zap.L().Info("cache.ttl_days is 0; cached results never expire, nothing to prune")
			return nil
		}

		store, err := geocache.Open(ctx, geocache.Options{
			Driver:      cfg.Cache.Driver,
			Path:        cfg.Cache.Path,
			DatabaseURL: cfg.Cache.DatabaseURL,
			TTL:         cfg.Cache.TTL(),
		})
		if err != nil {
			return eris.Wrap(err, "open geocode cache")
		}
		if store == nil {
			return eris.New("geocode cache is disabled (cache.driver=none)")
		}
		defer store.Close() //nolint:errcheck

		n, err := store.Prune(ctx)
		if err != nil {
			return eris.Wrap(err, "prune geocode cache")
		}

		zap.L().Info("geocode cache pruned",
			zap.String("driver", cfg.Cache.Driver),
			zap.Int64("deleted", n),
			zap.Int("ttl_days", cfg.Cache.TTLDays),
		)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cachePruneCmd)
	rootCmd.AddCommand(cacheCmd)
}
