package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/xbrl-cli/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the download cache",
}

var cachePathCmd = &cobra.Command{
	Use:   "path <url>",
	Short: "Print the cache file a URL maps to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := cache.New(cfg.Cache.Dir, nil).Path(args[0])
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), p)
		return nil
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge <url>...",
	Short: "Remove cached copies of URLs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := cache.New(cfg.Cache.Dir, nil)
		for _, u := range args {
			status := "not cached"
			if c.Purge(u) {
				status = "purged"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", status, u)
		}
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cachePathCmd, cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}
