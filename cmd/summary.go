package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/xbrl-cli/internal/export"
	"github.com/sells-group/xbrl-cli/internal/xbrl"
)

var summarySourceURL string

var summaryCmd = &cobra.Command{
	Use:   "summary <path-or-url>",
	Short: "Print key financial facts of an instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := zap.L().With(zap.String("command", "summary"))
		inst, err := newEnv(cfg).parse(cmd.Context(), args[0], summarySourceURL, log)
		if err != nil {
			return err
		}
		return export.SummaryTable(cmd.OutOrStdout(), xbrl.Summarize(inst, xbrl.TargetConcepts))
	},
}

func init() {
	summaryCmd.Flags().StringVar(&summarySourceURL, "url", "", "address a local file was downloaded from")
	rootCmd.AddCommand(summaryCmd)
}
