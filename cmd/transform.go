package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/xbrl-cli/internal/xbrl/transform"
)

var transformCmd = &cobra.Command{
	Use:     "transform <format> <value>",
	Short:   "Normalize a displayed value with an inline XBRL transform",
	Example: "  xbrl-cli transform ixt:num-dot-decimal '1,234.50'\n  xbrl-cli transform ixt-sec:numwordsen 'twenty one'",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := applyTransform(args[0], args[1])
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

// applyTransform normalizes value with a qualified or bare format name.
// SEC keywords that are not implemented return the value unchanged.
func applyTransform(format, value string) (string, error) {
	out, _, err := transform.Apply(value, format, nil)
	return out, err
}

func init() {
	rootCmd.AddCommand(transformCmd)
}
