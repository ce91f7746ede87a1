package main

import (
	"context"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/xbrl-cli/internal/export"
	"github.com/sells-group/xbrl-cli/internal/xbrl"
)

var (
	parseSourceURL string
	parseFormat    string
	parseOut       string
)

var parseCmd = &cobra.Command{
	Use:   "parse <path-or-url>...",
	Short: "Parse XBRL or inline XBRL instances and print their facts",
	Long:  "Parses local files or remote instances. Files ending in .xml or .xbrl are read as XBRL, everything else as inline XBRL.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("parse"); err != nil {
			return err
		}

		name := parseFormat
		if name == "" {
			name = cfg.Output.Format
		}
		format, err := export.ParseFormat(name)
		if err != nil {
			return err
		}
		if parseSourceURL != "" && len(args) > 1 {
			return eris.New("parse: --url applies to a single input")
		}
		if format == export.FormatXLSX && (parseOut == "" || len(args) > 1) {
			return eris.New("parse: xlsx output needs --out and a single input")
		}

		log := zap.L().With(zap.String("command", "parse"))
		insts, err := parseAll(cmd.Context(), newEnv(cfg), args, parseSourceURL, cfg.Parse.Concurrency, log)
		if err != nil {
			return err
		}

		if format == export.FormatXLSX {
			return export.XLSX(parseOut, insts[0])
		}

		out := cmd.OutOrStdout()
		if parseOut != "" {
			f, err := os.Create(parseOut)
			if err != nil {
				return eris.Wrapf(err, "parse: create %s", parseOut)
			}
			defer f.Close() //nolint:errcheck
			out = f
		}
		return render(out, format, insts)
	},
}

// parseAll parses targets concurrently, at most limit at a time. Results
// keep the order of targets; the first failure cancels the rest.
func parseAll(ctx context.Context, e *env, targets []string, sourceURL string, limit int, log *zap.Logger) ([]*xbrl.Instance, error) {
	out := make([]*xbrl.Instance, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, target := range targets {
		g.Go(func() error {
			inst, err := e.parse(gctx, target, sourceURL, log)
			if err != nil {
				return eris.Wrapf(err, "parse %s", target)
			}
			log.Info("parsed instance",
				zap.String("target", target),
				zap.Int("facts", len(inst.Facts)),
			)
			out[i] = inst
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// render writes every instance in a text format. YAML documents are
// separated by "---".
func render(w io.Writer, format string, insts []*xbrl.Instance) error {
	for i, inst := range insts {
		if i > 0 {
			sep := "\n"
			if format == export.FormatYAML {
				sep = "---\n"
			}
			if _, err := io.WriteString(w, sep); err != nil {
				return eris.Wrap(err, "parse: write output")
			}
		}
		if err := export.Write(w, format, inst); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	parseCmd.Flags().StringVar(&parseSourceURL, "url", "", "address a local file was downloaded from, used to resolve its schema")
	parseCmd.Flags().StringVar(&parseFormat, "format", "", "output format: table, json, yaml or xlsx (default from config)")
	parseCmd.Flags().StringVar(&parseOut, "out", "", "write output to a file instead of stdout")
	rootCmd.AddCommand(parseCmd)
}
