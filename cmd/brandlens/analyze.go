package main

import (
	"context"
	"io"
	"runtime"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/brandlens/internal/aggregate"
	"github.com/dshills/brandlens/internal/audit"
	"github.com/dshills/brandlens/internal/evidence"
	"github.com/dshills/brandlens/internal/metrics"
	"github.com/dshills/brandlens/internal/render"
	"github.com/dshills/brandlens/internal/schema"
)

type analyzeFlags struct {
	auditFile   string
	format      string
	out         string
	minPresence float64
	metricsOut  string
}

func newAnalyzeCmd() *cobra.Command {
	var f analyzeFlags
	cmd := &cobra.Command{
		Use:   "analyze <audit-file>",
		Short: "Compute visibility metrics for a collected audit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.auditFile = args[0]
			if !cmd.Flags().Changed("format") && cfg != nil {
				f.format = cfg.Output.Format
			}
			return runAnalyze(cmd.Context(), f, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&f.format, "format", "markdown", "output format: json or markdown")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "write output to file instead of stdout")
	cmd.Flags().Float64Var(&f.minPresence, "min-presence", 0, "exit 2 when the presence rate is below this fraction")
	cmd.Flags().StringVar(&f.metricsOut, "metrics-out", "", "also write report gauges to this Prometheus textfile")
	return cmd
}

func runAnalyze(ctx context.Context, f analyzeFlags, stdout io.Writer) error {
	if f.format != "json" && f.format != "markdown" {
		return eris.Errorf("analyze: unknown format %q (want json or markdown)", f.format)
	}
	if f.minPresence < 0 || f.minPresence > 1 {
		return eris.Errorf("analyze: --min-presence %v is outside [0,1]", f.minPresence)
	}

	file, err := audit.Load(f.auditFile)
	if err != nil {
		return withCode(exitCodeBadInput, err)
	}
	for _, msg := range audit.Validate(file) {
		zap.L().Warn("analyze: audit file", zap.String("path", f.auditFile), zap.String("issue", msg))
	}

	result, err := buildResult(ctx, file)
	if err != nil {
		return err
	}

	var out []byte
	switch f.format {
	case "json":
		b, err := render.RenderJSON(result)
		if err != nil {
			return err
		}
		out = append(b, '\n')
	default:
		out = []byte(render.RenderMarkdown(result))
	}
	if err := writeOutput(stdout, f.out, out); err != nil {
		return err
	}
	if f.metricsOut != "" {
		if err := metrics.Export(f.metricsOut, result); err != nil {
			return err
		}
	}

	zap.L().Info("analyze: done",
		zap.String("audit_id", result.AuditID),
		zap.Int("runs", result.Report.TotalRuns),
		zap.Float64("presence_rate", result.Report.PresenceRate),
	)

	if !aggregate.MeetsThreshold(result.Report, f.minPresence) {
		return withCode(exitCodeThreshold, eris.Errorf(
			"analyze: presence rate %.3f is below --min-presence %.3f",
			result.Report.PresenceRate, f.minPresence))
	}
	return nil
}

// buildResult runs the analysis pipeline over an audit file.
func buildResult(ctx context.Context, file *audit.File) (*schema.AuditResult, error) {
	runs, err := evidence.BuildAllConcurrent(ctx, file.Runs, file.Brand, runtime.GOMAXPROCS(0))
	if err != nil {
		return nil, eris.Wrap(err, "analyze: build evidence")
	}
	return &schema.AuditResult{
		Tool:    toolName,
		Version: version,
		AuditID: file.ID,
		Brand:   file.Brand,
		Report:  aggregate.Compute(runs),
		Runs:    runs,
	}, nil
}
