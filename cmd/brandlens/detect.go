package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/dshills/brandlens/internal/evidence"
	"github.com/dshills/brandlens/internal/mention"
	"github.com/dshills/brandlens/internal/schema"
)

type detectFlags struct {
	brand     string
	citations []string
	input     string // file path; empty or "-" reads stdin
}

// detectOutput is the JSON document printed by detect.
type detectOutput struct {
	Brand string `json:"brand"`
	mention.Detection
	Citations []schema.CitationRecord `json:"citations"`
}

func newDetectCmd() *cobra.Command {
	var f detectFlags
	cmd := &cobra.Command{
		Use:   "detect --brand NAME [file|-]",
		Short: "Detect a brand mention in a single answer",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				f.input = args[0]
			}
			return runDetect(f, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&f.brand, "brand", "", "brand name to look for")
	cmd.Flags().StringArrayVar(&f.citations, "citation", nil, "declared citation URL (repeatable)")
	_ = cmd.MarkFlagRequired("brand")
	return cmd
}

func runDetect(f detectFlags, stdin io.Reader, stdout io.Writer) error {
	text, err := readInput(f.input, stdin)
	if err != nil {
		return withCode(exitCodeBadInput, err)
	}

	ev := evidence.Build(schema.RunInput{Answer: text, Citations: f.citations}, f.brand)
	out := detectOutput{
		Brand:     f.brand,
		Detection: mention.Analyze(text, f.brand, ev.DeclaredCitations),
		Citations: ev.Citations,
	}
	return writeJSON(stdout, out)
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == "" || path == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", eris.Wrap(err, "read stdin")
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrapf(err, "read %s", path)
	}
	return string(b), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "encode json")
	}
	return nil
}
