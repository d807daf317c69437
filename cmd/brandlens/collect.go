package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/brandlens/internal/audit"
	"github.com/dshills/brandlens/internal/llm"
	"github.com/dshills/brandlens/internal/profile"
	"github.com/dshills/brandlens/internal/prompts"
)

type collectFlags struct {
	brand       string
	promptsFile string
	out         string
	provider    string
	model       string
	profile     string
	rpm         int
	maxTokens   int
	temperature float64
	debug       bool
}

func newCollectCmd() *cobra.Command {
	var f collectFlags
	cmd := &cobra.Command{
		Use:   "collect --brand NAME --prompts FILE --out AUDIT",
		Short: "Ask a model every prompt in a list and save the answers as an audit file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyLLMConfig(cmd, &f)
			return runCollect(cmd.Context(), f, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&f.brand, "brand", "", "brand under audit")
	cmd.Flags().StringVar(&f.promptsFile, "prompts", "", "Markdown prompt list")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "audit file to write (.yaml or .json)")
	cmd.Flags().StringVar(&f.provider, "provider", "anthropic", "LLM provider: anthropic, openai or google")
	cmd.Flags().StringVar(&f.model, "model", "claude-sonnet-4-5", "model name")
	cmd.Flags().StringVar(&f.profile, "profile", "general", "answer persona")
	cmd.Flags().IntVar(&f.rpm, "rpm", 30, "maximum provider requests per minute, repairs included (0 disables pacing)")
	cmd.Flags().IntVar(&f.maxTokens, "max-tokens", 1500, "maximum tokens per answer")
	cmd.Flags().Float64Var(&f.temperature, "temperature", 0.7, "sampling temperature")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "log prompts sent to the model")
	_ = cmd.MarkFlagRequired("brand")
	_ = cmd.MarkFlagRequired("prompts")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

// applyLLMConfig fills flags the user did not set from the loaded config.
func applyLLMConfig(cmd *cobra.Command, f *collectFlags) {
	if cfg == nil {
		return
	}
	fl := cmd.Flags()
	if !fl.Changed("provider") {
		f.provider = cfg.LLM.Provider
	}
	if !fl.Changed("model") {
		f.model = cfg.LLM.Model
	}
	if !fl.Changed("profile") {
		f.profile = cfg.LLM.Profile
	}
	if !fl.Changed("rpm") {
		f.rpm = cfg.LLM.RequestsPerMinute
	}
	if !fl.Changed("max-tokens") {
		f.maxTokens = cfg.LLM.MaxTokens
	}
	if !fl.Changed("temperature") {
		f.temperature = cfg.LLM.Temperature
	}
}

func runCollect(ctx context.Context, f collectFlags, stdout io.Writer) error {
	prof, err := profile.Load(f.profile)
	if err != nil {
		return err
	}

	ps, err := prompts.ParseFile(f.promptsFile)
	if err != nil {
		return withCode(exitCodeBadInput, err)
	}
	if len(ps) == 0 {
		return withCode(exitCodeBadInput, eris.Errorf("collect: no prompts found in %s", f.promptsFile))
	}

	client, err := llm.NewClient(llm.Options{
		Provider:    f.provider,
		Model:       f.model,
		MaxTokens:         f.maxTokens,
		Temperature:       f.temperature,
		RequestsPerMinute: f.rpm,
		Debug:             f.debug,
	}, prof)
	if err != nil {
		return withCode(exitCodeAPIError, err)
	}

	zap.L().Info("collect: starting",
		zap.String("brand", f.brand),
		zap.String("provider", f.provider),
		zap.String("model", f.model),
		zap.String("profile", prof.Name),
		zap.Int("prompts", len(ps)),
	)

	runs, collectErr := llm.NewCollector(client, prof.RequireSources).Collect(ctx, ps)

	if len(runs) > 0 {
		file := &audit.File{
			Brand:    f.brand,
			Provider: f.provider,
			Model:    f.model,
			Profile:  prof.Name,
			Runs:     runs,
		}
		file.FillDefaults()
		if err := audit.Save(f.out, file); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "wrote %d of %d runs to %s\n", len(runs), len(ps), f.out)
	}

	switch {
	case collectErr != nil && (errors.Is(collectErr, context.Canceled) || errors.Is(collectErr, context.DeadlineExceeded)):
		return collectErr
	case collectErr != nil:
		return withCode(exitCodeAPIError, collectErr)
	case len(runs) == 0:
		return withCode(exitCodeBadOutput, llm.ErrInvalidModelOutput)
	}
	return nil
}
