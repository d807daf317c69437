package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/brandlens/internal/config"
)

const (
	toolName = "brandlens"
	version  = "0.1.0"
)

// Process exit codes.
const (
	exitCodeOK        = 0
	exitCodeUsage     = 1
	exitCodeThreshold = 2
	exitCodeBadInput  = 3
	exitCodeAPIError  = 4
	exitCodeBadOutput = 5
)

// exitError carries the process exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// exitCode maps err to a process exit code. Errors without an attached code
// are usage or runtime failures.
func exitCode(err error) int {
	if err == nil {
		return exitCodeOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitCodeUsage
}

// cfg is populated by the root command before any subcommand runs.
var cfg *config.Config

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           toolName,
		Short:         "Brand visibility analysis for LLM answers",
		Long:          "Detects how prominently a brand is mentioned in model answers, classifies the sources they cite, and reports audit-level visibility rates.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load()
			if err != nil {
				return eris.Wrap(err, "load config")
			}
			cfg = c

			if err := config.InitLogger(cfg.Log); err != nil {
				return eris.Wrap(err, "init logger")
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = zap.L().Sync()
		},
	}

	root.AddCommand(
		newAnalyzeCmd(),
		newDetectCmd(),
		newClassifyCmd(),
		newCollectCmd(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	os.Exit(exitCode(err))
}

// writeOutput writes data to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "write %s", path)
	}
	return nil
}
