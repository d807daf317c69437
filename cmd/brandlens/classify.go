package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/brandlens/internal/citation"
)

func newClassifyCmd() *cobra.Command {
	var brand string
	cmd := &cobra.Command{
		Use:   "classify [--brand NAME] URL...",
		Short: "Classify cited URLs by source type and authority",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(brand, args, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&brand, "brand", "", "brand name used to recognise brand-owned domains")
	return cmd
}

func runClassify(brand string, urls []string, stdout io.Writer) error {
	return writeJSON(stdout, citation.ClassifyAll(urls, brand))
}
