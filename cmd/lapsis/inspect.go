package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/statlite/lapsis/draws"
)

var inspectJSON bool

// inspectCmd decodes a draws blob and prints its stored diagnostics.
var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Decode a draws blob and print its diagnostics",
	Long: `inspect reads a blob written by run --out, verifies its checksum, and
prints the stored draw geometry, smoothing diagnostics, and compression
statistics.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "emit the report as JSON")
}

type inspectReport struct {
	File         string   `json:"file"`
	Draws        int      `json:"draws"`
	Dim          int      `json:"dim"`
	Smoothed     bool     `json:"smoothed"`
	KHat         *float64 `json:"k_hat"`
	TailLen      int      `json:"tail_len"`
	Warnings     string   `json:"warnings"`
	ESS          *float64 `json:"effective_sample_size"`
	Compression  string   `json:"compression"`
	RawBytes     int      `json:"raw_bytes"`
	PayloadBytes int      `json:"payload_bytes"`
	Ratio        float64  `json:"ratio"`
	SpaceSavings float64  `json:"space_savings"`
	BigEndian    bool     `json:"big_endian"`
	Fingerprint  string   `json:"fingerprint"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	blob, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read blob: %w", err)
	}

	set, header, err := draws.Decode(blob)
	if err != nil {
		return err
	}

	stats := header.Stats()
	report := inspectReport{
		File:         args[0],
		Draws:        set.Len(),
		Dim:          set.Dim(),
		Smoothed:     set.Smoothed(),
		KHat:         optionalFloat(set.KHat()),
		TailLen:      set.TailLen(),
		Warnings:     set.Warnings().String(),
		ESS:          optionalFloat(set.EffectiveSampleSize()),
		Compression:  header.Compression.String(),
		RawBytes:     int(header.RawLen),
		PayloadBytes: int(header.PayloadLen),
		Ratio:        stats.Ratio(),
		SpaceSavings: stats.SpaceSavings(),
		BigEndian:    header.BigEndian(),
		Fingerprint:  fmt.Sprintf("0x%016x", header.Fingerprint),
	}

	if inspectJSON {
		return emitJSON(cmd, report)
	}

	cmd.Printf("draws:        %d x %d\n", report.Draws, report.Dim)
	cmd.Printf("smoothed:     %v\n", report.Smoothed)
	if report.KHat != nil {
		cmd.Printf("k-hat:        %.3f  (tail %d, warnings: %s)\n", *report.KHat, report.TailLen, report.Warnings)
	}
	if report.ESS != nil {
		cmd.Printf("ESS:          %.1f\n", *report.ESS)
	}
	cmd.Printf("compression:  %s  (%d -> %d bytes, %.1f%% saved)\n",
		report.Compression, report.RawBytes, report.PayloadBytes, report.SpaceSavings)
	cmd.Printf("byte order:   %s\n", byteOrderName(report.BigEndian))
	cmd.Printf("fingerprint:  %s\n", report.Fingerprint)

	return nil
}

func byteOrderName(big bool) string {
	if big {
		return "big-endian"
	}

	return "little-endian"
}
