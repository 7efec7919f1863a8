package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/statlite/lapsis"
	"github.com/statlite/lapsis/compress"
	"github.com/statlite/lapsis/draws"
	"github.com/statlite/lapsis/internal/hash"
	"github.com/statlite/lapsis/posterior"
	"github.com/statlite/lapsis/psis"
)

var (
	runDraws        int
	runResample     int
	runTailFraction float64
	runOut          string
	runCompression  string
	runBigEndian    bool
	runNoWeights    bool
	runJSON         bool
)

// runCmd fits the full pipeline against the dataset.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fit the posterior and report reweighting diagnostics",
	Long: `run locates the posterior mode, draws from the Gaussian approximation
built there, smooths the importance weights, and prints the k-hat
diagnostic together with a resampled posterior summary. With --out the
weighted draws are persisted as a binary blob for later inspection.`,
	RunE: runFit,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVar(&runDraws, "draws", lapsis.DefaultDraws, "proposal draws to take")
	runCmd.Flags().IntVar(&runResample, "resample", 1000, "resampled points for the posterior summary (0 disables)")
	runCmd.Flags().Float64Var(&runTailFraction, "tail-fraction", 0, "importance-weight tail fraction (library default when zero)")
	runCmd.Flags().StringVar(&runOut, "out", "", "write the weighted draws to this file")
	runCmd.Flags().StringVar(&runCompression, "compression", "zstd", "blob payload compression: none, zstd, s2, lz4")
	runCmd.Flags().BoolVar(&runBigEndian, "big-endian", false, "encode blob floats big-endian")
	runCmd.Flags().BoolVar(&runNoWeights, "no-weights", false, "omit smoothed weights from the blob")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "emit the report as JSON")
}

type runReport struct {
	RunID    string        `json:"run_id"`
	Mode     []float64     `json:"mode"`
	LogProb  float64       `json:"log_prob"`
	KHat     *float64      `json:"k_hat"`
	TailLen  int           `json:"tail_len"`
	Warnings string        `json:"warnings"`
	ESS      float64       `json:"effective_sample_size"`
	Draws    int           `json:"draws"`
	Summary  *pointSummary `json:"resampled,omitempty"`
	OutFile  string        `json:"out_file,omitempty"`
	OutBytes int           `json:"out_bytes,omitempty"`
}

func runFit(cmd *cobra.Command, _ []string) error {
	data, err := loadDataset()
	if err != nil {
		return err
	}
	target, err := posterior.NewBinomialLogit(data, nil)
	if err != nil {
		return err
	}

	opts := []lapsis.Option{
		lapsis.WithDraws(runDraws),
		lapsis.WithSource(newSource()),
		lapsis.WithWorkers(viper.GetInt("workers")),
	}
	if runTailFraction > 0 {
		opts = append(opts, lapsis.WithSmoothOptions(psis.WithTailFraction(runTailFraction)))
	}

	result, err := lapsis.Fit(target, opts...)
	if err != nil {
		return err
	}

	report := runReport{
		RunID:    runID(viper.GetString("data"), viper.GetUint64("seed"), runDraws),
		Mode:     result.Mode.Location,
		LogProb:  result.Mode.LogProb,
		KHat:     optionalFloat(result.KHat()),
		TailLen:  result.Set.TailLen(),
		Warnings: result.Smoothing.Warnings.String(),
		ESS:      result.EffectiveSampleSize(),
		Draws:    result.Set.Len(),
	}

	if runResample > 0 {
		points, err := result.Resample(runResample, newSource())
		if err != nil {
			return err
		}
		summary := summarize(points)
		report.Summary = &summary
	}

	if runOut != "" {
		blob, err := encodeBlob(result, data)
		if err != nil {
			return err
		}
		if err := os.WriteFile(runOut, blob, 0o644); err != nil {
			return fmt.Errorf("write blob: %w", err)
		}
		report.OutFile = runOut
		report.OutBytes = len(blob)
	}

	if runJSON {
		return emitJSON(cmd, report)
	}
	printRunReport(cmd, report)

	return nil
}

// runID labels a run by its dataset, seed, and draw count so reports of
// the same configuration can be matched up across invocations.
func runID(dataset string, seed uint64, count int) string {
	if dataset == "" {
		dataset = "bioassay"
	}

	return fmt.Sprintf("0x%016x", hash.ID(fmt.Sprintf("%s|%d|%d", dataset, seed, count)))
}

func encodeBlob(result *lapsis.Result, data posterior.Dataset) ([]byte, error) {
	ct, err := compress.ParseType(runCompression)
	if err != nil {
		return nil, err
	}

	opts := []draws.Option{
		draws.WithCompression(ct),
		draws.WithFingerprint(data.Fingerprint()),
	}
	if runBigEndian {
		opts = append(opts, draws.WithBigEndian())
	}
	if runNoWeights {
		opts = append(opts, draws.WithoutWeights())
	}

	return draws.Encode(result.Set, opts...)
}

func printRunReport(cmd *cobra.Command, r runReport) {
	cmd.Printf("run:        %s\n", r.RunID)
	cmd.Printf("mode:       (%.4f, %.4f)  log prob %.4f\n", r.Mode[0], r.Mode[1], r.LogProb)
	if r.KHat != nil {
		cmd.Printf("k-hat:      %.3f  (tail %d, warnings: %s)\n", *r.KHat, r.TailLen, r.Warnings)
	} else {
		cmd.Printf("k-hat:      n/a  (warnings: %s)\n", r.Warnings)
	}
	cmd.Printf("ESS:        %.1f of %d draws\n", r.ESS, r.Draws)
	if r.Summary != nil {
		cmd.Printf("posterior:  alpha %.3f +/- %.3f, beta %.3f +/- %.3f\n",
			r.Summary.Mean[0], r.Summary.StdDev[0], r.Summary.Mean[1], r.Summary.StdDev[1])
		if r.Summary.LD50 != nil {
			cmd.Printf("LD50:       %.4f\n", *r.Summary.LD50)
		}
	}
	if r.OutFile != "" {
		cmd.Printf("wrote:      %s (%d bytes)\n", r.OutFile, r.OutBytes)
	}
}
