package main

import (
	"math"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/statlite/lapsis"
)

// pointSummary condenses draws into per-parameter moments plus the mean
// of the implied LD50 distribution.
type pointSummary struct {
	Count  int       `json:"count"`
	Mean   []float64 `json:"mean"`
	StdDev []float64 `json:"std_dev"`
	LD50   *float64  `json:"ld50_mean,omitempty"`
}

func summarize(points [][]float64) pointSummary {
	if len(points) == 0 {
		return pointSummary{}
	}

	dim := len(points[0])
	s := pointSummary{
		Count:  len(points),
		Mean:   make([]float64, dim),
		StdDev: make([]float64, dim),
	}

	col := make([]float64, len(points))
	for j := 0; j < dim; j++ {
		for i, p := range points {
			col[i] = p[j]
		}
		s.Mean[j] = stat.Mean(col, nil)
		s.StdDev[j] = stat.StdDev(col, nil)
	}

	if doses := lapsis.LD50(points); len(doses) > 0 {
		m := stat.Mean(doses, nil)
		s.LD50 = &m
	}

	return s
}

// optionalFloat hides NaN from JSON output, which cannot represent it.
func optionalFloat(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}

	return &v
}

// emitJSON pretty-prints v to the command's stdout.
func emitJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(out))

	return nil
}
