package main

import (
	"fmt"
	"math/rand/v2"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/viper"

	"github.com/statlite/lapsis/posterior"
)

// observationJSON is the wire form of one dose group.
type observationJSON struct {
	Covariate float64 `json:"covariate"`
	Trials    int     `json:"trials"`
	Successes int     `json:"successes"`
}

// loadDataset reads the dataset named by --data, falling back to the
// built-in bioassay experiment when the flag is empty.
func loadDataset() (posterior.Dataset, error) {
	path := viper.GetString("data")
	if path == "" {
		return posterior.Bioassay(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	var rows []observationJSON
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}

	data := make(posterior.Dataset, len(rows))
	for i, row := range rows {
		data[i] = posterior.Observation{
			Covariate: row.Covariate,
			Trials:    row.Trials,
			Successes: row.Successes,
		}
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}

	return data, nil
}

// newSource builds a random source from --seed. Seed zero keeps the
// process-global generator.
func newSource() rand.Source {
	seed := viper.GetUint64("seed")
	if seed == 0 {
		return nil
	}

	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}
