// Command datagen produces labeled batches of simulation runs for
// offline analysis and model training.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/polisim/internal/config"
	"github.com/talgya/polisim/internal/dataset"
	"github.com/talgya/polisim/internal/persistence"
)

var (
	flagRuns  int
	flagSteps int
	flagSeed  int64
	flagOut   string
	flagDB    string
)

var rootCmd = &cobra.Command{
	Use:   "datagen",
	Short: "Generate labeled policy simulation datasets",
	Long: `datagen runs batches of policy simulations with randomized
policy parameters and writes the results as JSON plus flat and
labeled CSV files, optionally persisting runs to SQLite.`,
	RunE: runGenerate,
}

func init() {
	def := config.Default()
	rootCmd.Flags().IntVar(&flagRuns, "runs", 100, "number of simulation runs to generate")
	rootCmd.Flags().IntVar(&flagSteps, "steps", def.Simulation.DefaultSteps, "steps per simulation run")
	rootCmd.Flags().Int64Var(&flagSeed, "seed", 0, "master seed (0 uses current time)")
	rootCmd.Flags().StringVar(&flagOut, "out", def.Dataset.OutDir, "output directory")
	rootCmd.Flags().StringVar(&flagDB, "db", "", "SQLite path to persist runs (empty disables)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if flagRuns <= 0 {
		return fmt.Errorf("--runs must be positive, got %d", flagRuns)
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	if err := os.MkdirAll(flagOut, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	slog.Info("generating dataset",
		"runs", flagRuns,
		"steps", flagSteps,
		"seed", seed,
	)

	start := time.Now()
	gen := dataset.NewGenerator(seed, flagSteps)
	runs, err := gen.GenerateBatch(flagRuns)
	if err != nil {
		return fmt.Errorf("generate batch: %w", err)
	}
	slog.Info("batch complete",
		"runs", len(runs),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	jsonPath := filepath.Join(flagOut, "runs.json")
	if err := dataset.WriteJSON(jsonPath, runs); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	flatPath := filepath.Join(flagOut, "runs_flat.csv")
	if err := dataset.WriteFlatCSV(flatPath, runs); err != nil {
		return fmt.Errorf("write flat csv: %w", err)
	}
	labeledPath := filepath.Join(flagOut, "runs_labeled.csv")
	if err := dataset.WriteLabeledCSV(labeledPath, runs); err != nil {
		return fmt.Errorf("write labeled csv: %w", err)
	}

	if flagDB != "" {
		db, err := persistence.Open(flagDB)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()
		if err := db.SaveBatch(runs); err != nil {
			return fmt.Errorf("persist runs: %w", err)
		}
		total, err := db.CountRuns()
		if err != nil {
			return fmt.Errorf("count runs: %w", err)
		}
		slog.Info("runs persisted", "db", flagDB, "total", humanize.Comma(int64(total)))
	}

	var spikes, shortages, collapses int
	for _, r := range runs {
		if r.Labels.PriceSpike {
			spikes++
		}
		if r.Labels.SupplyShortage {
			shortages++
		}
		if r.Labels.ComplianceCollapse {
			collapses++
		}
	}

	fmt.Printf("\nGenerated %s runs in %s\n",
		humanize.Comma(int64(len(runs))), flagOut)
	fmt.Printf("  price spikes:         %d\n", spikes)
	fmt.Printf("  supply shortages:     %d\n", shortages)
	fmt.Printf("  compliance collapses: %d\n", collapses)
	for _, p := range []string{jsonPath, flatPath, labeledPath} {
		if info, err := os.Stat(p); err == nil {
			fmt.Printf("  %s (%s)\n", p, humanize.Bytes(uint64(info.Size())))
		}
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
