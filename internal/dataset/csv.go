package dataset

import (
	"encoding/csv"
	"os"
	"strconv"
)

// WriteFlatCSV writes one row per simulation step across all runs.
func WriteFlatCSV(path string, runs []RunRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"run_id",
		"seed",
		"population_size",
		"policy_type",
		"step",
		"avg_price",
		"total_demand",
		"gini",
		"compliance_rate",
		"avg_stress",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, run := range runs {
		for _, step := range run.History {
			row := []string{
				run.ID,
				strconv.FormatInt(run.Seed, 10),
				strconv.Itoa(run.PopulationSize),
				policyType(run),
				strconv.Itoa(step.Step),
				fmtFloat(step.AvgPrice),
				fmtFloat(step.TotalDemand),
				fmtFloat(step.Gini),
				fmtFloat(step.ComplianceRate),
				fmtFloat(step.AvgStress),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	return w.Error()
}

// WriteLabeledCSV writes one summary row per run with its derived labels.
func WriteLabeledCSV(path string, runs []RunRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"run_id",
		"seed",
		"population_size",
		"policy_type",
		"price_spike",
		"supply_shortage",
		"compliance_collapse",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, run := range runs {
		row := []string{
			run.ID,
			strconv.FormatInt(run.Seed, 10),
			strconv.Itoa(run.PopulationSize),
			policyType(run),
			fmtBool(run.Labels.PriceSpike),
			fmtBool(run.Labels.SupplyShortage),
			fmtBool(run.Labels.ComplianceCollapse),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func policyType(run RunRecord) string {
	if run.Policy == nil {
		return "none"
	}
	return run.Policy.Type
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func fmtBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
