package api

import (
	"fmt"
	"math"
	"strings"

	"github.com/talgya/polisim/internal/emergence"
	"github.com/talgya/polisim/internal/engine"
)

// buildExplanation turns an analysis into a plain-language reading plus a
// recommendation list for the response body.
func buildExplanation(analysis emergence.Analysis, history []engine.HistoryRecord) (string, []string) {
	var msgs []string
	recs := []string{}

	m := analysis.Metrics

	switch {
	case m.PriceAcceleration > 0.5:
		msgs = append(msgs, fmt.Sprintf(
			"Rapid price acceleration detected (score=%.2f). Prices may spiral if unchecked.",
			m.PriceAcceleration))
		recs = append(recs,
			"Reduce subsidy magnitude or increase housing supply interventions to cool price pressures.")
	case m.Volatility > 0.3:
		msgs = append(msgs, fmt.Sprintf(
			"Elevated price volatility observed (volatility=%.2f). Market instability may be emerging.",
			m.Volatility))
		recs = append(recs,
			"Consider phased implementation and monitoring to avoid sudden shocks.")
	default:
		msgs = append(msgs, "Price behavior appears within expected bounds for this scenario.")
	}

	if m.ComplianceInstability > 0.1 {
		msgs = append(msgs, "Compliance instability detected - watch for shadow-market behaviors.")
		recs = append(recs, "Increase enforcement visibility and reduce incentives for evasion.")
	} else {
		msgs = append(msgs, "Compliance levels are stable in recent steps.")
	}

	for _, a := range analysis.Alerts {
		if a.Type == "Stress Decoupling" {
			msgs = append(msgs,
				"Inequality is improving while stress rises - this can indicate supply shortages affecting well-being.")
			recs = append(recs,
				"Target supply-side measures or temporary price supports for essentials.")
			break
		}
	}

	if len(history) > 0 {
		latest := history[len(history)-1]
		msgs = append(msgs, fmt.Sprintf("Latest avg price: %.2f.", latest.AvgPrice))
		msgs = append(msgs, fmt.Sprintf("Latest compliance: %d%%.",
			int(math.Round(latest.ComplianceRate*100))))
	}

	return strings.Join(msgs, " "), recs
}
