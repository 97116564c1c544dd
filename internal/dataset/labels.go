package dataset

import (
	"github.com/talgya/polisim/internal/engine"
	"github.com/talgya/polisim/internal/market"
)

// Labels are the derived boolean outcomes used for offline classification.
type Labels struct {
	PriceSpike         bool `json:"price_spike"`
	SupplyShortage     bool `json:"supply_shortage"`
	ComplianceCollapse bool `json:"compliance_collapse"`
}

// DeriveLabels scans a finished run for the three signature outcomes:
// a >20% month-over-month price jump, any neighborhood supply below 0.2 at
// the final snapshot, and any step with compliance below 0.5.
func DeriveLabels(history []engine.HistoryRecord, neighborhoods map[int]market.Neighborhood) Labels {
	var l Labels

	for i := 1; i < len(history); i++ {
		prev := history[i-1].AvgPrice
		if prev <= 0 {
			prev = 1e-6
		}
		if history[i].AvgPrice/prev-1.0 > 0.20 {
			l.PriceSpike = true
			break
		}
	}

	for _, nb := range neighborhoods {
		if nb.Supply < 0.2 {
			l.SupplyShortage = true
			break
		}
	}

	for _, h := range history {
		if h.ComplianceRate < 0.5 {
			l.ComplianceCollapse = true
			break
		}
	}

	return l
}
