// Package emergence provides the offline anomaly detector: a stateless
// pass over a finished history that surfaces signature patterns of
// unintended consequences.
package emergence

import (
	"math"

	"github.com/talgya/polisim/internal/engine"
)

// Alert describes one detected emergence pattern.
type Alert struct {
	Type      string `json:"type"`
	Severity  string `json:"severity"`
	Mechanism string `json:"mechanism"`
}

// Metrics are the raw signal values behind the alerts.
type Metrics struct {
	PriceAcceleration     float64 `json:"price_acceleration"`
	Volatility            float64 `json:"volatility"`
	ComplianceInstability float64 `json:"compliance_instability"`
}

// Analysis is the aggregate result of a detector pass.
type Analysis struct {
	UnintendedConsequenceIndex float64 `json:"unintended_consequence_index"`
	Alerts                     []Alert `json:"alerts"`
	Metrics                    Metrics `json:"metrics"`
}

// Detector analyzes a finished history sequence. It holds no state between
// calls and is purely deterministic, no learned model.
type Detector struct {
	windowSize int
}

// DefaultWindowSize balances signal stability against responsiveness for
// 24-step (two sim-year) runs.
const DefaultWindowSize = 6

// NewDetector creates a detector. Non-positive window sizes fall back to
// the default.
func NewDetector(windowSize int) *Detector {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	return &Detector{windowSize: windowSize}
}

// Alert thresholds per signal.
const (
	accelThreshold = 0.5
	volThreshold   = 0.3
	dropThreshold  = 0.2
)

// Analyze computes the four emergence signals and the aggregate index.
// Histories shorter than twice the window return a zero-signal result with
// no alerts.
func (d *Detector) Analyze(history []engine.HistoryRecord) Analysis {
	if len(history) < d.windowSize*2 {
		return Analysis{Alerts: []Alert{}}
	}

	prices := make([]float64, len(history))
	gini := make([]float64, len(history))
	compliance := make([]float64, len(history))
	stress := make([]float64, len(history))
	for i, h := range history {
		prices[i] = h.AvgPrice
		gini[i] = h.Gini
		compliance[i] = h.ComplianceRate
		stress[i] = h.AvgStress
	}

	alerts := []Alert{}
	score := 0.0

	priceAccel := d.detectAcceleration(prices)
	if priceAccel > accelThreshold {
		alerts = append(alerts, Alert{
			Type:      "Price Spiral",
			Severity:  "High",
			Mechanism: "Subsidies and local supply constraints combined to drive nonlinear price inflation.",
		})
		score += priceAccel * 40
	}

	volatility := d.detectVolatilityBurst(prices)
	if volatility > volThreshold {
		alerts = append(alerts, Alert{
			Type:      "Market Instability",
			Severity:  "Medium",
			Mechanism: "High variance in prices indicates the system is losing equilibrium.",
		})
		score += volatility * 20
	}

	complianceDrop := d.detectSuddenDrop(compliance)
	if complianceDrop > dropThreshold {
		alerts = append(alerts, Alert{
			Type:      "Compliance Collapse",
			Severity:  "Critical",
			Mechanism: "Policy incentives or peer influence triggered a phase transition into informal market activity.",
		})
		score += complianceDrop * 50
	}

	// Decoupling carries a fixed contribution, not magnitude-scaled.
	if slope(stress) > 0 && slope(gini) < 0 {
		alerts = append(alerts, Alert{
			Type:      "Stress Decoupling",
			Severity:  "Medium",
			Mechanism: "Inequality is falling, but agent frustration is rising due to shortages or price caps.",
		})
		score += 20
	}

	uci := math.Min(100, score)

	return Analysis{
		UnintendedConsequenceIndex: round1(uci),
		Alerts:                     alerts,
		Metrics: Metrics{
			PriceAcceleration:     round2(priceAccel),
			Volatility:            round2(volatility),
			ComplianceInstability: round2(complianceDrop),
		},
	}
}

// detectAcceleration measures whether the rate of change is itself
// increasing: the mean second difference over the recent window,
// normalized by the series mean.
func (d *Detector) detectAcceleration(series []float64) float64 {
	diff2 := diff(diff(series))
	if len(diff2) == 0 {
		return 0
	}
	recent := diff2
	if len(diff2) > d.windowSize {
		recent = diff2[len(diff2)-d.windowSize:]
	}
	return mean(recent) / (mean(series) + 1e-6)
}

// detectVolatilityBurst compares recent standard deviation against the
// historical remainder, floored at zero.
func (d *Detector) detectVolatilityBurst(series []float64) float64 {
	recent := stddev(series[len(series)-d.windowSize:])
	historical := stddev(series[:len(series)-d.windowSize])
	if historical == 0 {
		return 0
	}
	return math.Max(0, recent/historical-1.0)
}

// detectSuddenDrop measures a negative level shift: historical mean minus
// recent mean, floored at zero.
func (d *Detector) detectSuddenDrop(series []float64) float64 {
	if len(series) < 2 {
		return 0
	}
	recentMean := mean(series[len(series)-d.windowSize:])
	prevMean := mean(series[:len(series)-d.windowSize])
	return math.Max(0, prevMean-recentMean)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
