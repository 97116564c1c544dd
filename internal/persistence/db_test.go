package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/polisim/internal/dataset"
	"github.com/talgya/polisim/internal/engine"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleRun(id string) dataset.RunRecord {
	return dataset.RunRecord{
		ID:             id,
		Seed:           42,
		PopulationSize: 100,
		Policy: &dataset.PolicyMeta{
			Type:   "housing_rent_subsidy",
			Params: map[string]float64{"subsidy_amount": 200, "eligibility_threshold": 1000},
		},
		History: []engine.HistoryRecord{
			{Step: 1, AvgPrice: 10, TotalDemand: 500, Gini: 0.4, ComplianceRate: 0.95, AvgStress: 0.1},
			{Step: 2, AvgPrice: 12, TotalDemand: 480, Gini: 0.41, ComplianceRate: 0.93, AvgStress: 0.12},
		},
		Labels: dataset.Labels{PriceSpike: true},
	}
}

func TestSaveAndCount(t *testing.T) {
	db := openTestDB(t)

	n, err := db.CountRuns()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, db.SaveRun(sampleRun("run-1")))
	require.NoError(t, db.SaveRun(sampleRun("run-2")))

	n, err = db.CountRuns()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSaveRunDuplicateID(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.SaveRun(sampleRun("run-1")))
	require.Error(t, db.SaveRun(sampleRun("run-1")), "primary key conflict")
}

func TestSaveRunWithoutPolicy(t *testing.T) {
	db := openTestDB(t)
	run := sampleRun("baseline-1")
	run.Policy = nil
	require.NoError(t, db.SaveRun(run))
}

func TestRunHistoryRoundTrip(t *testing.T) {
	db := openTestDB(t)
	run := sampleRun("run-1")
	require.NoError(t, db.SaveRun(run))

	history, err := db.RunHistory("run-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, run.History[0], history[0])
	assert.Equal(t, run.History[1], history[1])

	missing, err := db.RunHistory("absent")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestSaveBatch(t *testing.T) {
	db := openTestDB(t)
	runs := []dataset.RunRecord{sampleRun("a"), sampleRun("b"), sampleRun("c")}
	require.NoError(t, db.SaveBatch(runs))

	n, err := db.CountRuns()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
