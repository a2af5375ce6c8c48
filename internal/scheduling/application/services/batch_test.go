package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
)

func batchRequest(t *testing.T, slots ...string) BatchRequest {
	t.Helper()
	return BatchRequest{
		RunOptions: RunOptions{
			StartDate: day(2025, time.March, 10),
			EndDate:   day(2025, time.March, 12),
			Slots:     flatSlots(t, slots...),
			Seed:      42,
		},
		Patients: []BatchPatient{
			{PatientID: "BN001"},
			{PatientID: "BN002", Procedures: []string{"xoa", "kéo", "cứu", "điện"}},
			{PatientID: "BN003"},
		},
		DefaultProcedures: testProcedures,
	}
}

func TestGenerateScheduleBatch_SharesLedger(t *testing.T) {
	sc := testContext(t, nil)
	records, err := testEngine(t, sc, nil).GenerateScheduleBatch(context.Background(), batchRequest(t, "08:00", "13:30"))

	require.NoError(t, err)
	require.Len(t, records, 9)
	requireNoGroupAOverlap(t, sc, records)

	firsts := 0
	for _, rec := range records {
		if rec.IsFirst {
			firsts++
		}
		if rec.PatientID == "BN002" {
			assert.Equal(t, "xoa", rec.Procedures[0].Procedure)
		}
	}
	assert.Equal(t, 3, firsts)
}

func TestGenerateScheduleBatch_Deterministic(t *testing.T) {
	sc := testContext(t, nil)
	a, err := testEngine(t, sc, nil).GenerateScheduleBatch(context.Background(), batchRequest(t, "08:00", "13:30"))
	require.NoError(t, err)
	b, err := testEngine(t, sc, nil).GenerateScheduleBatch(context.Background(), batchRequest(t, "08:00", "13:30"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerateScheduleBatch_Exhausted(t *testing.T) {
	sc := testContext(t, map[string]string{"duy": "Nguyễn Văn Duy"})
	req := batchRequest(t, "08:00")
	req.Patients = req.Patients[:2]

	_, err := testEngine(t, sc, nil).GenerateScheduleBatch(context.Background(), req)

	assert.ErrorIs(t, err, domain.ErrResourceExhausted)
	assert.ErrorContains(t, err, "patient BN002")
}

func TestGenerateScheduleBatch_Errors(t *testing.T) {
	engine := testEngine(t, testContext(t, nil), nil)

	req := batchRequest(t, "08:00")
	req.Patients = nil
	_, err := engine.GenerateScheduleBatch(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	req = batchRequest(t, "08:00")
	req.DefaultProcedures = nil
	_, err = engine.GenerateScheduleBatch(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.ErrorContains(t, err, "BN001")
}

func TestParseBatchLines(t *testing.T) {
	catalog := testCatalog(t)
	patients, err := ParseBatchLines(catalog, []string{
		"# patients for March",
		"",
		"BN001",
		"BN002; xoa-kéo-cứu-điện",
		"BN003;Điện;Thuỷ;Xoa;Giác",
		" ;ignored",
	})

	require.NoError(t, err)
	require.Len(t, patients, 3)
	assert.Equal(t, BatchPatient{PatientID: "BN001"}, patients[0])
	assert.Equal(t, []string{"xoa", "kéo", "cứu", "điện"}, patients[1].Procedures)
	assert.Equal(t, []string{"điện", "thủy", "xoa", "giác"}, patients[2].Procedures)

	_, err = ParseBatchLines(catalog, []string{"BN004;điện-thủy"})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.ErrorContains(t, err, "batch line 1")
}
