package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
	staffing "github.com/felixgeelhaar/clinicflow/internal/staffing/domain"
)

var doctors = domain.WeekdayDoctors{
	"Trần Thị Thu Hiền", "Trần Thị Thu Hiền", "Trần Thị Thu Hiền",
	"Trần Thị Thu Hiền", "Trần Thị Thu Hiền", "Trần Thị Thu Hiền",
	"Bùi Tá Việt Trị",
}

func testContext(t *testing.T) *domain.SchedulingContext {
	t.Helper()
	catalog, err := domain.NewCatalog([]domain.ProcedureSpec{
		{Name: "điện", Duration: 30 * time.Minute, Role: domain.RoleJunior},
		{Name: "thủy", Duration: 30 * time.Minute, Role: domain.RoleSenior},
		{Name: "xoa", Duration: 30 * time.Minute, Role: domain.RoleJunior},
		{Name: "kéo", Duration: 20 * time.Minute, Role: domain.RoleSenior},
		{Name: "giác", Duration: 20 * time.Minute, Role: domain.RoleJunior},
	})
	require.NoError(t, err)
	roster, err := staffing.NewRoster(
		map[string]string{"duy": "Nguyễn Văn Duy", "lya": "H' Lya Niê", "quân": "Lê Văn Quân"},
		map[string]string{"hiền": "Trần Thị Thu Hiền", "trị": "Bùi Tá Việt Trị"},
	)
	require.NoError(t, err)
	sc, err := domain.NewSchedulingContext(catalog, roster, doctors, nil)
	require.NoError(t, err)
	return sc
}

func sampleRecords(t *testing.T, sc *domain.SchedulingContext) []domain.AppointmentRecord {
	t.Helper()
	build := func(id string, d int, start domain.Clock, procs []string, lineup domain.Lineup, first bool) domain.AppointmentRecord {
		rec, err := sc.BuildAppointment(id, time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC), start, procs, lineup)
		require.NoError(t, err)
		rec.IsFirst = first
		return rec
	}
	a := []string{"điện", "thủy", "xoa", "giác"}
	b := []string{"xoa", "kéo", "giác", "điện"}
	return []domain.AppointmentRecord{
		build("BN001", 10, domain.NewClock(8, 5), a, domain.Lineup{"duy", "hiền", "lya"}, true),
		build("BN002", 10, domain.NewClock(8, 5), b, domain.Lineup{"quân", "trị", "duy"}, true),
		build("BN001", 11, domain.NewClock(13, 35), a, domain.Lineup{"lya", "hiền", "quân"}, false),
	}
}

func TestWriteCSV(t *testing.T) {
	sc := testContext(t)
	var buf bytes.Buffer

	require.NoError(t, WriteCSV(&buf, sampleRecords(t, sc), sc.Roster()))

	want := strings.Join([]string{
		"BN001;điện-thủy-xoa-giác;",
		"08:05;duy-hiền-lya;10-03-25",
		"13:35;lya-hiền-quân;11-03-25",
		"BN002;xoa-kéo-giác-điện;",
		"08:05;quân-trị-duy;10-03-25",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestCSVRoundTrip(t *testing.T) {
	sc := testContext(t)
	records := sampleRecords(t, sc)
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records, sc.Roster()))

	got, err := ReadCSV(&buf, sc)

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, records[0], got[0])
	assert.Equal(t, records[2], got[1])
	assert.Equal(t, records[1], got[2])
}

func TestReadCSV_Errors(t *testing.T) {
	sc := testContext(t)
	tests := []struct {
		name    string
		data    string
		message string
	}{
		{"unknown procedure", "BN001;điện-bấm-xoa-giác;\n08:05;duy-hiền-lya;10-03-25\n", "unknown procedure"},
		{"unknown staff", "BN001;điện-thủy-xoa-giác;\n08:05;duy-an-lya;10-03-25\n", `unknown staff "an"`},
		{"group B in position 1", "BN001;điện-thủy-xoa-giác;\n08:05;hiền-duy-lya;10-03-25\n", "position 1"},
		{"group A in position 2", "BN001;điện-thủy-xoa-giác;\n08:05;duy-lya-quân;10-03-25\n", "position 2"},
		{"bad date", "BN001;điện-thủy-xoa-giác;\n08:05;duy-hiền-lya;31-02-25\n", "cannot parse date"},
		{"bad time", "BN001;điện-thủy-xoa-giác;\n8h05;duy-hiền-lya;10-03-25\n", "invalid time"},
		{"orphan appointment", "08:05;duy-hiền-lya;10-03-25\n", "before any patient line"},
		{"three procedures", "BN001;điện-thủy-xoa;\n08:05;duy-hiền-lya;10-03-25\n", "exactly 4 items, got 3"},
		{"missing position 3", "BN001;điện-thủy-xoa-giác;\n08:05;duy-hiền;10-03-25\n", "needs staff for position 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.data), sc)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrConfiguration)
			assert.ErrorContains(t, err, tt.message)
		})
	}
}

func TestCSVRoundTrip_PositionalLineup(t *testing.T) {
	sc := testContext(t)
	d := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		procs  []string
		lineup domain.Lineup
		row    string
	}{
		{"same staff in positions 1 and 3", []string{"điện", "thủy", "xoa", "giác"}, domain.Lineup{"duy", "hiền", "duy"}, "08:05;duy-hiền-duy;10-03-25"},
		{"senior procedure first", []string{"thủy", "điện", "xoa", "giác"}, domain.Lineup{"duy", "hiền", "lya"}, "08:05;duy-hiền-lya;10-03-25"},
		{"two senior procedures", []string{"kéo", "điện", "thủy", "giác"}, domain.Lineup{"quân", "trị", "lya"}, "08:05;quân-trị-lya;10-03-25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := sc.BuildAppointment("BN009", d, domain.NewClock(8, 5), tt.procs, tt.lineup)
			require.NoError(t, err)
			rec.IsFirst = true

			var buf bytes.Buffer
			require.NoError(t, WriteCSV(&buf, []domain.AppointmentRecord{rec}, sc.Roster()))
			assert.Contains(t, buf.String(), tt.row+"\n")

			got, err := ReadCSV(&buf, sc)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, rec, got[0])
		})
	}
}

func TestReadCSV_MarksEarliestVisitFirst(t *testing.T) {
	sc := testContext(t)
	data := strings.Join([]string{
		"BN001;điện-thủy-xoa-giác;",
		"08:05;duy-hiền-lya;11-03-25",
		"08:05;lya-hiền-quân;10-03-25",
		"BN002;điện-thủy-xoa-giác;",
		"09:05;quân-trị-duy;10-03-25",
		"BN001;điện-thủy-xoa-giác;",
		"13:35;quân-hiền-duy;12-03-25",
		"",
	}, "\n")

	got, err := ReadCSV(strings.NewReader(data), sc)

	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.False(t, got[0].IsFirst)
	assert.True(t, got[1].IsFirst, "10-03 is the earliest visit of BN001")
	assert.True(t, got[2].IsFirst)
	assert.False(t, got[3].IsFirst, "a second BN001 block does not restart the first visit")
}

func TestReadCSV_SkipsBlankLines(t *testing.T) {
	sc := testContext(t)
	data := "BN001;điện-thủy-xoa-giác\n\n08:05;duy-hiền-lya;10/03/2025\n;;\n"

	got, err := ReadCSV(strings.NewReader(data), sc)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].IsFirst)
	assert.Equal(t, "Nguyễn Văn Duy", got[0].Procedures[0].Staff)
}

func TestWriteJSON(t *testing.T) {
	sc := testContext(t)
	var buf bytes.Buffer

	require.NoError(t, WriteJSON(&buf, sampleRecords(t, sc)[:1]))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	rec := decoded[0]
	assert.Equal(t, "BN001", rec["id"])
	assert.Equal(t, true, rec["isFirst"])
	assert.Equal(t, "10-03-2025", rec["ngay"])

	procs := rec["thu_thuats"].([]any)
	require.Len(t, procs, 4)
	first := procs[0].(map[string]any)
	assert.Equal(t, "điện", first["Ten"])
	assert.Equal(t, "Trần Thị Thu Hiền", first["BS CD"])
	assert.Equal(t, "10-03-2025{SPACE}08:00", first["Ngay CD"])
	assert.Equal(t, "10-03-2025{SPACE}08:05", first["Ngay BD TH"])
	assert.Equal(t, "10-03-2025{SPACE}08:35", first["Ngay KQ"])
	assert.Equal(t, "Nguyễn Văn Duy", first["Nguoi Thuc Hien"])
}

func TestWriteXLSX(t *testing.T) {
	sc := testContext(t)
	var buf bytes.Buffer

	require.NoError(t, WriteXLSX(&buf, sampleRecords(t, sc)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetName}, f.GetSheetList())
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1+3*4)
	assert.Equal(t, WorkbookHeader, rows[0])
	assert.Equal(t, "BN001", rows[1][0])
	assert.Equal(t, "TRUE", rows[1][1])
	assert.Equal(t, "điện", rows[1][3])
	assert.Equal(t, "10-03-2025 08:05", rows[1][6])
}
