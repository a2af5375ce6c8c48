package entry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/clinicflow/adapter/cli/clitest"
)

func entryFlags(patient, staff, date string) map[string]string {
	return map[string]string{
		"patient":    patient,
		"procedures": "điện,thủy,xoa,giác",
		"staff":      staff,
		"date":       date,
		"time":       "08:00",
	}
}

func TestAddListRemove(t *testing.T) {
	clitest.Setup(t)

	flags := entryFlags("BN001", "duy,hiền,lya", "20-10-2026")
	flags["notes"] = "walk-in"
	out, err := clitest.Run(t, addCmd, flags)
	require.NoError(t, err)
	assert.Equal(t, "Added entry 1 for BN001 on 20-10-2026 08:00\n", out)

	_, err = clitest.Run(t, addCmd, entryFlags("BN002", "quân;trị;thơ", "21-10-2026"))
	require.NoError(t, err)

	out, err = clitest.Run(t, listCmd, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Manual entries (2):")
	assert.Contains(t, out, "BN001    20-10-2026 08:00  điện-thủy-xoa-giác  [duy-hiền-lya]")
	assert.Contains(t, out, "walk-in")

	out, err = clitest.Run(t, listCmd, map[string]string{"patient": "bn002"})
	require.NoError(t, err)
	assert.Contains(t, out, "Manual entries (1):")
	assert.NotContains(t, out, "BN001")

	out, err = clitest.Run(t, removeCmd, nil, "1")
	require.NoError(t, err)
	assert.Equal(t, "Removed entry 1\n", out)

	_, err = clitest.Run(t, removeCmd, nil, "1")
	assert.Error(t, err)
}

func TestAdd_RejectsInvalidEntries(t *testing.T) {
	clitest.Setup(t)

	tests := []struct {
		name  string
		flags map[string]string
	}{
		{name: "senior in junior position", flags: entryFlags("BN001", "hiền,duy,lya", "20-10-2026")},
		{name: "unknown staff", flags: entryFlags("BN001", "duy,nobody,lya", "20-10-2026")},
		{name: "missing third position", flags: entryFlags("BN001", "duy,hiền", "20-10-2026")},
		{name: "bad date", flags: entryFlags("BN001", "duy,hiền,lya", "20/10/2026")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := clitest.Run(t, addCmd, tt.flags)
			assert.Error(t, err)
		})
	}

	out, err := clitest.Run(t, listCmd, nil)
	require.NoError(t, err)
	assert.Equal(t, "No manual entries found.\n", out)
}

func TestExport_CSV(t *testing.T) {
	clitest.Setup(t)

	_, err := clitest.Run(t, addCmd, entryFlags("BN002", "quân,trị,thơ", "21-10-2026"))
	require.NoError(t, err)
	_, err = clitest.Run(t, addCmd, entryFlags("BN002", "duy,hiền,lya", "20-10-2026"))
	require.NoError(t, err)

	out, err := clitest.Run(t, exportCmd, nil)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "BN002;điện-thủy-xoa-giác;", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], ";20-10-26"), lines[1])
	assert.True(t, strings.HasSuffix(lines[2], ";21-10-26"), lines[2])
}
