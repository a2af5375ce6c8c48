package staff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/clinicflow/adapter/cli/clitest"
)

func TestList_FallsBackToCatalogRoster(t *testing.T) {
	clitest.Setup(t)

	out, err := clitest.Run(t, listCmd, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Staff (15):")
	assert.Contains(t, out, "A  duy      Nguyễn Văn Duy\n")
	assert.Contains(t, out, "B  trị      Bùi Tá Việt Trị\n")
}

func TestDisableEnable(t *testing.T) {
	clitest.Setup(t)

	out, err := clitest.Run(t, disableCmd, nil, "Duy", "lya")
	require.NoError(t, err)
	assert.Contains(t, out, "Disabled: duy, lya")

	out, err = clitest.Run(t, listCmd, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "duy      Nguyễn Văn Duy  [disabled]")

	out, err = clitest.Run(t, enableCmd, nil, "duy", "lya")
	require.NoError(t, err)
	assert.Contains(t, out, "All staff enabled.")
}

func TestSeedThenEdit(t *testing.T) {
	clitest.Setup(t)

	out, err := clitest.Run(t, seedCmd, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 15 staff members.")

	out, err = clitest.Run(t, seedCmd, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to seed")

	out, err = clitest.Run(t, addCmd, map[string]string{"name": "Phạm Văn Nam", "group": "b"}, "nam")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved nam (Phạm Văn Nam), group B")

	_, err = clitest.Run(t, removeCmd, nil, "duy")
	require.NoError(t, err)

	out, err = clitest.Run(t, listCmd, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Staff (15):")
	assert.Contains(t, out, "nam")
	assert.NotContains(t, out, "Nguyễn Văn Duy")
}

func TestRemove_Unknown(t *testing.T) {
	clitest.Setup(t)
	_, err := clitest.Run(t, seedCmd, nil)
	require.NoError(t, err)

	_, err = clitest.Run(t, removeCmd, nil, "nobody")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nobody")
}

func TestParseGroup(t *testing.T) {
	for in, want := range map[string]int{"A": 1, "a": 1, "1": 1, "B": 2, " b ": 2, "2": 2} {
		got, err := parseGroup(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseGroup("C")
	assert.Error(t, err)
}
