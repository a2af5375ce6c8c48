package domain_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoleClass(t *testing.T) {
	for in, want := range map[string]domain.RoleClass{
		"bs": domain.RoleSenior, "Senior": domain.RoleSenior,
		"ys": domain.RoleJunior, "junior": domain.RoleJunior,
	} {
		got, err := domain.ParseRoleClass(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := domain.ParseRoleClass("nurse")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestNewCatalog_Validation(t *testing.T) {
	_, err := domain.NewCatalog(nil)
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = domain.NewCatalog([]domain.ProcedureSpec{{Name: "a", Duration: 0, Role: domain.RoleSenior}})
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = domain.NewCatalog([]domain.ProcedureSpec{
		{Name: "a", Duration: time.Minute, Role: domain.RoleSenior},
		{Name: "A", Duration: time.Minute, Role: domain.RoleJunior},
	})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestCatalog_ParseProcedures(t *testing.T) {
	catalog := clinicCatalog(t)

	tests := []struct {
		name    string
		in      string
		want    []string
		wantErr bool
	}{
		{name: "dash separated", in: "điện-xoa-kéo-giác", want: []string{"điện", "xoa", "kéo", "giác"}},
		{name: "comma separated with spaces", in: "Điện, xoa, kéo, giác", want: []string{"điện", "xoa", "kéo", "giác"}},
		{name: "semicolon wins over dash", in: "điện;xoa;kéo;cứu", want: []string{"điện", "xoa", "kéo", "cứu"}},
		{name: "alternate spelling of thủy", in: "thuỷ-xoa-kéo-giác", want: []string{"thủy", "xoa", "kéo", "giác"}},
		{name: "three items", in: "điện-xoa-kéo", wantErr: true},
		{name: "five items", in: "điện-xoa-kéo-giác-cứu", wantErr: true},
		{name: "unknown item", in: "điện-xoa-kéo-bơi", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := catalog.ParseProcedures(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrConfiguration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCatalog_Lookup(t *testing.T) {
	catalog := clinicCatalog(t)
	spec, err := catalog.Lookup("KÉO")
	require.NoError(t, err)
	assert.Equal(t, 20*time.Minute, spec.Duration)
	assert.Equal(t, domain.RoleSenior, spec.Role)
	assert.Len(t, catalog.Names(), 6)
}
