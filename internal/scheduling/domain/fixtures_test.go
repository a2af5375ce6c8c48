package domain_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
	staffing "github.com/felixgeelhaar/clinicflow/internal/staffing/domain"
	"github.com/stretchr/testify/require"
)

func letterCatalog(t *testing.T) *domain.Catalog {
	t.Helper()
	catalog, err := domain.NewCatalog([]domain.ProcedureSpec{
		{Name: "a", Duration: 30 * time.Minute, Role: domain.RoleSenior},
		{Name: "b", Duration: 30 * time.Minute, Role: domain.RoleSenior},
		{Name: "c", Duration: 20 * time.Minute, Role: domain.RoleJunior},
		{Name: "d", Duration: 20 * time.Minute, Role: domain.RoleJunior},
	})
	require.NoError(t, err)
	return catalog
}

func clinicCatalog(t *testing.T) *domain.Catalog {
	t.Helper()
	catalog, err := domain.NewCatalog([]domain.ProcedureSpec{
		{Name: "điện", Duration: 30 * time.Minute, Role: domain.RoleJunior},
		{Name: "thủy", Duration: 30 * time.Minute, Role: domain.RoleSenior},
		{Name: "xoa", Duration: 30 * time.Minute, Role: domain.RoleJunior},
		{Name: "kéo", Duration: 20 * time.Minute, Role: domain.RoleSenior},
		{Name: "giác", Duration: 20 * time.Minute, Role: domain.RoleJunior},
		{Name: "cứu", Duration: 20 * time.Minute, Role: domain.RoleJunior},
	})
	require.NoError(t, err)
	return catalog
}

var testDoctors = domain.WeekdayDoctors{
	"Trần Thị Thu Hiền", "Trần Thị Thu Hiền", "Trần Thị Thu Hiền",
	"Trần Thị Thu Hiền", "Trần Thị Thu Hiền", "Trần Thị Thu Hiền",
	"Bùi Tá Việt Trị",
}

func testContext(t *testing.T, catalog *domain.Catalog) *domain.SchedulingContext {
	t.Helper()
	roster, err := staffing.NewRoster(
		map[string]string{"duy": "Nguyễn Văn Duy", "lya": "H' Lya Niê", "quân": "Lê Văn Quân"},
		map[string]string{"hiền": "Trần Thị Thu Hiền", "trị": "Bùi Tá Việt Trị"},
	)
	require.NoError(t, err)
	sc, err := domain.NewSchedulingContext(catalog, roster, testDoctors, staffing.NewDisabledSet(nil))
	require.NoError(t, err)
	return sc
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(date time.Time, hour, minute int) time.Time {
	return date.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}
