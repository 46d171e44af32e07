package scheduler

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/statusdeck/statusdeck/db"
	"github.com/statusdeck/statusdeck/internal/models"
	"github.com/statusdeck/statusdeck/internal/services"
	"github.com/statusdeck/statusdeck/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	return gdb
}

func seedMaintenance(t *testing.T, gdb *gorm.DB, start, end time.Time) *models.Maintenance {
	t.Helper()

	user := models.User{Name: "Operator", Email: "op@example.com", PasswordHash: "x"}
	require.NoError(t, gdb.Create(&user).Error)

	org := models.Organization{Name: "Acme", Slug: "acme"}
	require.NoError(t, gdb.Create(&org).Error)

	maintenance, err := services.CreateMaintenance(gdb, services.CreateMaintenanceInput{
		OrgID:       org.ID,
		UserID:      user.ID,
		Title:       "Upgrade",
		Description: "routine",
		StartAt:     start,
		EndAt:       end,
	})
	require.NoError(t, err)

	return maintenance
}

func TestSweepPromotesScheduledToInProgress(t *testing.T) {
	gdb := openTestDB(t)

	now := time.Now()
	maintenance := seedMaintenance(t, gdb, now.Add(-time.Minute), now.Add(time.Hour))

	Sweep(gdb, now)

	var reloaded models.Maintenance
	require.NoError(t, gdb.First(&reloaded, maintenance.ID).Error)
	assert.Equal(t, types.MaintenanceInProgress, reloaded.Status)
}

func TestSweepCompletesPastWindows(t *testing.T) {
	gdb := openTestDB(t)

	now := time.Now()
	maintenance := seedMaintenance(t, gdb, now.Add(-2*time.Hour), now.Add(-time.Hour))

	// One sweep both starts and completes a window that is already past
	Sweep(gdb, now)

	var reloaded models.Maintenance
	require.NoError(t, gdb.First(&reloaded, maintenance.ID).Error)
	assert.Equal(t, types.MaintenanceCompleted, reloaded.Status)

	entries, err := services.ListMaintenanceTimeline(gdb, maintenance.ID, reloaded.OrgID)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestSweepLeavesFutureWindowsAlone(t *testing.T) {
	gdb := openTestDB(t)

	now := time.Now()
	maintenance := seedMaintenance(t, gdb, now.Add(time.Hour), now.Add(2*time.Hour))

	Sweep(gdb, now)

	var reloaded models.Maintenance
	require.NoError(t, gdb.First(&reloaded, maintenance.ID).Error)
	assert.Equal(t, types.MaintenanceScheduled, reloaded.Status)
}
