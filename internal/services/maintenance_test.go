package services

import (
	"testing"
	"time"

	"github.com/statusdeck/statusdeck/internal/models"
	"github.com/statusdeck/statusdeck/internal/status"
	"github.com/statusdeck/statusdeck/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMaintenance(t *testing.T) {
	gdb := openTestDB(t)
	org, user := seedOrg(t, gdb)
	api := seedComponent(t, gdb, org.ID, "API")

	start := time.Now().Add(time.Hour)
	end := start.Add(2 * time.Hour)

	maintenance, err := CreateMaintenance(gdb, CreateMaintenanceInput{
		OrgID:       org.ID,
		UserID:      user.ID,
		Title:       "Database upgrade",
		Description: "upgrading to postgres 17",
		StartAt:     start,
		EndAt:       end,
		Components:  []ComponentImpact{{ComponentID: api.ID, Status: types.ComponentPartialOutage}},
	})
	require.NoError(t, err)

	assert.Equal(t, types.MaintenanceScheduled, maintenance.Status)

	var entries []models.MaintenanceTimeline
	require.NoError(t, gdb.Where("maintenance_id = ?", maintenance.ID).Find(&entries).Error)
	assert.Len(t, entries, 1)
}

func TestCreateMaintenanceRejectsInvertedWindow(t *testing.T) {
	gdb := openTestDB(t)
	org, user := seedOrg(t, gdb)

	start := time.Now().Add(time.Hour)

	_, err := CreateMaintenance(gdb, CreateMaintenanceInput{
		OrgID:       org.ID,
		UserID:      user.ID,
		Title:       "Bad window",
		Description: "ends before it starts",
		StartAt:     start,
		EndAt:       start.Add(-time.Hour),
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMaintenanceDoesNotAffectDerivedStatus(t *testing.T) {
	gdb := openTestDB(t)
	org, user := seedOrg(t, gdb)
	api := seedComponent(t, gdb, org.ID, "API")

	start := time.Now().Add(-time.Hour)

	maintenance, err := CreateMaintenance(gdb, CreateMaintenanceInput{
		OrgID:       org.ID,
		UserID:      user.ID,
		Title:       "Live maintenance",
		Description: "in progress right now",
		StartAt:     start,
		EndAt:       start.Add(3 * time.Hour),
		Components:  []ComponentImpact{{ComponentID: api.ID, Status: types.ComponentMajorOutage}},
	})
	require.NoError(t, err)

	_, err = UpdateMaintenanceStatus(gdb, maintenance.ID, org.ID, user.ID, types.MaintenanceInProgress)
	require.NoError(t, err)

	// Maintenance windows never feed the incident severity reduction
	effective, err := status.Effective(gdb, api.ID, org.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ComponentOperational, effective)
}

func TestUpdateMaintenanceStatusRejectsNoop(t *testing.T) {
	gdb := openTestDB(t)
	org, user := seedOrg(t, gdb)

	start := time.Now().Add(time.Hour)

	maintenance, err := CreateMaintenance(gdb, CreateMaintenanceInput{
		OrgID:       org.ID,
		UserID:      user.ID,
		Title:       "Upgrade",
		Description: "routine",
		StartAt:     start,
		EndAt:       start.Add(time.Hour),
	})
	require.NoError(t, err)

	_, err = UpdateMaintenanceStatus(gdb, maintenance.ID, org.ID, user.ID, types.MaintenanceScheduled)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMaintenanceLifecycle(t *testing.T) {
	gdb := openTestDB(t)
	org, user := seedOrg(t, gdb)

	start := time.Now().Add(time.Hour)

	maintenance, err := CreateMaintenance(gdb, CreateMaintenanceInput{
		OrgID:       org.ID,
		UserID:      user.ID,
		Title:       "Upgrade",
		Description: "routine",
		StartAt:     start,
		EndAt:       start.Add(time.Hour),
	})
	require.NoError(t, err)

	inProgress, err := UpdateMaintenanceStatus(gdb, maintenance.ID, org.ID, user.ID, types.MaintenanceInProgress)
	require.NoError(t, err)
	assert.Equal(t, types.MaintenanceInProgress, inProgress.Status)

	completed, err := UpdateMaintenanceStatus(gdb, maintenance.ID, org.ID, user.ID, types.MaintenanceCompleted)
	require.NoError(t, err)
	assert.Equal(t, types.MaintenanceCompleted, completed.Status)

	entries, err := ListMaintenanceTimeline(gdb, maintenance.ID, org.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestAttachMaintenanceComponentsUpdatesInPlace(t *testing.T) {
	gdb := openTestDB(t)
	org, user := seedOrg(t, gdb)
	api := seedComponent(t, gdb, org.ID, "API")

	start := time.Now().Add(time.Hour)

	maintenance, err := CreateMaintenance(gdb, CreateMaintenanceInput{
		OrgID:       org.ID,
		UserID:      user.ID,
		Title:       "Upgrade",
		Description: "routine",
		StartAt:     start,
		EndAt:       start.Add(time.Hour),
		Components:  []ComponentImpact{{ComponentID: api.ID, Status: types.ComponentDegraded}},
	})
	require.NoError(t, err)

	err = AttachMaintenanceComponents(gdb, maintenance.ID, org.ID, []ComponentImpact{
		{ComponentID: api.ID, Status: types.ComponentPartialOutage},
	})
	require.NoError(t, err)

	links, err := ListMaintenanceComponents(gdb, maintenance.ID, org.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, types.ComponentPartialOutage, links[0].Status)
}

func TestReattachMaintenanceComponentAfterDetach(t *testing.T) {
	gdb := openTestDB(t)
	org, user := seedOrg(t, gdb)
	api := seedComponent(t, gdb, org.ID, "API")

	start := time.Now().Add(time.Hour)

	maintenance, err := CreateMaintenance(gdb, CreateMaintenanceInput{
		OrgID:       org.ID,
		UserID:      user.ID,
		Title:       "Upgrade",
		Description: "routine",
		StartAt:     start,
		EndAt:       start.Add(time.Hour),
		Components:  []ComponentImpact{{ComponentID: api.ID, Status: types.ComponentDegraded}},
	})
	require.NoError(t, err)

	require.NoError(t, DetachMaintenanceComponents(gdb, maintenance.ID, org.ID, []uint{api.ID}))

	err = AttachMaintenanceComponents(gdb, maintenance.ID, org.ID, []ComponentImpact{
		{ComponentID: api.ID, Status: types.ComponentPartialOutage},
	})
	require.NoError(t, err)

	links, err := ListMaintenanceComponents(gdb, maintenance.ID, org.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, types.ComponentPartialOutage, links[0].Status)
}

func TestGetMaintenanceNotFound(t *testing.T) {
	gdb := openTestDB(t)
	org, _ := seedOrg(t, gdb)

	_, err := GetMaintenance(gdb, 42, org.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
