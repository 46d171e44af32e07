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

func TestCreateIncident(t *testing.T) {
	gdb := openTestDB(t)
	org, user := seedOrg(t, gdb)
	api := seedComponent(t, gdb, org.ID, "API")
	web := seedComponent(t, gdb, org.ID, "Web")

	incident, err := CreateIncident(gdb, CreateIncidentInput{
		OrgID:       org.ID,
		UserID:      user.ID,
		Title:       "Elevated error rates",
		Description: "5xx spike on the API",
		Severity:    types.SeverityMajor,
		Components: []ComponentImpact{
			{ComponentID: api.ID, Status: types.ComponentDegraded},
			{ComponentID: web.ID, Status: types.ComponentMajorOutage},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, types.IncidentInvestigating, incident.Status)
	assert.Nil(t, incident.ResolvedAt)
	assert.False(t, incident.OccurredAt.IsZero())

	var links []models.IncidentComponent
	require.NoError(t, gdb.Where("incident_id = ?", incident.ID).Find(&links).Error)
	assert.Len(t, links, 2)

	var entries []models.IncidentTimeline
	require.NoError(t, gdb.Where("incident_id = ?", incident.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, types.IncidentInvestigating, entries[0].Status)
}

func TestCreateIncidentRollsBackOnBadComponent(t *testing.T) {
	gdb := openTestDB(t)
	org, user := seedOrg(t, gdb)
	api := seedComponent(t, gdb, org.ID, "API")

	_, err := CreateIncident(gdb, CreateIncidentInput{
		OrgID:       org.ID,
		UserID:      user.ID,
		Title:       "Bad impact list",
		Description: "one component does not exist",
		Severity:    types.SeverityMinor,
		Components: []ComponentImpact{
			{ComponentID: api.ID, Status: types.ComponentDegraded},
			{ComponentID: 9999, Status: types.ComponentDegraded},
		},
	})
	require.ErrorIs(t, err, ErrValidation)

	var incidentCount, linkCount, timelineCount int64
	require.NoError(t, gdb.Model(&models.Incident{}).Count(&incidentCount).Error)
	require.NoError(t, gdb.Model(&models.IncidentComponent{}).Count(&linkCount).Error)
	require.NoError(t, gdb.Model(&models.IncidentTimeline{}).Count(&timelineCount).Error)

	assert.Zero(t, incidentCount)
	assert.Zero(t, linkCount)
	assert.Zero(t, timelineCount)
}

func TestCreateIncidentRejectsCrossOrgComponent(t *testing.T) {
	gdb := openTestDB(t)
	org, user := seedOrg(t, gdb)

	other := models.Organization{Name: "Other", Slug: "other"}
	require.NoError(t, gdb.Create(&other).Error)
	theirs := seedComponent(t, gdb, other.ID, "Their API")

	_, err := CreateIncident(gdb, CreateIncidentInput{
		OrgID:       org.ID,
		UserID:      user.ID,
		Title:       "Cross tenant",
		Description: "component belongs to another org",
		Severity:    types.SeverityMinor,
		Components: []ComponentImpact{
			{ComponentID: theirs.ID, Status: types.ComponentDegraded},
		},
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateIncidentStatus(t *testing.T) {
	gdb := openTestDB(t)
	org, user := seedOrg(t, gdb)

	incident, err := CreateIncident(gdb, CreateIncidentInput{
		OrgID:       org.ID,
		UserID:      user.ID,
		Title:       "Outage",
		Description: "down",
		Severity:    types.SeverityCritical,
	})
	require.NoError(t, err)

	updated, err := UpdateIncidentStatus(gdb, incident.ID, org.ID, user.ID, types.IncidentIdentified)
	require.NoError(t, err)
	assert.Equal(t, types.IncidentIdentified, updated.Status)
	assert.Nil(t, updated.ResolvedAt)

	var entries []models.IncidentTimeline
	require.NoError(t, gdb.Where("incident_id = ?", incident.ID).Order("created_at ASC").Find(&entries).Error)
	require.Len(t, entries, 2)
	assert.Equal(t, types.IncidentIdentified, entries[1].Status)
}

func TestUpdateIncidentStatusResolvedAtInvariant(t *testing.T) {
	gdb := openTestDB(t)
	org, user := seedOrg(t, gdb)

	incident, err := CreateIncident(gdb, CreateIncidentInput{
		OrgID:       org.ID,
		UserID:      user.ID,
		Title:       "Outage",
		Description: "down",
		Severity:    types.SeverityMajor,
	})
	require.NoError(t, err)

	resolved, err := UpdateIncidentStatus(gdb, incident.ID, org.ID, user.ID, types.IncidentResolved)
	require.NoError(t, err)
	require.NotNil(t, resolved.ResolvedAt)
	assert.WithinDuration(t, time.Now(), *resolved.ResolvedAt, 5*time.Second)

	// Reopening clears the resolution timestamp
	reopened, err := UpdateIncidentStatus(gdb, incident.ID, org.ID, user.ID, types.IncidentMonitoring)
	require.NoError(t, err)
	assert.Nil(t, reopened.ResolvedAt)
}

func TestUpdateIncidentStatusRejectsNoop(t *testing.T) {
	gdb := openTestDB(t)
	org, user := seedOrg(t, gdb)

	incident, err := CreateIncident(gdb, CreateIncidentInput{
		OrgID:       org.ID,
		UserID:      user.ID,
		Title:       "Outage",
		Description: "down",
		Severity:    types.SeverityMinor,
	})
	require.NoError(t, err)

	_, err = UpdateIncidentStatus(gdb, incident.ID, org.ID, user.ID, types.IncidentInvestigating)
	require.ErrorIs(t, err, ErrConflict)

	// The rejected transition must not leave a timeline entry behind
	var count int64
	require.NoError(t, gdb.Model(&models.IncidentTimeline{}).Where("incident_id = ?", incident.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpdateIncidentStatusNotFound(t *testing.T) {
	gdb := openTestDB(t)
	org, user := seedOrg(t, gdb)

	_, err := UpdateIncidentStatus(gdb, 42, org.ID, user.ID, types.IncidentResolved)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAttachComponentsUpdatesInPlace(t *testing.T) {
	gdb := openTestDB(t)
	org, user := seedOrg(t, gdb)
	api := seedComponent(t, gdb, org.ID, "API")

	incident, err := CreateIncident(gdb, CreateIncidentInput{
		OrgID:       org.ID,
		UserID:      user.ID,
		Title:       "Outage",
		Description: "down",
		Severity:    types.SeverityMajor,
		Components:  []ComponentImpact{{ComponentID: api.ID, Status: types.ComponentDegraded}},
	})
	require.NoError(t, err)

	err = AttachComponents(gdb, incident.ID, org.ID, []ComponentImpact{
		{ComponentID: api.ID, Status: types.ComponentMajorOutage},
	})
	require.NoError(t, err)

	var links []models.IncidentComponent
	require.NoError(t, gdb.Where("incident_id = ?", incident.ID).Find(&links).Error)
	require.Len(t, links, 1)
	assert.Equal(t, types.ComponentMajorOutage, links[0].Status)
}

func TestDetachComponents(t *testing.T) {
	gdb := openTestDB(t)
	org, user := seedOrg(t, gdb)
	api := seedComponent(t, gdb, org.ID, "API")
	web := seedComponent(t, gdb, org.ID, "Web")

	incident, err := CreateIncident(gdb, CreateIncidentInput{
		OrgID:       org.ID,
		UserID:      user.ID,
		Title:       "Outage",
		Description: "down",
		Severity:    types.SeverityMajor,
		Components: []ComponentImpact{
			{ComponentID: api.ID, Status: types.ComponentDegraded},
			{ComponentID: web.ID, Status: types.ComponentDegraded},
		},
	})
	require.NoError(t, err)

	require.NoError(t, DetachComponents(gdb, incident.ID, org.ID, []uint{api.ID}))

	links, err := ListAttachedComponents(gdb, incident.ID, org.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, web.ID, links[0].ComponentID)

	unattached, err := ListUnattachedComponents(gdb, incident.ID, org.ID)
	require.NoError(t, err)
	require.Len(t, unattached, 1)
	assert.Equal(t, api.ID, unattached[0].ID)
}

func TestReattachComponentAfterDetach(t *testing.T) {
	gdb := openTestDB(t)
	org, user := seedOrg(t, gdb)
	api := seedComponent(t, gdb, org.ID, "API")

	incident, err := CreateIncident(gdb, CreateIncidentInput{
		OrgID:       org.ID,
		UserID:      user.ID,
		Title:       "Outage",
		Description: "down",
		Severity:    types.SeverityMajor,
		Components:  []ComponentImpact{{ComponentID: api.ID, Status: types.ComponentDegraded}},
	})
	require.NoError(t, err)

	require.NoError(t, DetachComponents(gdb, incident.ID, org.ID, []uint{api.ID}))

	// Re-attaching after a detach must produce a live link again
	err = AttachComponents(gdb, incident.ID, org.ID, []ComponentImpact{
		{ComponentID: api.ID, Status: types.ComponentMajorOutage},
	})
	require.NoError(t, err)

	links, err := ListAttachedComponents(gdb, incident.ID, org.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, types.ComponentMajorOutage, links[0].Status)

	effective, err := status.Effective(gdb, api.ID, org.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ComponentMajorOutage, effective)
}

func TestIncidentDrivesDerivedStatus(t *testing.T) {
	gdb := openTestDB(t)
	org, user := seedOrg(t, gdb)
	api := seedComponent(t, gdb, org.ID, "API")
	web := seedComponent(t, gdb, org.ID, "Web")

	incident, err := CreateIncident(gdb, CreateIncidentInput{
		OrgID:       org.ID,
		UserID:      user.ID,
		Title:       "Database failover",
		Description: "primary down",
		Severity:    types.SeverityCritical,
		Components: []ComponentImpact{
			{ComponentID: api.ID, Status: types.ComponentDegraded},
			{ComponentID: web.ID, Status: types.ComponentMajorOutage},
		},
	})
	require.NoError(t, err)

	effective, err := status.Effective(gdb, api.ID, org.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ComponentDegraded, effective)

	effective, err = status.Effective(gdb, web.ID, org.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ComponentMajorOutage, effective)

	// The stored baseline is never touched while an incident is active
	var stored models.Component
	require.NoError(t, gdb.First(&stored, api.ID).Error)
	assert.Equal(t, types.ComponentOperational, stored.Status)

	// Resolution reverts both components on the next read
	_, err = UpdateIncidentStatus(gdb, incident.ID, org.ID, user.ID, types.IncidentResolved)
	require.NoError(t, err)

	effective, err = status.Effective(gdb, api.ID, org.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ComponentOperational, effective)

	effective, err = status.Effective(gdb, web.ID, org.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ComponentOperational, effective)
}

func TestIncidentTimelineUpdates(t *testing.T) {
	gdb := openTestDB(t)
	org, user := seedOrg(t, gdb)

	incident, err := CreateIncident(gdb, CreateIncidentInput{
		OrgID:       org.ID,
		UserID:      user.ID,
		Title:       "Outage",
		Description: "down",
		Severity:    types.SeverityMinor,
	})
	require.NoError(t, err)

	entry, err := AddIncidentTimelineUpdate(gdb, incident.ID, org.ID, user.ID, "Mitigation in progress", types.IncidentIdentified)
	require.NoError(t, err)

	modified, err := ModifyIncidentTimelineUpdate(gdb, entry.ID, incident.ID, org.ID, "Mitigation deployed", types.IncidentMonitoring)
	require.NoError(t, err)
	assert.Equal(t, "Mitigation deployed", modified.Message)
	assert.Equal(t, types.IncidentMonitoring, modified.Status)

	require.NoError(t, DeleteIncidentTimelineUpdates(gdb, []uint{entry.ID}, incident.ID, org.ID))

	entries, err := ListIncidentTimeline(gdb, incident.ID, org.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestGetIncidentNotFound(t *testing.T) {
	gdb := openTestDB(t)
	org, _ := seedOrg(t, gdb)

	_, err := GetIncident(gdb, 42, org.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
