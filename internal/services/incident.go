package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/statusdeck/statusdeck/internal/models"
	"github.com/statusdeck/statusdeck/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ComponentImpact struct {
	ComponentID uint   `json:"component_id" binding:"required"`
	Status      string `json:"status" binding:"required"`
}

type CreateIncidentInput struct {
	OrgID       uint
	UserID      uint
	Title       string
	Description string
	Severity    string
	OccurredAt  time.Time
	Components  []ComponentImpact
}

// CreateIncident inserts the incident, its component batch and the initial
// timeline entry as one transaction. A bad component ID rolls the whole
// operation back, leaving no incident behind.
func CreateIncident(gdb *gorm.DB, in CreateIncidentInput) (*models.Incident, error) {
	if in.Title == "" || in.Description == "" {
		return nil, fmt.Errorf("%w: title and description are required", ErrValidation)
	}

	if !types.ValidIncidentSeverity(in.Severity) {
		return nil, fmt.Errorf("%w: invalid severity %q", ErrValidation, in.Severity)
	}

	for _, impact := range in.Components {
		if !types.ValidComponentStatus(impact.Status) {
			return nil, fmt.Errorf("%w: invalid component status %q", ErrValidation, impact.Status)
		}
	}

	if in.OccurredAt.IsZero() {
		in.OccurredAt = time.Now()
	}

	incident := models.Incident{
		OrgID:       in.OrgID,
		UserID:      in.UserID,
		Title:       in.Title,
		Description: in.Description,
		Severity:    in.Severity,
		Status:      types.IncidentInvestigating,
		OccurredAt:  in.OccurredAt,
	}

	err := gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&incident).Error; err != nil {
			return err
		}

		if len(in.Components) > 0 {
			links, err := buildIncidentLinks(tx, incident.ID, in.OrgID, in.Components)
			if err != nil {
				return err
			}

			if err := tx.Create(&links).Error; err != nil {
				return err
			}
		}

		entry := models.IncidentTimeline{
			IncidentID: incident.ID,
			OrgID:      in.OrgID,
			UserID:     in.UserID,
			Message:    "Incident created",
			Status:     types.IncidentInvestigating,
		}

		return tx.Create(&entry).Error
	})

	if err != nil {
		return nil, err
	}

	return &incident, nil
}

// buildIncidentLinks verifies every component belongs to the organization
// before any link row is written.
func buildIncidentLinks(tx *gorm.DB, incidentID uint, orgID uint, impacts []ComponentImpact) ([]models.IncidentComponent, error) {
	ids := make([]uint, 0, len(impacts))

	for _, impact := range impacts {
		ids = append(ids, impact.ComponentID)
	}

	var count int64

	if err := tx.Model(&models.Component{}).Where("id IN ? AND org_id = ?", ids, orgID).Count(&count).Error; err != nil {
		return nil, err
	}

	if count != int64(len(ids)) {
		return nil, fmt.Errorf("%w: one or more components do not exist in this organization", ErrValidation)
	}

	links := make([]models.IncidentComponent, 0, len(impacts))

	for _, impact := range impacts {
		links = append(links, models.IncidentComponent{
			IncidentID:  incidentID,
			ComponentID: impact.ComponentID,
			OrgID:       orgID,
			Status:      impact.Status,
		})
	}

	return links, nil
}

type UpdateIncidentInput struct {
	Title       string
	Description string
	Severity    string
	OccurredAt  *time.Time
}

// UpdateIncidentDetails updates descriptive fields without touching the
// lifecycle status or the timeline.
func UpdateIncidentDetails(gdb *gorm.DB, incidentID, orgID uint, in UpdateIncidentInput) (*models.Incident, error) {
	incident, err := findIncident(gdb, incidentID, orgID)

	if err != nil {
		return nil, err
	}

	if in.Title != "" {
		incident.Title = in.Title
	}

	if in.Description != "" {
		incident.Description = in.Description
	}

	if in.Severity != "" {
		if !types.ValidIncidentSeverity(in.Severity) {
			return nil, fmt.Errorf("%w: invalid severity %q", ErrValidation, in.Severity)
		}
		incident.Severity = in.Severity
	}

	if in.OccurredAt != nil {
		incident.OccurredAt = *in.OccurredAt
	}

	if err := gdb.Save(incident).Error; err != nil {
		return nil, err
	}

	return incident, nil
}

// UpdateIncidentStatus transitions the incident and appends exactly one
// timeline entry, atomically. ResolvedAt is set exactly when the new status
// is RESOLVED and cleared otherwise. A no-op transition is rejected so the
// timeline never records a change that did not happen.
func UpdateIncidentStatus(gdb *gorm.DB, incidentID, orgID, userID uint, newStatus string) (*models.Incident, error) {
	if !types.ValidIncidentStatus(newStatus) {
		return nil, fmt.Errorf("%w: invalid incident status %q", ErrValidation, newStatus)
	}

	var incident *models.Incident

	err := gdb.Transaction(func(tx *gorm.DB) error {
		var err error
		incident, err = findIncident(tx, incidentID, orgID)

		if err != nil {
			return err
		}

		if incident.Status == newStatus {
			return fmt.Errorf("%w: incident is already %s", ErrConflict, newStatus)
		}

		incident.Status = newStatus

		if newStatus == types.IncidentResolved {
			now := time.Now()
			incident.ResolvedAt = &now
		} else {
			incident.ResolvedAt = nil
		}

		if err := tx.Save(incident).Error; err != nil {
			return err
		}

		entry := models.IncidentTimeline{
			IncidentID: incident.ID,
			OrgID:      orgID,
			UserID:     userID,
			Message:    fmt.Sprintf("Status updated to %s", newStatus),
			Status:     newStatus,
		}

		return tx.Create(&entry).Error
	})

	if err != nil {
		return nil, err
	}

	return incident, nil
}

// AttachComponents links components to an incident. Re-attaching an already
// attached component updates the existing row's status in place: concurrent
// attaches of the same pair resolve deterministically through the unique
// index, not through an existence check.
func AttachComponents(gdb *gorm.DB, incidentID, orgID uint, impacts []ComponentImpact) error {
	if len(impacts) == 0 {
		return fmt.Errorf("%w: no components given", ErrValidation)
	}

	for _, impact := range impacts {
		if !types.ValidComponentStatus(impact.Status) {
			return fmt.Errorf("%w: invalid component status %q", ErrValidation, impact.Status)
		}
	}

	return gdb.Transaction(func(tx *gorm.DB) error {
		if _, err := findIncident(tx, incidentID, orgID); err != nil {
			return err
		}

		links, err := buildIncidentLinks(tx, incidentID, orgID, impacts)

		if err != nil {
			return err
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "incident_id"}, {Name: "component_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
		}).Create(&links).Error
	})
}

// DetachComponents removes all matching link rows in one operation. The
// delete is unscoped: a soft-deleted row would still occupy the
// (incident_id, component_id) unique index and swallow a later re-attach
// through the upsert without ever going live again.
func DetachComponents(gdb *gorm.DB, incidentID, orgID uint, componentIDs []uint) error {
	if len(componentIDs) == 0 {
		return fmt.Errorf("%w: no components given", ErrValidation)
	}

	if _, err := findIncident(gdb, incidentID, orgID); err != nil {
		return err
	}

	return gdb.Unscoped().
		Where("incident_id = ? AND org_id = ? AND component_id IN ?", incidentID, orgID, componentIDs).
		Delete(&models.IncidentComponent{}).Error
}

// ListAttachedComponents returns the incident's link rows with components.
func ListAttachedComponents(gdb *gorm.DB, incidentID, orgID uint) ([]models.IncidentComponent, error) {
	if _, err := findIncident(gdb, incidentID, orgID); err != nil {
		return nil, err
	}

	var links []models.IncidentComponent

	err := gdb.Preload("Component").
		Where("incident_id = ? AND org_id = ?", incidentID, orgID).
		Find(&links).Error

	return links, err
}

// ListUnattachedComponents returns the organization's components not yet
// linked to the incident, for attach pickers.
func ListUnattachedComponents(gdb *gorm.DB, incidentID, orgID uint) ([]models.Component, error) {
	if _, err := findIncident(gdb, incidentID, orgID); err != nil {
		return nil, err
	}

	var components []models.Component

	err := gdb.Where("org_id = ? AND id NOT IN (?)",
		orgID,
		gdb.Model(&models.IncidentComponent{}).Select("component_id").Where("incident_id = ?", incidentID),
	).Find(&components).Error

	return components, err
}

func AddIncidentTimelineUpdate(gdb *gorm.DB, incidentID, orgID, userID uint, message, timelineStatus string) (*models.IncidentTimeline, error) {
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrValidation)
	}

	if !types.ValidIncidentStatus(timelineStatus) {
		return nil, fmt.Errorf("%w: invalid incident status %q", ErrValidation, timelineStatus)
	}

	if _, err := findIncident(gdb, incidentID, orgID); err != nil {
		return nil, err
	}

	entry := models.IncidentTimeline{
		IncidentID: incidentID,
		OrgID:      orgID,
		UserID:     userID,
		Message:    message,
		Status:     timelineStatus,
	}

	if err := gdb.Create(&entry).Error; err != nil {
		return nil, err
	}

	return &entry, nil
}

func ListIncidentTimeline(gdb *gorm.DB, incidentID, orgID uint) ([]models.IncidentTimeline, error) {
	if _, err := findIncident(gdb, incidentID, orgID); err != nil {
		return nil, err
	}

	var entries []models.IncidentTimeline

	err := gdb.Where("incident_id = ? AND org_id = ?", incidentID, orgID).
		Order("created_at DESC").
		Find(&entries).Error

	return entries, err
}

// ModifyIncidentTimelineUpdate edits a timeline entry, scoped by entry,
// incident and organization to prevent cross-tenant tampering.
func ModifyIncidentTimelineUpdate(gdb *gorm.DB, updateID, incidentID, orgID uint, message, timelineStatus string) (*models.IncidentTimeline, error) {
	if message == "" && timelineStatus == "" {
		return nil, fmt.Errorf("%w: nothing to update", ErrValidation)
	}

	if timelineStatus != "" && !types.ValidIncidentStatus(timelineStatus) {
		return nil, fmt.Errorf("%w: invalid incident status %q", ErrValidation, timelineStatus)
	}

	var entry models.IncidentTimeline

	err := gdb.Where("id = ? AND incident_id = ? AND org_id = ?", updateID, incidentID, orgID).First(&entry).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if message != "" {
		entry.Message = message
	}

	if timelineStatus != "" {
		entry.Status = timelineStatus
	}

	if err := gdb.Save(&entry).Error; err != nil {
		return nil, err
	}

	return &entry, nil
}

// DeleteIncidentTimelineUpdates removes entries by ID, scoped to the incident
// and organization.
func DeleteIncidentTimelineUpdates(gdb *gorm.DB, updateIDs []uint, incidentID, orgID uint) error {
	if len(updateIDs) == 0 {
		return fmt.Errorf("%w: no updates given", ErrValidation)
	}

	return gdb.Where("id IN ? AND incident_id = ? AND org_id = ?", updateIDs, incidentID, orgID).
		Delete(&models.IncidentTimeline{}).Error
}

func ListIncidents(gdb *gorm.DB, orgID uint) ([]models.Incident, error) {
	var incidents []models.Incident

	err := gdb.Preload("Components.Component").
		Preload("Timeline", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("incident_timelines.created_at DESC")
		}).
		Where("org_id = ?", orgID).
		Order("occurred_at DESC").
		Find(&incidents).Error

	return incidents, err
}

func GetIncident(gdb *gorm.DB, incidentID, orgID uint) (*models.Incident, error) {
	var incident models.Incident

	err := gdb.Preload("Components.Component").
		Preload("Timeline", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("incident_timelines.created_at DESC")
		}).
		Where("id = ? AND org_id = ?", incidentID, orgID).
		First(&incident).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &incident, nil
}

func DeleteIncident(gdb *gorm.DB, incidentID, orgID uint) error {
	incident, err := findIncident(gdb, incidentID, orgID)

	if err != nil {
		return err
	}

	return gdb.Delete(incident).Error
}

func findIncident(gdb *gorm.DB, incidentID, orgID uint) (*models.Incident, error) {
	var incident models.Incident

	if err := gdb.Where("id = ? AND org_id = ?", incidentID, orgID).First(&incident).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &incident, nil
}
