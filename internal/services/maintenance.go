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

type CreateMaintenanceInput struct {
	OrgID       uint
	UserID      uint
	Title       string
	Description string
	StartAt     time.Time
	EndAt       time.Time
	Components  []ComponentImpact
}

// CreateMaintenance inserts the maintenance window, its component batch and
// the initial timeline entry as one transaction, mirroring incident creation.
func CreateMaintenance(gdb *gorm.DB, in CreateMaintenanceInput) (*models.Maintenance, error) {
	if in.Title == "" || in.Description == "" {
		return nil, fmt.Errorf("%w: title and description are required", ErrValidation)
	}

	if in.StartAt.IsZero() || in.EndAt.IsZero() {
		return nil, fmt.Errorf("%w: startAt and endAt are required", ErrValidation)
	}

	if !in.EndAt.After(in.StartAt) {
		return nil, fmt.Errorf("%w: endAt must be after startAt", ErrValidation)
	}

	for _, impact := range in.Components {
		if !types.ValidComponentStatus(impact.Status) {
			return nil, fmt.Errorf("%w: invalid component status %q", ErrValidation, impact.Status)
		}
	}

	maintenance := models.Maintenance{
		OrgID:       in.OrgID,
		UserID:      in.UserID,
		Title:       in.Title,
		Description: in.Description,
		Status:      types.MaintenanceScheduled,
		StartAt:     in.StartAt,
		EndAt:       in.EndAt,
	}

	err := gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&maintenance).Error; err != nil {
			return err
		}

		if len(in.Components) > 0 {
			links, err := buildMaintenanceLinks(tx, maintenance.ID, in.OrgID, in.Components)
			if err != nil {
				return err
			}

			if err := tx.Create(&links).Error; err != nil {
				return err
			}
		}

		entry := models.MaintenanceTimeline{
			MaintenanceID: maintenance.ID,
			OrgID:         in.OrgID,
			UserID:        in.UserID,
			Message:       "Maintenance scheduled",
			Status:        types.MaintenanceScheduled,
		}

		return tx.Create(&entry).Error
	})

	if err != nil {
		return nil, err
	}

	return &maintenance, nil
}

func buildMaintenanceLinks(tx *gorm.DB, maintenanceID uint, orgID uint, impacts []ComponentImpact) ([]models.MaintenanceComponent, error) {
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

	links := make([]models.MaintenanceComponent, 0, len(impacts))

	for _, impact := range impacts {
		links = append(links, models.MaintenanceComponent{
			MaintenanceID: maintenanceID,
			ComponentID:   impact.ComponentID,
			OrgID:         orgID,
			Status:        impact.Status,
		})
	}

	return links, nil
}

type UpdateMaintenanceInput struct {
	Title       string
	Description string
	StartAt     *time.Time
	EndAt       *time.Time
}

func UpdateMaintenanceDetails(gdb *gorm.DB, maintenanceID, orgID uint, in UpdateMaintenanceInput) (*models.Maintenance, error) {
	maintenance, err := findMaintenance(gdb, maintenanceID, orgID)

	if err != nil {
		return nil, err
	}

	if in.Title != "" {
		maintenance.Title = in.Title
	}

	if in.Description != "" {
		maintenance.Description = in.Description
	}

	if in.StartAt != nil {
		maintenance.StartAt = *in.StartAt
	}

	if in.EndAt != nil {
		maintenance.EndAt = *in.EndAt
	}

	if !maintenance.EndAt.After(maintenance.StartAt) {
		return nil, fmt.Errorf("%w: endAt must be after startAt", ErrValidation)
	}

	if err := gdb.Save(maintenance).Error; err != nil {
		return nil, err
	}

	return maintenance, nil
}

// UpdateMaintenanceStatus transitions the window and appends exactly one
// timeline entry, atomically. No-op transitions are rejected.
func UpdateMaintenanceStatus(gdb *gorm.DB, maintenanceID, orgID, userID uint, newStatus string) (*models.Maintenance, error) {
	if !types.ValidMaintenanceStatus(newStatus) {
		return nil, fmt.Errorf("%w: invalid maintenance status %q", ErrValidation, newStatus)
	}

	var maintenance *models.Maintenance

	err := gdb.Transaction(func(tx *gorm.DB) error {
		var err error
		maintenance, err = findMaintenance(tx, maintenanceID, orgID)

		if err != nil {
			return err
		}

		if maintenance.Status == newStatus {
			return fmt.Errorf("%w: maintenance is already %s", ErrConflict, newStatus)
		}

		maintenance.Status = newStatus

		if err := tx.Save(maintenance).Error; err != nil {
			return err
		}

		entry := models.MaintenanceTimeline{
			MaintenanceID: maintenance.ID,
			OrgID:         orgID,
			UserID:        userID,
			Message:       fmt.Sprintf("Status updated to %s", newStatus),
			Status:        newStatus,
		}

		return tx.Create(&entry).Error
	})

	if err != nil {
		return nil, err
	}

	return maintenance, nil
}

// AttachMaintenanceComponents upserts link rows on the (maintenance,
// component) unique index, like incident attach.
func AttachMaintenanceComponents(gdb *gorm.DB, maintenanceID, orgID uint, impacts []ComponentImpact) error {
	if len(impacts) == 0 {
		return fmt.Errorf("%w: no components given", ErrValidation)
	}

	for _, impact := range impacts {
		if !types.ValidComponentStatus(impact.Status) {
			return fmt.Errorf("%w: invalid component status %q", ErrValidation, impact.Status)
		}
	}

	return gdb.Transaction(func(tx *gorm.DB) error {
		if _, err := findMaintenance(tx, maintenanceID, orgID); err != nil {
			return err
		}

		links, err := buildMaintenanceLinks(tx, maintenanceID, orgID, impacts)

		if err != nil {
			return err
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "maintenance_id"}, {Name: "component_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
		}).Create(&links).Error
	})
}

func DetachMaintenanceComponents(gdb *gorm.DB, maintenanceID, orgID uint, componentIDs []uint) error {
	if len(componentIDs) == 0 {
		return fmt.Errorf("%w: no components given", ErrValidation)
	}

	if _, err := findMaintenance(gdb, maintenanceID, orgID); err != nil {
		return err
	}

	// Unscoped so the freed unique index slot does not swallow a re-attach
	return gdb.Unscoped().
		Where("maintenance_id = ? AND org_id = ? AND component_id IN ?", maintenanceID, orgID, componentIDs).
		Delete(&models.MaintenanceComponent{}).Error
}

func ListMaintenanceComponents(gdb *gorm.DB, maintenanceID, orgID uint) ([]models.MaintenanceComponent, error) {
	if _, err := findMaintenance(gdb, maintenanceID, orgID); err != nil {
		return nil, err
	}

	var links []models.MaintenanceComponent

	err := gdb.Preload("Component").
		Where("maintenance_id = ? AND org_id = ?", maintenanceID, orgID).
		Find(&links).Error

	return links, err
}

func ListUnattachedMaintenanceComponents(gdb *gorm.DB, maintenanceID, orgID uint) ([]models.Component, error) {
	if _, err := findMaintenance(gdb, maintenanceID, orgID); err != nil {
		return nil, err
	}

	var components []models.Component

	err := gdb.Where("org_id = ? AND id NOT IN (?)",
		orgID,
		gdb.Model(&models.MaintenanceComponent{}).Select("component_id").Where("maintenance_id = ?", maintenanceID),
	).Find(&components).Error

	return components, err
}

func AddMaintenanceTimelineUpdate(gdb *gorm.DB, maintenanceID, orgID, userID uint, message, timelineStatus string) (*models.MaintenanceTimeline, error) {
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrValidation)
	}

	if !types.ValidMaintenanceStatus(timelineStatus) {
		return nil, fmt.Errorf("%w: invalid maintenance status %q", ErrValidation, timelineStatus)
	}

	if _, err := findMaintenance(gdb, maintenanceID, orgID); err != nil {
		return nil, err
	}

	entry := models.MaintenanceTimeline{
		MaintenanceID: maintenanceID,
		OrgID:         orgID,
		UserID:        userID,
		Message:       message,
		Status:        timelineStatus,
	}

	if err := gdb.Create(&entry).Error; err != nil {
		return nil, err
	}

	return &entry, nil
}

func ListMaintenanceTimeline(gdb *gorm.DB, maintenanceID, orgID uint) ([]models.MaintenanceTimeline, error) {
	if _, err := findMaintenance(gdb, maintenanceID, orgID); err != nil {
		return nil, err
	}

	var entries []models.MaintenanceTimeline

	err := gdb.Where("maintenance_id = ? AND org_id = ?", maintenanceID, orgID).
		Order("created_at DESC").
		Find(&entries).Error

	return entries, err
}

func GetMaintenanceTimelineUpdate(gdb *gorm.DB, updateID, maintenanceID, orgID uint) (*models.MaintenanceTimeline, error) {
	var entry models.MaintenanceTimeline

	err := gdb.Where("id = ? AND maintenance_id = ? AND org_id = ?", updateID, maintenanceID, orgID).First(&entry).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &entry, nil
}

func ModifyMaintenanceTimelineUpdate(gdb *gorm.DB, updateID, maintenanceID, orgID uint, message, timelineStatus string) (*models.MaintenanceTimeline, error) {
	if message == "" && timelineStatus == "" {
		return nil, fmt.Errorf("%w: nothing to update", ErrValidation)
	}

	if timelineStatus != "" && !types.ValidMaintenanceStatus(timelineStatus) {
		return nil, fmt.Errorf("%w: invalid maintenance status %q", ErrValidation, timelineStatus)
	}

	entry, err := GetMaintenanceTimelineUpdate(gdb, updateID, maintenanceID, orgID)

	if err != nil {
		return nil, err
	}

	if message != "" {
		entry.Message = message
	}

	if timelineStatus != "" {
		entry.Status = timelineStatus
	}

	if err := gdb.Save(entry).Error; err != nil {
		return nil, err
	}

	return entry, nil
}

func DeleteMaintenanceTimelineUpdates(gdb *gorm.DB, updateIDs []uint, maintenanceID, orgID uint) error {
	if len(updateIDs) == 0 {
		return fmt.Errorf("%w: no updates given", ErrValidation)
	}

	return gdb.Where("id IN ? AND maintenance_id = ? AND org_id = ?", updateIDs, maintenanceID, orgID).
		Delete(&models.MaintenanceTimeline{}).Error
}

func ListMaintenances(gdb *gorm.DB, orgID uint) ([]models.Maintenance, error) {
	var maintenances []models.Maintenance

	err := gdb.Preload("Components.Component").
		Where("org_id = ?", orgID).
		Order("start_at DESC").
		Find(&maintenances).Error

	return maintenances, err
}

func GetMaintenance(gdb *gorm.DB, maintenanceID, orgID uint) (*models.Maintenance, error) {
	var maintenance models.Maintenance

	err := gdb.Preload("Components.Component").
		Preload("Timeline", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("maintenance_timelines.created_at DESC")
		}).
		Where("id = ? AND org_id = ?", maintenanceID, orgID).
		First(&maintenance).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &maintenance, nil
}

func DeleteMaintenance(gdb *gorm.DB, maintenanceID, orgID uint) error {
	maintenance, err := findMaintenance(gdb, maintenanceID, orgID)

	if err != nil {
		return err
	}

	return gdb.Delete(maintenance).Error
}

func findMaintenance(gdb *gorm.DB, maintenanceID, orgID uint) (*models.Maintenance, error) {
	var maintenance models.Maintenance

	if err := gdb.Where("id = ? AND org_id = ?", maintenanceID, orgID).First(&maintenance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &maintenance, nil
}
