// Package scheduler advances maintenance windows through their lifecycle on a
// fixed interval. Incident state is never touched here; incidents only change
// through explicit operator actions.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/statusdeck/statusdeck/db"
	"github.com/statusdeck/statusdeck/internal/models"
	"github.com/statusdeck/statusdeck/internal/realtime"
	"github.com/statusdeck/statusdeck/internal/services"
	"github.com/statusdeck/statusdeck/internal/types"
	"gorm.io/gorm"
)

const sweepInterval = time.Minute

type Scheduler struct {
	ticker *time.Ticker
	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start runs an immediate sweep and then keeps sweeping on the interval.
func (s *Scheduler) Start() {
	log.Println("Starting maintenance scheduler...")

	s.ticker = time.NewTicker(sweepInterval)

	go func() {
		Sweep(db.DB, time.Now())

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-s.ticker.C:
				Sweep(db.DB, time.Now())
			}
		}
	}()
}

// Stop shuts the sweep loop down.
func (s *Scheduler) Stop() {
	log.Println("Stopping maintenance scheduler...")
	s.cancel()

	if s.ticker != nil {
		s.ticker.Stop()
	}

	log.Println("Maintenance scheduler stopped")
}

// Sweep promotes SCHEDULED windows whose start has passed to IN_PROGRESS and
// IN_PROGRESS windows whose end has passed to COMPLETED. Transitions go
// through the maintenance service so each one gets a timeline entry.
func Sweep(gdb *gorm.DB, now time.Time) {
	promote(gdb, types.MaintenanceScheduled, "start_at <= ?", now, types.MaintenanceInProgress)
	promote(gdb, types.MaintenanceInProgress, "end_at <= ?", now, types.MaintenanceCompleted)
}

func promote(gdb *gorm.DB, fromStatus, boundary string, now time.Time, toStatus string) {
	var due []models.Maintenance

	if err := gdb.Where("status = ?", fromStatus).Where(boundary, now).Find(&due).Error; err != nil {
		log.Printf("Failed to load due maintenance windows: %v", err)
		return
	}

	for _, m := range due {
		updated, err := services.UpdateMaintenanceStatus(gdb, m.ID, m.OrgID, m.UserID, toStatus)

		if err != nil {
			log.Printf("Failed to advance maintenance %d to %s: %v", m.ID, toStatus, err)
			continue
		}

		realtime.Broadcast(m.OrgID, "maintenance-updated", updated)
		services.NotifySubscribers(gdb, services.NotifyInput{
			OrgID:       m.OrgID,
			EntityType:  "maintenance",
			EntityID:    updated.ID,
			Action:      "updated",
			Title:       updated.Title,
			Description: updated.Description,
			Status:      updated.Status,
			Data:        updated,
		})

		log.Printf("Maintenance %d advanced to %s", m.ID, toStatus)
	}
}

// Global scheduler instance
var globalScheduler *Scheduler

func Initialize() {
	globalScheduler = NewScheduler()
	globalScheduler.Start()
}

func Shutdown() {
	if globalScheduler != nil {
		globalScheduler.Stop()
	}
}
