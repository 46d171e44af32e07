// Package status computes the effective operational status of a component.
//
// A component's displayed status is never read directly off the stored
// baseline while unresolved incidents reference it. It is recomputed on every
// read from the set of statuses those incidents impose, using a fixed
// severity ordering, and it is never persisted: a cached value would go stale
// the moment an unrelated incident changes state.
package status

import (
	"github.com/statusdeck/statusdeck/internal/models"
	"github.com/statusdeck/statusdeck/internal/types"
	"gorm.io/gorm"
)

var ranks = map[string]int{
	types.ComponentOperational:   0,
	types.ComponentDegraded:      1,
	types.ComponentPartialOutage: 2,
	types.ComponentMajorOutage:   3,
}

var byRank = []string{
	types.ComponentOperational,
	types.ComponentDegraded,
	types.ComponentPartialOutage,
	types.ComponentMajorOutage,
}

// Rank maps a component status to its ordinal severity. Unknown values rank
// as OPERATIONAL so a malformed row can never escalate a component.
func Rank(s string) int {
	return ranks[s]
}

// Worst reduces the statuses imposed by active incidents, seeded with
// OPERATIONAL as the identity element. With no candidates, or with candidates
// that all reduce to OPERATIONAL, the baseline is returned unchanged: an
// active incident reporting OPERATIONAL never lowers an already-worse status
// and never raises the result above the baseline. Ties are interchangeable,
// so insertion order is irrelevant.
func Worst(baseline string, candidates []string) string {
	worst := 0

	for _, c := range candidates {
		if r := Rank(c); r > worst {
			worst = r
		}
	}

	if worst == 0 {
		return baseline
	}

	return byRank[worst]
}

// Effective returns the status to display for a single component: the worst
// status imposed by any unresolved incident, or the stored baseline when no
// such incident exists. Exclusion of resolved incidents is filter-driven, so
// a resolution takes effect on the very next read with no row cleanup.
func Effective(gdb *gorm.DB, componentID uint, orgID uint) (string, error) {
	var component models.Component

	if err := gdb.Where("id = ? AND org_id = ?", componentID, orgID).First(&component).Error; err != nil {
		return "", err
	}

	imposed, err := activeStatuses(gdb, orgID, &componentID)

	if err != nil {
		return "", err
	}

	return Worst(component.Status, imposed[componentID]), nil
}

// EffectiveAll computes the effective status for every component of an
// organization in one pass, for listing endpoints.
func EffectiveAll(gdb *gorm.DB, orgID uint) (map[uint]string, error) {
	var components []models.Component

	if err := gdb.Where("org_id = ?", orgID).Find(&components).Error; err != nil {
		return nil, err
	}

	imposed, err := activeStatuses(gdb, orgID, nil)

	if err != nil {
		return nil, err
	}

	result := make(map[uint]string, len(components))

	for _, component := range components {
		result[component.ID] = Worst(component.Status, imposed[component.ID])
	}

	return result, nil
}

// activeStatuses collects the statuses imposed on components by incidents
// whose status is not RESOLVED, keyed by component ID. A nil componentID
// collects for the whole organization.
func activeStatuses(gdb *gorm.DB, orgID uint, componentID *uint) (map[uint][]string, error) {
	type imposedRow struct {
		ComponentID uint
		Status      string
	}

	query := gdb.Model(&models.IncidentComponent{}).
		Select("incident_components.component_id, incident_components.status").
		Joins("JOIN incidents ON incidents.id = incident_components.incident_id").
		Where("incident_components.org_id = ? AND incidents.status <> ? AND incidents.deleted_at IS NULL",
			orgID, types.IncidentResolved)

	if componentID != nil {
		query = query.Where("incident_components.component_id = ?", *componentID)
	}

	var rows []imposedRow

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	imposed := make(map[uint][]string)

	for _, row := range rows {
		imposed[row.ComponentID] = append(imposed[row.ComponentID], row.Status)
	}

	return imposed, nil
}
