package types

import (
	"os"
	"strings"
)

const (
	ContextUserKey = "user"
	ContextOrgKey  = "org_id"
	ContextRoleKey = "org_role"
)

// Component statuses, ordered by severity. The status derivation engine
// relies on this ordering (see internal/status).
const (
	ComponentOperational   = "OPERATIONAL"
	ComponentDegraded      = "DEGRADED"
	ComponentPartialOutage = "PARTIAL_OUTAGE"
	ComponentMajorOutage   = "MAJOR_OUTAGE"
)

// Incident lifecycle statuses.
const (
	IncidentInvestigating = "INVESTIGATING"
	IncidentIdentified    = "IDENTIFIED"
	IncidentMonitoring    = "MONITORING"
	IncidentResolved      = "RESOLVED"
)

// Incident severities.
const (
	SeverityMinor    = "MINOR"
	SeverityMajor    = "MAJOR"
	SeverityCritical = "CRITICAL"
)

// Maintenance lifecycle statuses.
const (
	MaintenanceScheduled  = "SCHEDULED"
	MaintenanceInProgress = "IN_PROGRESS"
	MaintenanceCompleted  = "COMPLETED"
)

// Subscriber statuses.
const (
	SubscriberPending      = "PENDING"
	SubscriberSubscribed   = "SUBSCRIBED"
	SubscriberUnsubscribed = "UNSUBSCRIBED"
)

// Organization roles.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

func ValidComponentStatus(s string) bool {
	switch s {
	case ComponentOperational, ComponentDegraded, ComponentPartialOutage, ComponentMajorOutage:
		return true
	}
	return false
}

func ValidIncidentStatus(s string) bool {
	switch s {
	case IncidentInvestigating, IncidentIdentified, IncidentMonitoring, IncidentResolved:
		return true
	}
	return false
}

func ValidIncidentSeverity(s string) bool {
	switch s {
	case SeverityMinor, SeverityMajor, SeverityCritical:
		return true
	}
	return false
}

func ValidMaintenanceStatus(s string) bool {
	switch s {
	case MaintenanceScheduled, MaintenanceInProgress, MaintenanceCompleted:
		return true
	}
	return false
}

var (
	// Default allowed origins for development
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	AllowedOrigins = initAllowedOrigins()
)

func initAllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		envOrigins := strings.Split(allowedOrigins, ",")
		for _, origin := range envOrigins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}
