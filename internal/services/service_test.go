package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/statusdeck/statusdeck/db"
	"github.com/statusdeck/statusdeck/internal/models"
	"github.com/statusdeck/statusdeck/internal/types"
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

func seedOrg(t *testing.T, gdb *gorm.DB) (models.Organization, models.User) {
	t.Helper()

	user := models.User{Name: "Test User", Email: "user@example.com", PasswordHash: "x"}
	require.NoError(t, gdb.Create(&user).Error)

	org := models.Organization{Name: "Acme", Slug: "acme"}
	require.NoError(t, gdb.Create(&org).Error)

	membership := models.OrganizationMembership{UserID: user.ID, OrgID: org.ID, Role: types.RoleOwner}
	require.NoError(t, gdb.Create(&membership).Error)

	return org, user
}

func seedComponent(t *testing.T, gdb *gorm.DB, orgID uint, name string) models.Component {
	t.Helper()

	component := models.Component{OrgID: orgID, Name: name, Status: types.ComponentOperational}
	require.NoError(t, gdb.Create(&component).Error)

	return component
}
