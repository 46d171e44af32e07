package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/statusdeck/statusdeck/db"
	"github.com/statusdeck/statusdeck/internal/middleware"
	"github.com/statusdeck/statusdeck/internal/models"
	"github.com/statusdeck/statusdeck/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupHandlerTest(t *testing.T) *gorm.DB {
	t.Helper()

	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	db.DB = gdb

	return gdb
}

func authedContext(t *testing.T, user models.User, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ctx.Request = req

	ctx.Set(types.ContextUserKey, middleware.AuthenticatedUser{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	})

	return ctx, w
}

func TestDeleteOrganizationFreesSlug(t *testing.T) {
	gdb := setupHandlerTest(t)

	user := models.User{Name: "Owner", Email: "owner@example.com", PasswordHash: "x"}
	require.NoError(t, gdb.Create(&user).Error)

	ctx, w := authedContext(t, user, `{"name":"Acme","slug":"acme"}`)
	CreateOrganization(ctx)
	require.Equal(t, http.StatusCreated, w.Code)

	var org models.Organization
	require.NoError(t, gdb.Where("slug = ?", "acme").First(&org).Error)

	ctx, w = authedContext(t, user, "")
	ctx.Set(types.ContextOrgKey, org.ID)
	DeleteOrganization(ctx)
	ctx.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)

	// The slug must be reusable after deletion
	ctx, w = authedContext(t, user, `{"name":"Acme Again","slug":"acme"}`)
	CreateOrganization(ctx)
	assert.Equal(t, http.StatusCreated, w.Code)

	var recreated models.Organization
	require.NoError(t, gdb.Where("slug = ?", "acme").First(&recreated).Error)
	assert.Equal(t, "Acme Again", recreated.Name)
}
