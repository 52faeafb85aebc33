package handler

import (
	"context"
	"net/http"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/forgo/huddle/api/internal/database"
	"github.com/forgo/huddle/api/internal/middleware"
	"github.com/forgo/huddle/api/internal/model"
	"github.com/forgo/huddle/api/internal/repository"
	"github.com/forgo/huddle/api/internal/service"
	"github.com/forgo/huddle/api/internal/testing/fixtures"
	"github.com/forgo/huddle/api/internal/testing/helpers"
	"github.com/forgo/huddle/api/internal/testing/testdb"
	"github.com/forgo/huddle/api/pkg/jwt"
)

// ============================================================================
// Test Application
// ============================================================================

// testApp wires real services over an in-memory database behind the router
type testApp struct {
	t      *testing.T
	router http.Handler
	jwt    *jwt.Service
	auth   *service.AuthService
	tdb    *testdb.TestDB
	f      *fixtures.Factory
	hub    *service.ChatHub
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	tdb := testdb.New(t)
	jwtSvc := helpers.NewTestJWTService(t)
	users := repository.NewUserRepository(tdb.DB)
	activities := repository.NewActivityRepository(tdb.DB)
	accessor := middleware.ContextUserAccessor{}

	authSvc := service.NewAuthService(service.AuthServiceConfig{
		Users:      users,
		JWT:        jwtSvc,
		Accessor:   accessor,
		BcryptCost: bcrypt.MinCost,
	})
	profileSvc := service.NewProfileService(service.ProfileServiceConfig{
		Users:      users,
		Activities: repository.NewProfileRepository(tdb.DB),
		Accessor:   accessor,
	})
	activitySvc := service.NewActivityService(service.ActivityServiceConfig{
		Activities: activities,
		Users:      users,
		Accessor:   accessor,
	})
	hub := service.NewChatHub(service.ChatHubConfig{
		Activities: activities,
		Users:      users,
		Accessor:   accessor,
	})
	t.Cleanup(hub.Close)

	router := NewRouter(RouterConfig{
		Auth:       authSvc,
		Accounts:   NewAccountHandler(authSvc),
		Profiles:   NewProfileHandler(profileSvc),
		Activities: NewActivityHandler(activitySvc),
		Chat:       NewChatHandler(hub, []string{"*"}),
		Health: NewHealthHandler(map[string]ReadinessCheck{
			"database": func(ctx context.Context) error { return database.Ping(ctx, tdb.DB) },
		}),
	})

	return &testApp{
		t:      t,
		router: router,
		jwt:    jwtSvc,
		auth:   authSvc,
		tdb:    tdb,
		f:      fixtures.New(tdb.DB),
		hub:    hub,
	}
}

// as builds a request authenticated as user
func (a *testApp) as(user *model.User, method, path string) *helpers.RequestBuilder {
	a.t.Helper()
	return helpers.NewRequest(a.t, method, path).WithToken(helpers.TokenFor(a.t, a.jwt, user))
}

func (a *testApp) anonymous(method, path string) *helpers.RequestBuilder {
	a.t.Helper()
	return helpers.NewRequest(a.t, method, path)
}
