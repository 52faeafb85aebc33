package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/huddle/api/internal/cache"
	"github.com/forgo/huddle/api/internal/model"
	"github.com/forgo/huddle/api/internal/repository"
	"github.com/forgo/huddle/api/internal/testing/fixtures"
	"github.com/forgo/huddle/api/internal/testing/testdb"
)

// staticAccessor authenticates every request as one username
type staticAccessor string

func (a staticAccessor) Username(context.Context) string { return string(a) }

// fakeProfileCache records invalidations and never caches
type fakeProfileCache struct {
	invalidated []string
	failWith    error
}

func (c *fakeProfileCache) Get(ctx context.Context, username string, load cache.LoadFunc) (*model.Profile, error) {
	return load(ctx, username)
}

func (c *fakeProfileCache) Invalidate(_ context.Context, username string) error {
	c.invalidated = append(c.invalidated, username)
	return c.failWith
}

// zeroRowsRepo wraps a real repository but never reports an affected row
type zeroRowsRepo struct {
	*repository.UserRepository
	updates int
}

func (r *zeroRowsRepo) UpdateProfile(context.Context, string, string, *string) (int64, error) {
	r.updates++
	return 0, nil
}

type profileFixture struct {
	svc   *ProfileService
	users *repository.UserRepository
	f     *fixtures.Factory
	cache *fakeProfileCache
}

func newProfileFixture(t *testing.T, caller string) *profileFixture {
	t.Helper()
	tdb := testdb.New(t)
	users := repository.NewUserRepository(tdb.DB)
	c := &fakeProfileCache{}
	return &profileFixture{
		svc: NewProfileService(ProfileServiceConfig{
			Users:      users,
			Activities: repository.NewProfileRepository(tdb.DB),
			Cache:      c,
			Accessor:   staticAccessor(caller),
		}),
		users: users,
		f:     fixtures.New(tdb.DB),
		cache: c,
	}
}

func editRequest(t *testing.T, body string) model.EditProfileRequest {
	t.Helper()
	var req model.EditProfileRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return req
}

// ============================================================================
// Edit
// ============================================================================

func TestProfileService_Edit_RejectsEmptyOrNullDisplayName(t *testing.T) {
	t.Parallel()

	for _, body := range []string{
		`{"displayName":"","bio":"hi"}`,
		`{"displayName":null,"bio":"hi"}`,
		`{"displayName":"   "}`,
	} {
		t.Run(body, func(t *testing.T) {
			fx := newProfileFixture(t, "bob")
			bob := fx.f.CreateUser(t, fixtures.WithUsername("bob"), fixtures.WithBio("original"))

			res, err := Send(context.Background(), "profiles.edit", editRequest(t, body), fx.svc.Edit)

			var verr *model.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "displayName", verr.Errors[0].Field)
			assert.False(t, res.Found())

			fresh := fx.f.Reload(t, bob)
			assert.Equal(t, bob.DisplayName, fresh.DisplayName)
			assert.Equal(t, "original", *fresh.Bio)
			assert.Empty(t, fx.cache.invalidated)
		})
	}
}

func TestProfileService_Edit_OnlyBioKeepsDisplayName(t *testing.T) {
	t.Parallel()
	fx := newProfileFixture(t, "bob")
	bob := fx.f.CreateUser(t, fixtures.WithUsername("bob"))

	res, err := Send(context.Background(), "profiles.edit", editRequest(t, `{"bio":"new bio"}`), fx.svc.Edit)

	require.NoError(t, err)
	assert.True(t, res.IsSuccess())
	fresh := fx.f.Reload(t, bob)
	assert.Equal(t, bob.DisplayName, fresh.DisplayName)
	require.NotNil(t, fresh.Bio)
	assert.Equal(t, "new bio", *fresh.Bio)
	assert.Equal(t, []string{"bob"}, fx.cache.invalidated)
}

func TestProfileService_Edit_NullBioKeepsStoredBio(t *testing.T) {
	t.Parallel()
	fx := newProfileFixture(t, "bob")
	bob := fx.f.CreateUser(t, fixtures.WithUsername("bob"), fixtures.WithBio("keep me"))

	res, err := Send(context.Background(), "profiles.edit", editRequest(t, `{"displayName":"Robert","bio":null}`), fx.svc.Edit)

	require.NoError(t, err)
	assert.True(t, res.IsSuccess())
	fresh := fx.f.Reload(t, bob)
	assert.Equal(t, "Robert", fresh.DisplayName)
	assert.Equal(t, "keep me", *fresh.Bio)
}

func TestProfileService_Edit_IsIdempotent(t *testing.T) {
	t.Parallel()
	fx := newProfileFixture(t, "bob")
	bob := fx.f.CreateUser(t, fixtures.WithUsername("bob"))
	req := editRequest(t, `{"displayName":"Bobby","bio":"same"}`)

	first, err := Send(context.Background(), "profiles.edit", req, fx.svc.Edit)
	require.NoError(t, err)
	afterFirst := fx.f.Reload(t, bob)

	second, err := Send(context.Background(), "profiles.edit", req, fx.svc.Edit)
	require.NoError(t, err)
	afterSecond := fx.f.Reload(t, bob)

	assert.Equal(t, first.IsSuccess(), second.IsSuccess())
	assert.Equal(t, afterFirst.DisplayName, afterSecond.DisplayName)
	assert.Equal(t, *afterFirst.Bio, *afterSecond.Bio)
}

func TestProfileService_Edit_NoRowsIsFailure(t *testing.T) {
	t.Parallel()
	tdb := testdb.New(t)
	f := fixtures.New(tdb.DB)
	f.CreateUser(t, fixtures.WithUsername("bob"))
	repo := &zeroRowsRepo{UserRepository: repository.NewUserRepository(tdb.DB)}
	svc := NewProfileService(ProfileServiceConfig{
		Users:      repo,
		Activities: repository.NewProfileRepository(tdb.DB),
		Accessor:   staticAccessor("bob"),
	})

	res, err := Send(context.Background(), "profiles.edit", editRequest(t, `{"displayName":"B"}`), svc.Edit)

	require.NoError(t, err)
	assert.False(t, res.IsSuccess())
	assert.Equal(t, "Problem updating profile", res.Message())
	assert.Equal(t, 1, repo.updates)
}

func TestProfileService_Edit_MissingCallerIsFault(t *testing.T) {
	t.Parallel()
	fx := newProfileFixture(t, "deleted")

	_, err := Send(context.Background(), "profiles.edit", editRequest(t, `{"bio":"x"}`), fx.svc.Edit)

	assert.ErrorIs(t, err, ErrCallerNotFound)
}

func TestProfileService_Edit_CacheFailureDoesNotFailEdit(t *testing.T) {
	t.Parallel()
	fx := newProfileFixture(t, "bob")
	fx.cache.failWith = errors.New("redis down")
	fx.f.CreateUser(t, fixtures.WithUsername("bob"))

	res, err := Send(context.Background(), "profiles.edit", editRequest(t, `{"bio":"x"}`), fx.svc.Edit)

	require.NoError(t, err)
	assert.True(t, res.IsSuccess())
}

// ============================================================================
// Details
// ============================================================================

func TestProfileService_Details(t *testing.T) {
	t.Parallel()
	fx := newProfileFixture(t, "viewer")
	bob := fx.f.CreateUser(t,
		fixtures.WithUsername("bob"),
		fixtures.WithBio("Hello"),
		fixtures.WithPhotos("https://img.test/bob.jpg"),
	)
	fx.f.CreateActivity(t, bob)

	res, err := Send(context.Background(), "profiles.details", model.ProfileDetailsQuery{Username: "bob"}, fx.svc.Details)

	require.NoError(t, err)
	require.True(t, res.Found())
	profile := res.Value()
	assert.Equal(t, "bob", profile.Username)
	assert.Equal(t, bob.DisplayName, profile.DisplayName)
	assert.Equal(t, "Hello", *profile.Bio)
	assert.Equal(t, "https://img.test/bob.jpg", *profile.Image)
	assert.Len(t, profile.Photos, 1)
	assert.Equal(t, int64(1), profile.ActivitiesCount)
}

func TestProfileService_Details_NotFound(t *testing.T) {
	t.Parallel()
	fx := newProfileFixture(t, "viewer")

	res, err := Send(context.Background(), "profiles.details", model.ProfileDetailsQuery{Username: "unknown"}, fx.svc.Details)

	require.NoError(t, err)
	assert.True(t, res.IsSuccess())
	assert.False(t, res.Found())
}

func TestProfileService_Details_WithoutCache(t *testing.T) {
	t.Parallel()
	tdb := testdb.New(t)
	fixtures.New(tdb.DB).CreateUser(t, fixtures.WithUsername("bob"))
	svc := NewProfileService(ProfileServiceConfig{
		Users:      repository.NewUserRepository(tdb.DB),
		Activities: repository.NewProfileRepository(tdb.DB),
		Accessor:   staticAccessor(""),
	})

	res, err := svc.Details(context.Background(), model.ProfileDetailsQuery{Username: "bob"})

	require.NoError(t, err)
	assert.True(t, res.Found())
}

// ============================================================================
// ListActivities
// ============================================================================

func TestProfileService_ListActivities(t *testing.T) {
	t.Parallel()
	tdb := testdb.New(t)
	f := fixtures.New(tdb.DB)
	now := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := NewProfileService(ProfileServiceConfig{
		Users:      repository.NewUserRepository(tdb.DB),
		Activities: repository.NewProfileRepository(tdb.DB),
		Accessor:   staticAccessor(""),
		Now:        func() time.Time { return now },
	})

	alice := f.CreateUser(t, fixtures.WithUsername("alice"))
	other := f.CreateUser(t)
	a := f.CreateActivity(t, other, fixtures.WithTitle("A"), fixtures.WithDate(now.Add(-24*time.Hour)))
	b := f.CreateActivity(t, other, fixtures.WithTitle("B"), fixtures.WithDate(now.Add(24*time.Hour)))
	f.CreateActivity(t, alice, fixtures.WithTitle("C"), fixtures.WithDate(now.Add(25*time.Hour)))
	f.AddAttendee(t, a, alice)
	f.AddAttendee(t, b, alice)

	cases := map[model.ActivityPredicate][]string{
		"":                    {"B", "C"},
		model.PredicateFuture: {"B", "C"},
		model.PredicatePast:   {"A"},
		model.PredicateHost:   {"C"},
	}
	for predicate, want := range cases {
		res, err := Send(context.Background(), "profiles.activities",
			model.ListActivitiesQuery{Username: "alice", Predicate: predicate}, svc.ListActivities)
		require.NoError(t, err)

		got := make([]string, 0, len(res.Value()))
		for _, ua := range res.Value() {
			got = append(got, ua.Title)
		}
		assert.Equal(t, want, got, "predicate %q", predicate)
	}
}

func TestProfileService_ListActivities_RejectsUnknownPredicate(t *testing.T) {
	t.Parallel()
	fx := newProfileFixture(t, "")

	_, err := Send(context.Background(), "profiles.activities",
		model.ListActivitiesQuery{Username: "alice", Predicate: "tomorrow"}, fx.svc.ListActivities)

	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "predicate", verr.Errors[0].Field)
}
