package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/huddle/api/internal/database"
	"github.com/forgo/huddle/api/internal/model"
	"github.com/forgo/huddle/api/internal/repository"
	"github.com/forgo/huddle/api/internal/testing/fixtures"
	"github.com/forgo/huddle/api/internal/testing/testdb"
)

func TestActivityRepository_CreateLinksHost(t *testing.T) {
	t.Parallel()
	tdb := testdb.New(t)
	f := fixtures.New(tdb.DB)
	repo := repository.NewActivityRepository(tdb.DB)
	host := f.CreateUser(t, fixtures.WithUsername("hosty"))

	activity := &model.Activity{
		ID:          uuid.NewString(),
		Title:       "Quiz night",
		Date:        time.Now().UTC().Add(48 * time.Hour),
		Description: "Trivia",
		Category:    "culture",
		City:        "Leeds",
		Venue:       "The Crown",
	}
	require.NoError(t, repo.Create(context.Background(), activity, host.ID))

	stored, err := repo.GetByID(context.Background(), activity.ID)
	require.NoError(t, err)
	require.Len(t, stored.Attendees, 1)
	require.NotNil(t, stored.Host())
	assert.Equal(t, "hosty", stored.Host().User.UserName)

	dto := model.NewActivityDto(stored)
	assert.Equal(t, "hosty", dto.HostUsername)
}

func TestActivityRepository_GetByID_NotFound(t *testing.T) {
	t.Parallel()
	tdb := testdb.New(t)
	repo := repository.NewActivityRepository(tdb.DB)

	_, err := repo.GetByID(context.Background(), "missing")

	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestActivityRepository_ListUpcoming(t *testing.T) {
	t.Parallel()
	tdb := testdb.New(t)
	f := fixtures.New(tdb.DB)
	repo := repository.NewActivityRepository(tdb.DB)
	host := f.CreateUser(t)
	now := time.Now().UTC()

	f.CreateActivity(t, host, fixtures.WithTitle("later"), fixtures.WithDate(now.Add(72*time.Hour)))
	f.CreateActivity(t, host, fixtures.WithTitle("past"), fixtures.WithDate(now.Add(-time.Hour)))
	f.CreateActivity(t, host, fixtures.WithTitle("soon"), fixtures.WithDate(now.Add(time.Hour)))

	got, err := repo.ListUpcoming(context.Background(), now, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "soon", got[0].Title)
	assert.Equal(t, "later", got[1].Title)

	limited, err := repo.ListUpcoming(context.Background(), now, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestActivityRepository_Update(t *testing.T) {
	t.Parallel()
	tdb := testdb.New(t)
	f := fixtures.New(tdb.DB)
	repo := repository.NewActivityRepository(tdb.DB)
	host := f.CreateUser(t)
	activity := f.CreateActivity(t, host)

	rows, err := repo.Update(context.Background(), model.ActivityRequest{
		ID:          activity.ID,
		Title:       "Renamed",
		Date:        activity.Date,
		Description: "d",
		Category:    "music",
		City:        "c",
		Venue:       "v",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	stored, err := repo.GetByID(context.Background(), activity.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Title)
	assert.Equal(t, "music", stored.Category)
}

func TestActivityRepository_Attendance(t *testing.T) {
	t.Parallel()
	tdb := testdb.New(t)
	f := fixtures.New(tdb.DB)
	repo := repository.NewActivityRepository(tdb.DB)
	host := f.CreateUser(t)
	guest := f.CreateUser(t)
	activity := f.CreateActivity(t, host)
	ctx := context.Background()

	require.NoError(t, repo.AddAttendee(ctx, activity.ID, guest.ID))
	assert.ErrorIs(t, repo.AddAttendee(ctx, activity.ID, guest.ID), database.ErrDuplicate)

	stored, err := repo.GetByID(ctx, activity.ID)
	require.NoError(t, err)
	require.Len(t, stored.Attendees, 2)
	assert.Equal(t, model.RoleHost, stored.Attendees[0].Role)

	rows, err := repo.RemoveAttendee(ctx, activity.ID, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = repo.RemoveAttendee(ctx, activity.ID, host.ID)
	require.NoError(t, err)
	assert.Zero(t, rows, "host link is never removed")
}

func TestActivityRepository_SetCancelled(t *testing.T) {
	t.Parallel()
	tdb := testdb.New(t)
	f := fixtures.New(tdb.DB)
	repo := repository.NewActivityRepository(tdb.DB)
	activity := f.CreateActivity(t, f.CreateUser(t))

	rows, err := repo.SetCancelled(context.Background(), activity.ID, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	stored, err := repo.GetByID(context.Background(), activity.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsCancelled)
}
