package stories_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"openfeed/internal/config"
	"openfeed/internal/core"
	"openfeed/internal/stories"
)

type fakeStoryRepo struct {
	core.StoryRepository

	rows     []core.StoryModel
	inserted *core.StoryModel
	asOf     time.Time
}

func (f *fakeStoryRepo) Insert(_ context.Context, story *core.StoryModel) error {
	story.ID = "story-1"
	f.inserted = story
	return nil
}

func (f *fakeStoryRepo) ListActive(_ context.Context, now time.Time) ([]core.StoryModel, error) {
	f.asOf = now
	var out []core.StoryModel
	for _, row := range f.rows {
		if row.ExpiresAt.After(now) {
			out = append(out, row)
		}
	}
	return out, nil
}

type fakeProfileRepo struct {
	core.ProfileRepository
}

func (fakeProfileRepo) GetMany(context.Context, []string) (map[string]core.ProfileModel, error) {
	return map[string]core.ProfileModel{
		"alice": {ID: "alice", FullName: "Alice Example"},
	}, nil
}

type changeRecorder struct {
	events []core.ChangeEvent
}

func (c *changeRecorder) Publish(_ context.Context, event core.ChangeEvent) error {
	c.events = append(c.events, event)
	return nil
}

func newService(repo *fakeStoryRepo) *stories.Service {
	return &stories.Service{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config:   &config.Config{StoryTTL: 24 * time.Hour},
		Stories:  repo,
		Profiles: fakeProfileRepo{},
		Changes:  &changeRecorder{},
	}
}

func TestService_Create(t *testing.T) {
	t.Parallel()

	t.Run("expiry is one TTL from now", func(t *testing.T) {
		t.Parallel()

		repo := &fakeStoryRepo{}
		service := newService(repo)

		story, err := service.Create(t.Context(), "alice", stories.Request{Content: "hello"})

		require.NoError(t, err)
		require.WithinDuration(t, time.Now().UTC().Add(24*time.Hour), story.ExpiresAt, time.Minute)
		require.Equal(t, "white", story.BackgroundColor)
		require.Equal(t, "black", story.TextColor)
		require.NotNil(t, repo.inserted)
	})

	t.Run("content or media is required", func(t *testing.T) {
		t.Parallel()

		service := newService(&fakeStoryRepo{})

		_, err := service.Create(t.Context(), "alice", stories.Request{Content: "  "})

		require.ErrorIs(t, err, core.ErrInvalidInput)
	})

	t.Run("anonymous story is unauthorized", func(t *testing.T) {
		t.Parallel()

		service := newService(&fakeStoryRepo{})

		_, err := service.Create(t.Context(), "", stories.Request{Content: "hello"})

		require.ErrorIs(t, err, core.ErrUnauthorized)
	})
}

func TestService_ListActive(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	repo := &fakeStoryRepo{rows: []core.StoryModel{
		{ID: "live", UserID: "alice", ExpiresAt: now.Add(time.Hour)},
		{ID: "expired", UserID: "alice", ExpiresAt: now.Add(-time.Minute)},
	}}
	service := newService(repo)

	views, err := service.ListActive(t.Context())

	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, "live", views[0].ID)
	require.NotNil(t, views[0].Author)
	require.Equal(t, "Alice Example", views[0].Author.FullName)
}
