package posts_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"openfeed/internal/core"
	"openfeed/internal/posts"
)

type fakeClassifier struct {
	verdict core.Verdict
	err     error
	calls   int
}

func (f *fakeClassifier) Classify(context.Context, string, string) (core.Verdict, error) {
	f.calls++
	return f.verdict, f.err
}

type fakePostRepo struct {
	core.PostRepository

	inserted   []*core.PostModel
	insertErr  error
	deleteRows int64
	exists     bool
}

func (f *fakePostRepo) Insert(_ context.Context, post *core.PostModel) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	post.ID = "post-1"
	f.inserted = append(f.inserted, post)
	return nil
}

func (f *fakePostRepo) DeleteOwned(context.Context, string, string) (int64, error) {
	return f.deleteRows, nil
}

func (f *fakePostRepo) Exists(context.Context, string) (bool, error) {
	return f.exists, nil
}

type changeRecorder struct {
	events []core.ChangeEvent
}

func (c *changeRecorder) Publish(_ context.Context, event core.ChangeEvent) error {
	c.events = append(c.events, event)
	return nil
}

func newService(classifier *fakeClassifier, repo *fakePostRepo) (*posts.Service, *changeRecorder) {
	changes := &changeRecorder{}
	return &posts.Service{
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Classifier: classifier,
		Posts:      repo,
		Changes:    changes,
	}, changes
}

func TestService_Submit(t *testing.T) {
	t.Parallel()

	t.Run("anonymous submission is rejected up front", func(t *testing.T) {
		t.Parallel()

		classifier := &fakeClassifier{}
		service, _ := newService(classifier, &fakePostRepo{})

		_, err := service.Submit(t.Context(), "", posts.SubmissionRequest{Content: "hello"})

		require.ErrorIs(t, err, core.ErrUnauthorized)
		require.Zero(t, classifier.calls)
	})

	t.Run("empty submission never reaches the classifier", func(t *testing.T) {
		t.Parallel()

		classifier := &fakeClassifier{}
		service, _ := newService(classifier, &fakePostRepo{})

		_, err := service.Submit(t.Context(), "alice", posts.SubmissionRequest{Content: "   "})

		require.ErrorIs(t, err, core.ErrInvalidInput)
		require.Zero(t, classifier.calls)
	})

	t.Run("media-only submission is valid", func(t *testing.T) {
		t.Parallel()

		url := "https://cdn.example.com/cat.png"
		kind := "image"
		repo := &fakePostRepo{}
		service, _ := newService(&fakeClassifier{}, repo)

		post, err := service.Submit(t.Context(), "alice", posts.SubmissionRequest{MediaURL: &url, MediaType: &kind})

		require.NoError(t, err)
		require.Equal(t, core.StatusApproved, post.Status)
		require.Len(t, repo.inserted, 1)
	})

	t.Run("unknown media type is invalid", func(t *testing.T) {
		t.Parallel()

		url := "https://cdn.example.com/cat.gif"
		kind := "gif"
		service, _ := newService(&fakeClassifier{}, &fakePostRepo{})

		_, err := service.Submit(t.Context(), "alice", posts.SubmissionRequest{MediaURL: &url, MediaType: &kind})

		require.ErrorIs(t, err, core.ErrInvalidInput)
	})

	t.Run("classifier failure persists nothing", func(t *testing.T) {
		t.Parallel()

		repo := &fakePostRepo{}
		service, changes := newService(&fakeClassifier{err: core.ErrModerationUnavailable}, repo)

		_, err := service.Submit(t.Context(), "alice", posts.SubmissionRequest{Content: "hello"})

		require.ErrorIs(t, err, core.ErrModerationUnavailable)
		require.Empty(t, repo.inserted)
		require.Empty(t, changes.events)
	})

	t.Run("spam verdict stores a rejected post with the full verdict", func(t *testing.T) {
		t.Parallel()

		repo := &fakePostRepo{}
		service, changes := newService(&fakeClassifier{verdict: core.Verdict{IsSpam: true}}, repo)

		post, err := service.Submit(t.Context(), "alice", posts.SubmissionRequest{Content: "Buy now! Limited offer!"})

		require.NoError(t, err)
		require.Equal(t, core.StatusRejected, post.Status)
		require.True(t, post.ModerationResult.Flagged)
		require.True(t, post.ModerationResult.IsSpam)
		require.Len(t, repo.inserted, 1)
		require.Len(t, changes.events, 1)
		require.Equal(t, "posts", changes.events[0].Table)
		require.Equal(t, core.ChangeInsert, changes.events[0].Op)
	})

	t.Run("clean verdict stores an approved post with defaults", func(t *testing.T) {
		t.Parallel()

		repo := &fakePostRepo{}
		service, _ := newService(&fakeClassifier{}, repo)

		post, err := service.Submit(t.Context(), "alice", posts.SubmissionRequest{Content: "hello world"})

		require.NoError(t, err)
		require.Equal(t, core.StatusApproved, post.Status)
		require.False(t, post.ModerationResult.Flagged)
		require.Equal(t, "white", post.BackgroundColor)
		require.Equal(t, "black", post.TextColor)
	})

	t.Run("storage failure after classification surfaces ErrStorage", func(t *testing.T) {
		t.Parallel()

		repo := &fakePostRepo{insertErr: errors.New("connection reset")}
		service, changes := newService(&fakeClassifier{}, repo)

		_, err := service.Submit(t.Context(), "alice", posts.SubmissionRequest{Content: "hello"})

		require.ErrorIs(t, err, core.ErrStorage)
		require.Empty(t, changes.events)
	})
}

func TestService_Delete(t *testing.T) {
	t.Parallel()

	t.Run("owner delete succeeds", func(t *testing.T) {
		t.Parallel()

		service, changes := newService(&fakeClassifier{}, &fakePostRepo{deleteRows: 1})

		require.NoError(t, service.Delete(t.Context(), "alice", "post-1"))
		require.Len(t, changes.events, 1)
		require.Equal(t, core.ChangeDelete, changes.events[0].Op)
	})

	t.Run("deleting someone else's post is forbidden", func(t *testing.T) {
		t.Parallel()

		service, _ := newService(&fakeClassifier{}, &fakePostRepo{deleteRows: 0, exists: true})

		require.ErrorIs(t, service.Delete(t.Context(), "bob", "post-1"), core.ErrForbidden)
	})

	t.Run("deleting a missing post is not found", func(t *testing.T) {
		t.Parallel()

		service, _ := newService(&fakeClassifier{}, &fakePostRepo{deleteRows: 0, exists: false})

		require.ErrorIs(t, service.Delete(t.Context(), "alice", "nope"), core.ErrNotFound)
	})

	t.Run("anonymous delete is unauthorized", func(t *testing.T) {
		t.Parallel()

		service, _ := newService(&fakeClassifier{}, &fakePostRepo{})

		require.ErrorIs(t, service.Delete(t.Context(), "", "post-1"), core.ErrUnauthorized)
	})
}
