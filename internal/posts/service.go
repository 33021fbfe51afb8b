package posts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"openfeed/internal/core"
)

var verdictOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "openfeed_moderation_verdicts_total",
	Help: "Posts classified, by publication outcome.",
}, []string{"outcome"})

const (
	defaultBackgroundColor = "white"
	defaultTextColor       = "black"
)

// SubmissionRequest is the raw payload of a prospective post.
type SubmissionRequest struct {
	Content         string  `json:"content"`
	Title           *string `json:"title,omitempty"`
	MediaURL        *string `json:"media_url,omitempty"`
	MediaType       *string `json:"media_type,omitempty"`
	Feeling         *string `json:"feeling,omitempty"`
	BackgroundColor string  `json:"background_color,omitempty"`
	TextColor       string  `json:"text_color,omitempty"`
}

// Service turns submissions into persisted, correctly-statused posts:
// validate, classify, decide, persist. Each submission resolves within one
// request; there is no queueing and no pending-review fallback.
type Service struct {
	Logger     *slog.Logger
	Classifier core.Classifier
	Posts      core.PostRepository
	Changes    core.ChangePublisher
}

func (s *Service) Init(_ context.Context) error {
	s.Logger = s.Logger.With("component", "posts.Service")
	return nil
}

// Submit runs the full submission pipeline. On any failure nothing is
// persisted: classifier unavailability fails the submission rather than
// guessing an outcome.
func (s *Service) Submit(ctx context.Context, userID string, req SubmissionRequest) (core.PostModel, error) {
	if userID == "" {
		return core.PostModel{}, core.ErrUnauthorized
	}
	if err := validate(req); err != nil {
		return core.PostModel{}, err
	}

	title := ""
	if req.Title != nil {
		title = *req.Title
	}

	verdict, err := s.Classifier.Classify(ctx, title, req.Content)
	if err != nil {
		return core.PostModel{}, err
	}

	verdict, status := verdict.Decide()

	post := core.PostModel{
		UserID:           userID,
		Content:          req.Content,
		Title:            req.Title,
		MediaURL:         req.MediaURL,
		MediaType:        req.MediaType,
		Feeling:          req.Feeling,
		BackgroundColor:  orDefault(req.BackgroundColor, defaultBackgroundColor),
		TextColor:        orDefault(req.TextColor, defaultTextColor),
		Status:           status,
		ModerationResult: verdict,
	}

	if err := s.Posts.Insert(ctx, &post); err != nil {
		return core.PostModel{}, fmt.Errorf("%w: %w", core.ErrStorage, err)
	}

	verdictOutcomes.WithLabelValues(string(status)).Inc()
	s.Logger.Info("post moderated", "post", post.ID, "status", status, "flagged", verdict.Flagged)

	s.publish(ctx, core.ChangeInsert, post.ID)

	return post, nil
}

// Delete removes the caller's own post; comments and reactions go with it
// via the schema's cascades. A zero-row match is reported as ErrForbidden or
// ErrNotFound instead of a silent no-op.
func (s *Service) Delete(ctx context.Context, userID, postID string) error {
	if userID == "" {
		return core.ErrUnauthorized
	}

	rows, err := s.Posts.DeleteOwned(ctx, postID, userID)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrStorage, err)
	}
	if rows == 0 {
		exists, err := s.Posts.Exists(ctx, postID)
		if err != nil {
			return fmt.Errorf("%w: %w", core.ErrStorage, err)
		}
		if exists {
			return core.ErrForbidden
		}
		return core.ErrNotFound
	}

	s.publish(ctx, core.ChangeDelete, postID)

	return nil
}

func (s *Service) publish(ctx context.Context, op core.ChangeOp, postID string) {
	err := s.Changes.Publish(ctx, core.ChangeEvent{
		Table: core.PostModel{}.TableName(),
		Op:    op,
		RowID: postID,
		At:    time.Now().UTC(),
	})
	if err != nil {
		// The write already happened; a lost notification only delays refresh.
		s.Logger.Error("failed to publish change event", "error", err, "post", postID)
	}
}

func validate(req SubmissionRequest) error {
	hasContent := strings.TrimSpace(req.Content) != ""
	hasMedia := req.MediaURL != nil && *req.MediaURL != ""
	if !hasContent && !hasMedia {
		return fmt.Errorf("%w: post content or media is required", core.ErrInvalidInput)
	}
	if req.MediaType != nil && *req.MediaType != "image" && *req.MediaType != "video" {
		return fmt.Errorf("%w: media type must be image or video", core.ErrInvalidInput)
	}
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
