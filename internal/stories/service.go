package stories

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"

	"openfeed/internal/config"
	"openfeed/internal/core"
)

const (
	defaultBackgroundColor = "white"
	defaultTextColor       = "black"
)

// Request is the payload of a new story.
type Request struct {
	Content         string  `json:"content"`
	MediaURL        *string `json:"media_url,omitempty"`
	MediaType       *string `json:"media_type,omitempty"`
	BackgroundColor string  `json:"background_color,omitempty"`
	TextColor       string  `json:"text_color,omitempty"`
}

// View is a story with its author attached.
type View struct {
	core.StoryModel
	Author *core.AuthorSummary `json:"author"`
}

// Service creates and lists stories. Expiry is fixed at creation time;
// reads never return an expired row even before the cleaner removes it.
type Service struct {
	Logger   *slog.Logger
	Config   *config.Config
	Stories  core.StoryRepository
	Profiles core.ProfileRepository
	Changes  core.ChangePublisher
}

func (s *Service) Init(_ context.Context) error {
	s.Logger = s.Logger.With("component", "stories.Service")
	return nil
}

// Create persists a story expiring one TTL from now. Stories skip
// moderation: they are ephemeral and author-scoped by product decision.
func (s *Service) Create(ctx context.Context, userID string, req Request) (core.StoryModel, error) {
	if userID == "" {
		return core.StoryModel{}, core.ErrUnauthorized
	}

	hasContent := strings.TrimSpace(req.Content) != ""
	hasMedia := req.MediaURL != nil && *req.MediaURL != ""
	if !hasContent && !hasMedia {
		return core.StoryModel{}, fmt.Errorf("%w: story content or media is required", core.ErrInvalidInput)
	}
	if req.MediaType != nil && *req.MediaType != "image" && *req.MediaType != "video" {
		return core.StoryModel{}, fmt.Errorf("%w: media type must be image or video", core.ErrInvalidInput)
	}

	now := time.Now().UTC()

	story := core.StoryModel{
		UserID:          userID,
		Content:         strings.TrimSpace(req.Content),
		MediaURL:        req.MediaURL,
		MediaType:       req.MediaType,
		BackgroundColor: orDefault(req.BackgroundColor, defaultBackgroundColor),
		TextColor:       orDefault(req.TextColor, defaultTextColor),
		ExpiresAt:       now.Add(s.Config.StoryTTL),
	}

	if err := s.Stories.Insert(ctx, &story); err != nil {
		return core.StoryModel{}, fmt.Errorf("%w: %w", core.ErrStorage, err)
	}

	s.publish(ctx, core.ChangeInsert, story.ID)

	return story, nil
}

// ListActive returns non-expired stories, newest first, with authors.
func (s *Service) ListActive(ctx context.Context) ([]View, error) {
	rows, err := s.Stories.ListActive(ctx, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrStorage, err)
	}

	authorIDs := lo.Uniq(lo.Map(rows, func(st core.StoryModel, _ int) string { return st.UserID }))
	authors, err := s.Profiles.GetMany(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrStorage, err)
	}

	return lo.Map(rows, func(st core.StoryModel, _ int) View {
		view := View{StoryModel: st}
		if author, ok := authors[st.UserID]; ok {
			summary := author.Summary()
			view.Author = &summary
		}
		return view
	}), nil
}

func (s *Service) publish(ctx context.Context, op core.ChangeOp, storyID string) {
	err := s.Changes.Publish(ctx, core.ChangeEvent{
		Table: core.StoryModel{}.TableName(),
		Op:    op,
		RowID: storyID,
		At:    time.Now().UTC(),
	})
	if err != nil {
		s.Logger.Error("failed to publish change event", "error", err, "story", storyID)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
