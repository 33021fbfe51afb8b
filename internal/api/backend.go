package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"openfeed/internal/changefeed"
	"openfeed/internal/comments"
	"openfeed/internal/core"
	"openfeed/internal/feed"
	"openfeed/internal/posts"
	"openfeed/internal/profiles"
	"openfeed/internal/reactions"
	"openfeed/internal/stories"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Backend holds the HTTP handlers. Handlers parse and respond; all
// semantics live in the services.
type Backend struct {
	Logger    *slog.Logger
	Identity  core.IdentityProvider
	Posts     *posts.Service
	Feed      *feed.Builder
	Comments  *comments.Service
	Reactions *reactions.Service
	Profiles  *profiles.Service
	Stories   *stories.Service
	Hub       *changefeed.Hub
}

func (b *Backend) Init(context.Context) error {
	b.Logger = b.Logger.With("component", "api.Backend")
	return nil
}

func (b *Backend) mount(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Post("/posts", b.createPost)
		r.Delete("/posts/{id}", b.deletePost)

		r.Get("/feed", b.feed)
		r.Get("/posts/popular", b.popular)
		r.Get("/posts/trending", b.trending)
		r.Get("/posts/rejected", b.rejected)
		r.Get("/posts/recent", b.recent)

		r.Get("/posts/{id}/comments", b.listComments)
		r.Post("/posts/{id}/comments", b.createComment)
		r.Patch("/comments/{id}", b.updateComment)
		r.Delete("/comments/{id}", b.deleteComment)

		r.Post("/posts/{id}/reactions", b.react)
		r.Get("/posts/{id}/reactions", b.reactionSummary)
		r.Post("/comments/{id}/likes", b.toggleCommentLike)
		r.Get("/comments/{id}/likes", b.commentLikeSummary)

		r.Get("/users/{id}", b.profile)
		r.Get("/users/{id}/posts", b.userPosts)
		r.Put("/users/{id}/follow", b.follow)
		r.Delete("/users/{id}/follow", b.unfollow)

		r.Post("/stories", b.createStory)
		r.Get("/stories", b.listStories)

		r.Get("/changes", b.changes)
	})
}

// authenticate resolves an optional bearer token into the viewer identity.
// No token means an anonymous viewer; a token that fails verification is a
// hard 401 rather than a silent downgrade.
func (b *Backend) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == header || token == "" {
			writeError(w, b.Logger, fmt.Errorf("%w: malformed authorization header", core.ErrUnauthorized))
			return
		}

		user, err := b.Identity.UserFromToken(r.Context(), token)
		if err != nil {
			writeError(w, b.Logger, err)
			return
		}

		ctx := context.WithValue(r.Context(), viewerContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// viewerID returns the authenticated user's id, or "" for anonymous.
func viewerID(ctx context.Context) string {
	if user, ok := ctx.Value(viewerContextKey).(core.User); ok {
		return user.ID
	}
	return ""
}

func (b *Backend) createPost(w http.ResponseWriter, r *http.Request) {
	var req posts.SubmissionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, b.Logger, err)
		return
	}

	post, err := b.Posts.Submit(r.Context(), viewerID(r.Context()), req)
	if err != nil {
		writeError(w, b.Logger, err)
		return
	}

	respond(w, http.StatusCreated, post)
}

func (b *Backend) deletePost(w http.ResponseWriter, r *http.Request) {
	err := b.Posts.Delete(r.Context(), viewerID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, b.Logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) feed(w http.ResponseWriter, r *http.Request) {
	b.respondPosts(w, r)(b.Feed.Feed(r.Context(), viewerID(r.Context())))
}

func (b *Backend) popular(w http.ResponseWriter, r *http.Request) {
	b.respondPosts(w, r)(b.Feed.Popular(r.Context(), viewerID(r.Context())))
}

func (b *Backend) trending(w http.ResponseWriter, r *http.Request) {
	window := feed.Window(r.URL.Query().Get("window"))
	b.respondPosts(w, r)(b.Feed.Trending(r.Context(), viewerID(r.Context()), window))
}

func (b *Backend) rejected(w http.ResponseWriter, r *http.Request) {
	b.respondPosts(w, r)(b.Feed.Rejected(r.Context(), viewerID(r.Context())))
}

func (b *Backend) recent(w http.ResponseWriter, r *http.Request) {
	b.respondPosts(w, r)(b.Feed.Recent(r.Context(), viewerID(r.Context())))
}

func (b *Backend) userPosts(w http.ResponseWriter, r *http.Request) {
	b.respondPosts(w, r)(b.Feed.ByAuthor(r.Context(), viewerID(r.Context()), chi.URLParam(r, "id")))
}

func (b *Backend) respondPosts(w http.ResponseWriter, _ *http.Request) func([]feed.PostView, error) {
	return func(views []feed.PostView, err error) {
		if err != nil {
			writeError(w, b.Logger, err)
			return
		}
		respond(w, http.StatusOK, views)
	}
}

type createCommentRequest struct {
	Content  string  `json:"content"`
	ParentID *string `json:"parent_id,omitempty"`
}

func (b *Backend) createComment(w http.ResponseWriter, r *http.Request) {
	var req createCommentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, b.Logger, err)
		return
	}

	comment, err := b.Comments.Create(r.Context(), viewerID(r.Context()), chi.URLParam(r, "id"), req.Content, req.ParentID)
	if err != nil {
		writeError(w, b.Logger, err)
		return
	}

	respond(w, http.StatusCreated, comment)
}

func (b *Backend) listComments(w http.ResponseWriter, r *http.Request) {
	thread, err := b.Comments.Thread(r.Context(), viewerID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, b.Logger, err)
		return
	}

	respond(w, http.StatusOK, thread)
}

type updateCommentRequest struct {
	Content string `json:"content"`
}

func (b *Backend) updateComment(w http.ResponseWriter, r *http.Request) {
	var req updateCommentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, b.Logger, err)
		return
	}

	comment, err := b.Comments.Update(r.Context(), viewerID(r.Context()), chi.URLParam(r, "id"), req.Content)
	if err != nil {
		writeError(w, b.Logger, err)
		return
	}

	respond(w, http.StatusOK, comment)
}

func (b *Backend) deleteComment(w http.ResponseWriter, r *http.Request) {
	err := b.Comments.Delete(r.Context(), viewerID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, b.Logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type reactRequest struct {
	ReactionType core.ReactionType `json:"reaction_type"`
}

type reactResponse struct {
	Action reactions.Action `json:"action"`
}

func (b *Backend) react(w http.ResponseWriter, r *http.Request) {
	var req reactRequest
	if err := decode(r, &req); err != nil {
		writeError(w, b.Logger, err)
		return
	}

	action, err := b.Reactions.React(r.Context(), viewerID(r.Context()), chi.URLParam(r, "id"), req.ReactionType)
	if err != nil {
		writeError(w, b.Logger, err)
		return
	}

	respond(w, http.StatusOK, reactResponse{Action: action})
}

func (b *Backend) reactionSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := b.Reactions.PostSummary(r.Context(), viewerID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, b.Logger, err)
		return
	}

	respond(w, http.StatusOK, summary)
}

func (b *Backend) toggleCommentLike(w http.ResponseWriter, r *http.Request) {
	action, err := b.Reactions.ToggleCommentLike(r.Context(), viewerID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, b.Logger, err)
		return
	}

	respond(w, http.StatusOK, reactResponse{Action: action})
}

type commentLikesResponse struct {
	Count         int64 `json:"count"`
	LikedByViewer bool  `json:"liked_by_viewer"`
}

func (b *Backend) commentLikeSummary(w http.ResponseWriter, r *http.Request) {
	count, liked, err := b.Reactions.CommentLikeSummary(r.Context(), viewerID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, b.Logger, err)
		return
	}

	respond(w, http.StatusOK, commentLikesResponse{Count: count, LikedByViewer: liked})
}

func (b *Backend) profile(w http.ResponseWriter, r *http.Request) {
	view, err := b.Profiles.Profile(r.Context(), viewerID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, b.Logger, err)
		return
	}

	respond(w, http.StatusOK, view)
}

func (b *Backend) follow(w http.ResponseWriter, r *http.Request) {
	err := b.Profiles.Follow(r.Context(), viewerID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, b.Logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) unfollow(w http.ResponseWriter, r *http.Request) {
	err := b.Profiles.Unfollow(r.Context(), viewerID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, b.Logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) createStory(w http.ResponseWriter, r *http.Request) {
	var req stories.Request
	if err := decode(r, &req); err != nil {
		writeError(w, b.Logger, err)
		return
	}

	story, err := b.Stories.Create(r.Context(), viewerID(r.Context()), req)
	if err != nil {
		writeError(w, b.Logger, err)
		return
	}

	respond(w, http.StatusCreated, story)
}

func (b *Backend) listStories(w http.ResponseWriter, r *http.Request) {
	views, err := b.Stories.ListActive(r.Context())
	if err != nil {
		writeError(w, b.Logger, err)
		return
	}

	respond(w, http.StatusOK, views)
}

func (b *Backend) changes(w http.ResponseWriter, r *http.Request) {
	var tables []string
	if raw := r.URL.Query().Get("tables"); raw != "" {
		tables = strings.Split(raw, ",")
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the response.
		return
	}
	defer conn.Close()

	if err := b.Hub.Serve(r.Context(), conn, tables); err != nil {
		b.Logger.Error("change feed connection failed", "error", err)
	}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body", core.ErrInvalidInput)
	}
	return nil
}
