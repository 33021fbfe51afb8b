package core

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

// DB is the shared gorm handle, registered as a pal service.
type DB interface {
	Model(a any) *gorm.DB
	EstimatedCount(tableName string) (int64, error)
	DB() (*sql.DB, error)
}

// Classifier produces a moderation verdict for a prospective post.
// Implementations are stateless and perform no retries.
type Classifier interface {
	Classify(ctx context.Context, title, content string) (Verdict, error)
}

// IdentityProvider verifies a bearer token against the external auth service.
type IdentityProvider interface {
	UserFromToken(ctx context.Context, token string) (User, error)
}

// ChangeOp is the kind of row change a ChangeEvent describes.
type ChangeOp string

const (
	ChangeInsert ChangeOp = "insert"
	ChangeUpdate ChangeOp = "update"
	ChangeDelete ChangeOp = "delete"
)

// ChangeEvent notifies subscribers that a row changed. It intentionally
// carries no row payload: clients refetch through the read paths, which
// apply the visibility policy.
type ChangeEvent struct {
	ID    string    `json:"id"`
	Table string    `json:"table"`
	Op    ChangeOp  `json:"op"`
	RowID string    `json:"row_id"`
	At    time.Time `json:"at"`
}

// ChangePublisher fans row changes out to the change feed.
type ChangePublisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
}

type PostRepository interface {
	Insert(ctx context.Context, post *PostModel) error
	Get(ctx context.Context, id string) (PostModel, error)
	ListAll(ctx context.Context) ([]PostModel, error)
	ListByAuthor(ctx context.Context, userID string) ([]PostModel, error)
	ListCreatedSince(ctx context.Context, since time.Time) ([]PostModel, error)
	DeleteOwned(ctx context.Context, id, userID string) (int64, error)
	CountVisibleByAuthor(ctx context.Context, userID string) (int64, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type CommentRepository interface {
	Insert(ctx context.Context, comment *CommentModel) error
	Get(ctx context.Context, id string) (CommentModel, error)
	ListTopLevel(ctx context.Context, postID string) ([]CommentModel, error)
	ListReplies(ctx context.Context, parentIDs []string) (map[string][]CommentModel, error)
	CountTopLevel(ctx context.Context, postIDs []string) (map[string]int64, error)
	UpdateOwned(ctx context.Context, id, userID, content string) (int64, error)
	DeleteOwned(ctx context.Context, id, userID string) (int64, error)
}

type LikeRepository interface {
	Find(ctx context.Context, userID, postID string) (*LikeModel, error)
	Insert(ctx context.Context, like *LikeModel) error
	UpdateType(ctx context.Context, userID, postID string, t ReactionType) error
	Delete(ctx context.Context, userID, postID string) error
	ListByPosts(ctx context.Context, postIDs []string) ([]LikeModel, error)
}

type CommentLikeRepository interface {
	Exists(ctx context.Context, userID, commentID string) (bool, error)
	Insert(ctx context.Context, like *CommentLikeModel) error
	Delete(ctx context.Context, userID, commentID string) error
	CountByComments(ctx context.Context, commentIDs []string) (map[string]int64, error)
	LikedByUser(ctx context.Context, userID string, commentIDs []string) (map[string]bool, error)
}

type FollowRepository interface {
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
	Insert(ctx context.Context, follow *FollowModel) error
	Delete(ctx context.Context, followerID, followingID string) error
	CountFollowers(ctx context.Context, userID string) (int64, error)
	CountFollowing(ctx context.Context, userID string) (int64, error)
}

type StoryRepository interface {
	Insert(ctx context.Context, story *StoryModel) error
	ListActive(ctx context.Context, now time.Time) ([]StoryModel, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type ProfileRepository interface {
	Get(ctx context.Context, id string) (ProfileModel, error)
	GetMany(ctx context.Context, ids []string) (map[string]ProfileModel, error)
}
