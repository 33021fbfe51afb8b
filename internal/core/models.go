package core

import (
	"time"
)

// Status is the moderation state of a post. Pending is modeled for a future
// manual-review tier but is never assigned by the submission path.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ReactionType is one of the seven typed post reactions.
type ReactionType string

const (
	ReactionLike  ReactionType = "like"
	ReactionLove  ReactionType = "love"
	ReactionHaha  ReactionType = "haha"
	ReactionWow   ReactionType = "wow"
	ReactionSad   ReactionType = "sad"
	ReactionAngry ReactionType = "angry"
	ReactionCare  ReactionType = "care"
)

// ReactionTypes lists every valid reaction in display order.
var ReactionTypes = []ReactionType{
	ReactionLike, ReactionLove, ReactionHaha, ReactionWow,
	ReactionSad, ReactionAngry, ReactionCare,
}

func (r ReactionType) Valid() bool {
	for _, t := range ReactionTypes {
		if r == t {
			return true
		}
	}
	return false
}

// Verdict is the structured classifier result for a submission.
type Verdict struct {
	Flagged   bool `json:"flagged"`
	IsToxic   bool `json:"isToxic"`
	IsSpam    bool `json:"isSpam"`
	IsProfane bool `json:"isProfane"`
}

// Decide derives the publication status from the verdict and fills Flagged.
// Two outcomes only: a flagged submission is rejected, anything else is
// approved.
func (v Verdict) Decide() (Verdict, Status) {
	v.Flagged = v.IsToxic || v.IsSpam || v.IsProfane
	if v.Flagged {
		return v, StatusRejected
	}
	return v, StatusApproved
}

// PostModel is a user-authored content unit. Posts are never edited after
// creation: the status and verdict are fixed at submission time.
type PostModel struct {
	ID              string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID          string  `gorm:"type:uuid;not null;index" json:"user_id"`
	Content         string  `gorm:"type:text;not null" json:"content"`
	Title           *string `gorm:"type:text" json:"title,omitempty"`
	MediaURL        *string `gorm:"type:text" json:"media_url,omitempty"`
	MediaType       *string `gorm:"type:text" json:"media_type,omitempty"`
	Feeling         *string `gorm:"type:text" json:"feeling,omitempty"`
	BackgroundColor string  `gorm:"type:text;not null;default:white" json:"background_color"`
	TextColor       string  `gorm:"type:text;not null;default:black" json:"text_color"`

	Status           Status  `gorm:"type:text;not null" json:"status"`
	ModerationResult Verdict `gorm:"type:jsonb;serializer:json" json:"moderation_result"`

	CreatedAt time.Time `json:"created_at"`
}

func (PostModel) TableName() string {
	return "posts"
}

// CommentModel is a threaded reply on a post, at most one level deep.
type CommentModel struct {
	ID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PostID    string    `gorm:"type:uuid;not null;index" json:"post_id"`
	UserID    string    `gorm:"type:uuid;not null" json:"user_id"`
	ParentID  *string   `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CommentModel) TableName() string {
	return "comments"
}

// LikeModel is a typed reaction, unique per (user, post).
type LikeModel struct {
	ID           string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID       string       `gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_post" json:"user_id"`
	PostID       string       `gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_post" json:"post_id"`
	ReactionType ReactionType `gorm:"type:text;not null" json:"reaction_type"`
	CreatedAt    time.Time    `json:"created_at"`
}

func (LikeModel) TableName() string {
	return "likes"
}

// CommentLikeModel is a binary like, unique per (user, comment).
type CommentLikeModel struct {
	ID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_comment_likes_user_comment" json:"user_id"`
	CommentID string    `gorm:"type:uuid;not null;uniqueIndex:idx_comment_likes_user_comment" json:"comment_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (CommentLikeModel) TableName() string {
	return "comment_likes"
}

// FollowModel is a directed follow edge. Following back is an independent
// edge, friendship is not modeled.
type FollowModel struct {
	ID          string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	FollowerID  string    `gorm:"type:uuid;not null;uniqueIndex:idx_follows_pair" json:"follower_id"`
	FollowingID string    `gorm:"type:uuid;not null;uniqueIndex:idx_follows_pair" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func (FollowModel) TableName() string {
	return "follows"
}

// StoryModel is an ephemeral post-like unit, invisible once past expiry.
type StoryModel struct {
	ID              string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID          string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Content         string    `gorm:"type:text" json:"content"`
	MediaURL        *string   `gorm:"type:text" json:"media_url,omitempty"`
	MediaType       *string   `gorm:"type:text" json:"media_type,omitempty"`
	BackgroundColor string    `gorm:"type:text;not null;default:white" json:"background_color"`
	TextColor       string    `gorm:"type:text;not null;default:black" json:"text_color"`
	CreatedAt       time.Time `json:"created_at"`
	ExpiresAt       time.Time `gorm:"not null;index" json:"expires_at"`
}

func (StoryModel) TableName() string {
	return "stories"
}

// ProfileModel is the 1:1 extension of an identity. Rows are owned by the
// identity provider; we only read them for display and aggregation.
type ProfileModel struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	FullName      string    `gorm:"type:text" json:"full_name"`
	Phone         string    `gorm:"type:text" json:"phone"`
	AvatarURL     *string   `gorm:"type:text" json:"avatar_url,omitempty"`
	CoverImageURL *string   `gorm:"type:text" json:"cover_image_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (ProfileModel) TableName() string {
	return "profiles"
}

// AuthorSummary is the display slice of a profile attached to posts and
// comments on read paths.
type AuthorSummary struct {
	FullName  string  `json:"full_name"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// Summary extracts the display fields of a profile.
func (p ProfileModel) Summary() AuthorSummary {
	return AuthorSummary{
		FullName:  p.FullName,
		AvatarURL: p.AvatarURL,
	}
}

// User is a verified identity resolved from a bearer token.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}
