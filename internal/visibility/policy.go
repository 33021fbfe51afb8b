// Package visibility decides which post rows a viewer may see. Every read
// path goes through the same policy, parameterized by audience context
// instead of per-page ad hoc filters.
package visibility

import (
	"github.com/samber/lo"

	"openfeed/internal/core"
)

// Audience is the read-path context a filter runs under.
type Audience int

const (
	// AudiencePublic covers the feed, popular, trending and other users'
	// profile pages: only approved posts are visible, to everyone including
	// the author.
	AudiencePublic Audience = iota

	// AudienceOwner covers a user's own profile and recent-posts views: the
	// owner sees their approved and pending posts, never rejected ones.
	AudienceOwner

	// AudienceOwnerRejected is the dedicated rejected-posts view: exactly the
	// owner's rejected posts.
	AudienceOwnerRejected
)

// Policy is a pure admission predicate over post rows.
type Policy struct{}

// Admit reports whether the viewer may see the post under the given audience
// context. An empty viewerID is an anonymous viewer.
func (Policy) Admit(audience Audience, viewerID string, post core.PostModel) bool {
	switch audience {
	case AudienceOwner:
		return post.UserID == viewerID && viewerID != "" && post.Status != core.StatusRejected
	case AudienceOwnerRejected:
		return post.UserID == viewerID && viewerID != "" && post.Status == core.StatusRejected
	default:
		return post.Status == core.StatusApproved
	}
}

// Filter applies Admit to a materialized result set, preserving order.
func (p Policy) Filter(audience Audience, viewerID string, posts []core.PostModel) []core.PostModel {
	return lo.Filter(posts, func(post core.PostModel, _ int) bool {
		return p.Admit(audience, viewerID, post)
	})
}
