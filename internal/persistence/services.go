package persistence

import (
	"github.com/zhulik/pal"

	"openfeed/internal/core"
	"openfeed/internal/persistence/comments"
	"openfeed/internal/persistence/follows"
	"openfeed/internal/persistence/likes"
	"openfeed/internal/persistence/posts"
	"openfeed/internal/persistence/profiles"
	"openfeed/internal/persistence/stories"
)

func Provide() pal.ServiceDef {
	return pal.ProvideList(
		pal.Provide[core.DB](&DB{}),
		pal.Provide[core.PostRepository](&posts.Repository{}),
		pal.Provide[core.CommentRepository](&comments.Repository{}),
		pal.Provide[core.LikeRepository](&likes.Repository{}),
		pal.Provide[core.CommentLikeRepository](&likes.CommentRepository{}),
		pal.Provide[core.FollowRepository](&follows.Repository{}),
		pal.Provide[core.StoryRepository](&stories.Repository{}),
		pal.Provide[core.ProfileRepository](&profiles.Repository{}),
	)
}
