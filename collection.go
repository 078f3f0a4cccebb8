package zhihu

import (
	"context"

	"github.com/jamesprial/go-zhihu-oauth/pkg/entity"
)

const (
	collectionDetailPath    = "collections/{id}"
	collectionAnswersPath   = "collections/{id}/answers"
	collectionCommentsPath  = "collections/{id}/comments"
	collectionFollowersPath = "collections/{id}/followers"
)

var (
	collectionAnswerCount   = entity.NewPlain[int64]("answer_count")
	collectionCommentCount  = entity.NewPlain[int64]("comment_count")
	collectionCreatedTime   = entity.NewPlain[int64]("created_time")
	collectionCreator       = entity.NewReference[*People]("creator", KindPeople)
	collectionDescription   = entity.NewPlain[string]("description")
	collectionFollowerCount = entity.NewPlain[int64]("follower_count")
	collectionIsPublic      = entity.NewPlain[bool]("is_public")
	collectionTitle         = entity.NewPlain[string]("title")
	collectionUpdatedTime   = entity.NewPlain[int64]("updated_time")
)

func init() {
	registry.MustRegister(entity.Kind{
		Name:       KindCollection,
		DetailPath: collectionDetailPath,
		NumericID:  true,
		New:        func(b *entity.Base) entity.Entity { return &Collection{Base: b} },
	},
		collectionAnswerCount, collectionCommentCount, collectionCreatedTime,
		collectionCreator, collectionDescription, collectionFollowerCount,
		collectionIsPublic, collectionTitle, collectionUpdatedTime,
	)
}

// Collection is a user-curated list of answers.
type Collection struct {
	*entity.Base
}

func (c *Collection) ID() int64 {
	id, _ := c.EntityID().Int64()
	return id
}

func (c *Collection) AnswerCount(ctx context.Context) (int64, error) {
	return collectionAnswerCount.Resolve(ctx, c)
}

func (c *Collection) CommentCount(ctx context.Context) (int64, error) {
	return collectionCommentCount.Resolve(ctx, c)
}

func (c *Collection) CreatedTime(ctx context.Context) (int64, error) {
	return collectionCreatedTime.Resolve(ctx, c)
}

func (c *Collection) Creator(ctx context.Context) (*People, error) {
	return collectionCreator.Resolve(ctx, c)
}

func (c *Collection) Description(ctx context.Context) (string, error) {
	return collectionDescription.Resolve(ctx, c)
}

func (c *Collection) FollowerCount(ctx context.Context) (int64, error) {
	return collectionFollowerCount.Resolve(ctx, c)
}

func (c *Collection) IsPublic(ctx context.Context) (bool, error) {
	return collectionIsPublic.Resolve(ctx, c)
}

func (c *Collection) Title(ctx context.Context) (string, error) {
	return collectionTitle.Resolve(ctx, c)
}

func (c *Collection) UpdatedTime(ctx context.Context) (int64, error) {
	return collectionUpdatedTime.Resolve(ctx, c)
}

func (c *Collection) Answers() *Listing[*Answer] {
	return listingOf[*Answer](c, collectionAnswersPath, KindAnswer)
}

func (c *Collection) Comments() *Listing[*Comment] {
	return listingOf[*Comment](c, collectionCommentsPath, KindComment)
}

func (c *Collection) Followers() *Listing[*People] {
	return listingOf[*People](c, collectionFollowersPath, KindPeople)
}
