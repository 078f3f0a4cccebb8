package zhihu

import (
	"context"

	"github.com/jamesprial/go-zhihu-oauth/pkg/entity"
)

const (
	columnDetailPath    = "columns/{id}"
	columnArticlesPath  = "columns/{id}/articles"
	columnFollowersPath = "columns/{id}/followers"
)

var (
	columnArticlesCount     = entity.NewPlain[int64]("articles_count")
	columnAuthor            = entity.NewReference[*People]("author", KindPeople)
	columnCommentPermission = entity.NewPlain[string]("comment_permission")
	columnDescription       = entity.NewPlain[string]("description")
	columnFollowerCount     = entity.NewPlain[int64]("followers")
	columnImageURL          = entity.NewPlain[string]("image_url")
	columnTitle             = entity.NewPlain[string]("title")
	columnUpdatedTime       = entity.NewPlain[int64]("updated")
)

func init() {
	registry.MustRegister(entity.Kind{
		Name:       KindColumn,
		DetailPath: columnDetailPath,
		New:        func(b *entity.Base) entity.Entity { return &Column{Base: b} },
	},
		columnArticlesCount, columnAuthor, columnCommentPermission, columnDescription,
		columnFollowerCount, columnImageURL, columnTitle, columnUpdatedTime,
	)
}

// Column is a named series of articles, identified by its slug.
type Column struct {
	*entity.Base
}

func (c *Column) ID() string {
	return string(c.EntityID())
}

func (c *Column) ArticlesCount(ctx context.Context) (int64, error) {
	return columnArticlesCount.Resolve(ctx, c)
}

func (c *Column) Author(ctx context.Context) (*People, error) {
	return columnAuthor.Resolve(ctx, c)
}

func (c *Column) CommentPermission(ctx context.Context) (string, error) {
	return columnCommentPermission.Resolve(ctx, c)
}

func (c *Column) Description(ctx context.Context) (string, error) {
	return columnDescription.Resolve(ctx, c)
}

// FollowerCount reads the API's "followers" counter.
func (c *Column) FollowerCount(ctx context.Context) (int64, error) {
	return columnFollowerCount.Resolve(ctx, c)
}

func (c *Column) ImageURL(ctx context.Context) (string, error) {
	return columnImageURL.Resolve(ctx, c)
}

func (c *Column) Title(ctx context.Context) (string, error) {
	return columnTitle.Resolve(ctx, c)
}

func (c *Column) UpdatedTime(ctx context.Context) (int64, error) {
	return columnUpdatedTime.Resolve(ctx, c)
}

func (c *Column) Articles() *Listing[*Article] {
	return listingOf[*Article](c, columnArticlesPath, KindArticle)
}

func (c *Column) Followers() *Listing[*People] {
	return listingOf[*People](c, columnFollowersPath, KindPeople)
}
