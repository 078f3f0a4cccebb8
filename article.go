package zhihu

import (
	"context"

	"github.com/jamesprial/go-zhihu-oauth/pkg/entity"
	"github.com/jamesprial/go-zhihu-oauth/pkg/types"
)

const (
	articleDetailPath   = "articles/{id}"
	articleCommentsPath = "articles/{id}/comments"
	articleVotersPath   = "articles/{id}/voters"
)

var (
	articleAuthor            = entity.NewReference[*People]("author", KindPeople)
	articleCanComment        = entity.NewNested[types.Streaming]("can_comment")
	articleColumn            = entity.NewReference[*Column]("column", KindColumn)
	articleCommentCount      = entity.NewPlain[int64]("comment_count")
	articleCommentPermission = entity.NewPlain[string]("comment_permission")
	articleContent           = entity.NewPlain[string]("content")
	articleExcerpt           = entity.NewPlain[string]("excerpt")
	articleImageURL          = entity.NewPlain[string]("image_url")
	articleSuggestEdit       = entity.NewNested[types.Streaming]("suggest_edit")
	articleTitle             = entity.NewPlain[string]("title")
	articleUpdatedTime       = entity.NewPlain[int64]("updated")
	articleVoteupCount       = entity.NewPlain[int64]("voteup_count")
)

func init() {
	registry.MustRegister(entity.Kind{
		Name:       KindArticle,
		DetailPath: articleDetailPath,
		NumericID:  true,
		New:        func(b *entity.Base) entity.Entity { return &Article{Base: b} },
	},
		articleAuthor, articleCanComment, articleColumn, articleCommentCount,
		articleCommentPermission, articleContent, articleExcerpt, articleImageURL,
		articleSuggestEdit, articleTitle, articleUpdatedTime, articleVoteupCount,
	)
}

// Article is a post published in a column or on a user's profile.
type Article struct {
	*entity.Base
}

func (a *Article) ID() int64 {
	id, _ := a.EntityID().Int64()
	return id
}

func (a *Article) Author(ctx context.Context) (*People, error) {
	return articleAuthor.Resolve(ctx, a)
}

func (a *Article) CanComment(ctx context.Context) (types.Streaming, error) {
	return articleCanComment.Resolve(ctx, a)
}

// Column returns the column the article was published in. It is nil for
// articles that do not belong to a column.
func (a *Article) Column(ctx context.Context) (*Column, error) {
	return articleColumn.Resolve(ctx, a)
}

func (a *Article) CommentCount(ctx context.Context) (int64, error) {
	return articleCommentCount.Resolve(ctx, a)
}

func (a *Article) CommentPermission(ctx context.Context) (string, error) {
	return articleCommentPermission.Resolve(ctx, a)
}

func (a *Article) Content(ctx context.Context) (string, error) {
	return articleContent.Resolve(ctx, a)
}

func (a *Article) Excerpt(ctx context.Context) (string, error) {
	return articleExcerpt.Resolve(ctx, a)
}

func (a *Article) ImageURL(ctx context.Context) (string, error) {
	return articleImageURL.Resolve(ctx, a)
}

func (a *Article) SuggestEdit(ctx context.Context) (types.Streaming, error) {
	return articleSuggestEdit.Resolve(ctx, a)
}

func (a *Article) Title(ctx context.Context) (string, error) {
	return articleTitle.Resolve(ctx, a)
}

// UpdatedTime returns the last edit time in unix seconds. The API names this field "updated".
func (a *Article) UpdatedTime(ctx context.Context) (int64, error) {
	return articleUpdatedTime.Resolve(ctx, a)
}

func (a *Article) VoteupCount(ctx context.Context) (int64, error) {
	return articleVoteupCount.Resolve(ctx, a)
}

func (a *Article) Comments() *Listing[*Comment] {
	return listingOf[*Comment](a, articleCommentsPath, KindComment)
}

func (a *Article) Voters() *Listing[*People] {
	return listingOf[*People](a, articleVotersPath, KindPeople)
}
