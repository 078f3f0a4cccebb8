package zhihu

import (
	"context"

	"github.com/jamesprial/go-zhihu-oauth/pkg/entity"
	"github.com/jamesprial/go-zhihu-oauth/pkg/types"
)

const (
	answerDetailPath      = "answers/{id}"
	answerCollectionsPath = "answers/{id}/collections"
	answerCommentsPath    = "answers/{id}/comments"
	answerVotersPath      = "answers/{id}/voters"
)

var (
	answerAuthor            = entity.NewReference[*People]("author", KindPeople)
	answerCanComment        = entity.NewNested[types.Streaming]("can_comment")
	answerCommentCount      = entity.NewPlain[int64]("comment_count")
	answerCommentPermission = entity.NewPlain[string]("comment_permission")
	answerContent           = entity.NewPlain[string]("content")
	answerCreatedTime       = entity.NewPlain[int64]("created_time")
	answerExcerpt           = entity.NewPlain[string]("excerpt")
	answerRelationship      = entity.NewNested[types.Relationship]("relationship")
	answerIsCopyable        = entity.NewPlain[bool]("is_copyable")
	answerIsMine            = entity.NewPlain[bool]("is_mine")
	answerQuestion          = entity.NewImplicitReference[*Question]("question")
	answerSuggestEdit       = entity.NewNested[types.Streaming]("suggest_edit")
	answerThanksCount       = entity.NewPlain[int64]("thanks_count")
	answerUpdatedTime       = entity.NewPlain[int64]("updated_time")
	answerVoteupCount       = entity.NewPlain[int64]("voteup_count")
)

func init() {
	registry.MustRegister(entity.Kind{
		Name:       KindAnswer,
		DetailPath: answerDetailPath,
		NumericID:  true,
		New:        func(b *entity.Base) entity.Entity { return &Answer{Base: b} },
	},
		answerAuthor, answerCanComment, answerCommentCount, answerCommentPermission,
		answerContent, answerCreatedTime, answerExcerpt, answerRelationship,
		answerIsCopyable, answerIsMine, answerQuestion, answerSuggestEdit,
		answerThanksCount, answerUpdatedTime, answerVoteupCount,
	)
}

// Answer is an answer to a question.
type Answer struct {
	*entity.Base
}

// ID returns the numeric answer id.
func (a *Answer) ID() int64 {
	id, _ := a.EntityID().Int64()
	return id
}

// Author returns the answer's author. The author is not fetched until one of its fields is read.
func (a *Answer) Author(ctx context.Context) (*People, error) {
	return answerAuthor.Resolve(ctx, a)
}

func (a *Answer) CanComment(ctx context.Context) (types.Streaming, error) {
	return answerCanComment.Resolve(ctx, a)
}

func (a *Answer) CommentCount(ctx context.Context) (int64, error) {
	return answerCommentCount.Resolve(ctx, a)
}

func (a *Answer) CommentPermission(ctx context.Context) (string, error) {
	return answerCommentPermission.Resolve(ctx, a)
}

// Content returns the answer body as HTML.
func (a *Answer) Content(ctx context.Context) (string, error) {
	return answerContent.Resolve(ctx, a)
}

// CreatedTime returns the creation time in unix seconds.
func (a *Answer) CreatedTime(ctx context.Context) (int64, error) {
	return answerCreatedTime.Resolve(ctx, a)
}

func (a *Answer) Excerpt(ctx context.Context) (string, error) {
	return answerExcerpt.Resolve(ctx, a)
}

// Relationship returns the logged-in user's relationship to the answer.
func (a *Answer) Relationship(ctx context.Context) (types.Relationship, error) {
	return answerRelationship.Resolve(ctx, a)
}

func (a *Answer) IsCopyable(ctx context.Context) (bool, error) {
	return answerIsCopyable.Resolve(ctx, a)
}

func (a *Answer) IsMine(ctx context.Context) (bool, error) {
	return answerIsMine.Resolve(ctx, a)
}

// Question returns the question this answer belongs to.
func (a *Answer) Question(ctx context.Context) (*Question, error) {
	return answerQuestion.Resolve(ctx, a)
}

func (a *Answer) SuggestEdit(ctx context.Context) (types.Streaming, error) {
	return answerSuggestEdit.Resolve(ctx, a)
}

func (a *Answer) ThanksCount(ctx context.Context) (int64, error) {
	return answerThanksCount.Resolve(ctx, a)
}

// UpdatedTime returns the last edit time in unix seconds.
func (a *Answer) UpdatedTime(ctx context.Context) (int64, error) {
	return answerUpdatedTime.Resolve(ctx, a)
}

func (a *Answer) VoteupCount(ctx context.Context) (int64, error) {
	return answerVoteupCount.Resolve(ctx, a)
}

// Collections lists the public collections that include this answer.
func (a *Answer) Collections() *Listing[*Collection] {
	return listingOf[*Collection](a, answerCollectionsPath, KindCollection)
}

func (a *Answer) Comments() *Listing[*Comment] {
	return listingOf[*Comment](a, answerCommentsPath, KindComment)
}

// Voters lists the users who up-voted this answer.
func (a *Answer) Voters() *Listing[*People] {
	return listingOf[*People](a, answerVotersPath, KindPeople)
}
