package zhihu

import (
	"context"

	"github.com/jamesprial/go-zhihu-oauth/pkg/entity"
	"github.com/jamesprial/go-zhihu-oauth/pkg/types"
)

const (
	questionDetailPath    = "questions/{id}"
	questionAnswersPath   = "questions/{id}/answers"
	questionCommentsPath  = "questions/{id}/comments"
	questionFollowersPath = "questions/{id}/followers"
	questionTopicsPath    = "questions/{id}/topics"
)

var (
	questionAnswerCount   = entity.NewPlain[int64]("answer_count")
	questionCommentCount  = entity.NewPlain[int64]("comment_count")
	questionCreatedTime   = entity.NewPlain[int64]("created")
	questionDetail        = entity.NewPlain[string]("detail")
	questionExcerpt       = entity.NewPlain[string]("excerpt")
	questionFollowerCount = entity.NewPlain[int64]("follower_count")
	questionRedirection   = entity.NewNested[types.Streaming]("redirection")
	questionStatus        = entity.NewNested[types.QuestionStatus]("status")
	questionSuggestEdit   = entity.NewNested[types.Streaming]("suggest_edit")
	questionTitle         = entity.NewPlain[string]("title")
	questionUpdatedTime   = entity.NewPlain[int64]("updated_time")
)

func init() {
	registry.MustRegister(entity.Kind{
		Name:       KindQuestion,
		DetailPath: questionDetailPath,
		NumericID:  true,
		New:        func(b *entity.Base) entity.Entity { return &Question{Base: b} },
	},
		questionAnswerCount, questionCommentCount, questionCreatedTime, questionDetail,
		questionExcerpt, questionFollowerCount, questionRedirection, questionStatus,
		questionSuggestEdit, questionTitle, questionUpdatedTime,
	)
}

// Question is a question and the root of its answers.
type Question struct {
	*entity.Base
}

func (q *Question) ID() int64 {
	id, _ := q.EntityID().Int64()
	return id
}

func (q *Question) AnswerCount(ctx context.Context) (int64, error) {
	return questionAnswerCount.Resolve(ctx, q)
}

func (q *Question) CommentCount(ctx context.Context) (int64, error) {
	return questionCommentCount.Resolve(ctx, q)
}

// CreatedTime returns the creation time in unix seconds. The API names this field "created".
func (q *Question) CreatedTime(ctx context.Context) (int64, error) {
	return questionCreatedTime.Resolve(ctx, q)
}

// Detail returns the question description as HTML.
func (q *Question) Detail(ctx context.Context) (string, error) {
	return questionDetail.Resolve(ctx, q)
}

func (q *Question) Excerpt(ctx context.Context) (string, error) {
	return questionExcerpt.Resolve(ctx, q)
}

func (q *Question) FollowerCount(ctx context.Context) (int64, error) {
	return questionFollowerCount.Resolve(ctx, q)
}

// Redirection describes where a merged question now points.
func (q *Question) Redirection(ctx context.Context) (types.Streaming, error) {
	return questionRedirection.Resolve(ctx, q)
}

func (q *Question) Status(ctx context.Context) (types.QuestionStatus, error) {
	return questionStatus.Resolve(ctx, q)
}

func (q *Question) SuggestEdit(ctx context.Context) (types.Streaming, error) {
	return questionSuggestEdit.Resolve(ctx, q)
}

func (q *Question) Title(ctx context.Context) (string, error) {
	return questionTitle.Resolve(ctx, q)
}

func (q *Question) UpdatedTime(ctx context.Context) (int64, error) {
	return questionUpdatedTime.Resolve(ctx, q)
}

func (q *Question) Answers() *Listing[*Answer] {
	return listingOf[*Answer](q, questionAnswersPath, KindAnswer)
}

func (q *Question) Comments() *Listing[*Comment] {
	return listingOf[*Comment](q, questionCommentsPath, KindComment)
}

func (q *Question) Followers() *Listing[*People] {
	return listingOf[*People](q, questionFollowersPath, KindPeople)
}

func (q *Question) Topics() *Listing[*Topic] {
	return listingOf[*Topic](q, questionTopicsPath, KindTopic)
}
