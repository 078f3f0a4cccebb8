package zhihu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/jamesprial/go-zhihu-oauth/pkg/entity"
	pkgerrs "github.com/jamesprial/go-zhihu-oauth/pkg/errors"
	"github.com/jamesprial/go-zhihu-oauth/pkg/types"
)

// Comment authors are wrapped as {"member": {...}, "role": "..."}.
func memberID(raw json.RawMessage) (string, types.ID, error) {
	var wrapped struct {
		Member json.RawMessage `json:"member"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && !bytes.Equal(bytes.TrimSpace(wrapped.Member), []byte("null")) && len(wrapped.Member) > 0 {
		return entity.ObjectID(wrapped.Member)
	}
	return entity.ObjectID(raw)
}

var (
	commentAuthor      = entity.NewReference[*People]("author", KindPeople).WithExtractor(memberID)
	commentContent     = entity.NewPlain[string]("content")
	commentCreatedTime = entity.NewPlain[int64]("created_time")
	commentFeatured    = entity.NewPlain[bool]("featured")
	commentReplyTo     = entity.NewReference[*People]("reply_to_author", KindPeople).WithExtractor(memberID)
	commentVoteCount   = entity.NewPlain[int64]("vote_count")
)

func init() {
	// Comments are only ever built from listing items; there is no detail endpoint.
	registry.MustRegister(entity.Kind{
		Name:      KindComment,
		NumericID: true,
		New:       func(b *entity.Base) entity.Entity { return &Comment{Base: b} },
	},
		commentAuthor, commentContent, commentCreatedTime, commentFeatured,
		commentReplyTo, commentVoteCount,
	)
}

// Comment is a comment on an answer, article, question or collection.
type Comment struct {
	*entity.Base
}

func (c *Comment) ID() int64 {
	id, _ := c.EntityID().Int64()
	return id
}

func (c *Comment) Author(ctx context.Context) (*People, error) {
	return commentAuthor.Resolve(ctx, c)
}

func (c *Comment) Content(ctx context.Context) (string, error) {
	return commentContent.Resolve(ctx, c)
}

func (c *Comment) CreatedTime(ctx context.Context) (int64, error) {
	return commentCreatedTime.Resolve(ctx, c)
}

func (c *Comment) Featured(ctx context.Context) (bool, error) {
	return commentFeatured.Resolve(ctx, c)
}

// ReplyTo returns the author this comment replies to, or nil for a top-level comment.
func (c *Comment) ReplyTo(ctx context.Context) (*People, error) {
	people, err := commentReplyTo.Resolve(ctx, c)
	var missing *pkgerrs.MissingFieldError
	if errors.As(err, &missing) {
		return nil, nil
	}
	return people, err
}

func (c *Comment) VoteCount(ctx context.Context) (int64, error) {
	return commentVoteCount.Resolve(ctx, c)
}
