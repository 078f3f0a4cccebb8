package test_generators

import (
	"encoding/json"
	"math/rand"
	"time"
)

// CommentGenerator generates flat comment threads for testing. Each reply
// points at an earlier commenter through reply_to_author.
type CommentGenerator struct {
	rand       *rand.Rand
	commenters []string
	phrases    []string
}

// GeneratedComment is the part of a generated comment tests assert on.
type GeneratedComment struct {
	ID        int64
	AuthorID  string
	ReplyToID string
	Content   string
	VoteCount int64
}

// NewCommentGenerator creates a new comment generator. A zero seed uses the clock.
func NewCommentGenerator(seed int64) *CommentGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &CommentGenerator{
		rand:       rand.New(rand.NewSource(seed)),
		commenters: []string{"alice", "bob", "carol", "dave", "erin", "frank"},
		phrases: []string{
			"agreed", "source?", "this saved my week", "not in my experience",
			"same here", "could you expand on the second point?",
		},
	}
}

// GenerateThread creates count comments. replyRate is the share of comments
// that reply to an earlier one.
func (g *CommentGenerator) GenerateThread(count int, replyRate float64) []GeneratedComment {
	comments := make([]GeneratedComment, count)
	for i := range comments {
		c := GeneratedComment{
			ID:        int64(5000 + i),
			AuthorID:  g.commenters[g.rand.Intn(len(g.commenters))],
			Content:   g.phrases[g.rand.Intn(len(g.phrases))],
			VoteCount: int64(g.rand.Intn(50)),
		}
		if i > 0 && g.rand.Float64() < replyRate {
			c.ReplyToID = comments[g.rand.Intn(i)].AuthorID
		}
		comments[i] = c
	}
	return comments
}

// JSON renders the comment with member-wrapped authors.
func (c GeneratedComment) JSON() string {
	doc := map[string]any{
		"id":              c.ID,
		"type":            "comment",
		"content":         c.Content,
		"vote_count":      c.VoteCount,
		"author":          member(c.AuthorID),
		"reply_to_author": nil,
	}
	if c.ReplyToID != "" {
		doc["reply_to_author"] = member(c.ReplyToID)
	}
	b, _ := json.Marshal(doc)
	return string(b)
}

// CommentItem adapts a slice of comments to the item callback of a mock listing.
func CommentItem(comments []GeneratedComment) func(int) string {
	return func(i int) string { return comments[i].JSON() }
}

func member(id string) map[string]any {
	return map[string]any{
		"member": map[string]any{"id": id, "name": id, "type": "people"},
		"role":   "normal",
	}
}
