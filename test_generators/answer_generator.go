package test_generators

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// AnswerGenerator generates realistic answer listing items for testing.
type AnswerGenerator struct {
	rand    *rand.Rand
	authors []string
	topics  []string
	openers []string
}

// GeneratedAnswer is the part of a generated answer tests assert on.
type GeneratedAnswer struct {
	ID          int64
	AuthorID    string
	AuthorName  string
	Anonymous   bool
	VoteupCount int64
	Excerpt     string
	CreatedTime int64
}

// NewAnswerGenerator creates a new answer generator. A zero seed uses the clock.
func NewAnswerGenerator(seed int64) *AnswerGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &AnswerGenerator{
		rand: rand.New(rand.NewSource(seed)),
		authors: []string{
			"gopher", "night-owl", "data-plumber", "kernel-hacker", "tea-drinker",
			"weekend-coder", "quiet-reader", "old-timer", "first-answer", "cat-person",
		},
		topics: []string{
			"goroutines", "channels", "interfaces", "generics", "error wrapping",
			"the scheduler", "escape analysis", "context cancellation", "rate limiting",
		},
		openers: []string{
			"Short answer: %s.",
			"I have used %s in production for years.",
			"Most people get %s wrong at first.",
			"It depends on how you think about %s.",
			"Start by reading the source of %s.",
		},
	}
}

// Generate creates one answer. The id is derived from position so listings
// built from it stay ordered.
func (g *AnswerGenerator) Generate(position int) GeneratedAnswer {
	a := GeneratedAnswer{
		ID:          int64(100000 + position),
		VoteupCount: g.voteupCount(),
		Excerpt:     fmt.Sprintf(g.pick(g.openers), g.pick(g.topics)),
		CreatedTime: 1400000000 + int64(g.rand.Intn(300000000)),
	}
	// Roughly one in ten answers is anonymous.
	if g.rand.Intn(10) == 0 {
		a.Anonymous = true
		a.AuthorID = "0"
		a.AuthorName = "匿名用户"
	} else {
		a.AuthorID = g.pick(g.authors) + "-" + fmt.Sprint(g.rand.Intn(1000))
		a.AuthorName = strings.ReplaceAll(a.AuthorID, "-", " ")
	}
	return a
}

// GenerateMany creates count answers at positions 0..count-1.
func (g *AnswerGenerator) GenerateMany(count int) []GeneratedAnswer {
	answers := make([]GeneratedAnswer, count)
	for i := range answers {
		answers[i] = g.Generate(i)
	}
	return answers
}

// JSON renders the answer the way answer listings carry it.
func (a GeneratedAnswer) JSON() string {
	doc := map[string]any{
		"id":           a.ID,
		"type":         "answer",
		"voteup_count": a.VoteupCount,
		"excerpt":      a.Excerpt,
		"created_time": a.CreatedTime,
		"author": map[string]any{
			"id":   a.AuthorID,
			"name": a.AuthorName,
			"type": "people",
		},
	}
	b, _ := json.Marshal(doc)
	return string(b)
}

// Item adapts a slice of answers to the item callback of a mock listing.
func Item(answers []GeneratedAnswer) func(int) string {
	return func(i int) string { return answers[i].JSON() }
}

func (g *AnswerGenerator) voteupCount() int64 {
	// Long tail: most answers get a handful of votes, a few get thousands.
	switch r := g.rand.Float64(); {
	case r < 0.7:
		return int64(g.rand.Intn(20))
	case r < 0.95:
		return int64(20 + g.rand.Intn(500))
	default:
		return int64(500 + g.rand.Intn(50000))
	}
}

func (g *AnswerGenerator) pick(from []string) string {
	return from[g.rand.Intn(len(from))]
}
