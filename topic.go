package zhihu

import (
	"context"

	"github.com/jamesprial/go-zhihu-oauth/pkg/entity"
)

const (
	topicDetailPath      = "topics/{id}"
	topicActivitiesPath  = "topics/{id}/activities_new"
	topicBestAnswersPath = "topics/{id}/best_answers"
	topicChildrenPath    = "topics/{id}/children"
	topicParentsPath     = "topics/{id}/parent"
	topicFollowersPath   = "topics/{id}/followers"
)

var (
	topicAvatarURL        = entity.NewPlain[string]("avatar_url")
	topicBestAnswersCount = entity.NewPlain[int64]("best_answers_count")
	topicExcerpt          = entity.NewPlain[string]("excerpt")
	topicFatherCount      = entity.NewPlain[int64]("father_count")
	topicFollowersCount   = entity.NewPlain[int64]("followers_count")
	topicIntroduction     = entity.NewPlain[string]("introduction")
	topicName             = entity.NewPlain[string]("name")
	topicQuestionsCount   = entity.NewPlain[int64]("questions_count")
	topicUnansweredCount  = entity.NewPlain[int64]("unanswered_count")
)

func init() {
	registry.MustRegister(entity.Kind{
		Name:       KindTopic,
		DetailPath: topicDetailPath,
		NumericID:  true,
		New:        func(b *entity.Base) entity.Entity { return &Topic{Base: b} },
	},
		topicAvatarURL, topicBestAnswersCount, topicExcerpt, topicFatherCount,
		topicFollowersCount, topicIntroduction, topicName, topicQuestionsCount,
		topicUnansweredCount,
	)
}

type Topic struct {
	*entity.Base
}

func (t *Topic) ID() int64 {
	id, _ := t.EntityID().Int64()
	return id
}

func (t *Topic) AvatarURL(ctx context.Context) (string, error) {
	return topicAvatarURL.Resolve(ctx, t)
}

func (t *Topic) BestAnswersCount(ctx context.Context) (int64, error) {
	return topicBestAnswersCount.Resolve(ctx, t)
}

func (t *Topic) Excerpt(ctx context.Context) (string, error) {
	return topicExcerpt.Resolve(ctx, t)
}

// FatherCount is the number of parent topics.
func (t *Topic) FatherCount(ctx context.Context) (int64, error) {
	return topicFatherCount.Resolve(ctx, t)
}

func (t *Topic) FollowersCount(ctx context.Context) (int64, error) {
	return topicFollowersCount.Resolve(ctx, t)
}

func (t *Topic) Introduction(ctx context.Context) (string, error) {
	return topicIntroduction.Resolve(ctx, t)
}

func (t *Topic) Name(ctx context.Context) (string, error) {
	return topicName.Resolve(ctx, t)
}

func (t *Topic) QuestionsCount(ctx context.Context) (int64, error) {
	return topicQuestionsCount.Resolve(ctx, t)
}

func (t *Topic) UnansweredCount(ctx context.Context) (int64, error) {
	return topicUnansweredCount.Resolve(ctx, t)
}

// Activities lists recent feed items under the topic.
func (t *Topic) Activities() *Listing[*Activity] {
	return activities(t.Session(), entity.ExpandPath(topicActivitiesPath, t.EntityID()))
}

func (t *Topic) BestAnswers() *Listing[*Answer] {
	return listingOf[*Answer](t, topicBestAnswersPath, KindAnswer)
}

func (t *Topic) Children() *Listing[*Topic] {
	return listingOf[*Topic](t, topicChildrenPath, KindTopic)
}

func (t *Topic) Parents() *Listing[*Topic] {
	return listingOf[*Topic](t, topicParentsPath, KindTopic)
}

func (t *Topic) Followers() *Listing[*People] {
	return listingOf[*People](t, topicFollowersPath, KindPeople)
}
