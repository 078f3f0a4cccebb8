package zhihu

import (
	"context"

	"github.com/jamesprial/go-zhihu-oauth/pkg/entity"
	"github.com/jamesprial/go-zhihu-oauth/pkg/types"
)

const (
	peopleDetailPath             = "people/{id}"
	meDetailPath                 = "people/self"
	peopleActivitiesPath         = "people/{id}/activities"
	peopleAnswersPath            = "people/{id}/answers"
	peopleArticlesPath           = "people/{id}/articles"
	peopleCollectionsPath        = "people/{id}/collections"
	peopleColumnsPath            = "people/{id}/column-contributions"
	peopleFollowersPath          = "people/{id}/followers"
	peopleFollowingsPath         = "people/{id}/followees"
	peopleFollowingColumnsPath   = "people/{id}/following-columns"
	peopleFollowingQuestionsPath = "people/{id}/following-questions"
	peopleFollowingTopicsPath    = "people/{id}/following-topics"
	peopleQuestionsPath          = "people/{id}/questions"
	meFollowingCollectionsPath   = "people/{id}/following-collections"
)

var (
	peopleAnswerCount            = entity.NewPlain[int64]("answer_count")
	peopleArticlesCount          = entity.NewPlain[int64]("articles_count")
	peopleAvatarURL              = entity.NewPlain[string]("avatar_url")
	peopleBusiness               = entity.NewNested[types.Streaming]("business")
	peopleColumnsCount           = entity.NewPlain[int64]("columns_count")
	peopleDescription            = entity.NewPlain[string]("description")
	peopleEducations             = entity.NewPlain[[]types.Streaming]("educations")
	peopleEmployments            = entity.NewPlain[[]types.Streaming]("employments")
	peopleFavoriteCount          = entity.NewPlain[int64]("favorite_count")
	peopleFavoritedCount         = entity.NewPlain[int64]("favorited_count")
	peopleFollowerCount          = entity.NewPlain[int64]("follower_count")
	peopleFollowingCount         = entity.NewPlain[int64]("following_count")
	peopleFollowingColumnsCount  = entity.NewPlain[int64]("following_columns_count")
	peopleFollowingQuestionCount = entity.NewPlain[int64]("following_question_count")
	peopleFollowingTopicCount    = entity.NewPlain[int64]("following_topic_count")
	peopleGender                 = entity.NewPlain[int]("gender")
	peopleHeadline               = entity.NewPlain[string]("headline")
	peopleLocations              = entity.NewPlain[[]types.Streaming]("locations")
	peopleName                   = entity.NewPlain[string]("name")
	peopleQuestionCount          = entity.NewPlain[int64]("question_count")
	peopleThankedCount           = entity.NewPlain[int64]("thanked_count")
	peopleVoteupCount            = entity.NewPlain[int64]("voteup_count")
	peopleFollowingFavlistsCount = entity.NewPlain[int64]("following_favlists_count")
)

func peopleFields() []entity.Descriptor {
	return []entity.Descriptor{
		peopleAnswerCount, peopleArticlesCount, peopleAvatarURL, peopleBusiness,
		peopleColumnsCount, peopleDescription, peopleEducations, peopleEmployments,
		peopleFavoriteCount, peopleFavoritedCount, peopleFollowerCount, peopleFollowingCount,
		peopleFollowingColumnsCount, peopleFollowingQuestionCount, peopleFollowingTopicCount,
		peopleGender, peopleHeadline, peopleLocations, peopleName, peopleQuestionCount,
		peopleThankedCount, peopleVoteupCount,
	}
}

func init() {
	registry.MustRegister(entity.Kind{
		Name:       KindPeople,
		DetailPath: peopleDetailPath,
		New:        func(b *entity.Base) entity.Entity { return &People{Base: b} },
	}, peopleFields()...)

	registry.MustRegister(entity.Kind{
		Name:       KindMe,
		DetailPath: meDetailPath,
		New:        func(b *entity.Base) entity.Entity { return &Me{People: &People{Base: b}} },
	}, append(peopleFields(), peopleFollowingFavlistsCount)...)
}

// People is a Zhihu user, identified by url token or hash id.
type People struct {
	*entity.Base
}

// ID returns the url token or hash id the user was built from.
func (p *People) ID() string {
	return string(p.EntityID())
}

func (p *People) AnswerCount(ctx context.Context) (int64, error) {
	return peopleAnswerCount.Resolve(ctx, p)
}

func (p *People) ArticlesCount(ctx context.Context) (int64, error) {
	return peopleArticlesCount.Resolve(ctx, p)
}

func (p *People) AvatarURL(ctx context.Context) (string, error) {
	return peopleAvatarURL.Resolve(ctx, p)
}

func (p *People) Business(ctx context.Context) (types.Streaming, error) {
	return peopleBusiness.Resolve(ctx, p)
}

func (p *People) ColumnsCount(ctx context.Context) (int64, error) {
	return peopleColumnsCount.Resolve(ctx, p)
}

func (p *People) Description(ctx context.Context) (string, error) {
	return peopleDescription.Resolve(ctx, p)
}

func (p *People) Educations(ctx context.Context) ([]types.Streaming, error) {
	return peopleEducations.Resolve(ctx, p)
}

func (p *People) Employments(ctx context.Context) ([]types.Streaming, error) {
	return peopleEmployments.Resolve(ctx, p)
}

func (p *People) FavoriteCount(ctx context.Context) (int64, error) {
	return peopleFavoriteCount.Resolve(ctx, p)
}

func (p *People) FavoritedCount(ctx context.Context) (int64, error) {
	return peopleFavoritedCount.Resolve(ctx, p)
}

func (p *People) FollowerCount(ctx context.Context) (int64, error) {
	return peopleFollowerCount.Resolve(ctx, p)
}

func (p *People) FollowingCount(ctx context.Context) (int64, error) {
	return peopleFollowingCount.Resolve(ctx, p)
}

func (p *People) FollowingColumnsCount(ctx context.Context) (int64, error) {
	return peopleFollowingColumnsCount.Resolve(ctx, p)
}

func (p *People) FollowingQuestionCount(ctx context.Context) (int64, error) {
	return peopleFollowingQuestionCount.Resolve(ctx, p)
}

func (p *People) FollowingTopicCount(ctx context.Context) (int64, error) {
	return peopleFollowingTopicCount.Resolve(ctx, p)
}

// Gender is 1 for male, 0 for female and -1 when unknown.
func (p *People) Gender(ctx context.Context) (int, error) {
	return peopleGender.Resolve(ctx, p)
}

func (p *People) Headline(ctx context.Context) (string, error) {
	return peopleHeadline.Resolve(ctx, p)
}

func (p *People) Locations(ctx context.Context) ([]types.Streaming, error) {
	return peopleLocations.Resolve(ctx, p)
}

func (p *People) Name(ctx context.Context) (string, error) {
	return peopleName.Resolve(ctx, p)
}

func (p *People) QuestionCount(ctx context.Context) (int64, error) {
	return peopleQuestionCount.Resolve(ctx, p)
}

func (p *People) ThankedCount(ctx context.Context) (int64, error) {
	return peopleThankedCount.Resolve(ctx, p)
}

func (p *People) VoteupCount(ctx context.Context) (int64, error) {
	return peopleVoteupCount.Resolve(ctx, p)
}

// Activities lists the user's feed. Targets are built from each item's "type".
func (p *People) Activities() *Listing[*Activity] {
	return activities(p.Session(), entity.ExpandPath(peopleActivitiesPath, p.EntityID()))
}

func (p *People) Answers() *Listing[*Answer] {
	return listingOf[*Answer](p, peopleAnswersPath, KindAnswer)
}

func (p *People) Articles() *Listing[*Article] {
	return listingOf[*Article](p, peopleArticlesPath, KindArticle)
}

func (p *People) Collections() *Listing[*Collection] {
	return listingOf[*Collection](p, peopleCollectionsPath, KindCollection)
}

// Columns lists the columns the user contributes to.
func (p *People) Columns() *Listing[*Column] {
	return listingOf[*Column](p, peopleColumnsPath, KindColumn)
}

func (p *People) Followers() *Listing[*People] {
	return listingOf[*People](p, peopleFollowersPath, KindPeople)
}

// Followings lists the users this user follows.
func (p *People) Followings() *Listing[*People] {
	return listingOf[*People](p, peopleFollowingsPath, KindPeople)
}

func (p *People) FollowingColumns() *Listing[*Column] {
	return listingOf[*Column](p, peopleFollowingColumnsPath, KindColumn)
}

func (p *People) FollowingQuestions() *Listing[*Question] {
	return listingOf[*Question](p, peopleFollowingQuestionsPath, KindQuestion)
}

func (p *People) FollowingTopics() *Listing[*Topic] {
	return listingOf[*Topic](p, peopleFollowingTopicsPath, KindTopic)
}

func (p *People) Questions() *Listing[*Question] {
	return listingOf[*Question](p, peopleQuestionsPath, KindQuestion)
}

// Me is the logged-in user. Its detail document comes from people/self and
// carries a few private counters in addition to the public profile.
type Me struct {
	*People
}

func (m *Me) FollowingFavlistsCount(ctx context.Context) (int64, error) {
	return peopleFollowingFavlistsCount.Resolve(ctx, m)
}

// FollowingCollections lists the collections the logged-in user follows.
func (m *Me) FollowingCollections() *Listing[*Collection] {
	return listingOf[*Collection](m, meFollowingCollectionsPath, KindCollection)
}
