package zhihu

import (
	"context"
	"errors"
	"testing"

	pkgerrs "github.com/jamesprial/go-zhihu-oauth/pkg/errors"
)

const answerDetail = `{
	"id": 94150403,
	"type": "answer",
	"author": {"id": "hash-a", "url_token": "author-a", "name": "Author A", "type": "people"},
	"question": {"id": 20000, "type": "question", "title": "Snapshot title"},
	"relationship": {"is_author": false, "is_thanked": true, "voting": 1},
	"suggest_edit": {"status": false, "reason": ""},
	"can_comment": {"status": true, "reason": ""},
	"voteup_count": 1234,
	"thanks_count": 56,
	"comment_count": 7,
	"excerpt": "short",
	"content": "<p>long</p>",
	"created_time": 1456000000,
	"updated_time": 1456000100,
	"is_copyable": true,
	"is_mine": false,
	"comment_permission": "all"
}`

func TestAnswer_FieldsFetchDetailOnce(t *testing.T) {
	client, server := newLoggedInClient(t)
	server.SetJSON("answers/94150403", answerDetail)
	ctx := context.Background()

	answer, err := client.Answer(94150403)
	if err != nil {
		t.Fatalf("Answer returned error: %v", err)
	}
	if server.TotalCalls() != 0 {
		t.Fatal("building an answer should not fetch")
	}

	votes, err := answer.VoteupCount(ctx)
	if err != nil || votes != 1234 {
		t.Fatalf("VoteupCount() = (%d, %v)", votes, err)
	}
	thanks, _ := answer.ThanksCount(ctx)
	content, _ := answer.Content(ctx)
	copyable, _ := answer.IsCopyable(ctx)
	perm, _ := answer.CommentPermission(ctx)
	if thanks != 56 || content != "<p>long</p>" || !copyable || perm != "all" {
		t.Errorf("unexpected fields: thanks=%d content=%q copyable=%t perm=%q", thanks, content, copyable, perm)
	}

	rel, err := answer.Relationship(ctx)
	if err != nil || !rel.IsThanked || rel.Voting != 1 {
		t.Errorf("Relationship() = (%+v, %v)", rel, err)
	}
	canComment, err := answer.CanComment(ctx)
	if status, _ := canComment.Bool("status"); err != nil || !status {
		t.Errorf("CanComment() = (%v, %v)", canComment, err)
	}

	if got := server.CallCount("answers/94150403"); got != 1 {
		t.Fatalf("expected a single detail fetch, got %d", got)
	}

	// A second instance has its own cache.
	other, _ := client.Answer(94150403)
	if _, err := other.Excerpt(ctx); err != nil {
		t.Fatalf("Excerpt returned error: %v", err)
	}
	if got := server.CallCount("answers/94150403"); got != 2 {
		t.Fatalf("expected the second instance to fetch, got %d", got)
	}
}

func TestAnswer_References(t *testing.T) {
	client, server := newLoggedInClient(t)
	server.SetJSON("answers/94150403", answerDetail)
	server.SetJSON("questions/20000", `{"id":20000,"title":"Detail title","answer_count":9}`)
	server.SetJSON("people/hash-a", `{"id":"hash-a","name":"Author A"}`)
	ctx := context.Background()

	answer, _ := client.Answer(94150403)

	author, err := answer.Author(ctx)
	if err != nil {
		t.Fatalf("Author returned error: %v", err)
	}
	if author.ID() != "hash-a" || author.Loaded() {
		t.Errorf("unexpected author %s (loaded=%t)", author.ID(), author.Loaded())
	}
	if server.CallCount("people/hash-a") != 0 {
		t.Fatal("resolving a reference should not fetch the referenced entity")
	}
	name, err := author.Name(ctx)
	if err != nil || name != "Author A" {
		t.Errorf("Name() = (%q, %v)", name, err)
	}
	if server.CallCount("people/hash-a") != 1 {
		t.Error("reading a field of the referenced entity should fetch it once")
	}

	q, err := answer.Question(ctx)
	if err != nil {
		t.Fatalf("Question returned error: %v", err)
	}
	if q.ID() != 20000 {
		t.Fatalf("expected question 20000, got %d", q.ID())
	}
	if server.CallCount("questions/20000") != 0 {
		t.Fatal("resolving the implicit reference should not fetch")
	}
	title, _ := q.Title(ctx)
	if title != "Detail title" {
		t.Errorf("expected the detail document's title, got %q", title)
	}
	count, err := q.AnswerCount(ctx)
	if err != nil || count != 9 {
		t.Fatalf("AnswerCount() = (%d, %v)", count, err)
	}
	if got := server.CallCount("questions/20000"); got != 1 {
		t.Fatalf("expected one question fetch, got %d", got)
	}

	// The same reference is returned from the cache.
	again, _ := answer.Question(ctx)
	if again != q {
		t.Error("reference should be cached per instance")
	}
}

func TestAnswer_Refresh(t *testing.T) {
	client, server := newLoggedInClient(t)
	server.SetJSON("answers/1", `{"id":1,"voteup_count":1}`)
	ctx := context.Background()

	answer, _ := client.Answer(1)
	if v, _ := answer.VoteupCount(ctx); v != 1 {
		t.Fatalf("expected 1 vote, got %d", v)
	}

	server.SetJSON("answers/1", `{"id":1,"voteup_count":2}`)
	if v, _ := answer.VoteupCount(ctx); v != 1 {
		t.Fatalf("cached value should not change before Refresh, got %d", v)
	}

	answer.Refresh()
	if v, _ := answer.VoteupCount(ctx); v != 2 {
		t.Fatalf("expected refreshed value 2, got %d", v)
	}
	if got := server.CallCount("answers/1"); got != 2 {
		t.Errorf("expected 2 detail fetches, got %d", got)
	}
}

func TestAnswer_Errors(t *testing.T) {
	client, server := newLoggedInClient(t)
	ctx := context.Background()

	missing, _ := client.Answer(404)
	_, err := missing.Excerpt(ctx)
	var apiErr *pkgerrs.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 404 {
		t.Fatalf("expected 404 APIError, got %v", err)
	}
	if missing.Loaded() {
		t.Error("a failed fetch should not mark the entity loaded")
	}

	server.SetJSON("answers/5", `{"id":5}`)
	a, _ := client.Answer(5)
	_, err = a.Content(ctx)
	var missingField *pkgerrs.MissingFieldError
	if !errors.As(err, &missingField) || missingField.Field != "content" || missingField.Kind != KindAnswer {
		t.Fatalf("expected MissingFieldError for content, got %v", err)
	}

	server.SetJSON("answers/6", `[]`)
	b, _ := client.Answer(6)
	_, err = b.Content(ctx)
	var malformed *pkgerrs.MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedResponseError, got %v", err)
	}
}

func TestQuestion_Fields(t *testing.T) {
	client, server := newLoggedInClient(t)
	server.SetJSON("questions/3", `{
		"id": 3, "title": "T", "detail": "<p>d</p>", "excerpt": "d",
		"answer_count": 2, "comment_count": 1, "follower_count": 10,
		"created": 1400000000, "updated_time": 1400000500,
		"status": {"is_locked": true, "is_close": false, "is_evaluate": false, "is_suggest": false},
		"redirection": {"to": {"id": 4}}
	}`)
	ctx := context.Background()

	q, _ := client.Question(3)
	created, err := q.CreatedTime(ctx)
	if err != nil || created != 1400000000 {
		t.Errorf("CreatedTime() = (%d, %v)", created, err)
	}
	status, err := q.Status(ctx)
	if err != nil || !status.IsLocked || status.IsClose {
		t.Errorf("Status() = (%+v, %v)", status, err)
	}
	redirect, err := q.Redirection(ctx)
	if err != nil || !redirect.Has("to") {
		t.Errorf("Redirection() = (%v, %v)", redirect, err)
	}
	followers, _ := q.FollowerCount(ctx)
	if followers != 10 {
		t.Errorf("FollowerCount() = %d", followers)
	}
	if got := q.Topics().Path(); got != "questions/3/topics" {
		t.Errorf("unexpected topics path %q", got)
	}
}

func TestComment_MemberWrappedAuthor(t *testing.T) {
	client, server := newLoggedInClient(t)
	server.SetJSON("answers/8/comments", `{"data":[
		{"id": 100, "type": "comment", "content": "first", "vote_count": 2, "featured": true,
		 "author": {"member": {"id": "hash-c", "name": "Commenter", "type": "people"}, "role": "normal"},
		 "reply_to_author": null},
		{"id": 101, "type": "comment", "content": "reply",
		 "author": {"id": "hash-d", "name": "Direct", "type": "people"},
		 "reply_to_author": {"member": {"id": "hash-c", "name": "Commenter"}, "role": "normal"}},
		{"id": 102, "type": "comment", "content": "legacy"}
	],"paging":{"is_end":true}}`)
	ctx := context.Background()

	answer, _ := client.Answer(8)
	comments, err := answer.Comments().Iter(ctx).Collect(0)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("expected 3 comments, got %d", len(comments))
	}

	first := comments[0]
	if first.ID() != 100 {
		t.Errorf("unexpected id %d", first.ID())
	}
	author, err := first.Author(ctx)
	if err != nil || author.ID() != "hash-c" {
		t.Fatalf("Author() = (%v, %v)", author, err)
	}
	featured, _ := first.Featured(ctx)
	if !featured {
		t.Error("expected featured comment")
	}
	replyTo, err := first.ReplyTo(ctx)
	if err != nil || replyTo != nil {
		t.Errorf("null reply_to_author should be nil, got (%v, %v)", replyTo, err)
	}

	second := comments[1]
	direct, err := second.Author(ctx)
	if err != nil || direct.ID() != "hash-d" {
		t.Errorf("unwrapped author = (%v, %v)", direct, err)
	}
	replyTo, err = second.ReplyTo(ctx)
	if err != nil || replyTo == nil || replyTo.ID() != "hash-c" {
		t.Errorf("ReplyTo() = (%v, %v)", replyTo, err)
	}

	// Comments have no detail endpoint, so absent fields are reported without fetching.
	legacy := comments[2]
	replyTo, err = legacy.ReplyTo(ctx)
	if err != nil || replyTo != nil {
		t.Errorf("absent reply_to_author should be nil, got (%v, %v)", replyTo, err)
	}
	_, err = legacy.VoteCount(ctx)
	var missing *pkgerrs.MissingFieldError
	if !errors.As(err, &missing) {
		t.Errorf("expected MissingFieldError, got %v", err)
	}
	if server.TotalCalls() != 1 {
		t.Errorf("expected only the listing fetch, got %d calls", server.TotalCalls())
	}
}

func TestPeople_Fields(t *testing.T) {
	client, server := newLoggedInClient(t)
	server.SetJSON("people/excited-vczh", `{
		"id": "hash-v", "name": "vczh", "headline": "h", "gender": 1,
		"educations": [{"school": {"name": "SCUT"}}, {"major": {"name": "SE"}}],
		"employments": [], "locations": null,
		"business": {"name": "IT"},
		"follower_count": 700000, "answer_count": 20000
	}`)
	ctx := context.Background()

	p, _ := client.People("excited-vczh")
	edus, err := p.Educations(ctx)
	if err != nil || len(edus) != 2 {
		t.Fatalf("Educations() = (%v, %v)", edus, err)
	}
	school, ok := edus[0].Object("school")
	if name, _ := school.String("name"); !ok || name != "SCUT" {
		t.Errorf("unexpected school %v", school)
	}
	locs, err := p.Locations(ctx)
	if err != nil || locs != nil {
		t.Errorf("null locations should be empty, got (%v, %v)", locs, err)
	}
	gender, _ := p.Gender(ctx)
	if gender != 1 {
		t.Errorf("Gender() = %d", gender)
	}
	business, _ := p.Business(ctx)
	if name, _ := business.String("name"); name != "IT" {
		t.Errorf("Business() = %v", business)
	}
	if got := p.Followings().Path(); got != "people/excited-vczh/followees" {
		t.Errorf("unexpected followings path %q", got)
	}
	if got := p.Columns().Path(); got != "people/excited-vczh/column-contributions" {
		t.Errorf("unexpected columns path %q", got)
	}
}

func TestArticle_ColumnReference(t *testing.T) {
	client, server := newLoggedInClient(t)
	server.SetJSON("articles/55", `{
		"id": 55, "title": "A", "updated": 1500000000,
		"column": {"id": "slug", "title": "Col", "type": "column"},
		"author": {"id": "hash-w", "type": "people"}
	}`)
	server.SetJSON("columns/slug", `{"id":"slug","title":"Col","followers":42,"articles_count":3}`)
	ctx := context.Background()

	a, _ := client.Article(55)
	updated, err := a.UpdatedTime(ctx)
	if err != nil || updated != 1500000000 {
		t.Errorf("UpdatedTime() = (%d, %v)", updated, err)
	}
	col, err := a.Column(ctx)
	if err != nil || col.ID() != "slug" {
		t.Fatalf("Column() = (%v, %v)", col, err)
	}
	followers, err := col.FollowerCount(ctx)
	if err != nil || followers != 42 {
		t.Errorf("FollowerCount() = (%d, %v)", followers, err)
	}
	if got := a.Voters().Path(); got != "articles/55/voters" {
		t.Errorf("unexpected voters path %q", got)
	}
}

func TestCollectionAndTopic(t *testing.T) {
	client, server := newLoggedInClient(t)
	server.SetJSON("collections/9", `{"id":9,"title":"C","is_public":true,"creator":{"id":"hash-x","type":"people"}}`)
	server.SetJSON("topics/19550517", `{"id":19550517,"name":"Internet","father_count":2}`)
	ctx := context.Background()

	c, _ := client.Collection(9)
	creator, err := c.Creator(ctx)
	if err != nil || creator.ID() != "hash-x" {
		t.Errorf("Creator() = (%v, %v)", creator, err)
	}
	public, _ := c.IsPublic(ctx)
	if !public {
		t.Error("expected public collection")
	}

	tp, _ := client.Topic(19550517)
	fathers, err := tp.FatherCount(ctx)
	if err != nil || fathers != 2 {
		t.Errorf("FatherCount() = (%d, %v)", fathers, err)
	}
	if got := tp.Parents().Path(); got != "topics/19550517/parent" {
		t.Errorf("unexpected parents path %q", got)
	}
	if got := tp.Activities().Path(); got != "topics/19550517/activities_new" {
		t.Errorf("unexpected activities path %q", got)
	}
}
