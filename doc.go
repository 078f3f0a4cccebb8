// Package zhihu is a client for the Zhihu OAuth API.
//
// # Overview
//
// The client signs in with the mobile application's password grant, then
// hands out typed entities (answers, articles, questions, people, topics,
// columns, collections). Entities are lazy: building one performs no I/O,
// and the first field read fetches the entity's whole detail document once.
// Every later read on the same instance is served from that document and
// from a per-instance cache of decoded values.
//
// # Features
//
//   - Signed password-grant login with captcha support
//   - Token persistence to a JSON file
//   - Lazily resolved, cached entity fields
//   - References between entities that are built without fetching
//   - Generic paginated listings with range-over-func support
//   - Built-in rate limiting and Retry-After handling
//   - Structured logging via log/slog and OpenTelemetry spans
//
// # Quick Start
//
//	config := &zhihu.Config{
//		ClientID:     "your-client-id",
//		ClientSecret: "your-client-secret",
//	}
//
//	client, err := zhihu.NewClient(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Authentication
//
// Login needs a captcha whenever the service asks for one:
//
//	err := client.Login(ctx, email, password, "")
//	var needCaptcha *errors.NeedCaptchaError
//	if stderrors.As(err, &needCaptcha) {
//		img, _ := client.Captcha(ctx)
//		// show img, read the solved text
//		err = client.Login(ctx, email, password, solved)
//	}
//
// Save the token afterwards and load it on the next run instead of logging in again:
//
//	if err := client.SaveToken("token.json"); err != nil {
//		log.Fatal(err)
//	}
//	...
//	if err := client.LoadToken("token.json"); err != nil {
//		log.Fatal(err)
//	}
//
// # Entities
//
//	answer, err := client.Answer(94150403)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// One request: GET answers/94150403
//	votes, err := answer.VoteupCount(ctx)
//	// No request: served from the same detail document
//	excerpt, err := answer.Excerpt(ctx)
//
//	// No request: builds the author from the embedded id
//	author, err := answer.Author(ctx)
//	// One request: GET people/<id>
//	name, err := author.Name(ctx)
//
// Two entities built for the same id do not share anything. Call Refresh to
// drop a single entity's detail document and cached values.
//
// # Listings
//
// One-to-many relations return a Listing. Each call to Iter starts from the
// first page; pages are requested only as items are consumed.
//
//	it := answer.Voters().Iter(ctx)
//	for it.HasNext() {
//		voter, err := it.Next()
//		if errors.Is(err, errors.ErrNoMoreItems) {
//			break
//		}
//		if err != nil {
//			log.Fatal(err)
//		}
//		...
//	}
//
// Or with range-over-func:
//
//	for voter, err := range answer.Voters().Iter(ctx).All() {
//		...
//	}
//
// # Error Handling
//
// Errors are typed values from the pkg/errors package:
//
//   - TransportError: the request failed or the API answered with a non-2xx status
//   - APIError: the API's own error document, wrapped by TransportError
//   - MalformedResponseError: a response was not the expected JSON shape
//   - MissingFieldError: a detail document lacks a requested field
//   - InvalidReferenceError: a reference names an unknown kind or carries no id
//   - AuthError, NeedCaptchaError: login failures
//   - StateError: the operation needs login, or an iterator is exhausted
//   - ConfigError: invalid configuration or arguments
//
// A failed field read leaves nothing cached, so calling the accessor again retries.
//
// # Thread Safety
//
// The Client is safe for concurrent use. Entities and iterators are not: each
// owns its documents and cache without locking and is meant to be used from
// one goroutine.
package zhihu
