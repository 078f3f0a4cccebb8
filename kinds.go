package zhihu

import (
	"github.com/jamesprial/go-zhihu-oauth/pkg/entity"
)

// Kind tags, as used by the API's "type" discriminator.
const (
	KindAnswer     = "answer"
	KindArticle    = "article"
	KindQuestion   = "question"
	KindPeople     = "people"
	KindMe         = "me"
	KindTopic      = "topic"
	KindColumn     = "column"
	KindCollection = "collection"
	KindComment    = "comment"
)

// registry holds every entity kind this package knows. Kinds register
// themselves from init in the file that defines them.
var registry = entity.NewRegistry()

// Registry returns the kind registry shared by all clients. It is read-only
// after package initialisation.
func Registry() *entity.Registry {
	return registry
}
