package conversation

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// strict strips every HTML element. Message content is untrusted and
// never executable; markup is removed before it reaches the network.
var strict = bluemonday.StrictPolicy()

// Sanitize strips markup from message text and decodes the entities the
// sanitizer escapes, returning plain text.
func Sanitize(text string) string {
	return html.UnescapeString(strict.Sanitize(text))
}
