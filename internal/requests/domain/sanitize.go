package requests

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// SanitizeText strips all markup from free text and collapses whitespace.
// The result is plain text: entities escaped by the policy are decoded again.
func SanitizeText(value string) string {
	if value == "" {
		return ""
	}
	cleaned := html.UnescapeString(getPolicy().Sanitize(value))
	return strings.Join(strings.Fields(cleaned), " ")
}
