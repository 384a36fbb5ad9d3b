// Package sanitize cleans user supplied HTML against named allow-list
// policies. It implements core.Sanitizer.
package sanitize

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// Policy names.
const (
	PolicyDescription = "description"
	PolicyStrict      = "strict"
)

// Registry holds named policies. Unknown names fall back to the strict
// policy, which removes all markup.
type Registry struct {
	mu       sync.RWMutex
	policies map[string]*bluemonday.Policy
}

// New returns a registry with the description and strict policies.
func New() *Registry {
	return &Registry{
		policies: map[string]*bluemonday.Policy{
			PolicyDescription: DescriptionPolicy(),
			PolicyStrict:      bluemonday.StrictPolicy(),
		},
	}
}

// Register adds or replaces a policy.
func (r *Registry) Register(name string, p *bluemonday.Policy) {
	r.mu.Lock()
	r.policies[name] = p
	r.mu.Unlock()
}

// Has reports whether a policy is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.policies[name]
	return ok
}

// Sanitize applies the named policy to html.
func (r *Registry) Sanitize(policy, html string) string {
	r.mu.RLock()
	p, ok := r.policies[policy]
	if !ok {
		p = r.policies[PolicyStrict]
	}
	r.mu.RUnlock()

	return p.Sanitize(html)
}

// DescriptionPolicy allows the basic formatting publishers use in book
// descriptions. Scripts, frames, styles and event handlers are removed and
// links are limited to http, https and mailto.
func DescriptionPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "br", "b", "strong", "i", "em", "u", "s", "sub", "sup",
		"ul", "ol", "li", "blockquote", "h1", "h2", "h3", "h4", "h5", "h6",
	)
	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	return p
}
