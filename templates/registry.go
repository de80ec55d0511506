package templates

// Registry holds the built-in templates in detection priority order.
type Registry struct {
	ordered []*Template
	byID    map[string]*Template
}

// NewRegistry builds the registry with all built-in templates.
func NewRegistry() *Registry {
	ordered := []*Template{
		wordpress(),
		hubspot(),
		webflow(),
		directory(),
		generic(), // always last: the fallback
	}
	byID := make(map[string]*Template, len(ordered))
	for _, t := range ordered {
		byID[t.ID()] = t
	}
	return &Registry{ordered: ordered, byID: byID}
}

// Detect auto-detects the template matching the page HTML. Generic is
// skipped during signal matching and returned when nothing else fits.
func (r *Registry) Detect(html string) *Template {
	for _, t := range r.ordered {
		if t.mode == detectAlways {
			continue
		}
		if t.Detect(html) {
			return t
		}
	}
	return r.byID["generic"]
}

// Get returns a template by ID.
func (r *Registry) Get(id string) (*Template, bool) {
	t, ok := r.byID[id]
	return t, ok
}

// Resolve returns the template for an explicit ID, or runs auto-detection
// against the HTML when id is "auto" or empty. Unknown IDs fall back to
// detection as well.
func (r *Registry) Resolve(id, html string) *Template {
	if id != "" && id != "auto" {
		if t, ok := r.byID[id]; ok {
			return t
		}
	}
	return r.Detect(html)
}

// List returns every template's configuration in priority order.
func (r *Registry) List() []Config {
	out := make([]Config, len(r.ordered))
	for i, t := range r.ordered {
		out[i] = t.Config()
	}
	return out
}
