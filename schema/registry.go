package schema

import (
	"slices"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	fhirview "github.com/reoring/fhirview"
	"github.com/reoring/fhirview/i18n"
)

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for registration and resolution events.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// Registry holds the type table. Lookups are safe for concurrent use; types
// are registered and resolved once at start-up.
type Registry struct {
	mu       sync.RWMutex
	types    map[string]*Type
	order    []string
	resolved bool
	log      zerolog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{types: map[string]*Type{}, log: zerolog.Nop()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Register adds types. Names must be unique; duplicates are reported and the
// first definition kept. Registering invalidates a previous Resolve.
func (r *Registry) Register(types ...*Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var iss fhirview.Issues
	for _, t := range types {
		if t == nil {
			continue
		}
		if _, dup := r.types[t.Name]; dup {
			iss = fhirview.AppendIssues(iss, schemaIssue("/"+t.Name, "type "+t.Name+" registered twice"))
			continue
		}
		r.types[t.Name] = t
		r.order = append(r.order, t.Name)
		r.resolved = false
		r.log.Debug().Str("type", t.Name).Str("kind", t.Kind.String()).Int("fields", len(t.Fields)).Msg("schema type registered")
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}

// Lookup returns the type registered under name.
func (r *Registry) Lookup(name string) (*Type, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	t, ok := r.types[name]
	r.mu.RUnlock()
	return t, ok
}

// MustLookup is like Lookup but panics when the type is missing.
func (r *Registry) MustLookup(name string) *Type {
	t, ok := r.Lookup(name)
	if !ok {
		panic("schema: unknown type " + name)
	}
	return t
}

// Names lists the registered type names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	out := slices.Clone(r.order)
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Resources lists the registered resource type names, sorted.
func (r *Registry) Resources() []string {
	var out []string
	for _, n := range r.Names() {
		if t, _ := r.Lookup(n); t.IsResource() {
			out = append(out, n)
		}
	}
	return out
}

// Resolve flattens inheritance (base fields come first, in base order) and
// checks that every referenced type exists. All problems are collected.
func (r *Registry) Resolve() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resolved {
		return nil
	}
	var iss fhirview.Issues
	done := map[string]*Type{}
	visiting := map[string]bool{}

	var flatten func(name string) *Type
	flatten = func(name string) *Type {
		if t, ok := done[name]; ok {
			return t
		}
		t := r.types[name]
		if t.Base == "" {
			done[name] = t
			return t
		}
		if visiting[name] {
			iss = fhirview.AppendIssues(iss, schemaIssue("/"+name, "inheritance cycle through "+name))
			return t
		}
		if _, ok := r.types[t.Base]; !ok {
			iss = fhirview.AppendIssues(iss, schemaIssue("/"+name, "unknown base type "+t.Base))
			done[name] = t
			return t
		}
		visiting[name] = true
		base := flatten(t.Base)
		visiting[name] = false

		fields := make([]Field, 0, len(base.Fields)+len(t.Fields))
		for _, f := range base.Fields {
			if _, own := t.Field(f.Name); !own {
				fields = append(fields, f)
			}
		}
		fields = append(fields, t.Fields...)
		flat := newType(t.Name, t.Kind, t.Base, t.Short, fields)
		done[name] = flat
		return flat
	}

	for _, name := range r.order {
		flatten(name)
	}
	for _, name := range r.order {
		t := done[name]
		for _, f := range t.Fields {
			if f.IsPrimitive() {
				continue
			}
			if _, ok := r.types[f.TypeName]; !ok {
				iss = fhirview.AppendIssues(iss, schemaIssue("/"+name+"/"+f.Name, "unknown type "+f.TypeName))
			}
		}
	}
	if len(iss) > 0 {
		r.log.Error().Int("issues", len(iss)).Err(iss).Msg("schema resolution failed")
		return iss
	}
	r.types = done
	r.resolved = true
	r.log.Debug().Int("types", len(done)).Msg("schema resolved")
	return nil
}

func schemaIssue(path, hint string) fhirview.Issue {
	return fhirview.Issue{Path: path, Code: fhirview.CodeParseError, Message: i18n.T(fhirview.CodeParseError, nil), Hint: hint}
}
