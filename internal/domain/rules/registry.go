package rules

import (
	"fmt"
	"slices"
)

// Registry maps ordinance versions to rulesets so applications from several
// admission cycles can be scored side by side. It is populated by NewRegistry
// and read-only afterwards.
type Registry struct {
	sets           map[string]*Ruleset
	replaceable    map[string]bool
	defaultVersion string
}

// Option applies a configuration option to the Registry.
type Option func(*Registry) error

// WithRulesets registers additional rulesets.
func WithRulesets(sets ...*Ruleset) Option {
	return func(r *Registry) error {
		for _, rs := range sets {
			if err := r.register(rs); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithDir registers every ordinance file found in dir. An empty dir is ignored.
func WithDir(dir string) Option {
	return func(r *Registry) error {
		if dir == "" {
			return nil
		}
		sets, err := LoadDir(dir)
		if err != nil {
			return err
		}
		return WithRulesets(sets...)(r)
	}
}

// WithDefaultVersion selects the version used when a request names none.
// An empty version keeps the built-in default.
func WithDefaultVersion(version string) Option {
	return func(r *Registry) error {
		if version == "" {
			return nil
		}
		if _, ok := r.sets[version]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownRuleset, version)
		}
		r.defaultVersion = version
		return nil
	}
}

// NewRegistry builds a registry holding the built-in ordinance plus whatever
// the options add. Options run in order, so WithDefaultVersion must follow
// the option that registers that version.
func NewRegistry(opts ...Option) (*Registry, error) {
	r := &Registry{
		sets:           map[string]*Ruleset{DefaultVersion: Default()},
		replaceable:    map[string]bool{DefaultVersion: true},
		defaultVersion: DefaultVersion,
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// register stores a private copy of rs. A file may replace the built-in
// version; any other repeated version is an error.
func (r *Registry) register(rs *Ruleset) error {
	if rs == nil {
		return fmt.Errorf("%w: nil ruleset", ErrInvalidRuleset)
	}
	if err := rs.Validate(); err != nil {
		return err
	}
	if _, ok := r.sets[rs.Version]; ok && !r.replaceable[rs.Version] {
		return fmt.Errorf("%w: %q", ErrDuplicate, rs.Version)
	}
	delete(r.replaceable, rs.Version)
	r.sets[rs.Version] = rs.Clone()
	return nil
}

// Get returns the ruleset for version, or the default when version is empty.
func (r *Registry) Get(version string) (*Ruleset, error) {
	if version == "" {
		version = r.defaultVersion
	}
	rs, ok := r.sets[version]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRuleset, version)
	}
	return rs, nil
}

// Default returns the default version.
func (r *Registry) Default() string {
	return r.defaultVersion
}

// Versions lists registered versions in ascending order.
func (r *Registry) Versions() []string {
	out := make([]string, 0, len(r.sets))
	for v := range r.sets {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
