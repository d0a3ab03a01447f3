package tiffcomposite

import "strings"

// TagCreator builds the terminal Component a path should end in, given
// the tag/group the caller is about to add. It is the external
// collaborator a tree builder consults before calling Directory.AddPath,
// playing the role the original's TiffCreator registry (keyed by
// extended tag) plays: deciding whether a given tag is an ordinary
// Entry, a DataEntry/ImageEntry pair, a SubIfdEntry, or the MakerNote tag.
type TagCreator interface {
	Create(tag Tag, group Group) (Component, bool)
}

// TagCreatorFunc adapts a plain function to TagCreator.
type TagCreatorFunc func(tag Tag, group Group) (Component, bool)

func (f TagCreatorFunc) Create(tag Tag, group Group) (Component, bool) { return f(tag, group) }

// Registry is a minimal map-based TagCreator: callers register one
// factory per (tag, group) pair they expect to encounter. It is the
// built-in, dependency-free implementation a caller can use directly or
// wrap; nothing else in this package requires it specifically.
type Registry struct {
	entries map[registryKey]func() Component
}

type registryKey struct {
	tag   Tag
	group Group
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[registryKey]func() Component)}
}

// Register associates (tag, group) with a factory invoked each time that
// pair is encountered while building a path.
func (r *Registry) Register(tag Tag, group Group, factory func() Component) {
	r.entries[registryKey{tag, group}] = factory
}

// Create implements TagCreator.
func (r *Registry) Create(tag Tag, group Group) (Component, bool) {
	factory, ok := r.entries[registryKey{tag, group}]
	if !ok {
		return nil, false
	}
	return factory(), true
}

// MakernoteRegistry is the built-in MakernoteCreator: a list of
// prefix-matched rules tried in registration order, the same
// first-match-wins approach Exiv2 uses to pick a maker-note parser from
// the Make/Model strings (tiffcomposite_int.cpp's TiffMnCreator table).
type MakernoteRegistry struct {
	rules []makernoteRule
}

type makernoteRule struct {
	makePrefix string
	factory    func(model string, group Group) *IfdMakernote
}

// NewMakernoteRegistry constructs an empty registry.
func NewMakernoteRegistry() *MakernoteRegistry {
	return &MakernoteRegistry{}
}

// Register adds a rule: any Make string starting with makePrefix
// (case-insensitive) is handed to factory to build the maker-specific
// IfdMakernote envelope.
func (r *MakernoteRegistry) Register(makePrefix string, factory func(model string, group Group) *IfdMakernote) {
	r.rules = append(r.rules, makernoteRule{makePrefix: makePrefix, factory: factory})
}

// Create implements MakernoteCreator.
func (r *MakernoteRegistry) Create(make, model string, group Group) (*IfdMakernote, bool) {
	for _, rule := range r.rules {
		if strings.HasPrefix(strings.ToLower(make), strings.ToLower(rule.makePrefix)) {
			return rule.factory(model, group), true
		}
	}
	return nil, false
}
