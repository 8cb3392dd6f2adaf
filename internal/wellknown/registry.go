package wellknown

import (
	"fmt"
	"strings"
	"sync"
)

// Registry is the read-only view of the member and attribute tables that a
// compilation is built against. It is safe for concurrent use.
type Registry struct {
	members     []MemberDescriptor
	byDeclaring map[SpecialType][]SpecialMember
	attrs       []AttributeDescription
	attrsByName map[string][]AttributeID // lower-cased full name
}

// NewRegistry builds a registry over the built-in tables.
func NewRegistry() *Registry {
	return newRegistry(memberTable[:])
}

// NewRegistryFromBlob builds a registry from an encoded descriptor blob.
// Names are taken from the built-in table.
func NewRegistryFromBlob(blob []byte) (*Registry, error) {
	descs, err := DecodeMemberBlob(blob, MemberNames())
	if err != nil {
		return nil, fmt.Errorf("decode member blob: %w", err)
	}
	return newRegistry(descs), nil
}

// newRegistry copies descs and the attribute table; nothing the registry
// hands out aliases the package tables.
func newRegistry(descs []MemberDescriptor) *Registry {
	r := &Registry{
		members:     make([]MemberDescriptor, len(descs)),
		byDeclaring: make(map[SpecialType][]SpecialMember),
		attrs:       make([]AttributeDescription, AttributeCount),
		attrsByName: make(map[string][]AttributeID, AttributeCount),
	}
	for i := range descs {
		r.members[i] = descs[i].Clone()
		d := &r.members[i]
		r.byDeclaring[d.DeclaringType] = append(r.byDeclaring[d.DeclaringType], d.ID)
	}
	for id := AttrAttributeUsage; id < AttributeCount; id++ {
		r.attrs[id] = attributeTable[id].clone()
		key := strings.ToLower(r.attrs[id].FullName())
		r.attrsByName[key] = append(r.attrsByName[key], id)
	}
	return r
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns a process-wide registry over the built-in tables.
func Default() *Registry {
	defaultOnce.Do(func() { defaultRegistry = NewRegistry() })
	return defaultRegistry
}

// Descriptor returns a copy of the descriptor of m; ok is false when m is
// out of range.
func (r *Registry) Descriptor(m SpecialMember) (d MemberDescriptor, ok bool) {
	if int(m) >= len(r.members) {
		return MemberDescriptor{}, false
	}
	return r.members[m].Clone(), true
}

// MembersOf lists the special members declared on t in id order.
func (r *Registry) MembersOf(t SpecialType) []SpecialMember {
	return r.byDeclaring[t]
}

// Attribute returns the description for id.
func (r *Registry) Attribute(id AttributeID) (AttributeDescription, bool) {
	if id == AttrNone || int(id) >= len(r.attrs) {
		return AttributeDescription{}, false
	}
	return r.attrs[id].clone(), true
}

// LookupAttribute finds the description of namespace.name. An exact
// case-sensitive description wins over one that ignores case.
func (r *Registry) LookupAttribute(namespace, name string) (AttributeID, bool) {
	ids := r.attrsByName[strings.ToLower(namespace+"."+name)]
	for _, id := range ids {
		desc := r.attrs[id]
		if !desc.MatchIgnoringCase && desc.Namespace == namespace && desc.Name == name {
			return id, true
		}
	}
	for _, id := range ids {
		if r.attrs[id].Matches(namespace, name) {
			return id, true
		}
	}
	return AttrNone, false
}
