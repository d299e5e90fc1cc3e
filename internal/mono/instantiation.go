package mono

import (
	"cstar/internal/ast"
	"cstar/internal/source"
	"cstar/internal/types"
)

// Key identifies one specialization: a generic member bound to a concrete
// type. Requesting the same key twice yields the same specialization.
type Key struct {
	Member   *ast.Member
	Concrete types.TypeID
}

// UseSite records a location where an instantiation is requested.
type UseSite struct {
	Span   source.Span
	Caller string
}

// Entry captures every use of one key.
type Entry struct {
	Key Key
	// Owner is the class or function declaring the generic member.
	Owner    ast.Decl
	UseSites []UseSite
}

// InstantiationMap tracks requested instantiations in discovery order.
type InstantiationMap struct {
	Entries map[Key]*Entry
	order   []Key
}

// NewInstantiationMap creates a new empty InstantiationMap.
func NewInstantiationMap() *InstantiationMap {
	return &InstantiationMap{Entries: make(map[Key]*Entry)}
}

// Record registers an instantiation at a specific site. It reports whether
// the key was seen for the first time.
func (m *InstantiationMap) Record(owner ast.Decl, key Key, site source.Span, caller string) bool {
	if m == nil || key.Member == nil || key.Concrete == types.NoTypeID {
		return false
	}
	if m.Entries == nil {
		m.Entries = make(map[Key]*Entry)
	}
	entry, seen := m.Entries[key]
	if !seen {
		entry = &Entry{Key: key, Owner: owner}
		m.Entries[key] = entry
		m.order = append(m.order, key)
	}
	if !site.Empty() {
		us := UseSite{Span: site, Caller: caller}
		for _, existing := range entry.UseSites {
			if existing == us {
				return !seen
			}
		}
		entry.UseSites = append(entry.UseSites, us)
	}
	return !seen
}

// Ordered returns entries in first-request order.
func (m *InstantiationMap) Ordered() []*Entry {
	if m == nil {
		return nil
	}
	out := make([]*Entry, 0, len(m.order))
	for _, k := range m.order {
		out = append(out, m.Entries[k])
	}
	return out
}

func (m *InstantiationMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.order)
}
