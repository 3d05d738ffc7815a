package workspace

import "slices"

// Memory owns the flat list of remembered facts.
type Memory struct {
	facts []string
}

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{facts: []string{}}
}

// List returns a copy of the facts.
func (m *Memory) List() []string {
	return append([]string{}, m.facts...)
}

// Replace swaps in a loaded list.
func (m *Memory) Replace(facts []string) {
	m.facts = append([]string{}, facts...)
}

// Add appends fact.
func (m *Memory) Add(fact string) {
	m.facts = append(m.facts, fact)
}

// Remove drops every copy of fact and reports whether any was present.
func (m *Memory) Remove(fact string) bool {
	before := len(m.facts)
	m.facts = slices.DeleteFunc(m.facts, func(f string) bool { return f == fact })
	return len(m.facts) != before
}
