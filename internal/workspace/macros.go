package workspace

import (
	"slices"
	"strings"

	"github.com/starford/jarvis/internal/layout"
	"github.com/starford/jarvis/internal/models"
)

// Macros owns the named layouts saved in user settings.
type Macros struct {
	items []models.LayoutMacro
}

// NewMacros creates an empty store.
func NewMacros() *Macros {
	return &Macros{items: []models.LayoutMacro{}}
}

// List returns a copy of every macro.
func (m *Macros) List() []models.LayoutMacro {
	out := make([]models.LayoutMacro, len(m.items))
	for i, mc := range m.items {
		out[i] = models.LayoutMacro{Name: mc.Name, Windows: slices.Clone(mc.Windows)}
	}
	return out
}

// Replace swaps in a loaded list.
func (m *Macros) Replace(ms []models.LayoutMacro) {
	m.items = []models.LayoutMacro{}
	for _, mc := range ms {
		m.Put(mc.Name, mc.Windows)
	}
}

// Put saves ws under name, replacing a macro with the same name
// (case-insensitive).
func (m *Macros) Put(name string, ws []layout.Window) {
	mc := models.LayoutMacro{Name: name, Windows: slices.Clone(ws)}
	if i := m.index(name); i >= 0 {
		m.items[i] = mc
		return
	}
	m.items = append(m.items, mc)
}

// Find looks a macro up by name, ignoring case.
func (m *Macros) Find(name string) (models.LayoutMacro, bool) {
	i := m.index(name)
	if i < 0 {
		return models.LayoutMacro{}, false
	}
	return models.LayoutMacro{Name: m.items[i].Name, Windows: slices.Clone(m.items[i].Windows)}, true
}

func (m *Macros) index(name string) int {
	name = strings.TrimSpace(name)
	return slices.IndexFunc(m.items, func(mc models.LayoutMacro) bool {
		return strings.EqualFold(mc.Name, name)
	})
}
