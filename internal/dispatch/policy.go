// Package dispatch routes intents either straight to the executor or into
// the approval queue.
package dispatch

import (
	"fmt"
	"os"
	"slices"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/starford/jarvis/internal/intent"
)

// DefaultAutoExecute lists the kinds that never need approval: cheap UI or
// soft-state changes that can be undone by revert or by the opposite command.
var DefaultAutoExecute = []intent.Kind{
	intent.ManageWindow,
	intent.StartTimer,
	intent.UpdateTheme,
	intent.UpdateMemory,
	intent.SwitchMode,
	intent.NavigateSyllabus,
	intent.Query,
	intent.StopTimer,
	intent.SaveMacro,
	intent.ActivateMacro,
	intent.FocusLock,
	intent.RevertView,
}

// Policy is the allow-list of auto-executed kinds. It is safe for
// concurrent use so a file watcher can swap it while the session reads it.
type Policy struct {
	mu    sync.RWMutex
	allow map[intent.Kind]bool
}

// NewPolicy creates a policy allowing kinds.
func NewPolicy(kinds []intent.Kind) *Policy {
	p := &Policy{}
	p.Set(kinds)
	return p
}

// DefaultPolicy returns the built-in allow-list.
func DefaultPolicy() *Policy {
	return NewPolicy(DefaultAutoExecute)
}

// Allows reports whether k executes without approval.
func (p *Policy) Allows(k intent.Kind) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.allow[k]
}

// Set replaces the allow-list.
func (p *Policy) Set(kinds []intent.Kind) {
	m := make(map[intent.Kind]bool, len(kinds))
	for _, k := range kinds {
		m[k] = true
	}
	p.mu.Lock()
	p.allow = m
	p.mu.Unlock()
}

// Kinds returns the allow-list, sorted.
func (p *Policy) Kinds() []intent.Kind {
	p.mu.RLock()
	out := make([]intent.Kind, 0, len(p.allow))
	for k := range p.allow {
		out = append(out, k)
	}
	p.mu.RUnlock()
	slices.Sort(out)
	return out
}

// PolicyFile is the on-disk shape of a policy.
type PolicyFile struct {
	AutoExecute []string `yaml:"auto_execute"`
}

// Validate rejects unknown kinds.
func (f PolicyFile) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.AutoExecute, validation.Each(validation.By(func(v any) error {
			s, _ := v.(string)
			if !intent.ParseKind(s).Known() {
				return fmt.Errorf("unknown intent kind %q", s)
			}
			return nil
		}))),
	)
}

// LoadPolicyFile reads a YAML policy. Kinds may use either spelling
// ("create-task" or "CREATE_TASK").
func LoadPolicyFile(path string) ([]intent.Kind, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dispatch: read policy: %w", err)
	}
	var f PolicyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("dispatch: parse policy: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("dispatch: validate policy: %w", err)
	}
	kinds := make([]intent.Kind, 0, len(f.AutoExecute))
	for _, s := range f.AutoExecute {
		kinds = append(kinds, intent.ParseKind(s))
	}
	return kinds, nil
}
