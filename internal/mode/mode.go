// Package mode holds the HUD layout preset and color theme selection.
package mode

import (
	"fmt"
	"strings"

	"github.com/starford/jarvis/internal/apperr"
	"github.com/starford/jarvis/internal/layout"
)

// Mode selects a layout preset.
type Mode string

// Modes.
const (
	Execute Mode = "EXECUTE"
	Plan    Mode = "PLAN"
	Intel   Mode = "INTEL"
)

// Theme is a HUD color scheme.
type Theme string

// Themes.
const (
	Cyan  Theme = "cyan"
	Red   Theme = "red"
	Amber Theme = "amber"
	Green Theme = "green"
)

// AlertTheme overrides the stored theme while alert is active.
const AlertTheme = Red

// ParseMode validates s case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case Execute, Plan, Intel:
		return m, nil
	}
	return "", fmt.Errorf("mode: unknown mode %q: %w", s, apperr.ErrInvalid)
}

// ParseTheme validates s case-insensitively.
func ParseTheme(s string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case Cyan, Red, Amber, Green:
		return t, nil
	}
	return "", fmt.Errorf("mode: unknown theme %q: %w", s, apperr.ErrInvalid)
}

var presets = map[Mode][]layout.Instruction{
	Execute: {
		{Target: layout.KindTasks, Action: layout.ActionOpen, Size: weight(2)},
		{Target: layout.KindChrono, Action: layout.ActionOpen},
		{Target: layout.KindCommand, Action: layout.ActionOpen},
	},
	Plan: {
		{Target: layout.KindProjects, Action: layout.ActionOpen, Size: weight(2)},
		{Target: layout.KindCalendar, Action: layout.ActionOpen},
	},
	Intel: {
		{Target: layout.KindBriefing, Action: layout.ActionOpen},
		{Target: layout.KindChat, Action: layout.ActionOpen},
		{Target: layout.KindMemory, Action: layout.ActionOpen},
	},
}

func weight(v float64) *float64 { return &v }

// Preset returns the window batch that lays the HUD out for m. It clears
// the HUD first.
func Preset(m Mode) layout.Batch {
	src := presets[m]
	ins := make([]layout.Instruction, len(src))
	copy(ins, src)
	return layout.Batch{Instructions: ins, ClearHUD: true}
}

// Controller is the mode/theme state holder. Every mode and theme is
// reachable from every other; there are no transition guards.
type Controller struct {
	mode  Mode
	theme Theme
	alert bool
}

// NewController starts in EXECUTE with the cyan theme.
func NewController() *Controller {
	return &Controller{mode: Execute, theme: Cyan}
}

// Mode returns the active preset.
func (c *Controller) Mode() Mode { return c.mode }

// SetMode selects a preset.
func (c *Controller) SetMode(m Mode) { c.mode = m }

// Theme returns the stored theme, ignoring alert.
func (c *Controller) Theme() Theme { return c.theme }

// SetTheme stores a theme.
func (c *Controller) SetTheme(t Theme) { c.theme = t }

// Alert reports whether combat alert is active.
func (c *Controller) Alert() bool { return c.alert }

// SetAlert toggles combat alert.
func (c *Controller) SetAlert(on bool) { c.alert = on }

// EffectiveTheme is the theme to render: the alert theme while alert is
// active, the stored theme otherwise.
func (c *Controller) EffectiveTheme() Theme {
	if c.alert {
		return AlertTheme
	}
	return c.theme
}

// BypassApproval reports whether gated intents should execute immediately.
func (c *Controller) BypassApproval() bool { return c.alert }
