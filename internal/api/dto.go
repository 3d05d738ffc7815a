package api

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/jarvis/internal/intent"
	"github.com/starford/jarvis/internal/layout"
	"github.com/starford/jarvis/internal/mode"
)

// CommandRequest submits one utterance for interpretation.
type CommandRequest struct {
	Text          string `json:"text"`
	Surface       string `json:"surface,omitempty"`
	Persona       string `json:"persona,omitempty"`
	ContextTaskID string `json:"contextTaskId,omitempty"`
}

// Validate requires non-blank text.
func (r CommandRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.Required, validation.By(notBlank)),
	)
}

// IntentsRequest dispatches pre-parsed intents.
type IntentsRequest struct {
	Intents []intent.Intent `json:"intents"`
}

// Validate requires at least one intent.
func (r IntentsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Intents, validation.Required),
	)
}

// OpenWindowRequest opens a panel.
type OpenWindowRequest struct {
	Kind  string `json:"type"`
	Title string `json:"title,omitempty"`
}

// Validate checks the kind.
func (r OpenWindowRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Kind, validation.Required, validation.By(knownKind)),
	)
}

// WeightRequest sets a raw flex weight.
type WeightRequest struct {
	Weight float64 `json:"weight"`
}

// Validate requires a positive weight.
func (r WeightRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Weight, validation.Required, validation.Min(0.01)),
	)
}

// PercentRequest gives a panel a share of the row.
type PercentRequest struct {
	Percent float64 `json:"percent"`
}

// Validate bounds the percentage.
func (r PercentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Percent, validation.Required, validation.Min(0.01), validation.Max(layout.FullPercent)),
	)
}

// ModeRequest carries a mode name, used for PUT /mode and POST /layout/preset.
type ModeRequest struct {
	Mode string `json:"mode"`
}

// Parse validates the mode.
func (r ModeRequest) Parse() (mode.Mode, error) { return mode.ParseMode(r.Mode) }

// ThemeRequest carries a theme name.
type ThemeRequest struct {
	Theme string `json:"theme"`
}

// ToggleRequest switches a boolean flag such as alert or focus lock.
type ToggleRequest struct {
	Enabled bool `json:"enabled"`
}

// BriefingRequest asks for the daily briefing.
type BriefingRequest struct {
	Username string `json:"username,omitempty"`
}

// CountResponse reports how many items an operation touched.
type CountResponse struct {
	Count int `json:"count"`
}

// OpenResponse reports whether a panel is open after a toggle.
type OpenResponse struct {
	Open bool `json:"open"`
}

// RevertResponse reports whether a layout snapshot was restored.
type RevertResponse struct {
	Reverted bool `json:"reverted"`
}

// BriefingResponse carries the generated briefing text.
type BriefingResponse struct {
	Text string `json:"text"`
}

func notBlank(v any) error {
	if s, _ := v.(string); strings.TrimSpace(s) == "" {
		return validation.NewError("validation_blank", "cannot be blank")
	}
	return nil
}

func knownKind(v any) error {
	s, _ := v.(string)
	if _, ok := layout.ParseKind(s); !ok {
		return validation.NewError("validation_unknown_kind", "unknown window kind")
	}
	return nil
}
