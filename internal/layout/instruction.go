package layout

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Action is the verb of a window instruction.
type Action string

// Window instruction actions.
const (
	ActionOpen   Action = "OPEN"
	ActionClose  Action = "CLOSE"
	ActionResize Action = "RESIZE"
	ActionFocus  Action = "FOCUS"
)

// Instruction is one step of a batch update. Size is a raw flex weight; nil
// means "leave the weight alone". Percent redistributes the row the way
// SetSizeByPercent does and wins over Size when both are set.
type Instruction struct {
	Target  Kind     `json:"target"`
	Action  Action   `json:"action"`
	Size    *float64 `json:"size,omitempty"`
	Percent *float64 `json:"percent,omitempty"`
	Title   string   `json:"title,omitempty"`
}

// Validate checks the instruction against the wire contract.
func (in Instruction) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Target, validation.Required, validation.By(func(v any) error {
			if k, _ := v.(Kind); !k.Valid() {
				return validation.NewError("validation_unknown_kind", "unknown window kind")
			}
			return nil
		})),
		validation.Field(&in.Action, validation.Required,
			validation.In(ActionOpen, ActionClose, ActionResize, ActionFocus)),
		validation.Field(&in.Size, validation.NilOrNotEmpty, validation.Min(0.01)),
		validation.Field(&in.Percent, validation.NilOrNotEmpty, validation.Min(0.01), validation.Max(FullPercent)),
	)
}

// Normalize upper-cases target and action so LLM output like "open"/"tasks" is accepted.
func (in Instruction) Normalize() Instruction {
	in.Target = Kind(strings.ToUpper(strings.TrimSpace(string(in.Target))))
	in.Action = Action(strings.ToUpper(strings.TrimSpace(string(in.Action))))
	return in
}

// Batch is the wire shape of a manage-window directive.
type Batch struct {
	Instructions []Instruction `json:"instructions"`
	ClearHUD     bool          `json:"clearHUD,omitempty"`
}

// BatchResult reports what a batch did.
type BatchResult struct {
	Applied int `json:"applied"`
	// Blocked lists kinds whose OPEN/FOCUS was refused by focus lock.
	Blocked []Kind `json:"blocked,omitempty"`
	// Skipped lists malformed instructions and RESIZE on non-open kinds.
	Skipped []Instruction `json:"skipped,omitempty"`
}

// Changed reports whether the batch altered anything.
func (r BatchResult) Changed() bool { return r.Applied > 0 }
