package intent

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/starford/jarvis/internal/layout"
)

// Titles decodes either a list of strings or a list of objects with a
// title field, since models emit both shapes for subtasks.
type Titles []string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Titles) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		var single string
		if err2 := json.Unmarshal(data, &single); err2 == nil {
			*t = Titles{single}
			return nil
		}
		return err
	}
	out := make(Titles, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			if s != "" {
				out = append(out, s)
			}
			continue
		}
		var obj struct {
			Title string `json:"title"`
		}
		if err := json.Unmarshal(item, &obj); err == nil && obj.Title != "" {
			out = append(out, obj.Title)
		}
	}
	*t = out
	return nil
}

// UnmarshalJSON normalises the tag spelling.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("intent: action tag: %w", err)
	}
	*k = ParseKind(s)
	return nil
}

// WindowData is a manage-window payload: a batch of instructions.
type WindowData struct {
	layout.Batch
}

// UnmarshalJSON accepts the batch shape {instructions, clearHUD} and the
// single-instruction shape {target, action, size} emitted by the
// manage_window tool, where size is a percentage of the row.
func (w *WindowData) UnmarshalJSON(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("intent: window data: %w", err)
	}
	if _, ok := probe["instructions"]; ok {
		return json.Unmarshal(data, &w.Batch)
	}
	var single struct {
		Target   layout.Kind   `json:"target"`
		Action   layout.Action `json:"action"`
		Size     *float64      `json:"size"`
		Title    string        `json:"title"`
		ClearHUD bool          `json:"clearHUD"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&single); err != nil {
		return fmt.Errorf("intent: window data: %w", err)
	}
	in := layout.Instruction{Target: single.Target, Action: single.Action, Title: single.Title}
	if pct, ok := percentOf(single.Size); ok {
		in.Percent = &pct
	}
	w.Batch = layout.Batch{Instructions: []layout.Instruction{in}, ClearHUD: single.ClearHUD}
	return nil
}

// percentOf reads a single-instruction size as a share of the row. Zero or
// negative sizes count as absent; anything above the row is clamped to it.
func percentOf(size *float64) (float64, bool) {
	if size == nil || *size <= 0 {
		return 0, false
	}
	return min(*size, layout.FullPercent), true
}

// MarshalJSON always emits the batch shape.
func (w WindowData) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.Batch)
}

// DecodeBatch decodes a JSON array of intents. Entries that fail to decode
// become Unknown intents so one malformed entry does not lose the batch.
func DecodeBatch(data []byte) ([]Intent, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("intent: decode batch: %w", err)
	}
	out := make([]Intent, 0, len(raw))
	for _, item := range raw {
		var in Intent
		if err := json.Unmarshal(item, &in); err != nil {
			out = append(out, Intent{Kind: Unknown, Reasoning: err.Error()})
			continue
		}
		out = append(out, in)
	}
	return out, nil
}
