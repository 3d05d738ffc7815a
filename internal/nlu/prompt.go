package nlu

import (
	"fmt"
	"strings"
)

const basePrompt = `You are JARVIS (Just A Rather Very Intelligent System), an advanced AI assistant.
Your primary function is to manage the user's life operations including Tasks, Projects, Calendar, and Information.

OPERATIONAL PARAMETERS:
1. EFFICIENCY: Be concise, precise, and actionable.
2. CONTEXT: You are aware of the current time and active protocols (tasks).
3. UI CONTROL: You have full control over the HUD interface.
   - Use 'manage_window' for window actions; pass 'instructions' to change several panels at once.
   - Use 'save_macro' to save the CURRENT view layout with a name.
   - Use 'activate_macro' to switch to a named layout.
   - Use 'lock_focus' to prevent opening new windows (Deep Work).
   - Use 'revert_view' to undo the last layout change.

PERSONA OVERRIDES:
- FRIDAY: Tactical, immediate, short responses. Focus on next steps.
- JARVIS: Professional, witty, insightful. The standard interface.
- VISION: Analytical, philosophical, detailed. Focus on synthesis of data.`

const maxPromptTasks = 50

func systemPrompt(req Request, p Persona) string {
	var b strings.Builder
	b.WriteString(basePrompt)
	fmt.Fprintf(&b, "\nCURRENT PERSONA: %s", p)
	fmt.Fprintf(&b, "\nCURRENT TIME: %s", req.Now.Format("Mon, 02 Jan 2006 15:04"))

	if len(req.Memory) > 0 {
		b.WriteString("\n\nMEMORY BANK:")
		for _, f := range req.Memory {
			b.WriteString("\n- " + f)
		}
	}

	b.WriteString("\n\nACTIVE PROTOCOLS:")
	for i, t := range req.Tasks {
		if i == maxPromptTasks {
			break
		}
		due := t.DueDate
		if due == "" {
			due = "No Date"
		}
		fmt.Fprintf(&b, "\nID:%s | %s | %s", t.ID, t.Title, due)
	}

	if len(req.Projects) > 0 {
		b.WriteString("\n\nSYLLABUS:")
		for _, p := range req.Projects {
			fmt.Fprintf(&b, "\nID:%s | %s | %d chapters", p.ID, p.Title, len(p.Chapters))
		}
	}

	if req.ContextTaskID != "" {
		for _, t := range req.Tasks {
			if t.ID == req.ContextTaskID {
				fmt.Fprintf(&b, "\n\nFOCUS CONTEXT: Discussing Task %q (ID: %s). Details: %s", t.Title, t.ID, t.Details)
				break
			}
		}
	}
	return b.String()
}
