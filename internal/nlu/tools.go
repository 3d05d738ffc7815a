package nlu

import (
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

type props = map[string]jsonschema.Definition

var (
	str     = jsonschema.Definition{Type: jsonschema.String}
	strList = jsonschema.Definition{Type: jsonschema.Array, Items: &jsonschema.Definition{Type: jsonschema.String}}
	empty   = jsonschema.Definition{Type: jsonschema.Object, Properties: props{}}
)

func tool(name, desc string, params jsonschema.Definition) openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        name,
			Description: desc,
			Parameters:  params,
		},
	}
}

func windowTargets() []string {
	return []string{"TASKS", "PROJECTS", "CALENDAR", "CHRONO", "MEMORY", "BRIEFING", "CHAT", "COMMAND", "WEATHER", "DASHBOARD", "LOGS"}
}

var windowInstruction = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: props{
		"target": {Type: jsonschema.String, Enum: windowTargets()},
		"action": {Type: jsonschema.String, Enum: []string{"OPEN", "CLOSE", "RESIZE", "FOCUS"}},
		"size":   {Type: jsonschema.Number, Description: "Relative weight for the panel"},
		"title":  str,
	},
	Required: []string{"target", "action"},
}

// toolset is the function list offered to the model.
var toolset = []openai.Tool{
	tool("create_task", "Create a new task or reminder.", jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: props{
			"title":    {Type: jsonschema.String, Description: "The main task description"},
			"priority": {Type: jsonschema.String, Enum: []string{"low", "medium", "high"}, Description: "Urgency level"},
			"dueDate":  {Type: jsonschema.String, Description: "ISO Date YYYY-MM-DD"},
			"dueTime":  {Type: jsonschema.String, Description: "Time HH:MM (24hr)"},
			"endTime":  {Type: jsonschema.String, Description: "End Time HH:MM (24hr)"},
			"details":  {Type: jsonschema.String, Description: "Additional context"},
			"subtasks": strList,
			"labels":   strList,
		},
		Required: []string{"title"},
	}),
	tool("create_event", "Create a calendar event with a specific start and end time.", jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: props{
			"title":     {Type: jsonschema.String, Description: "Event title"},
			"startTime": {Type: jsonschema.String, Description: "ISO 8601 start time"},
			"endTime":   {Type: jsonschema.String, Description: "ISO 8601 end time"},
		},
		Required: []string{"title", "startTime", "endTime"},
	}),
	tool("create_project", "Create a study project with chapters and subtopics.", jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: props{
			"title": str,
			"chapters": {Type: jsonschema.Array, Items: &jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: props{
					"title": str,
					"subtopics": {Type: jsonschema.Array, Items: &jsonschema.Definition{
						Type:       jsonschema.Object,
						Properties: props{"title": str},
					}},
				},
			}},
		},
		Required: []string{"title"},
	}),
	tool("manage_window", "Open, close, focus or resize HUD panels. Use instructions for several panels at once.", jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: props{
			"target":       windowInstruction.Properties["target"],
			"action":       windowInstruction.Properties["action"],
			"size":         {Type: jsonschema.Number, Description: "Percentage width (1-100) for OPEN, FOCUS or RESIZE"},
			"instructions": {Type: jsonschema.Array, Items: &windowInstruction},
			"clearHUD":     {Type: jsonschema.Boolean, Description: "Close every panel first"},
		},
	}),
	tool("save_macro", "Save the current window layout as a named macro.", jsonschema.Definition{
		Type:       jsonschema.Object,
		Properties: props{"name": {Type: jsonschema.String, Description: "Name of the macro"}},
		Required:   []string{"name"},
	}),
	tool("activate_macro", "Activate a saved window layout macro.", jsonschema.Definition{
		Type:       jsonschema.Object,
		Properties: props{"name": {Type: jsonschema.String, Description: "Name of the macro to activate"}},
		Required:   []string{"name"},
	}),
	tool("lock_focus", "Enable Focus Lock to prevent opening new windows.", empty),
	tool("unlock_focus", "Disable Focus Lock.", empty),
	tool("revert_view", "Undo the last layout change.", empty),
	tool("update_task", "Modify an existing task.", jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: props{
			"id":        {Type: jsonschema.String, Description: "The task ID to update"},
			"title":     str,
			"completed": {Type: jsonschema.Boolean},
			"priority":  {Type: jsonschema.String, Enum: []string{"low", "medium", "high"}},
			"dueDate":   str,
			"dueTime":   str,
			"endTime":   str,
		},
		Required: []string{"id"},
	}),
	tool("delete_task", "Permanently remove a task.", jsonschema.Definition{
		Type:       jsonschema.Object,
		Properties: props{"id": {Type: jsonschema.String, Description: "Task ID to remove"}},
		Required:   []string{"id"},
	}),
	tool("break_down_task", "Split a task into subtasks. The parent may be given by id or by title.", jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: props{
			"parentTaskId": {Type: jsonschema.String, Description: "Task ID or part of its title"},
			"subtasks":     strList,
		},
		Required: []string{"parentTaskId", "subtasks"},
	}),
	tool("save_memory", "Save a fact to memory.", jsonschema.Definition{
		Type:       jsonschema.Object,
		Properties: props{"fact": {Type: jsonschema.String, Description: "The information to store"}},
		Required:   []string{"fact"},
	}),
	tool("forget_memory", "Remove a previously saved fact.", jsonschema.Definition{
		Type:       jsonschema.Object,
		Properties: props{"fact": str},
		Required:   []string{"fact"},
	}),
	tool("switch_mode", "Switch the HUD operating mode.", jsonschema.Definition{
		Type:       jsonschema.Object,
		Properties: props{"mode": {Type: jsonschema.String, Enum: []string{"EXECUTE", "PLAN", "INTEL"}}},
		Required:   []string{"mode"},
	}),
	tool("update_theme", "Change the HUD color theme.", jsonschema.Definition{
		Type:       jsonschema.Object,
		Properties: props{"theme": {Type: jsonschema.String, Enum: []string{"cyan", "red", "amber", "green"}}},
		Required:   []string{"theme"},
	}),
	tool("start_timer", "Start the chronometer.", jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: props{
			"duration": {Type: jsonschema.Integer, Description: "Minutes, for a countdown"},
			"mode":     {Type: jsonschema.String, Enum: []string{"POMODORO", "STOPWATCH"}},
		},
	}),
	tool("stop_timer", "Stop the chronometer.", empty),
	tool("navigate_syllabus", "Open the study syllabus at a project or chapter.", jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: props{
			"projectId": str,
			"chapterId": str,
		},
	}),
}
