package mcpserver

// IntentContract describes the intent objects accepted by dispatch_intents.
const IntentContract = `# J.A.R.V.I.S. Intent Contract

Each intent is a JSON object with an ` + "`action`" + ` tag and at most one payload.
Tags are case-insensitive; ` + "`create-task`" + ` and ` + "`CREATE_TASK`" + ` are the same.
Every payload field is optional. Unknown tags are dropped.

## Approval

These tags execute immediately:
MANAGE_WINDOW, UPDATE_THEME, SWITCH_MODE, START_TIMER, STOP_TIMER,
NAVIGATE_SYLLABUS, SAVE_MACRO, ACTIVATE_MACRO, FOCUS_LOCK, REVERT_VIEW,
UPDATE_MEMORY, QUERY, UNKNOWN.

Everything else (task, event and project changes) waits in the approval
queue. With alert mode on, every intent executes immediately.

## Tags and payloads

| action | payload key | fields |
|---|---|---|
| CREATE_TASK, UPDATE_TASK, DELETE_TASK | taskData | id, title, completed, priority (low/medium/high), dueDate (YYYY-MM-DD), dueTime (HH:MM), startTime, endTime, projectId, details, labels, subtasks |
| CREATE_EVENT | eventData | title, startTime, endTime (RFC 3339), priority |
| CREATE_PROJECT | projectData | title, chapters[{title, subtopics[{title, status}]}], metadata |
| BREAK_DOWN_TASK | breakdownData | parentTaskId (id or title), subtasks |
| UPDATE_MEMORY | memoryData | operation (add/remove), fact |
| START_TIMER | timerData | duration (minutes, default 25), mode (POMODORO/STOPWATCH) |
| STOP_TIMER | none | |
| MANAGE_WINDOW | windowData | instructions[{target, action, size, percent, title}], clearHUD |
| UPDATE_THEME | uiData | theme (cyan/red/amber/green) |
| SWITCH_MODE | modeData | mode (EXECUTE/PLAN/INTEL) |
| NAVIGATE_SYLLABUS | navigationData | projectId, chapterId |
| SAVE_MACRO, ACTIVATE_MACRO | macroData | name |
| FOCUS_LOCK | focusData | lock |
| REVERT_VIEW | none | |
| QUERY | queryResponse | free text shown to the user |

## Windows

Targets: TASKS, PROJECTS, CALENDAR, CHRONO, MEMORY, BRIEFING, CHAT, COMMAND,
WEATHER, DASHBOARD, LOGS. At most one panel per target is open.
Actions: OPEN, CLOSE, RESIZE, FOCUS. Inside instructions, size is a flex
weight and percent a share of the row. A single instruction given directly
as windowData {target, action, size} reads size as a share of the row; zero
or negative means "keep the default". With focus lock on, OPEN and FOCUS of
closed panels are refused; CLOSE always works. A whole batch is undone by
one REVERT_VIEW.

## Example

` + "```" + `json
[
  {"action": "MANAGE_WINDOW", "windowData": {"clearHUD": true, "instructions": [
    {"target": "TASKS", "action": "OPEN", "size": 2},
    {"target": "CHRONO", "action": "OPEN"}
  ]}},
  {"action": "START_TIMER", "timerData": {"duration": 25, "mode": "POMODORO"}},
  {"action": "CREATE_TASK", "taskData": {"title": "Review flight logs", "priority": "high"}}
]
` + "```" + `
`
