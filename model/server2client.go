package model

// ServerMessage is the state pushed to observers. It is a flattened,
// read-only copy of the session and the running search.
type ServerMessage struct {
	Phase     string       `json:"phase"`
	Width     int          `json:"width"`
	Height    int          `json:"height"`
	Scale     int          `json:"scale"`
	Start     Cell         `json:"start"`
	Target    Cell         `json:"target"`
	Obstacles []Cell       `json:"obstacles"`
	Open      []ScoredCell `json:"open"`
	Closed    []Cell       `json:"closed"`
	Path      []Cell       `json:"path,omitempty"`
	Result    string       `json:"result"`
	RunID     string       `json:"runId,omitempty"`
	Expanded  int          `json:"expanded"`
	UndoCount int          `json:"undoCount"`
	RedoCount int          `json:"redoCount"`
	StepDelay int          `json:"stepDelayMs"`
}

// ScoredCell is one frontier entry.
type ScoredCell struct {
	Score int  `json:"score"`
	Cell  Cell `json:"cell"`
}

// ClientMessage is one command from an input layer.
type ClientMessage struct {
	Command Command `json:"command"`
	Cell    Cell    `json:"cell"`
	Cells   []Cell  `json:"cells,omitempty"`
	Scale   int     `json:"scale,omitempty"`
	DelayMs int     `json:"delayMs,omitempty"`
}

type Command string

const (
	CmdRun            Command = "run"
	CmdAbort          Command = "abort"
	CmdStop           Command = "stop"
	CmdReset          Command = "reset"
	CmdMoveStart      Command = "moveStart"
	CmdMoveTarget     Command = "moveTarget"
	CmdAddObstacles   Command = "addObstacles"
	CmdRemoveObstacle Command = "removeObstacle"
	CmdClearObstacles Command = "clearObstacles"
	CmdScale          Command = "scale"
	CmdUndo           Command = "undo"
	CmdRedo           Command = "redo"
	CmdDelay          Command = "delay"
	CmdPress          Command = "press"
	CmdDrag           Command = "drag"
	CmdRelease        Command = "release"
)
