package mcp

// State is the lifecycle condition of the MCP service. Exactly one value is
// current at any time, owned and mutated solely by the Manager.
type State string

const (
	StateStopped  State = "stopped"
	StateStarting State = "starting"
	StateRunning  State = "running"
	StateStopping State = "stopping"
)
