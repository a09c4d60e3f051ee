package domain

import "encoding/json"

// Action is the lifecycle operation an event describes.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ScopeGlobal addresses an event to every live connection rather than the
// subscribers of one disaster.
const ScopeGlobal = ""

// LifecycleEvent is published whenever the CRUD layer completes a
// create/update/delete, so subscribers of the affected disaster see the
// change in near real time.
type LifecycleEvent struct {
	Kind    string          `json:"kind"`
	Action  Action          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Scope   string          `json:"-"`
}

// Global reports whether the event addresses all connections.
func (e LifecycleEvent) Global() bool {
	return e.Scope == ScopeGlobal
}
