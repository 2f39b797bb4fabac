package taskflow

import "fmt"

// EventKind names a node interaction.
type EventKind string

const (
	EventMoveUp     EventKind = "move_up"
	EventMoveDown   EventKind = "move_down"
	EventApprove    EventKind = "approve"
	EventEditParams EventKind = "edit_params"
)

// Event is emitted by a rendered node and consumed by the Editor.
type Event struct {
	Kind     EventKind
	NodeID   string
	Params   Params // EventEditParams
	Approver string // EventApprove
}

// Dispatch applies a node event.
func (e *Editor) Dispatch(ev Event) error {
	switch ev.Kind {
	case EventMoveUp:
		return e.MoveUp(ev.NodeID)
	case EventMoveDown:
		return e.MoveDown(ev.NodeID)
	case EventApprove:
		return e.Approve(ev.NodeID, ev.Approver)
	case EventEditParams:
		return e.SetParams(ev.NodeID, ev.Params)
	default:
		err := fmt.Errorf("%w %q", ErrUnknownEvent, ev.Kind)
		e.opts.Reporter.Report("dispatch", err)
		return err
	}
}
