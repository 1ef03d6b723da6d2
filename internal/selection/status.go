package selection

import (
	"log/slog"
)

// Status messages shown to the user. The text is part of the UI contract.
const (
	MsgNoSelection     = "No object selected"
	MsgMoveNode        = "Selected node for movement"
	MsgSelectEnd       = "Select an end node (Ctrl-click)"
	MsgConnection      = "Connection established"
	MsgNodeDeselected  = "Node deselected"
	MsgBeamSelected    = "Selected beam"
	MsgBeamDeselected  = "Beam deselected"
	MsgLinkNeedsTwo    = "Please select exactly 2 nodes to connect"
	MsgBeamCreated     = "Beam created"
	MsgDeleteNeedsPick = "Please select a node or beam to delete"
	MsgMoveNeedsOne    = "Please select exactly 1 node to move"
	MsgNeedsNode       = "Please select a node"
	MsgNeedsBeam       = "Please select a beam"
)

// StatusSink receives human-readable status messages.
type StatusSink interface {
	Status(msg string)
}

// SinkFunc adapts a function to a StatusSink.
type SinkFunc func(msg string)

func (f SinkFunc) Status(msg string) { f(msg) }

// Recorder keeps every message it receives.
type Recorder struct {
	Messages []string
}

func (r *Recorder) Status(msg string) { r.Messages = append(r.Messages, msg) }

// Last returns the most recent message, or "" if none.
func (r *Recorder) Last() string {
	if len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[len(r.Messages)-1]
}

// LogSink writes status messages to a structured logger.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Status(msg string) { s.Logger.Info("status", "message", msg) }

// MultiSink fans a message out to several sinks.
type MultiSink []StatusSink

func (m MultiSink) Status(msg string) {
	for _, s := range m {
		s.Status(msg)
	}
}
