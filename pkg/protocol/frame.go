// Package protocol defines the frames exchanged between the widget
// engine and remote view layers, with JSON and msgpack codecs.
//
// The engine re-serializes the rendered tree on demand; transports
// ship whole trees and may diff on their own side.
package protocol

import (
	"errors"
	"fmt"

	"github.com/provekit/widget/pkg/vdom"
)

// FrameType discriminates wire frames.
type FrameType string

// Inbound frame types (client to engine).
const (
	FrameEvent         FrameType = "event"
	FrameTaskCompleted FrameType = "task_completed"
	FrameMouseCapture  FrameType = "mouse_capture"
	FrameMouseRelease  FrameType = "mouse_release"
)

// Outbound frame types (engine to client).
const (
	FrameTree   FrameType = "tree"
	FrameAction FrameType = "action"
	FrameError  FrameType = "error"
)

// Frame is one wire message. Unused fields stay empty; Validate
// checks the fields required by the frame's type.
type Frame struct {
	Type FrameType `json:"type" msgpack:"type"`

	// Route addresses a component instance, root-first.
	Route vdom.Route `json:"r,omitempty" msgpack:"r,omitempty"`

	// Handler is the event handler id, for event frames.
	Handler vdom.HandlerID `json:"h,omitempty" msgpack:"h,omitempty"`

	// Args carries decoded event arguments, for event frames.
	Args any `json:"args,omitempty" msgpack:"args,omitempty"`

	// Tree is the serialized widget tree, for tree frames.
	Tree any `json:"tree,omitempty" msgpack:"tree,omitempty"`

	// Action is the action that bubbled out of the root, for action
	// frames.
	Action any `json:"action,omitempty" msgpack:"action,omitempty"`

	// Code and Message describe an error, for error frames.
	Code    string `json:"code,omitempty" msgpack:"code,omitempty"`
	Message string `json:"message,omitempty" msgpack:"message,omitempty"`
}

// ErrUnknownFrame is returned for a frame whose type is not part of
// the protocol.
var ErrUnknownFrame = errors.New("protocol: unknown frame type")

// Validate checks that the frame is well formed for its type.
func (f *Frame) Validate() error {
	switch f.Type {
	case FrameEvent, FrameTaskCompleted, FrameMouseCapture, FrameMouseRelease,
		FrameTree, FrameAction, FrameError:
		return nil
	case "":
		return fmt.Errorf("%w: missing type", ErrUnknownFrame)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFrame, f.Type)
	}
}

// NewTreeFrame wraps a serialized tree for sending.
func NewTreeFrame(tree any) *Frame {
	return &Frame{Type: FrameTree, Tree: tree}
}

// NewErrorFrame wraps an error code and message for sending.
func NewErrorFrame(code, message string) *Frame {
	return &Frame{Type: FrameError, Code: code, Message: message}
}
