// Package errors provides structured error reporting for viewbridge.
//
// Structural inconsistencies, configuration problems and recovered panics are
// not returned across the bridge boundary. They are routed to a Handler,
// which embedders replace to forward diagnostics to their own exception
// reporting.
package errors

import (
	"fmt"
	"strconv"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindConfig indicates a missing or misconfigured controller registration.
	KindConfig
	// KindStructure indicates a native tree operation that could not be applied.
	KindStructure
	// KindQuery indicates a failed query such as a measurement.
	KindQuery
	// KindBridge indicates a malformed or undeliverable bridge command.
	KindBridge
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindStructure:
		return "structure"
	case KindQuery:
		return "query"
	case KindBridge:
		return "bridge"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// UIError represents a structured diagnostic raised by the view manager.
type UIError struct {
	// Op is the operation that failed (e.g., "uimanager.AddChild").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// ViewID is the node the operation addressed, or 0 when not applicable.
	ViewID int
	// NonFatal is set when the process can keep running after the error.
	NonFatal bool
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *UIError) Error() string {
	if e.ViewID != 0 {
		return fmt.Sprintf("%s [%s] id=%d: %v", e.Op, e.Kind, e.ViewID, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *UIError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "uithread.Looper").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// StructureError describes a parent/child pairing the native tree rejected.
// Both sides are described so the offending class names can be found from a
// single report.
type StructureError struct {
	ParentID    int
	ChildID     int
	ParentClass string
	ChildClass  string
	// ParentKind and ChildKind are the Go types of the native views.
	ParentKind string
	ChildKind  string
	// RenderClass is the class name of the parent's render node, if known.
	RenderClass string
}

func (e *StructureError) Error() string {
	return "child null or parent not container pid " + strconv.Itoa(e.ParentID) +
		" parentTag " + orNull(e.ParentClass) +
		" parentClass " + orNull(e.ParentKind) +
		" renderNodeClass " + orNull(e.RenderClass) +
		" id " + strconv.Itoa(e.ChildID) +
		" childTag " + orNull(e.ChildClass) +
		" childClass " + orNull(e.ChildKind)
}

func orNull(s string) string {
	if s == "" {
		return "null"
	}
	return s
}

// ParseError represents a failure to decode bridge data.
type ParseError struct {
	// Source names where the data came from (e.g., "bridge/ws").
	Source string
	// DataType is the expected type name.
	DataType string
	// Got is the actual data received.
	Got any
	// Err is the decoder failure, if any.
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to parse %s from %s: %v", e.DataType, e.Source, e.Err)
	}
	return fmt.Sprintf("failed to parse %s from %s: got %T", e.DataType, e.Source, e.Got)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Handler receives errors reported by viewbridge.
type Handler interface {
	// HandleError is called when an error occurs.
	HandleError(err *UIError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
