package bridge

import (
	"encoding/json"
	"errors"

	vberrors "github.com/go-drift/viewbridge/pkg/errors"
)

// MessageCodec encodes and decodes bridge frames.
type MessageCodec interface {
	// DecodeBatch parses one inbound frame.
	DecodeBatch(data []byte) (Batch, error)

	// EncodeResult serializes one outbound result.
	EncodeResult(r Result) ([]byte, error)
}

// JsonCodec implements MessageCodec using JSON. Numbers inside props and
// args decode as float64.
type JsonCodec struct{}

// DecodeBatch implements MessageCodec.
func (c JsonCodec) DecodeBatch(data []byte) (Batch, error) {
	if len(data) == 0 {
		return Batch{}, ErrEmptyFrame
	}
	var b Batch
	if err := json.Unmarshal(data, &b); err != nil {
		return Batch{}, &vberrors.ParseError{Source: "bridge", DataType: "Batch", Got: string(data), Err: err}
	}
	for i, cmd := range b.Commands {
		if cmd.Op == "" {
			return Batch{}, &vberrors.ParseError{Source: "bridge", DataType: "Command", Got: b.Commands[i]}
		}
	}
	return b, nil
}

// EncodeResult implements MessageCodec.
func (c JsonCodec) EncodeResult(r Result) ([]byte, error) {
	return json.Marshal(r)
}

// DefaultCodec is the codec used by Server.
var DefaultCodec MessageCodec = JsonCodec{}

// Standard errors for bridge operations.
var (
	// ErrEmptyFrame indicates an inbound frame without payload.
	ErrEmptyFrame = errors.New("bridge: empty frame")

	// ErrUnknownOp indicates a command with an unsupported operation.
	ErrUnknownOp = errors.New("bridge: unknown operation")

	// ErrClosed indicates the UI thread no longer accepts work.
	ErrClosed = errors.New("bridge: dispatcher closed")

	// ErrNoRootFactory indicates addRootView without a configured factory.
	ErrNoRootFactory = errors.New("bridge: no root factory configured")
)
