package handlers

import "github.com/dstream-io/pbflow/status"

// Closure is the opaque per-scope state threaded through a handler
// invocation. The sink treats it as fully opaque; only user handlers
// interpret it. A Start* handler returns the Closure the next nested scope
// (sequence, string, or sub-message) is invoked with.
type Closure interface{}

// StartMessageFunc is invoked when the decoder enters a message (the top
// level, or after StartSubMessageFunc/StartSequenceFunc for a repeated
// sub-message). It returns the closure handlers within this message scope
// receive.
type StartMessageFunc func(closure Closure) (Closure, status.Code)

// EndMessageFunc is invoked when the decoder has consumed a message's
// length-delimited span (or matching END_GROUP tag) in full.
type EndMessageFunc func(closure Closure) status.Code

// ValueFunc delivers one decoded scalar. value's concrete Go type is
// determined by the field's def.Type: int32/int64/uint32/uint64 for the
// corresponding integer types (already zig-zag decoded where applicable),
// float32/float64 for float/double, bool for bool. For a repeated field
// this fires once per element, inside a StartSequenceFunc/EndSequenceFunc
// pair, for both packed and non-packed wire encodings alike.
type ValueFunc func(closure Closure, value interface{}) status.Code

// StartSequenceFunc is invoked on the first element of a repeated field.
// It returns the closure ValueFunc/StartStringFunc/StartSubMessageFunc
// calls for this field receive until EndSequenceFunc.
type StartSequenceFunc func(closure Closure) (Closure, status.Code)

// EndSequenceFunc is invoked once no further elements of a repeated field
// will be delivered: at the next different field tag, end of message, or
// end of input.
type EndSequenceFunc func(closure Closure) status.Code

// StartStringFunc is invoked when a string or bytes field's length-delimited
// span begins. sizeHint is the declared length, already validated against
// the enclosing region. It returns the closure StringChunkFunc calls
// receive.
type StartStringFunc func(closure Closure, sizeHint uint64) (Closure, status.Code)

// StringChunkFunc delivers one fragment of a string/bytes value's bytes, in
// order, covering the full declared length across one or more calls. The
// decoder never buffers the whole value; a fragment boundary falls wherever
// a Feed call's input happened to end.
type StringChunkFunc func(closure Closure, chunk []byte) status.Code

// EndStringFunc is invoked after the final StringChunkFunc call for one
// string/bytes value.
type EndStringFunc func(closure Closure) status.Code

// StartSubMessageFunc is invoked when a sub-message or group field's body
// begins. It returns the closure the nested StartMessageFunc receives.
type StartSubMessageFunc func(closure Closure) (Closure, status.Code)

// EndSubMessageFunc is invoked after a sub-message or group field's body is
// fully consumed.
type EndSubMessageFunc func(closure Closure) status.Code
