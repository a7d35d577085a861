// Package sink implements the LIFO stack of (handlers-table, closure)
// scopes that routes decoder events to user-registered handlers, and the
// pipeline status that latches the first handler failure.
package sink

import (
	"github.com/dstream-io/pbflow/def"
	"github.com/dstream-io/pbflow/handlers"
	"github.com/dstream-io/pbflow/status"
)

type frame struct {
	table   *handlers.Table
	closure handlers.Closure
}

// Sink is the routing stack described by spec §4.4. It is owned
// exclusively by one decoder and reused across parses via Reset.
type Sink struct {
	stack []frame
	code  status.Code
	err   *status.Error
}

// New returns an empty Sink. Call Reset before first use.
func New() *Sink {
	return &Sink{stack: make([]frame, 0, 16)}
}

// Reset discards any prior stack and pipeline status, and pushes the
// top-level (table, closure) frame the next parse runs against.
func (s *Sink) Reset(table *handlers.Table, topClosure handlers.Closure) {
	s.stack = s.stack[:0]
	s.stack = append(s.stack, frame{table: table, closure: topClosure})
	s.code = status.OK
	s.err = nil
}

// Status returns the pipeline's latched status: status.OK until the first
// handler failure, after which every dispatch short-circuits and returns
// the same code.
func (s *Sink) Status() status.Code {
	return s.code
}

// Err returns the structured error of the first handler failure, or nil.
func (s *Sink) Err() *status.Error {
	return s.err
}

func (s *Sink) fail(err *status.Error) status.Code {
	if s.code == status.OK {
		s.code = err.Code
		s.err = err
	}
	return s.code
}

// Fail latches a wire-format failure detected by the decoder itself (as
// opposed to a handler's return code) onto the pipeline, following the
// same first-failure-wins rule.
func (s *Sink) Fail(err *status.Error) status.Code {
	return s.fail(err)
}

func (s *Sink) top() *frame {
	return &s.stack[len(s.stack)-1]
}

// StartMessage invokes the current top frame's startmsg handler, if any,
// updating the frame's closure with the handler's return value. Used only
// for the outermost message of a parse; sub-messages fold this into
// StartSubMessage.
func (s *Sink) StartMessage() status.Code {
	if s.code != status.OK {
		return s.code
	}
	f := s.top()
	fn, _ := f.table.Get(def.StartMsgSelector).(handlers.StartMessageFunc)
	if fn == nil {
		return status.OK
	}
	closure, code := fn(f.closure)
	if code != status.OK {
		return s.fail(status.New(code, "startmsg handler failed"))
	}
	f.closure = closure
	return status.OK
}

// EndMessage invokes the current top frame's endmsg handler, if any. Used
// only for the outermost message of a parse.
func (s *Sink) EndMessage() status.Code {
	if s.code != status.OK {
		return s.code
	}
	f := s.top()
	fn, _ := f.table.Get(def.EndMsgSelector).(handlers.EndMessageFunc)
	if fn == nil {
		return status.OK
	}
	if code := fn(f.closure); code != status.OK {
		return s.fail(status.New(code, "endmsg handler failed"))
	}
	return status.OK
}

// PutValue delivers one decoded scalar to the value handler at selector in
// the current top frame.
func (s *Sink) PutValue(selector int, value interface{}) status.Code {
	if s.code != status.OK {
		return s.code
	}
	f := s.top()
	fn, _ := f.table.Get(selector).(handlers.ValueFunc)
	if fn == nil {
		return status.OK
	}
	if code := fn(f.closure, value); code != status.OK {
		return s.fail(status.New(code, "value handler failed"))
	}
	return status.OK
}

// StartSequence pushes a new scope for a repeated field's elements, sharing
// the current frame's table (element selectors live in that table) with a
// fresh closure from the startseq handler. A field with no startseq
// handler reuses the parent closure unchanged.
func (s *Sink) StartSequence(selector int) status.Code {
	if s.code != status.OK {
		return s.code
	}
	f := s.top()
	closure := f.closure
	if fn, ok := f.table.Get(selector).(handlers.StartSequenceFunc); ok && fn != nil {
		var code status.Code
		closure, code = fn(f.closure)
		if code != status.OK {
			return s.fail(status.New(code, "startseq handler failed"))
		}
	}
	s.stack = append(s.stack, frame{table: f.table, closure: closure})
	return status.OK
}

// EndSequence invokes the endseq handler for the field whose StartSequence
// pushed the current top frame, then pops it.
func (s *Sink) EndSequence(selector int) status.Code {
	if s.code != status.OK {
		return s.code
	}
	f := s.top()
	if fn, ok := f.table.Get(selector).(handlers.EndSequenceFunc); ok && fn != nil {
		if code := fn(f.closure); code != status.OK {
			s.stack = s.stack[:len(s.stack)-1]
			return s.fail(status.New(code, "endseq handler failed"))
		}
	}
	s.stack = s.stack[:len(s.stack)-1]
	return status.OK
}

// StartString invokes the startstr handler for the field at selector and
// pushes the string scope's closure so PutStringBuffer/EndString dispatch
// against it.
func (s *Sink) StartString(selector int, sizeHint uint64) status.Code {
	if s.code != status.OK {
		return s.code
	}
	f := s.top()
	closure := f.closure
	if fn, ok := f.table.Get(selector).(handlers.StartStringFunc); ok && fn != nil {
		var code status.Code
		closure, code = fn(f.closure, sizeHint)
		if code != status.OK {
			return s.fail(status.New(code, "startstr handler failed"))
		}
	}
	s.stack = append(s.stack, frame{table: f.table, closure: closure})
	return status.OK
}

// PutStringBuffer delivers one fragment of a string/bytes value to the
// string-chunk handler at selector, in the string scope StartString
// pushed.
func (s *Sink) PutStringBuffer(selector int, chunk []byte) status.Code {
	if s.code != status.OK {
		return s.code
	}
	f := s.top()
	fn, _ := f.table.Get(selector).(handlers.StringChunkFunc)
	if fn == nil {
		return status.OK
	}
	if code := fn(f.closure, chunk); code != status.OK {
		return s.fail(status.New(code, "string-chunk handler failed"))
	}
	return status.OK
}

// EndString invokes the endstr handler for the field whose StartString
// pushed the current top frame, then pops it.
func (s *Sink) EndString(selector int) status.Code {
	if s.code != status.OK {
		return s.code
	}
	f := s.top()
	if fn, ok := f.table.Get(selector).(handlers.EndStringFunc); ok && fn != nil {
		if code := fn(f.closure); code != status.OK {
			s.stack = s.stack[:len(s.stack)-1]
			return s.fail(status.New(code, "endstr handler failed"))
		}
	}
	s.stack = s.stack[:len(s.stack)-1]
	return status.OK
}

// StartSubMessage enters a sub-message or group field's body: it invokes
// the parent field's startsubmsg handler, then the child message's own
// startmsg handler, and pushes the resulting frame using the child
// handlers table registered via Table.SetSubHandlers. If no sub-handlers
// table was registered the field's bytes are treated as unknown by the
// caller; StartSubMessage is not invoked in that case.
func (s *Sink) StartSubMessage(selector int, childTable *handlers.Table) status.Code {
	if s.code != status.OK {
		return s.code
	}
	f := s.top()
	closure := f.closure
	if fn, ok := f.table.Get(selector).(handlers.StartSubMessageFunc); ok && fn != nil {
		var code status.Code
		closure, code = fn(f.closure)
		if code != status.OK {
			return s.fail(status.New(code, "startsubmsg handler failed"))
		}
	}
	s.stack = append(s.stack, frame{table: childTable, closure: closure})
	return s.StartMessage()
}

// EndSubMessage exits a sub-message or group field's body: it invokes the
// child message's own endmsg handler, pops the frame, then invokes the
// parent field's endsubmsg handler. selector is the field's startsubmsg
// selector, the same one passed to StartSubMessage; def.Freeze places the
// endsubmsg slot directly after it.
func (s *Sink) EndSubMessage(selector int) status.Code {
	if code := s.EndMessage(); code != status.OK {
		s.stack = s.stack[:len(s.stack)-1]
		return code
	}
	s.stack = s.stack[:len(s.stack)-1]
	if s.code != status.OK {
		return s.code
	}
	f := s.top()
	if fn, ok := f.table.Get(selector + 1).(handlers.EndSubMessageFunc); ok && fn != nil {
		if code := fn(f.closure); code != status.OK {
			return s.fail(status.New(code, "endsubmsg handler failed"))
		}
	}
	return status.OK
}

// Depth returns the number of active frames, including the top-level one
// pushed by Reset. Sequence and string scopes count as frames here; the
// decoder enforces MaxNesting on its own frame stack, not on this count.
func (s *Sink) Depth() int {
	return len(s.stack)
}
