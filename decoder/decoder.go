// Package decoder implements the streaming, resumable protobuf wire-format
// parser: the state machine of spec-shape push-parsing driving a sink. It
// is the component the rest of this module exists to support.
package decoder

import (
	"math"

	"github.com/dstream-io/pbflow/def"
	"github.com/dstream-io/pbflow/handlers"
	"github.com/dstream-io/pbflow/sink"
	"github.com/dstream-io/pbflow/status"
	"github.com/dstream-io/pbflow/wire"
)

const (
	selectorTopLevel = -1 // stackFrame.ownerSelector: outermost message, close via EndMessage
	selectorSkipped  = -2 // stackFrame.ownerSelector: unknown group, no sink call on exit
	skipField        = -1 // field argument meaning "unknown, discard the decoded value"
)

// contKind names the one primitive read that may be suspended mid-way
// across a Feed call, and therefore must be resumed at the start of the
// next one.
type contKind int

const (
	contNone contKind = iota
	contTag
	contValueVarint
	contValueFixed
	contLength
)

type lengthPurpose int

const (
	purposeString lengthPurpose = iota
	purposeSubMessage
	purposePacked
	purposeSkip
)

// stackFrame is one level of nesting: the top-level message, a sub-message,
// a group, or (via the packed/string fields below) an in-progress
// length-delimited value within the current level.
type stackFrame struct {
	msg   *def.MessageDescriptor // nil while skipping an unrecognized group
	table *handlers.Table
	delimEnd uint64 // absolute offset this frame ends at; math.MaxUint64 if unbounded

	isGroup  bool
	groupNum int32
	unknown  bool // true for a pushed frame that only exists to skip an unrecognized group

	// ownerSelector is the StartSubMsgSelector of the field whose entry
	// pushed this frame, selectorTopLevel for the outermost frame, or
	// selectorSkipped for an unknown group (no sink call on exit).
	ownerSelector int

	lastField int32 // field number of the most recently active field, 0 if none
	seqOpen   bool  // whether lastField currently has an implicit (non-packed) sequence open

	packedField *def.FieldDescriptor
	packedEnd   uint64

	stringField *def.FieldDescriptor
	stringEnd   uint64

	skipEnd uint64 // >0 while discarding bytes of an unrecognized length-delimited field
}

// Decoder drives a sink.Sink from a stream of wire-format bytes delivered
// in arbitrarily sized, arbitrarily fragmented chunks via Feed.
type Decoder struct {
	opts  Options
	sink  *sink.Sink
	stack []stackFrame

	// streamPos is the absolute offset, from the start of the message, of
	// the next byte this decoder has not yet accounted for.
	streamPos uint64

	cont           contKind
	carry          []byte // ≤10 bytes of a value straddling a Feed boundary
	contField      int32
	contFixedLen   int
	contPacked     bool
	contLenPurpose lengthPurpose

	finished bool
}

// New returns a Decoder that dispatches through s. Call Reset before the
// first Feed.
func New(opts Options, s *sink.Sink) *Decoder {
	return &Decoder{opts: opts, sink: s, carry: make([]byte, 0, wire.MaxVarintLen)}
}

// Reset prepares the decoder for a new parse of one message described by
// table, and fires the top-level startmsg handler with topClosure.
func (d *Decoder) Reset(table *handlers.Table, topClosure handlers.Closure) status.Code {
	d.sink.Reset(table, topClosure)
	d.stack = append(d.stack[:0], stackFrame{
		msg: table.Message(), table: table,
		delimEnd: math.MaxUint64, ownerSelector: selectorTopLevel,
	})
	d.streamPos = 0
	d.cont = contNone
	d.carry = d.carry[:0]
	d.finished = false
	return d.sink.StartMessage()
}

// Feed delivers the next span of input bytes and returns how many of them
// the decoder consumed. Running out of bytes mid-element is reported as a
// full consumption, not an error: the decoder remembers where it left off.
// The caller should check the returned error (and, for handler failures,
// may inspect the underlying *status.Error) after every call.
func (d *Decoder) Feed(data []byte) (int, error) {
	if d.finished {
		return 0, status.New(status.Truncated, "decoder: Feed called after Finish")
	}
	if code := d.sink.Status(); code != status.OK {
		return 0, d.sink.Err()
	}

	// d.streamPos already denotes the absolute offset of the first pending
	// carry byte (or of data[0], when there is no carry): it is where the
	// previous call left it.
	base := d.streamPos
	carryLen := len(d.carry)
	buf := data
	if carryLen > 0 {
		buf = make([]byte, 0, carryLen+len(data))
		buf = append(buf, d.carry...)
		buf = append(buf, data...)
	}

	stop := d.run(buf, base)

	if d.cont == contNone {
		d.carry = d.carry[:0]
	}
	newCarryLen := len(d.carry)
	d.streamPos = base + uint64(stop-newCarryLen)

	consumed := stop - carryLen
	if consumed < 0 {
		consumed = 0
	}
	if consumed > len(data) {
		consumed = len(data)
	}
	if code := d.sink.Status(); code != status.OK {
		return consumed, d.sink.Err()
	}
	return consumed, nil
}

// Finish signals end of input. Any suspended partial element, or any
// sub-message/group/packed-region/string still open, is reported as
// status.Truncated; otherwise it fires the top-level endmsg handler.
func (d *Decoder) Finish() error {
	if d.finished {
		return nil
	}
	d.finished = true

	if code := d.sink.Status(); code != status.OK {
		return d.sink.Err()
	}
	// A pending tag read with nothing carried over is the normal way a
	// message ends: the decoder always attempts one more tag and simply
	// finds no more bytes. Any other suspended state, or a tag read that
	// did see a partial byte, means the input stopped mid-element.
	cleanEOF := d.cont == contTag && len(d.carry) == 0
	if !cleanEOF && (d.cont != contNone || len(d.carry) > 0) {
		err := status.New(status.Truncated, "input ended mid-element")
		d.sink.Fail(err)
		return err
	}
	if len(d.stack) != 1 {
		err := status.New(status.Truncated, "input ended with an unterminated sub-message or group")
		d.sink.Fail(err)
		return err
	}

	top := &d.stack[0]
	if top.packedField != nil || top.stringField != nil || top.skipEnd > 0 {
		err := status.New(status.Truncated, "input ended mid-value")
		d.sink.Fail(err)
		return err
	}
	if top.seqOpen {
		if fd := top.msg.FieldByNumber(top.lastField); fd != nil {
			if code := d.sink.EndSequence(fd.EndSeqSelector()); code != status.OK {
				return d.sink.Err()
			}
		}
	}
	if code := d.sink.EndMessage(); code != status.OK {
		return d.sink.Err()
	}
	return nil
}

// run advances through buf (whose first byte sits at absolute offset base)
// as far as it can, returning the position in buf where it stopped: either
// len(buf) (input exhausted, decoder state fully captured in d.cont/d.carry
// or the current frame's streaming fields) or the offset of the byte that
// triggered a wire-format or handler failure.
func (d *Decoder) run(buf []byte, base uint64) int {
	i := 0
	if d.cont != contNone {
		if !d.resume(buf, &i, base) {
			return i
		}
	}

	for {
		frame := &d.stack[len(d.stack)-1]
		pos := base + uint64(i)

		switch {
		case frame.skipEnd > 0:
			remaining := frame.skipEnd - pos
			avail := uint64(len(buf) - i)
			n := remaining
			if avail < n {
				n = avail
			}
			i += int(n)
			if base+uint64(i) == frame.skipEnd {
				frame.skipEnd = 0
				continue
			}
			return i

		case frame.packedField != nil:
			if pos > frame.packedEnd {
				d.sink.Fail(status.New(status.LengthOverflow, "packed region for field %d overran its declared length", frame.packedField.Number))
				return i
			}
			if pos == frame.packedEnd {
				fd := frame.packedField
				frame.packedField = nil
				if code := d.sink.EndSequence(fd.EndSeqSelector()); code != status.OK {
					return i
				}
				continue
			}
			if !d.readPackedElement(frame, buf, &i, base) {
				return i
			}
			continue

		case frame.stringField != nil:
			remaining := frame.stringEnd - pos
			avail := uint64(len(buf) - i)
			n := remaining
			if avail < n {
				n = avail
			}
			if n > 0 {
				fd := frame.stringField
				code := d.sink.PutStringBuffer(fd.StringChunkSelector(), buf[i:i+int(n)])
				i += int(n)
				if code != status.OK {
					return i
				}
			}
			if base+uint64(i) == frame.stringEnd {
				fd := frame.stringField
				frame.stringField = nil
				if code := d.sink.EndString(fd.EndStrSelector()); code != status.OK {
					return i
				}
				continue
			}
			return i

		case pos == frame.delimEnd:
			if !d.exitFrame() {
				return i
			}
			continue

		case pos > frame.delimEnd:
			d.sink.Fail(status.New(status.LengthOverflow, "frame overran its declared end"))
			return i
		}

		tag, ok := d.readTag(buf, &i, base)
		if !ok {
			return i
		}
		if !d.dispatch(tag, buf, &i, base) {
			return i
		}
	}
}

// resume retries the one read that was in progress when the previous Feed
// call ran out of bytes, using the same functions the fresh-read path
// uses, so suspension is transparent to every downstream helper.
func (d *Decoder) resume(buf []byte, i *int, base uint64) bool {
	// The suspended read is retried once; if it runs out of bytes again it
	// records a fresh suspension itself.
	kind := d.cont
	d.cont = contNone
	switch kind {
	case contTag:
		tag, ok := d.readTag(buf, i, base)
		if !ok {
			return false
		}
		return d.dispatch(tag, buf, i, base)
	case contValueVarint:
		return d.valueVarint(buf, i, d.contField, d.contPacked)
	case contValueFixed:
		return d.valueFixed(buf, i, d.contField, d.contFixedLen, d.contPacked)
	case contLength:
		return d.readLengthFor(buf, i, base, d.contField, d.contLenPurpose)
	default:
		return true
	}
}

// readTag decodes the next field tag, or records a suspension.
func (d *Decoder) readTag(buf []byte, i *int, base uint64) (wire.Tag, bool) {
	val, n, err := wire.DecodeVarint(buf[*i:])
	if err == wire.ErrShortVarint {
		d.carry = append(d.carry[:0], buf[*i:]...)
		d.cont = contTag
		*i = len(buf)
		return 0, false
	}
	if err != nil {
		d.sink.Fail(status.New(status.MalformedVarint, "malformed tag: %v", err))
		return 0, false
	}
	*i += n
	return wire.Tag(val), true
}

// dispatch acts on a freshly decoded tag: unknown-field skip, matched
// value read, packed-region entry, or group exit.
func (d *Decoder) dispatch(tag wire.Tag, buf []byte, i *int, base uint64) bool {
	raw := uint64(tag)
	wt := wire.WireType(raw & 0x7)
	fieldNum64 := raw >> 3
	if fieldNum64 == 0 || fieldNum64 > wire.MaxFieldNumber {
		d.sink.Fail(status.New(status.BadFieldNumber, "field number %d out of range", fieldNum64))
		return false
	}
	if !wt.Valid() {
		d.sink.Fail(status.New(status.BadWireType, "invalid wire type %d", wt))
		return false
	}
	fieldNum := int32(fieldNum64)

	frame := &d.stack[len(d.stack)-1]

	if wt == wire.EndGroup {
		if !frame.isGroup || frame.groupNum != fieldNum {
			d.sink.Fail(status.New(status.UnbalancedGroup, "end-group for field %d does not match the enclosing group", fieldNum))
			return false
		}
		return d.exitFrame()
	}

	var fd *def.FieldDescriptor
	if frame.msg != nil {
		fd = frame.msg.FieldByNumber(fieldNum)
	}
	if fd == nil {
		return d.skipUnknown(buf, i, base, fieldNum, wt)
	}

	if frame.seqOpen && frame.lastField != fieldNum {
		if prevFd := frame.msg.FieldByNumber(frame.lastField); prevFd != nil {
			if code := d.sink.EndSequence(prevFd.EndSeqSelector()); code != status.OK {
				return false
			}
		}
		frame.seqOpen = false
	}

	native := def.NativeWireType(fd.Type)
	switch {
	case wt == native:
		return d.readMatchedValue(fd, buf, i, base, frame)
	case fd.Packable() && wt == wire.Bytes:
		return d.readLengthFor(buf, i, base, fd.Number, purposePacked)
	default:
		d.sink.Fail(status.New(status.BadWireType, "field %d: wire type %d does not match expected %d", fieldNum, wt, native))
		return false
	}
}

// readMatchedValue reads one occurrence of fd's value, opening its
// implicit (non-packed) sequence scope on first use.
func (d *Decoder) readMatchedValue(fd *def.FieldDescriptor, buf []byte, i *int, base uint64, frame *stackFrame) bool {
	if fd.Label == def.Repeated && !frame.seqOpen {
		if code := d.sink.StartSequence(fd.StartSeqSelector()); code != status.OK {
			return false
		}
		frame.seqOpen = true
	}
	frame.lastField = fd.Number

	switch def.NativeWireType(fd.Type) {
	case wire.Varint:
		return d.valueVarint(buf, i, fd.Number, false)
	case wire.Fixed32:
		return d.valueFixed(buf, i, fd.Number, 4, false)
	case wire.Fixed64:
		return d.valueFixed(buf, i, fd.Number, 8, false)
	case wire.Bytes:
		if fd.Type == def.Message {
			return d.readLengthFor(buf, i, base, fd.Number, purposeSubMessage)
		}
		return d.readLengthFor(buf, i, base, fd.Number, purposeString)
	case wire.StartGroup:
		return d.enterGroup(fd, frame)
	default:
		d.sink.Fail(status.New(status.BadWireType, "field %d has no supported native wire type", fd.Number))
		return false
	}
}

// skipUnknown consumes the bytes of a field with no matching descriptor,
// without invoking any handler.
func (d *Decoder) skipUnknown(buf []byte, i *int, base uint64, fieldNum int32, wt wire.WireType) bool {
	switch wt {
	case wire.Varint:
		return d.valueVarint(buf, i, skipField, false)
	case wire.Fixed32:
		return d.valueFixed(buf, i, skipField, 4, false)
	case wire.Fixed64:
		return d.valueFixed(buf, i, skipField, 8, false)
	case wire.Bytes:
		return d.readLengthFor(buf, i, base, skipField, purposeSkip)
	case wire.StartGroup:
		if len(d.stack) >= d.opts.MaxNesting {
			d.sink.Fail(status.New(status.NestingTooDeep, "nesting exceeds MaxNesting=%d", d.opts.MaxNesting))
			return false
		}
		d.stack = append(d.stack, stackFrame{
			unknown: true, isGroup: true, groupNum: fieldNum,
			delimEnd: math.MaxUint64, ownerSelector: selectorSkipped,
		})
		return true
	default:
		d.sink.Fail(status.New(status.BadWireType, "unexpected wire type %d for unknown field", wt))
		return false
	}
}

// enterGroup pushes a frame for a matched group-typed field, or an
// unknown-style skip frame if the field has no registered sub-handlers.
func (d *Decoder) enterGroup(fd *def.FieldDescriptor, frame *stackFrame) bool {
	if len(d.stack) >= d.opts.MaxNesting {
		d.sink.Fail(status.New(status.NestingTooDeep, "nesting exceeds MaxNesting=%d", d.opts.MaxNesting))
		return false
	}
	childTable := frame.table.SubHandlers(fd.StartSubMsgSelector())
	if childTable == nil {
		d.stack = append(d.stack, stackFrame{
			unknown: true, isGroup: true, groupNum: fd.Number,
			delimEnd: math.MaxUint64, ownerSelector: selectorSkipped,
		})
		return true
	}
	code := d.sink.StartSubMessage(fd.StartSubMsgSelector(), childTable)
	if code != status.OK {
		return false
	}
	d.stack = append(d.stack, stackFrame{
		msg: childTable.Message(), table: childTable,
		delimEnd: math.MaxUint64, isGroup: true, groupNum: fd.Number,
		ownerSelector: fd.StartSubMsgSelector(),
	})
	return true
}

// exitFrame closes the current top frame: any open implicit sequence is
// closed first, then the frame is popped and the owning field's
// endsubmsg/endmsg handler (or nothing, for an unknown group) fires.
func (d *Decoder) exitFrame() bool {
	frame := &d.stack[len(d.stack)-1]
	if frame.seqOpen {
		if prevFd := frame.msg.FieldByNumber(frame.lastField); prevFd != nil {
			if code := d.sink.EndSequence(prevFd.EndSeqSelector()); code != status.OK {
				return false
			}
		}
		frame.seqOpen = false
	}
	ownerSelector := frame.ownerSelector
	unknown := frame.unknown
	d.stack = d.stack[:len(d.stack)-1]

	if unknown {
		return true
	}
	if ownerSelector == selectorTopLevel {
		return d.sink.EndMessage() == status.OK
	}
	return d.sink.EndSubMessage(ownerSelector) == status.OK
}

// readValueVarint decodes a varint-encoded value, or records a suspension
// tagged with field and packed so resume retries with the same act step.
func (d *Decoder) readValueVarint(buf []byte, i *int, field int32, packed bool) (uint64, bool) {
	val, n, err := wire.DecodeVarint(buf[*i:])
	if err == wire.ErrShortVarint {
		d.carry = append(d.carry[:0], buf[*i:]...)
		d.cont = contValueVarint
		d.contField = field
		d.contPacked = packed
		*i = len(buf)
		return 0, false
	}
	if err != nil {
		d.sink.Fail(status.New(status.MalformedVarint, "malformed varint for field %d: %v", field, err))
		return 0, false
	}
	*i += n
	return val, true
}

// readFixedBytes reads n raw bytes (4 or 8), or records a suspension.
func (d *Decoder) readFixedBytes(buf []byte, i *int, field int32, n int, packed bool) ([]byte, bool) {
	if len(buf)-*i < n {
		d.carry = append(d.carry[:0], buf[*i:]...)
		d.cont = contValueFixed
		d.contField = field
		d.contFixedLen = n
		d.contPacked = packed
		*i = len(buf)
		return nil, false
	}
	raw := buf[*i : *i+n]
	*i += n
	return raw, true
}

// valueVarint reads one varint value and, once complete, delivers it
// (field == skipField discards it).
func (d *Decoder) valueVarint(buf []byte, i *int, field int32, packed bool) bool {
	val, ok := d.readValueVarint(buf, i, field, packed)
	if !ok {
		return false
	}
	if field < 0 {
		return true
	}
	fd := d.stack[len(d.stack)-1].msg.FieldByNumber(field)
	return d.deliverScalarVarintValue(fd, val)
}

// valueFixed reads one fixed-width value and, once complete, delivers it
// (field == skipField discards it).
func (d *Decoder) valueFixed(buf []byte, i *int, field int32, n int, packed bool) bool {
	raw, ok := d.readFixedBytes(buf, i, field, n, packed)
	if !ok {
		return false
	}
	if field < 0 {
		return true
	}
	fd := d.stack[len(d.stack)-1].msg.FieldByNumber(field)
	return d.deliverScalarFixedValue(fd, raw)
}

// readLengthFor decodes the length prefix of a length-delimited value and
// then acts on it, or records a suspension tagged with purpose so resume
// can pick the same action back up.
func (d *Decoder) readLengthFor(buf []byte, i *int, base uint64, field int32, purpose lengthPurpose) bool {
	val, n, err := wire.DecodeVarint(buf[*i:])
	if err == wire.ErrShortVarint {
		d.carry = append(d.carry[:0], buf[*i:]...)
		d.cont = contLength
		d.contField = field
		d.contLenPurpose = purpose
		*i = len(buf)
		return false
	}
	if err != nil {
		d.sink.Fail(status.New(status.MalformedVarint, "malformed length varint: %v", err))
		return false
	}
	*i += n
	return d.actLength(field, purpose, val, base+uint64(*i))
}

// actLength dispatches on a fully-decoded length: skip, string, sub-message
// entry, or packed-region entry.
func (d *Decoder) actLength(field int32, purpose lengthPurpose, length uint64, posAfterLength uint64) bool {
	frame := &d.stack[len(d.stack)-1]
	end := posAfterLength + length
	if end < posAfterLength {
		d.sink.Fail(status.New(status.LengthOverflow, "declared length overflows"))
		return false
	}
	if end > frame.delimEnd {
		d.sink.Fail(status.New(status.LengthOverflow, "length-delimited value overruns its enclosing region"))
		return false
	}
	if purpose == purposeSkip {
		frame.skipEnd = end
		return true
	}

	fd := frame.msg.FieldByNumber(field)
	switch purpose {
	case purposeString:
		return d.enterString(frame, fd, length, end)
	case purposeSubMessage:
		return d.enterSubMessage(frame, fd, end)
	case purposePacked:
		return d.enterPackedBody(frame, fd, end)
	default:
		return true
	}
}

// enterString opens the string scope for fd, delivering the whole value
// immediately if it is empty.
func (d *Decoder) enterString(frame *stackFrame, fd *def.FieldDescriptor, length uint64, end uint64) bool {
	if fd.Label == def.Repeated && !frame.seqOpen {
		if code := d.sink.StartSequence(fd.StartSeqSelector()); code != status.OK {
			return false
		}
		frame.seqOpen = true
	}
	frame.lastField = fd.Number

	if code := d.sink.StartString(fd.StartStrSelector(), length); code != status.OK {
		return false
	}
	if length == 0 {
		return d.sink.EndString(fd.EndStrSelector()) == status.OK
	}
	frame.stringField = fd
	frame.stringEnd = end
	return true
}

// enterSubMessage pushes a child frame for fd, or skips its bytes if no
// sub-handlers table was registered for it.
func (d *Decoder) enterSubMessage(frame *stackFrame, fd *def.FieldDescriptor, end uint64) bool {
	if fd.Label == def.Repeated && !frame.seqOpen {
		if code := d.sink.StartSequence(fd.StartSeqSelector()); code != status.OK {
			return false
		}
		frame.seqOpen = true
	}
	frame.lastField = fd.Number

	if len(d.stack) >= d.opts.MaxNesting {
		d.sink.Fail(status.New(status.NestingTooDeep, "nesting exceeds MaxNesting=%d", d.opts.MaxNesting))
		return false
	}
	childTable := frame.table.SubHandlers(fd.StartSubMsgSelector())
	if childTable == nil {
		frame.skipEnd = end
		return true
	}
	code := d.sink.StartSubMessage(fd.StartSubMsgSelector(), childTable)
	if code != status.OK {
		return false
	}
	d.stack = append(d.stack, stackFrame{
		msg: childTable.Message(), table: childTable,
		delimEnd: end, ownerSelector: fd.StartSubMsgSelector(),
	})
	return true
}

// enterPackedBody opens the packed-element loop for fd; run's main loop
// closes it once the region's absolute end is reached.
func (d *Decoder) enterPackedBody(frame *stackFrame, fd *def.FieldDescriptor, end uint64) bool {
	if code := d.sink.StartSequence(fd.StartSeqSelector()); code != status.OK {
		return false
	}
	frame.packedField = fd
	frame.packedEnd = end
	return true
}

// readPackedElement reads and delivers one element of a packed region.
func (d *Decoder) readPackedElement(frame *stackFrame, buf []byte, i *int, base uint64) bool {
	fd := frame.packedField
	switch def.NativeWireType(fd.Type) {
	case wire.Varint:
		return d.valueVarint(buf, i, fd.Number, true)
	case wire.Fixed32:
		return d.valueFixed(buf, i, fd.Number, 4, true)
	case wire.Fixed64:
		return d.valueFixed(buf, i, fd.Number, 8, true)
	default:
		d.sink.Fail(status.New(status.BadWireType, "field %d cannot be packed", fd.Number))
		return false
	}
}

// deliverScalarVarintValue converts a decoded varint to fd's Go type and
// delivers it. Shared by scalar, repeated, and packed-element delivery.
func (d *Decoder) deliverScalarVarintValue(fd *def.FieldDescriptor, raw uint64) bool {
	var v interface{}
	switch fd.Type {
	case def.Int32:
		v = int32(raw)
	case def.Int64:
		v = int64(raw)
	case def.Uint32:
		v = uint32(raw)
	case def.Uint64:
		v = raw
	case def.Bool:
		v = raw != 0
	case def.Enum:
		v = int32(raw)
	case def.Sint32:
		v = wire.ZigZagDecode32(raw)
	case def.Sint64:
		v = wire.ZigZagDecode64(raw)
	default:
		d.sink.Fail(status.New(status.BadWireType, "field %d: type %s is not varint-encoded", fd.Number, fd.Type))
		return false
	}
	return d.sink.PutValue(fd.ValueSelector(), v) == status.OK
}

// deliverScalarFixedValue converts decoded fixed-width bytes to fd's Go
// type and delivers it. Shared by scalar, repeated, and packed-element
// delivery.
func (d *Decoder) deliverScalarFixedValue(fd *def.FieldDescriptor, raw []byte) bool {
	var v interface{}
	switch fd.Type {
	case def.Fixed32:
		u, _ := wire.DecodeFixed32(raw)
		v = u
	case def.Sfixed32:
		u, _ := wire.DecodeFixed32(raw)
		v = int32(u)
	case def.Float:
		u, _ := wire.DecodeFixed32(raw)
		v = wire.Float32FromBits(u)
	case def.Fixed64:
		u, _ := wire.DecodeFixed64(raw)
		v = u
	case def.Sfixed64:
		u, _ := wire.DecodeFixed64(raw)
		v = int64(u)
	case def.Double:
		u, _ := wire.DecodeFixed64(raw)
		v = wire.Float64FromBits(u)
	default:
		d.sink.Fail(status.New(status.BadWireType, "field %d: type %s is not fixed-width", fd.Number, fd.Type))
		return false
	}
	return d.sink.PutValue(fd.ValueSelector(), v) == status.OK
}
