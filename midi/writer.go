package midi

import (
	"io"

	"github.com/pkg/errors"
)

/*
An EventWriter encodes events into a track body, mirroring EventReader. A
status byte equal to the last one written is left out (running status). Meta
and system exclusive events always break running status. Statuses without
data bytes are always written and never become the running status, otherwise
they would vanish from the stream entirely.
*/
type EventWriter struct {
	writer            io.Writer
	lastWrittenStatus byte
	buffer            []byte
}

func NewEventWriter(w io.Writer) *EventWriter {
	return &EventWriter{writer: w, buffer: make([]byte, 0, 16)}
}

func (w *EventWriter) begin(deltaTime uint32) {
	w.buffer = appendVariableLengthQuantity(w.buffer[:0], deltaTime)
}

func (w *EventWriter) flush(payload []byte) error {
	if _, err := w.writer.Write(w.buffer); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := w.writer.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

func (w *EventWriter) appendLength(length int) error {
	if int64(length) > int64(^uint32(0)) {
		return errors.Errorf("midi: payload of %d bytes is too long", length)
	}
	w.buffer = appendVariableLengthQuantity(w.buffer, uint32(length))
	return nil
}

/*
WriteEvent writes a short message. Data bytes (below 0x80) and the framing
bytes 0xF0, 0xF7 and 0xFF cannot be stored as a status in a track and are
rejected with ErrUnencodableStatus.
*/
func (w *EventWriter) WriteEvent(deltaTime uint32, data PackedWord) error {
	status := data.Status()
	switch {
	case status&msbMask == 0, status == SysExEvent, status == SysExContinuation, status == MetaEvent:
		return errors.Wrapf(ErrUnencodableStatus, "status %02X", status)
	}

	w.begin(deltaTime)
	length := DataLength(status)
	if length == 0 || status != w.lastWrittenStatus {
		w.buffer = append(w.buffer, status)
		if length > 0 {
			w.lastWrittenStatus = status
		}
	}
	if length > 0 {
		w.buffer = append(w.buffer, data.Param1())
	}
	if length > 1 {
		w.buffer = append(w.buffer, data.Param2())
	}
	return w.flush(nil)
}

func (w *EventWriter) WriteMeta(deltaTime uint32, metaType byte, payload []byte) error {
	w.begin(deltaTime)
	w.lastWrittenStatus = 0
	w.buffer = append(w.buffer, MetaEvent, metaType)
	if err := w.appendLength(len(payload)); err != nil {
		return err
	}
	return w.flush(payload)
}

/*
WriteSysEx writes a system exclusive packet. A payload that starts with 0xF0
uses that byte as its framing byte and is written as 0xF0 <length> <rest>.
Any other payload is written as a continuation packet, with 0xF7 added in
front of the length. Use WriteSysExContinuation for an 0xF7 packet whose
payload starts with 0xF0.
*/
func (w *EventWriter) WriteSysEx(deltaTime uint32, payload []byte) error {
	if len(payload) > 0 && payload[0] == SysExEvent {
		return w.writeSysEx(deltaTime, SysExEvent, payload[1:])
	}
	return w.writeSysEx(deltaTime, SysExContinuation, payload)
}

// WriteSysExContinuation writes payload verbatim behind 0xF7 and its length.
func (w *EventWriter) WriteSysExContinuation(deltaTime uint32, payload []byte) error {
	return w.writeSysEx(deltaTime, SysExContinuation, payload)
}

func (w *EventWriter) writeSysEx(deltaTime uint32, framing byte, body []byte) error {
	w.begin(deltaTime)
	w.lastWrittenStatus = 0
	w.buffer = append(w.buffer, framing)
	if err := w.appendLength(len(body)); err != nil {
		return err
	}
	return w.flush(body)
}

// WriteMessage writes any Message variant.
func (w *EventWriter) WriteMessage(deltaTime uint32, message Message) error {
	switch m := message.(type) {
	case *ControllerMessage:
		return w.WriteEvent(deltaTime, m.Data())
	case *ChannelMessage:
		return w.WriteEvent(deltaTime, m.Data())
	case *SystemCommonMessage:
		return w.WriteEvent(deltaTime, m.Data())
	case *SystemRealtimeMessage:
		return w.WriteEvent(deltaTime, m.Data())
	case *MetaMessage:
		return w.WriteMeta(deltaTime, byte(m.Type), m.Data)
	case *SysExMessage:
		if m.Continuation {
			return w.WriteSysExContinuation(deltaTime, m.Data)
		}
		return w.WriteSysEx(deltaTime, m.Data)
	}
	return errors.Errorf("midi: cannot write message of type %T", message)
}
