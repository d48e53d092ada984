package midi

import (
	"fmt"

	"github.com/pkg/errors"
)

/*
Message is one of the closed set of message variants: *ChannelMessage,
*ControllerMessage, *SystemCommonMessage, *SystemRealtimeMessage,
*MetaMessage and *SysExMessage. Use a type switch to get at the variant.

Short messages handed out by a MessageFactory may be shared, so none of the
short variants expose setters.
*/
type Message interface {
	Kind() MessageKind
	String() string
	isMessage()
}

type shortMessage struct {
	data PackedWord
}

func (m *shortMessage) isMessage() {}

// Data returns the packed status and parameter bytes.
func (m *shortMessage) Data() PackedWord {
	return m.data
}

func (m *shortMessage) Status() byte {
	return m.data.Status()
}

func (m *shortMessage) Param1() byte {
	return m.data.Param1()
}

func (m *shortMessage) Param2() byte {
	return m.data.Param2()
}

func wrongVariant(variant string, data PackedWord) error {
	return errors.Wrapf(ErrInvalidOperationOnWrongVariant,
		"status %02X is not a %s message", data.Status(), variant)
}

// A ChannelMessage is a channel voice message, status 0x80 to 0xEF.
type ChannelMessage struct {
	shortMessage
}

func NewChannelMessage(data PackedWord) (*ChannelMessage, error) {
	if ChannelCommandOf(data.Status()) == InvalidCommand {
		return nil, wrongVariant("channel", data)
	}
	return &ChannelMessage{shortMessage{data}}, nil
}

func (m *ChannelMessage) Kind() MessageKind {
	return ChannelKind
}

func (m *ChannelMessage) Command() ChannelCommand {
	return ChannelCommandOf(m.Status())
}

// Channel is zero based, 0 to 15.
func (m *ChannelMessage) Channel() byte {
	return m.Status() & lowOrderMask
}

// IsNoteOff also reports a NoteOn with velocity 0, which is how running
// status streams usually encode a note release.
func (m *ChannelMessage) IsNoteOff() bool {
	switch m.Command() {
	case NoteOffEvent:
		return true
	case NoteOnEvent:
		return m.Param2() == 0
	}
	return false
}

func (m *ChannelMessage) IsNoteOn() bool {
	return m.Command() == NoteOnEvent && m.Param2() != 0
}

// PitchWheelValue combines both parameters into the 14-bit wheel position,
// 0x2000 being the centre.
func (m *ChannelMessage) PitchWheelValue() uint16 {
	return uint16(m.Param2()&sevenBitMask)<<7 | uint16(m.Param1()&sevenBitMask)
}

func (m *ChannelMessage) String() string {
	return fmt.Sprintf("%s ch=%d %d %d", m.Command(), m.Channel(), m.Param1(), m.Param2())
}

// A ControllerMessage is a Control Change channel message, status 0xB0 to 0xBF.
type ControllerMessage struct {
	ChannelMessage
}

func NewControllerMessage(data PackedWord) (*ControllerMessage, error) {
	if ChannelCommandOf(data.Status()) != ControlChange {
		return nil, wrongVariant("controller", data)
	}
	return &ControllerMessage{ChannelMessage{shortMessage{data}}}, nil
}

func (m *ControllerMessage) Kind() MessageKind {
	return ControllerKind
}

// Controller returns ControllerUnknown for numbers outside the known table;
// Number still holds the raw value.
func (m *ControllerMessage) Controller() ControllerType {
	return ControllerTypeOf(m.Param1())
}

func (m *ControllerMessage) Number() byte {
	return m.Param1()
}

func (m *ControllerMessage) Value() byte {
	return m.Param2()
}

func (m *ControllerMessage) String() string {
	return fmt.Sprintf("ControlChange ch=%d %s(%d)=%d", m.Channel(), m.Controller(), m.Number(), m.Value())
}

// A SystemCommonMessage covers 0xF0 to 0xF7 as well as data bytes that turned
// up where a status was expected. Only 0xF1 to 0xF4 are valid.
type SystemCommonMessage struct {
	shortMessage
}

func NewSystemCommonMessage(data PackedWord) (*SystemCommonMessage, error) {
	if Classify(data.Status()) != SystemCommonKind {
		return nil, wrongVariant("system common", data)
	}
	return &SystemCommonMessage{shortMessage{data}}, nil
}

func (m *SystemCommonMessage) Kind() MessageKind {
	return SystemCommonKind
}

func (m *SystemCommonMessage) Type() SystemCommonType {
	return SystemCommonTypeOf(m.Status())
}

// SongPosition returns the 14-bit position of a SongPositionPointer.
func (m *SystemCommonMessage) SongPosition() uint16 {
	return uint16(m.Param2()&sevenBitMask)<<7 | uint16(m.Param1()&sevenBitMask)
}

func (m *SystemCommonMessage) String() string {
	return fmt.Sprintf("%s %s", m.Type(), m.data)
}

// A SystemRealtimeMessage has a status of 0xF8 to 0xFF and no data.
type SystemRealtimeMessage struct {
	shortMessage
}

func NewSystemRealtimeMessage(data PackedWord) (*SystemRealtimeMessage, error) {
	if Classify(data.Status()) != SystemRealtimeKind {
		return nil, wrongVariant("system realtime", data)
	}
	return &SystemRealtimeMessage{shortMessage{data}}, nil
}

func (m *SystemRealtimeMessage) Kind() MessageKind {
	return SystemRealtimeKind
}

func (m *SystemRealtimeMessage) Type() SystemRealtimeType {
	return SystemRealtimeTypeOf(m.Status())
}

func (m *SystemRealtimeMessage) String() string {
	return fmt.Sprintf("%s %02X", m.Type(), m.Status())
}

/*
A SysExMessage holds system exclusive data. A message that started with 0xF0
in the file keeps that byte as the first byte of Data; a continuation packet
(0xF7 in the file) carries no marker at all and has Continuation set. An 0xF7
packet may itself start with 0xF0, so Data alone does not tell the two apart.
*/
type SysExMessage struct {
	Data         []byte
	Continuation bool
}

func (m *SysExMessage) isMessage() {}

func (m *SysExMessage) Kind() MessageKind {
	return SysExKind
}

// IsContinuation reports whether the packet was framed with 0xF7.
func (m *SysExMessage) IsContinuation() bool {
	return m.Continuation
}

func (m *SysExMessage) String() string {
	return fmt.Sprintf("SysEx % X", m.Data)
}
