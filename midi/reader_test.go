package midi_test

import (
	"bytes"
	"io"
	"testing"

	. "github.com/obiwanjacobi/midi.net-sub001/midi"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func newTestReader(data []byte) *EventReader {
	logger, _ := logtest.NewNullLogger()
	return NewEventReader(bytes.NewReader(data), WithLogger(logger))
}

func TestReadRunningStatus(t *testing.T) {
	reader := newTestReader([]byte{
		0x00, 0x90, 0x3C, 0x7F,
		0x04, 0x3C, 0x00,
		0x01, 0xFF, 0x2F, 0x00,
	})

	events, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, events, 3)

	first, ok := events[0].Message.(*ChannelMessage)
	require.True(t, ok)
	assert.True(t, first.IsNoteOn())
	assert.Equal(t, uint64(0), events[0].AbsoluteTime)

	second, ok := events[1].Message.(*ChannelMessage)
	require.True(t, ok)
	assert.Equal(t, NoteOnEvent, second.Command())
	assert.True(t, second.IsNoteOff())
	assert.Equal(t, byte(0x3C), second.Param1())
	assert.Equal(t, uint32(4), events[1].DeltaTime)
	assert.Equal(t, uint64(4), events[1].AbsoluteTime)

	eot, ok := events[2].Message.(*MetaMessage)
	require.True(t, ok)
	assert.True(t, eot.IsEndOfTrack())
	assert.Equal(t, uint64(5), events[2].AbsoluteTime)

	assert.Equal(t, uint64(5), reader.AbsoluteTime())
	assert.Equal(t, int64(11), reader.Offset())
}

func TestRunningStatusSurvivesMetaAndRealtime(t *testing.T) {
	reader := newTestReader([]byte{
		0x00, 0xC2, 0x05,
		0x00, 0xFF, 0x01, 0x01, 'x',
		0x00, 0xF8,
		0x00, 0x07,
	})

	events, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, events, 4)

	_, ok := events[2].Message.(*SystemRealtimeMessage)
	assert.True(t, ok)

	program, ok := events[3].Message.(*ChannelMessage)
	require.True(t, ok)
	assert.Equal(t, ProgramChange, program.Command())
	assert.Equal(t, byte(2), program.Channel())
	assert.Equal(t, byte(7), program.Param1())
}

func TestRunningStatusWithoutStatusIsAnError(t *testing.T) {
	_, err := newTestReader([]byte{0x00, 0x3C, 0x40}).ReadNextEvent()
	assert.ErrorIs(t, err, ErrMalformedRunningStatus)
	assert.Regexp(t, "event at offset 0", err.Error())
}

func TestReadSharesFactoryInstances(t *testing.T) {
	factory := NewMessageFactory()
	reader := NewEventReader(bytes.NewReader([]byte{
		0x00, 0x90, 0x3C, 0x40,
		0x10, 0x3C, 0x40,
	}), WithFactory(factory))

	events, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Same(t, events[0].Message, events[1].Message)
	assert.Same(t, events[0].Message, factory.CreateShortMessage(0x00403C90))
}

func TestReadSysExPackets(t *testing.T) {
	reader := newTestReader([]byte{
		0x00, 0xF0, 0x03, 0x43, 0x12, 0x00,
		0x10, 0xF7, 0x02, 0x10, 0xF7,
	})

	events, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, events, 2)

	start, ok := events[0].Message.(*SysExMessage)
	require.True(t, ok)
	assert.Equal(t, []byte{0xF0, 0x43, 0x12, 0x00}, start.Data)
	assert.False(t, start.IsContinuation())

	continuation, ok := events[1].Message.(*SysExMessage)
	require.True(t, ok)
	assert.Equal(t, []byte{0x10, 0xF7}, continuation.Data)
	assert.True(t, continuation.IsContinuation())
	assert.Equal(t, uint64(16), events[1].AbsoluteTime)
}

func TestReadUnknownMetaIsKept(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	reader := NewEventReader(bytes.NewReader([]byte{0x00, 0xFF, 0x60, 0x02, 0xAA, 0xBB}), WithLogger(logger))

	event, err := reader.ReadNextEvent()
	require.NoError(t, err)

	meta, ok := event.Message.(*MetaMessage)
	require.True(t, ok)
	assert.Equal(t, MetaType(0x60), meta.Type)
	assert.Equal(t, []byte{0xAA, 0xBB}, meta.Data)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
	assert.Equal(t, byte(0x60), hook.LastEntry().Data["type"])
}

func TestReadLongVariableLengthPayload(t *testing.T) {
	text := bytes.Repeat([]byte{'a'}, 200)
	data := append([]byte{0x00, 0xFF, 0x01, 0x81, 0x48}, text...)

	event, err := newTestReader(data).ReadNextEvent()
	require.NoError(t, err)

	meta, ok := event.Message.(*MetaMessage)
	require.True(t, ok)
	assert.Equal(t, string(text), meta.Text())
}

func TestReadCleanEndOfStream(t *testing.T) {
	_, err := newTestReader(nil).ReadNextEvent()
	assert.Equal(t, io.EOF, err)

	// The delta-time is complete but no status follows.
	_, err = newTestReader([]byte{0x00}).ReadNextEvent()
	assert.Equal(t, io.EOF, err)
}

func TestReadTruncatedEvents(t *testing.T) {
	cases := map[string][]byte{
		"delta-time":    {0x81},
		"parameter":     {0x00, 0x90, 0x3C},
		"meta type":     {0x00, 0xFF},
		"meta length":   {0x00, 0xFF, 0x01},
		"meta payload":  {0x00, 0xFF, 0x01, 0x04, 'a'},
		"sysex payload": {0x00, 0xF0, 0x05, 0x43},
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := newTestReader(data).ReadNextEvent()
			assert.ErrorIs(t, err, ErrUnexpectedEndOfStream)
		})
	}
}

func TestReadHugeDeclaredLength(t *testing.T) {
	// A length of 2^31 with no payload behind it.
	_, err := newTestReader([]byte{0x00, 0xF7, 0x88, 0x80, 0x80, 0x80, 0x00, 0x01}).ReadNextEvent()
	assert.ErrorIs(t, err, ErrUnexpectedEndOfStream)
	assert.Regexp(t, "payload byte 1 of 2147483648", err.Error())
}

func TestReadInvalidStatusDecodes(t *testing.T) {
	events, err := newTestReader([]byte{0x00, 0xF5, 0x00, 0xF6, 0x00, 0xF9}).ReadAll()
	require.NoError(t, err)
	require.Len(t, events, 3)

	common, ok := events[0].Message.(*SystemCommonMessage)
	require.True(t, ok)
	assert.Equal(t, SystemCommonInvalid, common.Type())

	common, ok = events[1].Message.(*SystemCommonMessage)
	require.True(t, ok)
	assert.Equal(t, SystemCommonInvalid, common.Type())

	realtime, ok := events[2].Message.(*SystemRealtimeMessage)
	require.True(t, ok)
	assert.Equal(t, SystemRealtimeInvalid, realtime.Type())
}

func TestReadWithCharmapOption(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	reader := NewEventReader(bytes.NewReader([]byte{0x00, 0xFF, 0x05, 0x01, 0x80}),
		WithLogger(logger), WithCharmap(charmap.Windows1252))

	event, err := reader.ReadNextEvent()
	require.NoError(t, err)
	assert.Equal(t, "€", event.Message.(*MetaMessage).Text())
}
