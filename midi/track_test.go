package midi_test

import (
	"bytes"
	"testing"

	. "github.com/obiwanjacobi/midi.net-sub001/midi"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEventComputesDeltaTimes(t *testing.T) {
	factory := NewMessageFactory()
	track := NewTrackChunk()

	track.AddEvent(10, factory.CreateShortMessage(0x00403C90))
	track.AddEvent(10, factory.CreateShortMessage(0x00403E90))
	track.AddEvent(106, factory.CreateShortMessage(0x00003C90))

	require.Len(t, track.TrackEvents, 3)
	assert.Equal(t, uint32(10), track.TrackEvents[0].DeltaTime)
	assert.Equal(t, uint32(0), track.TrackEvents[1].DeltaTime)
	assert.Equal(t, uint32(96), track.TrackEvents[2].DeltaTime)
	assert.False(t, track.HasEndOfTrack())

	track.AddEvent(106, factory.CreateEndOfTrackMessage())
	assert.True(t, track.HasEndOfTrack())
}

func TestRecomputeDeltaTimes(t *testing.T) {
	events := []TrackEvent{
		{AbsoluteTime: 5},
		{AbsoluteTime: 5},
		{AbsoluteTime: 300},
	}
	require.NoError(t, RecomputeDeltaTimes(events))
	assert.Equal(t, uint32(5), events[0].DeltaTime)
	assert.Equal(t, uint32(0), events[1].DeltaTime)
	assert.Equal(t, uint32(295), events[2].DeltaTime)

	events[1].AbsoluteTime = 400
	err := RecomputeDeltaTimes(events)
	assert.ErrorIs(t, err, ErrEventOrder)
	assert.Regexp(t, "event 2 at 300 follows 400", err.Error())
}

func TestOutOfOrderTrackIsNotWritten(t *testing.T) {
	factory := NewMessageFactory()
	track := NewTrackChunk()
	track.AddEvent(20, factory.CreateShortMessage(0x00403C90))
	track.AddEvent(10, factory.CreateShortMessage(0x00003C90))

	err := track.WriteEvents(&bytes.Buffer{})
	assert.ErrorIs(t, err, ErrEventOrder)
}

func TestTrackName(t *testing.T) {
	factory := NewMessageFactory()
	track := NewTrackChunk()
	assert.Equal(t, "", track.Name())

	name, err := factory.CreateTextMessage(MetaTrackName, "Bass")
	require.NoError(t, err)
	track.AddEvent(0, factory.CreateShortMessage(0x000005C0))
	track.AddEvent(0, name)
	assert.Equal(t, "Bass", track.Name())
}

func TestMergedEvents(t *testing.T) {
	factory := NewMessageFactory()
	first := NewTrackChunk()
	first.AddEvent(0, factory.CreateShortMessage(0x00403C90))
	first.AddEvent(96, factory.CreateShortMessage(0x00003C90))
	second := NewTrackChunk()
	second.AddEvent(48, factory.CreateShortMessage(0x00404391))
	second.AddEvent(96, factory.CreateShortMessage(0x00004391))

	m := &Midi{
		HeaderChunk: &HeaderChunk{Format: 1, Division: 96},
		TrackChunks: []TrackChunk{*first, *second},
	}
	merged, err := m.MergedEvents()
	require.NoError(t, err)
	require.Len(t, merged, 4)

	var times []uint64
	var deltas []uint32
	for _, event := range merged {
		times = append(times, event.AbsoluteTime)
		deltas = append(deltas, event.DeltaTime)
	}
	assert.Equal(t, []uint64{0, 48, 96, 96}, times)
	assert.Equal(t, []uint32{0, 48, 48, 0}, deltas)

	// Events at the same time keep their track order.
	assert.Same(t, first.TrackEvents[1].Message, merged[2].Message)
	assert.Same(t, second.TrackEvents[1].Message, merged[3].Message)

	// The tracks keep their own delta-times.
	assert.Equal(t, uint32(48), m.TrackChunks[1].TrackEvents[1].DeltaTime)
}

func TestBuiltFileRoundTrips(t *testing.T) {
	factory := NewMessageFactory()

	conductor := NewTrackChunk()
	name, err := factory.CreateTextMessage(MetaTrackName, "Conductor")
	require.NoError(t, err)
	conductor.AddEvent(0, name)
	conductor.AddEvent(0, factory.CreateTempoMessage(400000))
	conductor.AddEvent(0, factory.CreateMetaMessage(byte(MetaTimeSignature), []byte{3, 2, 24, 8}))
	conductor.AddEvent(1152, factory.CreateEndOfTrackMessage())

	piano := NewTrackChunk()
	piano.AddEvent(0, factory.CreateShortMessage(0x000000C0))
	for i, note := range []byte{0x3C, 0x40, 0x43} {
		at := uint64(i) * 384
		piano.AddEvent(at, factory.CreateShortMessage(PackBytes(0x90, note, 0x64).Data()))
		piano.AddEvent(at+360, factory.CreateShortMessage(PackBytes(0x90, note, 0x00).Data()))
	}
	piano.AddEvent(1152, factory.CreateEndOfTrackMessage())

	drums := NewTrackChunk()
	drums.AddEvent(0, factory.CreateSysExMessage([]byte{0xF0, 0x7E, 0x7F, 0x09, 0x01, 0xF7}))
	for at := uint64(0); at < 1152; at += 192 {
		drums.AddEvent(at, factory.CreateShortMessage(PackBytes(0x99, 0x24, 0x7F).Data()))
		drums.AddEvent(at+10, factory.CreateShortMessage(PackBytes(0x89, 0x24, 0x00).Data()))
	}
	drums.AddEvent(1152, factory.CreateEndOfTrackMessage())

	m := &Midi{
		HeaderChunk: &HeaderChunk{Format: 1, Division: 384},
		TrackChunks: []TrackChunk{*conductor, *piano, *drums},
	}
	encoded, err := m.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, uint16(3), m.Ntrks)

	logger, _ := logtest.NewNullLogger()
	decoded, err := ReadMidi(bytes.NewReader(encoded), WithLogger(logger))
	require.NoError(t, err)
	require.Len(t, decoded.TrackChunks, 3)
	assert.Equal(t, uint16(384), decoded.TicksPerQuarterNote())
	assert.Equal(t, "Conductor", decoded.TrackChunks[0].Name())
	assert.Len(t, decoded.TrackChunks[1].TrackEvents, 8)
	assert.Len(t, decoded.TrackChunks[2].TrackEvents, 14)

	for i, track := range decoded.TrackChunks {
		assert.True(t, track.HasEndOfTrack(), "track %d", i)
		assert.Equal(t, uint64(1152), track.TrackEvents[len(track.TrackEvents)-1].AbsoluteTime)
	}

	reencoded, err := decoded.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, encoded, reencoded)
}
