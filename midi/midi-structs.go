package midi

/*
This file contains data structures used by the midi package.
*/

import (
	"github.com/obiwanjacobi/midi.net-sub001/chunk"
)

const (
	msbMask       = 1 << 7
	sevenBitMask  = 0x7F
	highOrderMask = 0xF0
	lowOrderMask  = 0x0F

	// Event framing bytes inside a track chunk.
	MetaEvent          = 0xFF
	SysExEvent         = 0xF0
	SysExContinuation  = 0xF7
	headerChunkBodyLen = 6
)

var (
	headerChunk = chunk.NewID("MThd")
	trackChunk  = chunk.NewID("MTrk")
)

/*
Midi represents a MIDI file as defined by the MIDI file spec:
http://goo.gl/rlEN0H
*/
type Midi struct {
	*HeaderChunk
	TrackChunks []TrackChunk
}

/*
A HeaderChunk defines the first type of chunk that should be encountered in
every MIDI file. It contains basic information about the data in the file. The
format is:
    <Header Chunk> = <chunk type><length><format><ntrks><division>
The data section contains three 16-bit words, stored most-significant byte
first. The first word, <format>, specifies the overall organisation of the file.
The next word, <ntrks>, is the number of track chunks in the file. It will
always be 1 for a format 0 file. The third word, <division>, specifies the
meaning of the delta-times.
*/
type HeaderChunk struct {
	*chunk.SubChunk
	Format   uint16
	Ntrks    uint16
	Division uint16
}

// TicksPerQuarterNote returns 0 when the division holds an SMPTE time code.
func (h *HeaderChunk) TicksPerQuarterNote() uint16 {
	if h.Division&0x8000 != 0 {
		return 0
	}
	return h.Division
}

// SMPTE returns the frames per second and ticks per frame of an SMPTE
// division, or 0, 0 for a metrical one.
func (h *HeaderChunk) SMPTE() (fps uint8, ticksPerFrame uint8) {
	if h.Division&0x8000 == 0 {
		return 0, 0
	}
	// The upper byte is a negative two's complement frame rate.
	return uint8(-int8(h.Division >> 8)), uint8(h.Division)
}

/*
A TrackChunk contains the data for the MIDI file. In most cases, there is a
single track. The contains one or more TrackEvent objects that define the sound
events that make up the song.
*/
type TrackChunk struct {
	*chunk.SubChunk
	TrackEvents []TrackEvent
}

/*
A TrackEvent contains 'events' that occur over the course of the MIDI file.
The syntax of an MTrk event is very simple:
    <TrackEvent> = <delta-time><MidiEvent>
<delta-time> is stored as a variable-length quantity. It represents the amount
of time before the following event. Delta-times are always present, even when 0.

AbsoluteTime is the sum of all delta-times up to and including this event.
Once events of several tracks are merged the DeltaTime values no longer line
up and have to be recomputed before the events are written again.
*/
type TrackEvent struct {
	DeltaTime    uint32
	AbsoluteTime uint64
	Message      Message
}
