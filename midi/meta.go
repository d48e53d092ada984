package midi

import (
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

// MetaType is the type byte following 0xFF in a meta event.
type MetaType byte

const (
	MetaSequenceNumber    MetaType = 0x00
	MetaText              MetaType = 0x01
	MetaCopyrightNotice   MetaType = 0x02
	MetaTrackName         MetaType = 0x03
	MetaInstrumentName    MetaType = 0x04
	MetaLyric             MetaType = 0x05
	MetaMarker            MetaType = 0x06
	MetaCuePoint          MetaType = 0x07
	MetaProgramName       MetaType = 0x08
	MetaDeviceName        MetaType = 0x09
	MetaChannelPrefix     MetaType = 0x20
	MetaPort              MetaType = 0x21
	MetaEndOfTrack        MetaType = 0x2F
	MetaTempo             MetaType = 0x51
	MetaSMPTEOffset       MetaType = 0x54
	MetaTimeSignature     MetaType = 0x58
	MetaKeySignature      MetaType = 0x59
	MetaSequencerSpecific MetaType = 0x7F
)

var metaTypeNames = map[MetaType]string{
	MetaSequenceNumber:    "SequenceNumber",
	MetaText:              "Text",
	MetaCopyrightNotice:   "CopyrightNotice",
	MetaTrackName:         "TrackName",
	MetaInstrumentName:    "InstrumentName",
	MetaLyric:             "Lyric",
	MetaMarker:            "Marker",
	MetaCuePoint:          "CuePoint",
	MetaProgramName:       "ProgramName",
	MetaDeviceName:        "DeviceName",
	MetaChannelPrefix:     "ChannelPrefix",
	MetaPort:              "Port",
	MetaEndOfTrack:        "EndOfTrack",
	MetaTempo:             "Tempo",
	MetaSMPTEOffset:       "SMPTEOffset",
	MetaTimeSignature:     "TimeSignature",
	MetaKeySignature:      "KeySignature",
	MetaSequencerSpecific: "SequencerSpecific",
}

// Known reports whether t is one of the meta types defined for Standard MIDI Files.
func (t MetaType) Known() bool {
	_, ok := metaTypeNames[t]
	return ok
}

func (t MetaType) String() string {
	if name, ok := metaTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Meta(%02X)", byte(t))
}

// IsText reports whether the payload of t is text, 0x01 through 0x0F.
func (t MetaType) IsText() bool {
	return t >= MetaText && t <= 0x0F
}

// DefaultCharmap is used for meta text when nothing else is configured.
var DefaultCharmap = charmap.ISO8859_1

/*
A MetaMessage is a file-only event. Type and Data are kept exactly as read,
including meta types that are not known.
*/
type MetaMessage struct {
	Type    MetaType
	Data    []byte
	charmap *charmap.Charmap
}

func (m *MetaMessage) isMessage() {}

func (m *MetaMessage) Kind() MessageKind {
	return MetaKind
}

func (m *MetaMessage) IsEndOfTrack() bool {
	return m.Type == MetaEndOfTrack
}

// Text decodes the payload with the charmap the message was created with.
// Bytes that do not decode are replaced.
func (m *MetaMessage) Text() string {
	cm := m.charmap
	if cm == nil {
		cm = DefaultCharmap
	}
	text, err := m.DecodeText(cm)
	if err != nil {
		return string(m.Data)
	}
	return text
}

func (m *MetaMessage) DecodeText(cm *charmap.Charmap) (string, error) {
	s, err := cm.NewDecoder().Bytes(m.Data)
	if err != nil {
		return "", errors.Wrapf(err, "decoding %s text", m.Type)
	}
	return string(s), nil
}

// Tempo returns the microseconds per quarter note of a Tempo event.
func (m *MetaMessage) Tempo() (uint32, bool) {
	if m.Type != MetaTempo || len(m.Data) < 3 {
		return 0, false
	}
	return uint32(m.Data[0])<<16 | uint32(m.Data[1])<<8 | uint32(m.Data[2]), true
}

func (m *MetaMessage) BPM() (float64, bool) {
	tempo, ok := m.Tempo()
	if !ok || tempo == 0 {
		return 0, false
	}
	return 60000000 / float64(tempo), true
}

// TimeSignature is the content of a TimeSignature meta event.
type TimeSignature struct {
	Numerator               byte
	Denominator             byte // the power of two, 2 means a quarter note
	Clocks                  byte // MIDI clocks per metronome click
	ThirtySecondsPerQuarter byte
}

func (m *MetaMessage) TimeSignature() (TimeSignature, bool) {
	if m.Type != MetaTimeSignature || len(m.Data) < 4 {
		return TimeSignature{}, false
	}
	return TimeSignature{m.Data[0], m.Data[1], m.Data[2], m.Data[3]}, true
}

// KeySignature returns the number of sharps (positive) or flats (negative)
// and whether the key is minor.
func (m *MetaMessage) KeySignature() (accidentals int8, minor bool, ok bool) {
	if m.Type != MetaKeySignature || len(m.Data) < 2 {
		return 0, false, false
	}
	return int8(m.Data[0]), m.Data[1] == 1, true
}

func (m *MetaMessage) String() string {
	if m.Type.IsText() {
		return fmt.Sprintf("%s %q", m.Type, m.Text())
	}
	if tempo, ok := m.Tempo(); ok {
		return fmt.Sprintf("%s %d", m.Type, tempo)
	}
	return fmt.Sprintf("%s % X", m.Type, m.Data)
}
