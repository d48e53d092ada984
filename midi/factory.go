package midi

import (
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

/*
MessageFactory turns raw data into Message variants. Short messages are
cached by their packed value: asking twice for the same value returns the
same pointer, which keeps repeated note events during playback cheap. The
cache lives as long as the factory and is guarded by a single mutex. Meta and
system exclusive messages are never cached.
*/
type MessageFactory struct {
	mu      sync.Mutex
	cache   map[PackedWord]Message
	charmap *charmap.Charmap
}

func NewMessageFactory() *MessageFactory {
	return &MessageFactory{
		cache:   make(map[PackedWord]Message),
		charmap: DefaultCharmap,
	}
}

// SetCharmap selects the code page meta text is decoded and encoded with.
func (f *MessageFactory) SetCharmap(cm *charmap.Charmap) {
	f.charmap = cm
}

// CreateShortMessage classifies the low 24 bits of packed and returns the
// matching variant.
func (f *MessageFactory) CreateShortMessage(packed int32) Message {
	data := NewPackedWord(packed)

	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.cache[data]; ok {
		return m
	}
	m := newShortMessage(data)
	f.cache[data] = m
	return m
}

// CacheLen returns the number of cached short messages.
func (f *MessageFactory) CacheLen() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cache)
}

func newShortMessage(data PackedWord) Message {
	short := shortMessage{data}
	switch Classify(data.Status()) {
	case ControllerKind:
		return &ControllerMessage{ChannelMessage{short}}
	case ChannelKind:
		return &ChannelMessage{short}
	case SystemRealtimeKind:
		return &SystemRealtimeMessage{short}
	}
	return &SystemCommonMessage{short}
}

func (f *MessageFactory) CreateMetaMessage(metaType byte, payload []byte) *MetaMessage {
	return &MetaMessage{Type: MetaType(metaType), Data: payload, charmap: f.charmap}
}

// CreateSysExMessage wraps payload as a start packet when it begins with
// 0xF0 and as a continuation packet otherwise.
func (f *MessageFactory) CreateSysExMessage(payload []byte) *SysExMessage {
	start := len(payload) > 0 && payload[0] == SysExEvent
	return &SysExMessage{Data: payload, Continuation: !start}
}

// CreateSysExContinuationMessage wraps payload as an 0xF7 packet whatever
// its first byte is.
func (f *MessageFactory) CreateSysExContinuationMessage(payload []byte) *SysExMessage {
	return &SysExMessage{Data: payload, Continuation: true}
}

// CreateTextMessage encodes text with the factory's charmap. Runes the
// charmap cannot represent are an error.
func (f *MessageFactory) CreateTextMessage(metaType MetaType, text string) (*MetaMessage, error) {
	data, err := f.charmap.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, errors.Wrapf(err, "encoding %s text", metaType)
	}
	return f.CreateMetaMessage(byte(metaType), data), nil
}

// CreateTempoMessage builds a Tempo meta event of microsecondsPerQuarter,
// which must fit in 24 bits.
func (f *MessageFactory) CreateTempoMessage(microsecondsPerQuarter uint32) *MetaMessage {
	t := microsecondsPerQuarter & packedMask
	return f.CreateMetaMessage(byte(MetaTempo), []byte{byte(t >> 16), byte(t >> 8), byte(t)})
}

func (f *MessageFactory) CreateEndOfTrackMessage() *MetaMessage {
	return f.CreateMetaMessage(byte(MetaEndOfTrack), []byte{})
}
