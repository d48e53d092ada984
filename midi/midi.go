/*
The Midi package defines utilities for reading and writing midi sound files.
MIDI Files contain one or more MIDI streams, with time information for each
event. Song, sequence, and track structures, tempo and time signature
information, are all supported. Track names and other descriptive information
may be stored with the MIDI data.
*/
package midi

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"

	"github.com/obiwanjacobi/midi.net-sub001/chunk"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// RmidForm is the RIFF form type of a MIDI file wrapped in RIFF.
const RmidForm = "RMID"

/*
isLastByte returns true when the passed in byte is the last in a variable length
quanitity.
*/
func isLastByte(b *byte) bool {
	return *b&msbMask != msbMask
}

/*
ReadVariableLengthQuantity consumes bytes from a io.ByteReader according to the
variable length quantity format, where each byte in the sequence, except the
last, has a 1 in the most significant bit. It returns the value of the sequence
and the number of bytes consumed. If the reader runs dry before the last byte
the error is ErrUnexpectedEndOfStream.
*/
func ReadVariableLengthQuantity(reader io.ByteReader) (uint32, int, error) {
	value := uint32(0)
	for n := 0; ; {
		current, err := reader.ReadByte()
		if err == io.EOF {
			return value, n, errors.Wrapf(ErrUnexpectedEndOfStream,
				"variable length quantity after %d bytes", n)
		}
		if err != nil {
			return value, n, err
		}
		n++
		value = value<<7 | uint32(current&sevenBitMask)
		if isLastByte(&current) {
			return value, n, nil
		}
	}
}

/*
WriteVariableLengthQuantity writes value as a variable length quantity: 7-bit
groups, most significant group first, with the top bit set on all groups but
the last. 0 is written as the single byte 0x00.
*/
func WriteVariableLengthQuantity(writer io.Writer, value uint32) (int, error) {
	var buffer [5]byte
	return writer.Write(appendVariableLengthQuantity(buffer[:0], value))
}

func appendVariableLengthQuantity(dst []byte, value uint32) []byte {
	var buffer [5]byte
	n := len(buffer) - 1
	buffer[n] = byte(value & sevenBitMask)
	for value >>= 7; value > 0; value >>= 7 {
		n--
		buffer[n] = byte(value&sevenBitMask) | msbMask
	}
	return append(dst, buffer[n:]...)
}

// VariableLengthQuantityLen returns the number of bytes value encodes to.
func VariableLengthQuantityLen(value uint32) int {
	n := 1
	for value >>= 7; value > 0; value >>= 7 {
		n++
	}
	return n
}

/*
ReadMidi reads a complete MIDI file: the header chunk followed by the track
chunks it announces. Chunks with unknown IDs are skipped. A file wrapped in a
RIFF "RMID" form is unwrapped from its "data" chunk first.
*/
func ReadMidi(reader io.Reader, opts ...ReaderOption) (*Midi, error) {
	options := newReaderOptions(opts)
	buffered := bufio.NewReader(reader)
	if id, err := buffered.Peek(4); err == nil && string(id) == chunk.Riff {
		return readRmid(buffered, options)
	}
	return readSMF(buffered, options)
}

/*
UnmarshalBinary reads in bytes from data and populates the Midi receiver. This
method satisfies the encoder.BinaryUnmarshaler interface.
*/
func (m *Midi) UnmarshalBinary(data []byte) error {
	parsed, err := ReadMidi(bytes.NewReader(data))
	if err != nil {
		return err
	}
	*m = *parsed
	return nil
}

func readRmid(reader io.Reader, options *readerOptions) (*Midi, error) {
	if _, err := chunk.ReadRiffHeader(reader, RmidForm); err != nil {
		return nil, err
	}
	chunks := chunk.NewReader(reader, chunk.RIFF)
	for {
		subChunk, body, err := chunks.Next()
		if err == io.EOF {
			return nil, errors.New("midi: RMID file without a data chunk")
		}
		if err != nil {
			return nil, err
		}
		if subChunk.Is("data") {
			return readSMF(body, options)
		}
		options.log.WithField("chunk", subChunk.String()).Debug("midi: skipping RIFF chunk")
	}
}

func readSMF(reader io.Reader, options *readerOptions) (*Midi, error) {
	m := new(Midi)
	chunks := chunk.NewReader(reader, chunk.SMF)
	if err := m.unmarshalHeaderChunk(chunks, options); err != nil {
		return nil, err
	}

	m.TrackChunks = make([]TrackChunk, 0, m.Ntrks)
	for len(m.TrackChunks) < int(m.Ntrks) {
		subChunk, body, err := chunks.Next()
		if err == io.EOF {
			options.log.WithFields(logrus.Fields{
				"expected": m.Ntrks,
				"found":    len(m.TrackChunks),
			}).Warn("midi: file ends before all tracks")
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "chunk after track %d", len(m.TrackChunks))
		}
		if subChunk.ID != trackChunk {
			options.log.WithField("chunk", subChunk.String()).Debug("midi: skipping alien chunk")
			continue
		}
		eventReader := NewEventReader(body, WithLogger(options.log), WithFactory(options.factory))
		events, err := eventReader.ReadAll()
		if err != nil {
			return nil, errors.Wrapf(err, "track %d", len(m.TrackChunks))
		}
		track := TrackChunk{SubChunk: subChunk, TrackEvents: events}
		if !track.HasEndOfTrack() {
			options.log.WithField("track", len(m.TrackChunks)).Warn("midi: track without end of track event")
		}
		m.TrackChunks = append(m.TrackChunks, track)
	}
	return m, nil
}

/*
The unmarshalHeaderChunk method parses out a Midi header chunk. If there is
an error parsing out a valid header chunk, a non-nil error is returned.
*/
func (m *Midi) unmarshalHeaderChunk(chunks *chunk.Reader, options *readerOptions) error {
	subChunk, body, err := chunks.Next()
	if err != nil {
		return err
	}
	if subChunk.ID != headerChunk {
		return errors.Errorf(ChunkIDError, string(headerChunk[:]), string(subChunk.ID[:]))
	}
	if subChunk.Size < headerChunkBodyLen {
		return errors.Errorf(HeaderSizeError, subChunk.Size)
	}
	var fields [3]uint16
	if err := binary.Read(body, binary.BigEndian, &fields); err != nil {
		return errors.Wrap(err, "reading header chunk")
	}
	if subChunk.Size > headerChunkBodyLen {
		options.log.WithField("size", subChunk.Size).Warn("midi: ignoring surplus header bytes")
	}
	m.HeaderChunk = &HeaderChunk{
		SubChunk: subChunk,
		Format:   fields[0],
		Ntrks:    fields[1],
		Division: fields[2],
	}
	return nil
}

/*
Encode writes the header chunk and every track chunk to output. Delta-times
are recomputed from the absolute times of each track and Ntrks is set to the
number of track chunks. Chunk lengths are patched in after each body is
written. It returns the number of bytes written.
*/
func (m *Midi) Encode(output io.WriterAt) (int64, error) {
	writer := chunk.NewWriter(output, chunk.SMF)
	if err := m.encode(writer); err != nil {
		return writer.Offset(), err
	}
	return writer.Offset(), nil
}

// EncodeRmid writes the file wrapped in a RIFF "RMID" form.
func (m *Midi) EncodeRmid(output io.WriterAt) (int64, error) {
	riff := chunk.NewWriter(output, chunk.RIFF)
	if err := riff.WriteRiffHeader(RmidForm); err != nil {
		return riff.Offset(), err
	}
	body, err := riff.BeginChunk(chunk.NewID("data"))
	if err != nil {
		return riff.Offset(), err
	}
	smf, err := m.MarshalBinary()
	if err != nil {
		return riff.Offset(), err
	}
	if _, err := body.Write(smf); err != nil {
		return riff.Offset(), err
	}
	if _, err := riff.EndChunk(); err != nil {
		return riff.Offset(), err
	}
	return riff.Offset(), riff.Close()
}

// MarshalBinary satisfies the encoding.BinaryMarshaler interface.
func (m *Midi) MarshalBinary() ([]byte, error) {
	buffer := &chunk.WriteBuffer{}
	if _, err := m.Encode(buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func (m *Midi) encode(writer *chunk.Writer) error {
	if m.HeaderChunk == nil {
		return errors.New("midi: no header chunk")
	}
	if len(m.TrackChunks) > 0xFFFF {
		return errors.Errorf("midi: %d tracks do not fit in a header", len(m.TrackChunks))
	}
	m.Ntrks = uint16(len(m.TrackChunks))

	body, err := writer.BeginChunk(headerChunk)
	if err != nil {
		return err
	}
	fields := [3]uint16{m.Format, m.Ntrks, m.Division}
	if err := binary.Write(body, binary.BigEndian, fields); err != nil {
		return errors.Wrap(err, "writing header chunk")
	}
	if m.HeaderChunk.SubChunk, err = writer.EndChunk(); err != nil {
		return err
	}

	for i := range m.TrackChunks {
		track := &m.TrackChunks[i]
		body, err := writer.BeginChunk(trackChunk)
		if err != nil {
			return err
		}
		if err := track.WriteEvents(body); err != nil {
			return errors.Wrapf(err, "track %d", i)
		}
		if track.SubChunk, err = writer.EndChunk(); err != nil {
			return err
		}
	}
	return nil
}
