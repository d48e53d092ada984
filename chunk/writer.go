package chunk

import (
	"io"

	"github.com/pkg/errors"
)

/**
 * A Writer lays chunks out on an io.WriterAt. Chunk lengths are only known
 * once a body has been serialized, so every header is first written with a
 * size of 0 and patched in place when the chunk is ended.
 */
type Writer struct {
	format     Format
	output     io.WriterAt
	offset     int64
	open       *bodyWriter
	riff       *RiffHeader
	riffOffset int64
}

type bodyWriter struct {
	writer       *Writer
	subChunk     *SubChunk
	headerOffset int64
}

func NewWriter(output io.WriterAt, format Format) *Writer {
	return &Writer{format: format, output: output}
}

// Offset returns the position the next byte will be written to.
func (w *Writer) Offset() int64 {
	return w.offset
}

func (w *Writer) write(data []byte) error {
	n, err := w.output.WriteAt(data, w.offset)
	w.offset += int64(n)
	return err
}

func (w *Writer) writeUint32(value uint32, offset int64) error {
	var buffer [4]byte
	w.format.Order.PutUint32(buffer[:], value)
	_, err := w.output.WriteAt(buffer[:], offset)
	return err
}

/**
 * WriteRiffHeader starts a RIFF file of the given form type. The RIFF size is
 * patched when Close is called.
 */
func (w *Writer) WriteRiffHeader(form string) error {
	w.riff = &RiffHeader{&SubChunk{ID: NewID(Riff)}, NewID(form)}
	w.riffOffset = w.offset
	if err := w.write(w.riff.ID[:]); err != nil {
		return err
	}
	if err := w.writeUint32(0, w.offset); err != nil {
		return err
	}
	w.offset += 4
	return w.write(w.riff.Form[:])
}

/**
 * BeginChunk writes a chunk header with a placeholder size and returns the
 * writer for the chunk's body. Only one chunk can be open at a time.
 */
func (w *Writer) BeginChunk(id [4]byte) (io.Writer, error) {
	if w.open != nil {
		return nil, ErrChunkOpen
	}
	body := &bodyWriter{
		writer:       w,
		subChunk:     &SubChunk{ID: id},
		headerOffset: w.offset,
	}
	if err := w.write(id[:]); err != nil {
		return nil, err
	}
	if err := w.writeUint32(0, w.offset); err != nil {
		return nil, err
	}
	w.offset += 4
	w.open = body
	return body, nil
}

/**
 * EndChunk patches the size of the open chunk and, for padded formats, adds
 * the pad byte after an odd sized body.
 * @return {*SubChunk, error} The finished chunk header.
 */
func (w *Writer) EndChunk() (*SubChunk, error) {
	if w.open == nil {
		return nil, ErrNoOpenChunk
	}
	body := w.open
	w.open = nil
	if err := w.writeUint32(body.subChunk.Size, body.headerOffset+4); err != nil {
		return nil, err
	}
	if w.format.Padded && body.subChunk.Size%2 == 1 {
		if err := w.write([]byte{0}); err != nil {
			return nil, err
		}
	}
	return body.subChunk, nil
}

// Close patches the RIFF size, if a RIFF header was written.
func (w *Writer) Close() error {
	if w.open != nil {
		return ErrChunkOpen
	}
	if w.riff == nil {
		return nil
	}
	size := w.offset - w.riffOffset - HeaderLength
	if size > maxChunkSize {
		return ErrChunkTooLarge
	}
	w.riff.Size = uint32(size)
	return w.writeUint32(w.riff.Size, w.riffOffset+4)
}

func (b *bodyWriter) Write(p []byte) (int, error) {
	if int64(b.subChunk.Size)+int64(len(p)) > maxChunkSize {
		return 0, errors.Wrapf(ErrChunkTooLarge, "%s chunk", string(b.subChunk.ID[:]))
	}
	w := b.writer
	n, err := w.output.WriteAt(p, w.offset)
	w.offset += int64(n)
	b.subChunk.Size += uint32(n)
	return n, err
}

// WriteBuffer is an in-memory io.WriterAt that grows as needed.
type WriteBuffer struct {
	buf []byte
}

func (b *WriteBuffer) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.New("chunk: negative offset")
	}
	end := int(off) + len(p)
	if end > len(b.buf) {
		if end > cap(b.buf) {
			grown := make([]byte, end, 2*end)
			copy(grown, b.buf)
			b.buf = grown
		} else {
			b.buf = b.buf[:end]
		}
	}
	copy(b.buf[off:], p)
	return len(p), nil
}

func (b *WriteBuffer) Bytes() []byte {
	return b.buf
}

func (b *WriteBuffer) Len() int {
	return len(b.buf)
}
