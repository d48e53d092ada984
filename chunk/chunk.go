/*
Package chunk reads and writes the length-prefixed chunk containers that MIDI
files are built from. Standard MIDI Files use IFF style chunks: a four
character ID followed by a big-endian 32-bit body length. RIFF files (used by
the RMID wrapper) store the length little-endian and pad every body to an
even number of bytes.
*/
package chunk

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

const (
	Riff      string = "RIFF"
	RiffError string = "Invalid initial chunk ID of %s. Should be RIFF."
	FormError string = "Invalid form type of %s. Should be %s."
	// HeaderLength is the size of the ID and length fields preceding a body.
	HeaderLength int64 = 8
	maxChunkSize int64 = 1<<32 - 1
)

var (
	ErrChunkTooLarge = errors.New("chunk: body exceeds 32-bit length")
	ErrNoOpenChunk   = errors.New("chunk: no open chunk")
	ErrChunkOpen     = errors.New("chunk: previous chunk still open")
)

// Format describes how chunk lengths are stored.
type Format struct {
	Order  binary.ByteOrder
	Padded bool
}

var (
	SMF  = Format{Order: binary.BigEndian}
	RIFF = Format{Order: binary.LittleEndian, Padded: true}
)

/*
All chunks start with an ID and a size in bytes. The ID is always four ASCII
characters, the byte order of the size depends on the container Format. The
size never includes the header itself or a pad byte.
*/
type SubChunk struct {
	ID   [4]byte
	Size uint32
}

// NewID turns a string into a chunk ID, truncating or zero filling it to
// four bytes.
func NewID(s string) [4]byte {
	var id [4]byte
	copy(id[:], s)
	return id
}

func (c *SubChunk) String() string {
	return fmt.Sprintf("%s (%d bytes)", string(c.ID[:]), c.Size)
}

// Is reports whether the chunk carries the given ID.
func (c *SubChunk) Is(id string) bool {
	return string(c.ID[:]) == id
}

/*
The RiffHeader is the first chunk of a RIFF file. Its ID is always "RIFF" and
it is followed by a form type naming the kind of data inside, e.g. "WAVE" or
"RMID". The size covers the form type and every chunk that follows.
*/
type RiffHeader struct {
	*SubChunk
	Form [4]byte
}

func readSubChunk(reader io.Reader, order binary.ByteOrder) (*SubChunk, error) {
	newSubChunk := &SubChunk{}
	if err := binary.Read(reader, binary.BigEndian, &newSubChunk.ID); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, order, &newSubChunk.Size); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, errors.Wrapf(err, "reading size of %q chunk", newSubChunk.ID[:])
	}
	return newSubChunk, nil
}

/*
ReadRiffHeader reads and validates the RIFF header of a file. An error is
returned if the initial chunk ID is not "RIFF" or if the form type does not
match form.
*/
func ReadRiffHeader(reader io.Reader, form string) (*RiffHeader, error) {
	subChunk, err := readSubChunk(reader, RIFF.Order)
	if err != nil {
		return nil, err
	}
	if !subChunk.Is(Riff) {
		return nil, errors.Errorf(RiffError, string(subChunk.ID[:]))
	}
	riffHeader := &RiffHeader{SubChunk: subChunk}
	if err := binary.Read(reader, binary.BigEndian, &riffHeader.Form); err != nil {
		return nil, errors.Wrap(err, "Error reading Format")
	}
	if string(riffHeader.Form[:]) != form {
		return nil, errors.Errorf(FormError, string(riffHeader.Form[:]), form)
	}
	return riffHeader, nil
}

// A Reader walks the chunks of a container one at a time.
type Reader struct {
	format Format
	reader io.Reader
	body   *io.LimitedReader
	pad    bool
}

func NewReader(r io.Reader, format Format) *Reader {
	return &Reader{format: format, reader: r}
}

/*
Next reads the following chunk header and returns it together with a reader
scoped to exactly the chunk's body. Whatever part of the previous body was
left unread is discarded first. io.EOF is returned when no further chunk
starts; a header cut short yields io.ErrUnexpectedEOF.
*/
func (r *Reader) Next() (*SubChunk, io.Reader, error) {
	if err := r.skip(); err != nil {
		return nil, nil, err
	}
	subChunk, err := readSubChunk(r.reader, r.format.Order)
	if err != nil {
		return nil, nil, err
	}
	r.body = &io.LimitedReader{R: r.reader, N: int64(subChunk.Size)}
	r.pad = r.format.Padded && subChunk.Size%2 == 1
	return subChunk, r.body, nil
}

func (r *Reader) skip() error {
	if r.body == nil {
		return nil
	}
	remaining, pad := r.body.N, r.pad
	r.body, r.pad = nil, false
	if remaining > 0 {
		if _, err := io.CopyN(io.Discard, r.reader, remaining); err != nil {
			return errors.Wrapf(io.ErrUnexpectedEOF, "skipping %d bytes of chunk body", remaining)
		}
	}
	if pad {
		// A missing pad byte after the last chunk is common and harmless.
		var b [1]byte
		if _, err := io.ReadFull(r.reader, b[:]); err != nil && err != io.EOF {
			return err
		}
	}
	return nil
}
