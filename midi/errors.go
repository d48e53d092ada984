package midi

import "github.com/pkg/errors"

const (
	HeaderSizeError = "expected a header length of at least 6 but found a length of %v"
	ChunkIDError    = "expected a %s chunk but found %s"
)

var (
	// ErrUnexpectedEndOfStream is returned when a byte required to finish an
	// event or a variable length quantity could not be read.
	ErrUnexpectedEndOfStream = errors.New("midi: unexpected end of stream")
	// ErrMalformedRunningStatus is returned for a data byte in status position
	// before any status byte was seen.
	ErrMalformedRunningStatus = errors.New("midi: running status without a previous status")
	// ErrInvalidOperationOnWrongVariant is returned when a message wrapper is
	// built from data of another kind of message.
	ErrInvalidOperationOnWrongVariant = errors.New("midi: data does not match the message variant")
	ErrEventOrder                     = errors.New("midi: events are not in absolute time order")
	ErrUnencodableStatus              = errors.New("midi: status cannot be stored in a track")
)
