package midi

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/charmap"
)

// payloadChunk caps the up-front allocation for a declared payload length.
const payloadChunk = 4096

// ReaderOption configures an EventReader or a file read.
type ReaderOption func(*readerOptions)

type readerOptions struct {
	log     logrus.FieldLogger
	factory *MessageFactory
	charmap *charmap.Charmap
}

// WithLogger routes diagnostics to l instead of the standard logrus logger.
func WithLogger(l logrus.FieldLogger) ReaderOption {
	return func(opts *readerOptions) {
		opts.log = l
	}
}

// WithFactory shares f, and its short message cache, between readers.
func WithFactory(f *MessageFactory) ReaderOption {
	return func(opts *readerOptions) {
		opts.factory = f
	}
}

// WithCharmap sets the code page meta text is decoded with. It applies to
// the factory in use, including one passed with WithFactory.
func WithCharmap(cm *charmap.Charmap) ReaderOption {
	return func(opts *readerOptions) {
		opts.charmap = cm
	}
}

func newReaderOptions(opts []ReaderOption) *readerOptions {
	options := &readerOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.log == nil {
		options.log = logrus.StandardLogger()
	}
	if options.factory == nil {
		options.factory = NewMessageFactory()
	}
	if options.charmap != nil {
		options.factory.SetCharmap(options.charmap)
	}
	return options
}

/*
An EventReader decodes the events of one track body. It keeps the running
status and the absolute time of the stream between calls, so use one reader
per track and never share it between goroutines. The underlying stream is not
closed by the reader and is not bounded by it either: hand it a reader that
ends with the track.
*/
type EventReader struct {
	reader        io.ByteReader
	factory       *MessageFactory
	log           logrus.FieldLogger
	runningStatus byte
	absoluteTime  uint64
	offset        int64
}

func NewEventReader(r io.Reader, opts ...ReaderOption) *EventReader {
	options := newReaderOptions(opts)
	byteReader, ok := r.(io.ByteReader)
	if !ok {
		byteReader = bufio.NewReader(r)
	}
	return &EventReader{
		reader:  byteReader,
		factory: options.factory,
		log:     options.log,
	}
}

// AbsoluteTime returns the sum of all delta-times read so far.
func (r *EventReader) AbsoluteTime() uint64 {
	return r.absoluteTime
}

// Offset returns the number of bytes consumed so far.
func (r *EventReader) Offset() int64 {
	return r.offset
}

// ReadByte counts consumed bytes so errors can name an offset.
func (r *EventReader) ReadByte() (byte, error) {
	b, err := r.reader.ReadByte()
	if err == nil {
		r.offset++
	}
	return b, err
}

func (r *EventReader) readRequired() (byte, error) {
	b, err := r.ReadByte()
	if err == io.EOF {
		return 0, ErrUnexpectedEndOfStream
	}
	return b, err
}

/*
ReadNextEvent decodes the next delta-time and event. io.EOF is returned when
the stream ends before a delta-time starts or where a status byte is due; a
stream that ends inside an event yields ErrUnexpectedEndOfStream.
*/
func (r *EventReader) ReadNextEvent() (*TrackEvent, error) {
	start := r.offset
	deltaTime, n, err := ReadVariableLengthQuantity(r)
	if err != nil {
		if n == 0 && errors.Is(err, ErrUnexpectedEndOfStream) {
			return nil, io.EOF
		}
		return nil, errors.Wrapf(err, "delta-time at offset %d", start)
	}
	status, err := r.ReadByte()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}

	var message Message
	switch status {
	case MetaEvent:
		message, err = r.readMeta()
	case SysExContinuation:
		message, err = r.readSysEx(nil)
	case SysExEvent:
		message, err = r.readSysEx([]byte{SysExEvent})
	default:
		message, err = r.readShort(status)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "event at offset %d", start)
	}

	r.absoluteTime += uint64(deltaTime)
	return &TrackEvent{
		DeltaTime:    deltaTime,
		AbsoluteTime: r.absoluteTime,
		Message:      message,
	}, nil
}

// ReadAll reads events until the stream ends.
func (r *EventReader) ReadAll() ([]TrackEvent, error) {
	events := make([]TrackEvent, 0)
	for {
		event, err := r.ReadNextEvent()
		if err == io.EOF {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, *event)
	}
}

func (r *EventReader) readPayload(prefix []byte) ([]byte, error) {
	length, _, err := ReadVariableLengthQuantity(r)
	if err != nil {
		return nil, err
	}
	size := payloadChunk
	if length < payloadChunk {
		size = int(length)
	}
	payload := append(make([]byte, 0, size+len(prefix)), prefix...)
	for i := uint32(0); i < length; i++ {
		b, err := r.readRequired()
		if err != nil {
			return nil, errors.Wrapf(err, "payload byte %d of %d", i, length)
		}
		payload = append(payload, b)
	}
	return payload, nil
}

func (r *EventReader) readMeta() (Message, error) {
	metaType, err := r.readRequired()
	if err != nil {
		return nil, errors.Wrap(err, "meta type")
	}
	payload, err := r.readPayload(nil)
	if err != nil {
		return nil, errors.Wrapf(err, "meta %s", MetaType(metaType))
	}
	if !MetaType(metaType).Known() {
		r.log.WithFields(logrus.Fields{
			"type":   metaType,
			"length": len(payload),
		}).Debug("midi: unknown meta event")
	}
	return r.factory.CreateMetaMessage(metaType, payload), nil
}

// readSysEx reads a system exclusive packet. A packet started with 0xF0
// keeps the marker as its first byte, a continuation packet has none.
func (r *EventReader) readSysEx(marker []byte) (Message, error) {
	payload, err := r.readPayload(marker)
	if err != nil {
		return nil, errors.Wrap(err, "sysex")
	}
	if marker == nil {
		return r.factory.CreateSysExContinuationMessage(payload), nil
	}
	return r.factory.CreateSysExMessage(payload), nil
}

func (r *EventReader) readShort(status byte) (Message, error) {
	params := make([]byte, 0, 2)
	if status&msbMask == 0 {
		if r.runningStatus == 0 {
			return nil, errors.Wrapf(ErrMalformedRunningStatus, "data byte %02X", status)
		}
		params = append(params, status)
		status = r.runningStatus
	} else if DataLength(status) > 0 {
		r.runningStatus = status
	}

	for len(params) < DataLength(status) {
		b, err := r.readRequired()
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %d of status %02X", len(params)+1, status)
		}
		params = append(params, b)
	}

	data := PackedWord(status)
	if len(params) > 0 {
		data.SetParam1(params[0])
	}
	if len(params) > 1 {
		data.SetParam2(params[1])
	}
	message := r.factory.CreateShortMessage(data.Data())
	if common, ok := message.(*SystemCommonMessage); ok && common.Type() == SystemCommonInvalid {
		r.log.WithField("status", status).Debug("midi: invalid status in track")
	}
	return message, nil
}
