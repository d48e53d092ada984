package midi

import (
	"io"
	"math"
	"sort"

	"github.com/pkg/errors"
)

// NewTrackChunk returns an empty track ready for AddEvent.
func NewTrackChunk() *TrackChunk {
	return &TrackChunk{TrackEvents: make([]TrackEvent, 0)}
}

/*
AddEvent appends message at absoluteTime. The delta-time is taken from the
previous event; events added out of order get a delta of 0 here and are
rejected when the track is written.
*/
func (t *TrackChunk) AddEvent(absoluteTime uint64, message Message) {
	var deltaTime uint32
	if n := len(t.TrackEvents); n > 0 {
		if previous := t.TrackEvents[n-1].AbsoluteTime; absoluteTime > previous {
			deltaTime = clampDelta(absoluteTime - previous)
		}
	} else {
		deltaTime = clampDelta(absoluteTime)
	}
	t.TrackEvents = append(t.TrackEvents, TrackEvent{
		DeltaTime:    deltaTime,
		AbsoluteTime: absoluteTime,
		Message:      message,
	})
}

func clampDelta(delta uint64) uint32 {
	if delta > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(delta)
}

// HasEndOfTrack reports whether the last event is an EndOfTrack meta event.
func (t *TrackChunk) HasEndOfTrack() bool {
	n := len(t.TrackEvents)
	if n == 0 {
		return false
	}
	meta, ok := t.TrackEvents[n-1].Message.(*MetaMessage)
	return ok && meta.IsEndOfTrack()
}

// Name returns the text of the first TrackName meta event, if any.
func (t *TrackChunk) Name() string {
	for _, event := range t.TrackEvents {
		if meta, ok := event.Message.(*MetaMessage); ok && meta.Type == MetaTrackName {
			return meta.Text()
		}
	}
	return ""
}

/*
RecomputeDeltaTimes rewrites every DeltaTime from the AbsoluteTime values,
the first event being relative to time 0. Absolute times must not decrease
and no gap may exceed 32 bits.
*/
func RecomputeDeltaTimes(events []TrackEvent) error {
	var previous uint64
	for i := range events {
		current := events[i].AbsoluteTime
		if current < previous {
			return errors.Wrapf(ErrEventOrder, "event %d at %d follows %d", i, current, previous)
		}
		if current-previous > math.MaxUint32 {
			return errors.Errorf("midi: gap of %d before event %d exceeds a delta-time", current-previous, i)
		}
		events[i].DeltaTime = uint32(current - previous)
		previous = current
	}
	return nil
}

// WriteEvents recomputes the delta-times of the track and encodes its
// events into w.
func (t *TrackChunk) WriteEvents(w io.Writer) error {
	if err := RecomputeDeltaTimes(t.TrackEvents); err != nil {
		return err
	}
	writer := NewEventWriter(w)
	for i, event := range t.TrackEvents {
		if err := writer.WriteMessage(event.DeltaTime, event.Message); err != nil {
			return errors.Wrapf(err, "event %d", i)
		}
	}
	return nil
}

/*
MergedEvents returns the events of all tracks in a single sequence ordered by
absolute time. Events at the same time keep their track order. The stored
delta-times are stale after the merge and are recomputed for the new
sequence; the tracks themselves are left untouched.
*/
func (m *Midi) MergedEvents() ([]TrackEvent, error) {
	merged := make([]TrackEvent, 0)
	for _, track := range m.TrackChunks {
		merged = append(merged, track.TrackEvents...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].AbsoluteTime < merged[j].AbsoluteTime
	})
	if err := RecomputeDeltaTimes(merged); err != nil {
		return nil, err
	}
	return merged, nil
}
