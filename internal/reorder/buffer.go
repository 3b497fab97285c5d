// Package reorder implements the Reorder Buffer (C3): a map from audit
// event id to in-progress Record, released in strictly ascending id order
// once a configurable window threshold is crossed.
package reorder

import (
	"spadesocketbridge/internal/bridgeerr"
	"spadesocketbridge/internal/record"
)

// DefaultWindow is the reordering window used when none is configured.
const DefaultWindow = 10000

// Buffer holds EventRecords keyed by id and releases them once the cursor
// reaches their id, tolerating permanent gaps in the id sequence.
type Buffer struct {
	window int

	records      map[int64]*record.Record
	cursor       int64
	cursorSet    bool
	lastReleased int64
}

// NewBuffer creates a Buffer with the given reordering window. A
// non-positive window falls back to DefaultWindow.
func NewBuffer(window int) *Buffer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Buffer{
		window:  window,
		records: make(map[int64]*record.Record),
	}
}

// Watermark returns the number of records currently buffered.
func (b *Buffer) Watermark() int {
	return len(b.records)
}

// Window returns the configured reordering window.
func (b *Buffer) Window() int {
	return b.window
}

// Ingest assembles one already-filtered line into the buffer: appending it
// to an in-progress record sharing its event id, or starting a new one.
// It returns bridgeerr.ErrLateLine if the line's id has already been
// released past the cursor.
func (b *Buffer) Ingest(id int64, line []byte) error {
	if !b.cursorSet {
		b.cursor = id
		b.cursorSet = true
	} else if id < b.cursor {
		return bridgeerr.ErrLateLine
	}

	if r, ok := b.records[id]; ok {
		r.Append(line)
		return nil
	}
	b.records[id] = record.New(id, line)
	return nil
}

// ReleaseNext returns the record at the current cursor id, if any, and
// unconditionally advances the cursor by one. A false ok means the id at
// the cursor has no buffered record - a permanent gap, per spec.md §4.3 -
// not an error.
func (b *Buffer) ReleaseNext() (*record.Record, bool) {
	if !b.cursorSet {
		return nil, false
	}
	r, ok := b.records[b.cursor]
	if ok {
		delete(b.records, b.cursor)
		b.lastReleased = b.cursor
	}
	b.cursor++
	return r, ok
}

// ReleaseAboveWindow releases records while the watermark exceeds the
// configured window, invoking emit for each actually-released record.
func (b *Buffer) ReleaseAboveWindow(emit func(*record.Record)) {
	for b.Watermark() > b.window {
		r, ok := b.ReleaseNext()
		if ok {
			emit(r)
		}
	}
}

// Drain releases every remaining record in ascending id order, skipping
// gaps, until the buffer is empty.
func (b *Buffer) Drain(emit func(*record.Record)) {
	for b.Watermark() > 0 {
		r, ok := b.ReleaseNext()
		if ok {
			emit(r)
		}
	}
}

// Cursor reports the next event id that will be released.
func (b *Buffer) Cursor() int64 {
	return b.cursor
}
