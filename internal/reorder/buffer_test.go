package reorder

import (
	"errors"
	"testing"

	"spadesocketbridge/internal/bridgeerr"
	"spadesocketbridge/internal/record"
)

func TestBuffer_ReleaseOrderAscending(t *testing.T) {
	b := NewBuffer(10)
	ids := []int64{10, 12, 11}
	for _, id := range ids {
		if err := b.Ingest(id, []byte("payload")); err != nil {
			t.Fatalf("Ingest(%d) error: %v", id, err)
		}
	}

	var got []int64
	b.Drain(func(r *record.Record) {
		got = append(got, r.ID)
	})

	want := []int64{10, 11, 12}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("release[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestBuffer_GapIsSkippedOnDrain(t *testing.T) {
	b := NewBuffer(10)
	for _, id := range []int64{5, 7, 8} {
		if err := b.Ingest(id, []byte("payload")); err != nil {
			t.Fatalf("Ingest(%d) error: %v", id, err)
		}
	}

	var got []int64
	b.Drain(func(r *record.Record) {
		got = append(got, r.ID)
	})

	want := []int64{5, 7, 8}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("release[%d] = %d, want %d", i, got[i], want[i])
		}
	}
	if b.Cursor() != 9 {
		t.Errorf("Cursor() = %d, want 9 (advanced past the gap at 6)", b.Cursor())
	}
}

func TestBuffer_LateLineRejected(t *testing.T) {
	b := NewBuffer(10)
	if err := b.Ingest(100, []byte("first")); err != nil {
		t.Fatalf("Ingest error: %v", err)
	}
	b.ReleaseNext()

	err := b.Ingest(100, []byte("late"))
	if !errors.Is(err, bridgeerr.ErrLateLine) {
		t.Errorf("Ingest(late id) error = %v, want ErrLateLine", err)
	}
}

func TestBuffer_WatermarkReflectsBufferedCount(t *testing.T) {
	b := NewBuffer(10)
	for _, id := range []int64{1, 2, 3} {
		b.Ingest(id, []byte("x"))
	}
	if got := b.Watermark(); got != 3 {
		t.Errorf("Watermark() = %d, want 3", got)
	}
	b.ReleaseNext()
	if got := b.Watermark(); got != 2 {
		t.Errorf("Watermark() after one release = %d, want 2", got)
	}
}

func TestBuffer_ReleaseAboveWindowBoundsWatermark(t *testing.T) {
	b := NewBuffer(3)
	for id := int64(1); id <= 10; id++ {
		b.Ingest(id, []byte("x"))
		b.ReleaseAboveWindow(func(r *record.Record) {})
		if b.Watermark() > 3 {
			t.Fatalf("after ingesting id %d, watermark = %d, want <= 3", id, b.Watermark())
		}
	}
}

func TestBuffer_AppendMergesLinesWithSharedID(t *testing.T) {
	b := NewBuffer(10)
	b.Ingest(42, []byte("first line"))
	b.Ingest(42, []byte("second line"))

	r, ok := b.ReleaseNext()
	if !ok {
		t.Fatal("expected record at id 42")
	}
	want := "first line\nsecond line\n"
	if string(r.Payload) != want {
		t.Errorf("Payload = %q, want %q", r.Payload, want)
	}
}

func TestBuffer_SingleEventIDPassesThroughAfterDrain(t *testing.T) {
	b := NewBuffer(10)
	b.Ingest(1, []byte("only line"))

	var got []int64
	b.Drain(func(r *record.Record) { got = append(got, r.ID) })

	if len(got) != 1 || got[0] != 1 {
		t.Errorf("got %v, want [1]", got)
	}
}
