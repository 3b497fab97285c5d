// Package engine wires the Dispatcher (C4), Output Emitter (C6), and
// Drain Controller (C7) together around a Reorder Buffer and an optional
// UBSI Analyzer, bundling the file-scope statics of the reference
// implementation into a single value owned by main (spec.md §9).
package engine

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"spadesocketbridge/internal/ioreader"
	"spadesocketbridge/internal/logging"
	"spadesocketbridge/internal/metrics"
	"spadesocketbridge/internal/record"
	"spadesocketbridge/internal/reorder"
	"spadesocketbridge/internal/ubsi"
)

// Config holds the engine's runtime options (spec.md §6.1).
type Config struct {
	UnitAnalysis  bool
	WaitForEnd    bool
	ReorderWindow int
}

// Engine is the single value that owns every piece of state the
// reference implementation kept as file-scope statics: the thread table,
// the event buffer, the release cursor, and the read buffers.
type Engine struct {
	cfg Config

	reader *ioreader.Reader
	buf    *reorder.Buffer
	an     *ubsi.Analyzer
	out    *bufio.Writer
	log    *slog.Logger
	m      *metrics.Metrics
}

// New constructs an Engine. out is typically os.Stdout; m may be nil if
// metrics collection is disabled.
func New(cfg Config, reader *ioreader.Reader, out io.Writer, log *slog.Logger, m *metrics.Metrics) *Engine {
	if m == nil {
		m = metrics.NewNoop()
	}
	log = logging.WithComponent(log, "engine")
	return &Engine{
		cfg:    cfg,
		reader: reader,
		buf:    reorder.NewBuffer(cfg.ReorderWindow),
		an:     ubsi.NewAnalyzer(log),
		out:    bufio.NewWriter(out),
		log:    log,
		m:      m,
	}
}

type lineResult struct {
	line []byte
	ok   bool
}

// Run drives the event loop to completion and returns the process exit
// code (spec.md §6.1, §7).
func (e *Engine) Run() int {
	lineCh := make(chan lineResult, 1)
	go func() {
		for {
			line, ok := e.reader.Next()
			lineCh <- lineResult{line: line, ok: ok}
			if !ok {
				return
			}
		}
	}()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	draining := false
	for {
		select {
		case sig := <-sigCh:
			if e.cfg.WaitForEnd {
				e.log.Info("ignoring termination signal, --wait-for-end is set", slog.String("signal", sig.String()))
				continue
			}
			if draining {
				continue
			}
			draining = true
			e.log.Info("termination signal received, draining", slog.String("signal", sig.String()))
			e.drain()
			return 0

		case res := <-lineCh:
			if !res.ok {
				if err := e.reader.Err(); err != nil {
					e.log.Error("fatal read error", slog.Any("error", err))
					e.out.Flush()
					return 1
				}
				e.log.Info("input reached end of stream, draining")
				e.drain()
				return 0
			}
			e.ingest(res.line)
		}
	}
}

// ingest implements the Record Assembler -> Reorder Buffer path for a
// single line (spec.md §4.2, §4.3).
func (e *Engine) ingest(line []byte) {
	if record.IsFiltered(line) {
		e.m.IncLinesFiltered()
		return
	}

	id, ok := record.ExtractEventID(line)
	if !ok {
		e.m.IncParseErrors()
		e.log.Warn("dropping line with no parseable event id", slog.String("line", string(line)))
		return
	}

	if err := e.buf.Ingest(id, line); err != nil {
		e.m.IncLateLines()
		logging.WithEventID(e.log, id).Warn("dropping late line", slog.Any("error", err))
		return
	}

	e.m.SetWatermark(e.buf.Watermark())
	e.buf.ReleaseAboveWindow(e.release)
}

// release implements the Dispatcher (C4) and Output Emitter (C6).
func (e *Engine) release(r *record.Record) {
	e.m.IncReleased()
	e.m.SetWatermark(e.buf.Watermark())

	if e.cfg.UnitAnalysis && record.HasSyscallTag(r.Payload) {
		outcome := e.an.Process(r.Payload)
		if !outcome.Suppress {
			e.write(outcome.Payload)
		} else {
			e.m.IncSentinelsSuppressed()
		}
		for _, u := range outcome.UnitLines {
			e.m.IncUnitsClosed()
			e.write(u)
		}
		return
	}

	e.write(r.Payload)
}

func (e *Engine) write(payload []byte) {
	e.out.Write(payload)
	e.out.Flush()
}

// drain implements the Drain Controller's buffer-flush path (spec.md
// §4.7): release every remaining record in ascending id order, then flush.
func (e *Engine) drain() {
	e.buf.Drain(e.release)
	e.out.Flush()
}
