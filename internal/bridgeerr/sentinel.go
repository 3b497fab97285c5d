// Package bridgeerr provides predefined sentinel errors for common failure cases.
package bridgeerr

// Input-source errors.
var (
	// ErrSocketUnavailable indicates the audispd socket could not be
	// constructed or connected.
	ErrSocketUnavailable = &BridgeError{
		Kind:   KindIO,
		Detail: "unable to construct or connect the audispd socket",
	}

	// ErrSourceClosed indicates the input source (socket or stdin) was
	// closed by its peer.
	ErrSourceClosed = &BridgeError{
		Kind:   KindIO,
		Detail: "input source closed",
	}

	// ErrInvalidSocketPath indicates an invalid socket path.
	ErrInvalidSocketPath = &BridgeError{
		Kind:   KindOption,
		Detail: "invalid socket path",
	}
)

// Record/parsing errors.
var (
	// ErrNoEventID indicates a line had no `:NNNN)` serial to extract.
	ErrNoEventID = &BridgeError{
		Kind:   KindParse,
		Detail: "cannot parse event id",
	}

	// ErrLineTruncated indicates a line longer than the read buffer was
	// truncated (the source is trusted not to exceed the bound, so this
	// indicates a source-side anomaly, not corruption).
	ErrLineTruncated = &BridgeError{
		Kind:   KindParse,
		Detail: "line exceeded buffer length and was truncated",
	}
)

// Reorder buffer errors.
var (
	// ErrLateLine indicates a line arrived for an event id already
	// released past the reordering window.
	ErrLateLine = &BridgeError{
		Kind:   KindProtocol,
		Detail: "line arrived for an already-released event id",
	}

	// ErrEventIDGap indicates the release cursor advanced past an id with
	// no buffered record (an expected, non-fatal gap in the audit stream).
	ErrEventIDGap = &BridgeError{
		Kind:   KindProtocol,
		Detail: "event id missing at cursor, gap skipped",
	}
)

// UBSI protocol errors.
var (
	// ErrOrphanSentinelHalf indicates a low-half memory-read/write
	// sentinel arrived without a preceding high-half sentinel on the same
	// thread. Treated as a source defect, not a hard error (spec.md §4.5.3).
	ErrOrphanSentinelHalf = &BridgeError{
		Kind:   KindProtocol,
		Detail: "memory sentinel low half arrived without a preceding high half",
	}
)

// Command-line errors.
var (
	// ErrUnknownOption indicates an unrecognized flag was supplied.
	ErrUnknownOption = &BridgeError{
		Kind:   KindOption,
		Detail: "unknown option",
	}
)
