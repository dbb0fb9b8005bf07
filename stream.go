package ateneo

// Stream is a pull-based iterator over decoded events from one streaming
// response. Cancellation flows through the context passed to
// Streamer.Stream().
//
// Next() returns the next decoded event, io.EOF when the stream ends
// (explicit end sentinel or transport end), or a transport error. Malformed
// frames never surface here: the implementation logs and skips them, so a
// single corrupted frame cannot kill an otherwise healthy session.
//
// Close() releases the transport handle. It is safe to call on every exit
// path, including after Next has returned an error.
type Stream interface {
	Next() (Event, error)
	Close() error
}
