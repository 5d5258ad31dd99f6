// Package presentation implements the engine's two entrypoints,
// StartServer and StartClient, each running the single-threaded
// readiness-multiplexing loop of spec §4.E/§5: one thread owns the TUN
// handle, the UDP socket, the session table, the codec, and the
// compressor exclusively, waking only when one of the two registered
// descriptors is ready.
package presentation

// token identifies which registered descriptor produced a readiness
// event, mirroring mio::Token(0)/mio::Token(1) in the original.
type token int

const (
	tunToken  token = 0
	sockToken token = 1
)

// multiplexer is the narrow interface the event loop needs from the
// OS-specific readiness backend: register a descriptor for read (and
// optionally write) interest under a token, then block until at least
// one registered descriptor is ready, returning which tokens fired.
type multiplexer interface {
	registerRead(fd int, tok token) error
	registerReadWrite(fd int, tok token) error
	wait() ([]token, error)
	close() error
}
