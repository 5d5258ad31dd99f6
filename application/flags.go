package application

import "sync/atomic"

// Flags holds the three process-wide booleans that coordinate the engine
// with the outside world: an external signal handler sets Interrupted, and
// health checks / tests observe Connected and Listening.
type Flags struct {
	interrupted atomic.Bool
	connected   atomic.Bool
	listening   atomic.Bool
}

func (f *Flags) Interrupt()          { f.interrupted.Store(true) }
func (f *Flags) Interrupted() bool   { return f.interrupted.Load() }
func (f *Flags) SetConnected(v bool) { f.connected.Store(v) }
func (f *Flags) Connected() bool     { return f.connected.Load() }
func (f *Flags) SetListening(v bool) { f.listening.Store(v) }
func (f *Flags) Listening() bool     { return f.listening.Load() }
