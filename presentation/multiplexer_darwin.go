//go:build darwin

package presentation

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// kqueueMultiplexer is the Darwin/BSD backend: the same readiness
// contract as epollMultiplexer, expressed with kqueue/kevent since
// Darwin has no epoll. Grounded on the same split-readiness idea as
// infrastructure/PAL/linux/tun/epoll/tun.go, translated to kqueue's
// EVFILT_READ/EVFILT_WRITE filters.
type kqueueMultiplexer struct {
	kq      int
	tokByFd map[int]token
}

func newMultiplexer() (multiplexer, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, fmt.Errorf("presentation: kqueue: %w", err)
	}
	return &kqueueMultiplexer{kq: kq, tokByFd: make(map[int]token, 2)}, nil
}

func (m *kqueueMultiplexer) register(fd int, tok token, filters ...int16) error {
	changes := make([]unix.Kevent_t, len(filters))
	for i, filt := range filters {
		changes[i] = unix.Kevent_t{
			Ident:  uint64(fd),
			Filter: filt,
			Flags:  unix.EV_ADD | unix.EV_ENABLE,
		}
	}
	if _, err := unix.Kevent(m.kq, changes, nil, nil); err != nil {
		return fmt.Errorf("presentation: kevent register fd %d: %w", fd, err)
	}
	m.tokByFd[fd] = tok
	return nil
}

func (m *kqueueMultiplexer) registerRead(fd int, tok token) error {
	return m.register(fd, tok, unix.EVFILT_READ)
}

func (m *kqueueMultiplexer) registerReadWrite(fd int, tok token) error {
	return m.register(fd, tok, unix.EVFILT_READ, unix.EVFILT_WRITE)
}

func (m *kqueueMultiplexer) wait() ([]token, error) {
	events := make([]unix.Kevent_t, 8)
	for {
		n, err := unix.Kevent(m.kq, nil, events, nil)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("presentation: kevent wait: %w", err)
		}
		toks := make([]token, 0, n)
		for i := 0; i < n; i++ {
			if tok, ok := m.tokByFd[int(events[i].Ident)]; ok {
				toks = append(toks, tok)
			}
		}
		if len(toks) > 0 {
			return toks, nil
		}
	}
}

func (m *kqueueMultiplexer) close() error {
	return unix.Close(m.kq)
}
