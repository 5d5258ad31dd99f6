//go:build linux

package presentation

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// epollMultiplexer is the Linux backend, grounded on
// infrastructure/PAL/linux/tun/epoll/tun.go's EpollCreate1/EpollCtl/
// EpollWait/EINTR-retry idiom, generalized here from one fd to the
// TUN+SOCK pair spec §4.E registers.
type epollMultiplexer struct {
	epfd    int
	tokByFd map[int32]token
}

func newMultiplexer() (multiplexer, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("presentation: epoll_create1: %w", err)
	}
	return &epollMultiplexer{epfd: epfd, tokByFd: make(map[int32]token, 2)}, nil
}

func (m *epollMultiplexer) register(fd int, tok token, events uint32) error {
	ev := unix.EpollEvent{Events: events, Fd: int32(fd)}
	if err := unix.EpollCtl(m.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("presentation: epoll_ctl add fd %d: %w", fd, err)
	}
	m.tokByFd[int32(fd)] = tok
	return nil
}

func (m *epollMultiplexer) registerRead(fd int, tok token) error {
	return m.register(fd, tok, unix.EPOLLIN)
}

func (m *epollMultiplexer) registerReadWrite(fd int, tok token) error {
	return m.register(fd, tok, unix.EPOLLIN|unix.EPOLLOUT)
}

func (m *epollMultiplexer) wait() ([]token, error) {
	var events [8]unix.EpollEvent
	for {
		n, err := unix.EpollWait(m.epfd, events[:], -1)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("presentation: epoll_wait: %w", err)
		}
		toks := make([]token, 0, n)
		for i := 0; i < n; i++ {
			if tok, ok := m.tokByFd[events[i].Fd]; ok {
				toks = append(toks, tok)
			}
		}
		if len(toks) > 0 {
			return toks, nil
		}
	}
}

func (m *epollMultiplexer) close() error {
	return unix.Close(m.epfd)
}
