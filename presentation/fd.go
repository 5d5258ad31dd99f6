package presentation

import "net"

// udpFd extracts the raw file descriptor backing conn without
// transferring ownership (unlike net.UDPConn.File, which dup()s and
// leaves the duplicate in blocking mode). The multiplexer only needs the
// descriptor number to register readiness interest; all actual reads and
// writes continue to go through conn itself.
func udpFd(conn *net.UDPConn) (int, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return 0, err
	}
	var fd int
	ctrlErr := raw.Control(func(f uintptr) { fd = int(f) })
	if ctrlErr != nil {
		return 0, ctrlErr
	}
	return fd, nil
}
