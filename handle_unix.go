//go:build linux || darwin

package docipc

import (
	"os"

	"golang.org/x/sys/unix"
)

func checkWritableFD(fd uintptr) error {
	flags, err := unix.FcntlInt(fd, unix.F_GETFL, 0)
	if err != nil {
		return invalidHandle(err)
	}
	if flags&unix.O_ACCMODE == unix.O_RDONLY {
		return invalidHandle(unix.EBADF)
	}
	return nil
}

func checkWritableFile(f *os.File) error {
	conn, err := f.SyscallConn()
	if err != nil {
		return invalidHandle(err)
	}
	var checkErr error
	if err := conn.Control(func(fd uintptr) {
		checkErr = checkWritableFD(fd)
	}); err != nil {
		return invalidHandle(err)
	}
	return checkErr
}
