package docipc

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"
)

type (
	// OutputHandle is an abstract, owned, writable resource supplied by the
	// controller, e.g. for [Service.TakeHeapSnapshot].
	OutputHandle interface {
		// Unwrap transfers ownership of the underlying resource to the
		// caller. It may be called at most once.
		Unwrap() (io.WriteCloser, error)
	}

	// Snapshotter captures the live heap state of the scripting engine.
	Snapshotter interface {
		// WriteHeapSnapshot blocks until the snapshot is written to w.
		WriteHeapSnapshot(w io.Writer) error
	}

	// HeapProfileSnapshotter implements [Snapshotter] by writing a
	// runtime/pprof heap profile of the current process, after forcing a
	// garbage collection. The goja heap lives in the Go heap, so this is the
	// engine's live heap state.
	HeapProfileSnapshotter struct{}

	// FileHandle is an [OutputHandle] backed by a file, or by a raw file
	// descriptor received from another process.
	FileHandle struct {
		file     *os.File
		name     string
		fd       uintptr
		raw      bool
		consumed bool
	}
)

var _ OutputHandle = (*FileHandle)(nil)

// WriteHeapSnapshot implements [Snapshotter].
func (HeapProfileSnapshotter) WriteHeapSnapshot(w io.Writer) error {
	runtime.GC()
	return pprof.WriteHeapProfile(w)
}

// NewFileHandle wraps f, taking ownership of it. A nil f produces a handle
// that fails to unwrap.
func NewFileHandle(f *os.File) *FileHandle {
	return &FileHandle{file: f}
}

// NewRawFileHandle wraps a file descriptor, taking ownership of it. The
// descriptor is validated on [FileHandle.Unwrap].
func NewRawFileHandle(fd uintptr, name string) *FileHandle {
	return &FileHandle{fd: fd, name: name, raw: true}
}

// Consumed reports whether the handle has been unwrapped or transferred.
func (x *FileHandle) Consumed() bool {
	return x == nil || x.consumed
}

// Take transfers ownership of the handle to the returned value.
func (x *FileHandle) Take() (*FileHandle, error) {
	if x.Consumed() {
		return nil, ErrHandleConsumed
	}
	out := *x
	x.consumed = true
	x.file = nil
	return &out, nil
}

// Unwrap implements [OutputHandle]. The returned resource is open for
// writing; it is the caller's to close.
func (x *FileHandle) Unwrap() (io.WriteCloser, error) {
	if x.Consumed() {
		return nil, ErrHandleConsumed
	}
	x.consumed = true

	if x.raw {
		if err := checkWritableFD(x.fd); err != nil {
			return nil, err
		}
		f := os.NewFile(x.fd, x.name)
		if f == nil {
			return nil, ErrInvalidHandle
		}
		return f, nil
	}

	f := x.file
	x.file = nil
	if f == nil {
		return nil, ErrInvalidHandle
	}
	if err := checkWritableFile(f); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

// Close releases the handle without using it.
func (x *FileHandle) Close() error {
	if x.Consumed() {
		return nil
	}
	x.consumed = true
	if x.raw {
		f := os.NewFile(x.fd, x.name)
		if f == nil {
			return nil
		}
		return f.Close()
	}
	if f := x.file; f != nil {
		x.file = nil
		return f.Close()
	}
	return nil
}

func invalidHandle(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidHandle, err)
}
