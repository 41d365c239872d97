package docipc

import (
	"io"
	"os"
	"sync"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Log categories, set as the "category" field.
const (
	categoryDispatch = `dispatch`
	categoryBinding  = `binding`
	categorySnapshot = `snapshot`
	categoryBridge   = `bridge`
)

var defaultLogger = sync.OnceValue(func() *logiface.Logger[logiface.Event] {
	return NewLogger(os.Stderr, logiface.LevelInformational)
})

// DefaultLogger returns the process-wide logger used when no logger is
// configured: JSON lines to stderr, at the informational level.
func DefaultLogger() *logiface.Logger[logiface.Event] {
	return defaultLogger()
}

// NewLogger builds a stumpy-backed logger writing JSON lines to w.
func NewLogger(w io.Writer, level logiface.Level) *logiface.Logger[logiface.Event] {
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
		stumpy.L.WithLevel(level),
	).Logger()
}
