package store

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// ErrLockTimeout is returned when the store lock cannot be acquired within
// the configured bound. It is fatal to the current invocation only; no
// partial write has occurred when it surfaces.
var ErrLockTimeout = errors.New("store lock acquisition timed out")

// DefaultLockPoll is the spin-wait interval between acquisition attempts
const DefaultLockPoll = 100 * time.Millisecond

// FileLock is a cross-process advisory lock built on exclusive creation of
// a marker file. The coordinating units are separate processes, so an
// in-process mutex cannot serve here.
type FileLock struct {
	path    string
	timeout time.Duration
	poll    time.Duration
}

// NewFileLock creates a lock around the given marker path
func NewFileLock(path string, timeout time.Duration) *FileLock {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &FileLock{path: path, timeout: timeout, poll: DefaultLockPoll}
}

// Acquire spin-waits until the marker file can be created exclusively or
// the timeout elapses. The marker records the holder's PID for operators
// cleaning up after a crash.
func (l *FileLock) Acquire() error {
	deadline := time.Now().Add(l.timeout)
	for {
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_, _ = f.WriteString(strconv.Itoa(os.Getpid()))
			if cerr := f.Close(); cerr != nil {
				return fmt.Errorf("close lock marker: %w", cerr)
			}
			return nil
		}
		if !os.IsExist(err) {
			return fmt.Errorf("create lock marker: %w", err)
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w after %s", ErrLockTimeout, l.timeout)
		}
		time.Sleep(l.poll)
	}
}

// Release removes the marker. Best-effort: a marker already cleaned up by
// an operator after a crash is not an error.
func (l *FileLock) Release() {
	_ = os.Remove(l.path)
}
