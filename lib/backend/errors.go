package backend

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/bmatsuo/lmdb-go/lmdb"
)

// Error is an LMDB failure translated into the store's error model. It keeps
// the originating call name, the numeric return code and the textual
// description from strerror.
type Error struct {
	Op   string
	Code int
	Desc string
}

func (e *Error) Error() string {
	return fmt.Sprintf("lmdb %s: %s (code %d)", e.Op, e.Desc, e.Code)
}

// translate converts an error returned by the bindings into an *Error tagged
// with op. NOTFOUND must be filtered by the caller before translation; nil
// passes through unchanged.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	var be *Error
	if errors.As(err, &be) {
		return err
	}
	code := 0
	var opErr *lmdb.OpError
	if errors.As(err, &opErr) {
		switch en := opErr.Errno.(type) {
		case lmdb.Errno:
			code = int(en)
		case syscall.Errno:
			code = int(en)
		}
		return &Error{Op: op, Code: code, Desc: opErr.Errno.Error()}
	}
	var en lmdb.Errno
	if errors.As(err, &en) {
		return &Error{Op: op, Code: int(en), Desc: en.Error()}
	}
	return &Error{Op: op, Desc: err.Error()}
}
