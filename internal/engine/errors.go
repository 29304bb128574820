package engine

import "errors"

// ErrRejected matches every rejected command via errors.Is. A rejected command leaves
// the state unchanged.
var ErrRejected = errors.New("command rejected")

// rejection is a domain-level reason a command was declined.
type rejection struct {
	code string
	msg  string
}

func (r *rejection) Error() string { return r.msg }

// Is lets errors.Is(err, ErrRejected) match any rejection.
func (r *rejection) Is(target error) bool { return target == ErrRejected }

// Code returns the stable rejection code.
func (r *rejection) Code() string { return r.code }

func reject(code, msg string) error {
	return &rejection{code: code, msg: msg}
}

var (
	// ErrGambitNotAvailable indicates activation from a state other than available.
	ErrGambitNotAvailable = reject("GAMBIT_NOT_AVAILABLE", "gambit is not available")
	// ErrGambitNotLocked indicates an unlock of a gambit that is not locked.
	ErrGambitNotLocked = reject("GAMBIT_NOT_LOCKED", "gambit is not locked")
	// ErrGambitExhausted indicates activation with no uses left.
	ErrGambitExhausted = reject("GAMBIT_EXHAUSTED", "gambit has no remaining uses")
	// ErrUnknownGambit indicates the player holds no instance of the gambit.
	ErrUnknownGambit = reject("GAMBIT_UNKNOWN", "player has no such gambit")
	// ErrInvalidOrder indicates an order for a missing or unowned enclave.
	ErrInvalidOrder = reject("ORDER_INVALID", "invalid order")
	// ErrUnknownCommand indicates a command type the reducer does not handle.
	ErrUnknownCommand = reject("COMMAND_UNKNOWN", "unknown command")
)

// IsRejected reports whether err is a rejected operation.
func IsRejected(err error) bool {
	return errors.Is(err, ErrRejected)
}

// IsFatal reports whether err (or any error in its chain) is an unrecoverable
// configuration error. Callers must stop and surface it rather than keep playing.
func IsFatal(err error) bool {
	var target interface{ Fatal() bool }
	if errors.As(err, &target) {
		return target.Fatal()
	}
	return false
}

// RejectionCode returns the code of a rejected operation, or "".
func RejectionCode(err error) string {
	var r *rejection
	if errors.As(err, &r) {
		return r.Code()
	}
	return ""
}
