package sim

import "errors"

var (
	// ErrUnitBusy is returned when a session is requested on a unit that is
	// not available.
	ErrUnitBusy = errors.New("unit busy")
	// ErrInvalidTarget is returned when the requested target energy is out
	// of the admissible range for the unit.
	ErrInvalidTarget = errors.New("invalid target energy")
	// ErrNoActiveSession is returned when stopping a unit with no session.
	ErrNoActiveSession = errors.New("no active session")
	// ErrUnknownUnit is returned for commands addressing a unit the engine
	// does not manage.
	ErrUnknownUnit = errors.New("unknown unit")
)
