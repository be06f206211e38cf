package config

// Error is a terminal configuration error. It aborts the run before any
// output is written.
type Error struct {
	Stage string // pipeline stage that rejected the configuration
	Err   error
}

func (e *Error) Error() string {
	return "configuration error (" + e.Stage + "): " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }
