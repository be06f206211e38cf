package panel

// DataError is a terminal data-quality error: the input could not be read, or
// cleaning/resampling left nothing to analyze.
type DataError struct {
	Stage string
	Err   error
}

func (e *DataError) Error() string {
	return "data error (" + e.Stage + "): " + e.Err.Error()
}

func (e *DataError) Unwrap() error { return e.Err }
