package report

import "fmt"

// InternalError is an internal compiler error (ICE): an error resulting from a
// bug or unexpected condition in the compiler itself rather than in the user's
// program.  These errors are never supposed to happen.
type InternalError struct {
	Message string
}

func (ie *InternalError) Error() string {
	return "internal compiler error: " + ie.Message
}

// ICE raises an internal compiler error.  It panics with an `*InternalError`
// which aborts whatever compilation phase is running.  It is caught at the
// pipeline boundary by `CatchICE`.
func ICE(msg string, args ...interface{}) {
	panic(&InternalError{Message: fmt.Sprintf(msg, args...)})
}

// CatchICE recovers an internal compiler error raised by `ICE` and stores it
// into `err`.  Any other panic is re-raised: it is not ours to handle.
// NB: This function must ALWAYS be deferred.
func CatchICE(err *error) {
	if x := recover(); x != nil {
		if ice, ok := x.(*InternalError); ok {
			*err = ice
			return
		}

		panic(x)
	}
}
