package errcode

// Code is a stable, wire-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK             Code = "ok"
	InvalidCoord   Code = "invalid_coord"
	InvalidColor   Code = "invalid_color"
	InvalidParams  Code = "invalid_params"
	InvalidPayload Code = "invalid_payload"
	UnknownCommand Code = "unknown_command"
	AllocFailed    Code = "alloc_failed"

	Timeout        Code = "timeout"
	TriggerFailure Code = "trigger_failure"
	NotReady       Code = "not_ready"
	Busy           Code = "busy"

	Error Code = "error" // generic fallback
)

// E keeps context and a cause alongside the code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}

// Counter tracks total failures and the most recent code for diagnostics.
// Zero value is ready to use. Not goroutine-safe; owned by the main loop.
type Counter struct {
	total int
	last  Code
}

func (d *Counter) Record(c Code) {
	if c == OK {
		return
	}
	d.total++
	d.last = c
}

func (d *Counter) Total() int { return d.total }

func (d *Counter) Last() Code {
	if d.last == "" {
		return OK
	}
	return d.last
}
