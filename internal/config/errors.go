package config

import "fmt"

// Error reports a configuration problem: a missing or mistyped field, a
// module selection that names no known module, or an unreadable source.
type Error struct {
	// Slice names the configuration slice (e.g. "pmem", "cpu0_L1D").
	Slice string

	// Key is the offending field within Slice.
	Key string

	// Message is a human-readable description.
	Message string
}

func (e *Error) Error() string {
	switch {
	case e.Slice != "" && e.Key != "":
		return fmt.Sprintf("config: %s.%s: %s", e.Slice, e.Key, e.Message)
	case e.Key != "":
		return fmt.Sprintf("config: %s: %s", e.Key, e.Message)
	case e.Slice != "":
		return fmt.Sprintf("config: %s: %s", e.Slice, e.Message)
	default:
		return "config: " + e.Message
	}
}

func missingField(slice, key string) *Error {
	return &Error{Slice: slice, Key: key, Message: "missing required field"}
}
