package model

import "fmt"

// MalformedInputError reports a record that breaks a structural invariant.
// Row is zero-based within Table; -1 means the table as a whole (e.g. a
// missing header column).
type MalformedInputError struct {
	Table  string
	Row    int
	Field  string
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("malformed %s input: %s: %s", e.Table, e.Field, e.Reason)
	}
	return fmt.Sprintf("malformed %s input at row %d: %s: %s", e.Table, e.Row, e.Field, e.Reason)
}

// WarningCode identifies a non-fatal empty outcome of a pipeline stage.
type WarningCode string

const (
	WarnNoPositiveCultures WarningCode = "no_positive_cultures"
	WarnNoExposures        WarningCode = "no_exposures"
	WarnNoContacts         WarningCode = "no_contacts"
)

// Warning is an empty-result notice. It is never returned as an error.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}
