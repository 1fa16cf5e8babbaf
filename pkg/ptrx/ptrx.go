// Package ptrx provides small helpers for building and reading pointers to
// literal values, mostly for optional request fields.
package ptrx

import "time"

// String returns a pointer value for the string value passed in.
func String(v string) *string {
	return &v
}

// StringValue returns the value of the string pointer passed in or "" if the
// pointer is nil.
func StringValue(v *string) string {
	if v != nil {
		return *v
	}
	return ""
}

// Int returns a pointer value for the int value passed in.
func Int(v int) *int {
	return &v
}

// IntValue returns the value of the int pointer passed in or 0 if the pointer
// is nil.
func IntValue(v *int) int {
	if v != nil {
		return *v
	}
	return 0
}

// Bool returns a pointer value for the bool value passed in.
func Bool(v bool) *bool {
	return &v
}

// BoolValue returns the value of the bool pointer passed in or false if the
// pointer is nil.
func BoolValue(v *bool) bool {
	if v != nil {
		return *v
	}
	return false
}

// Time returns a pointer value for the time.Time value passed in.
func Time(v time.Time) *time.Time {
	return &v
}

// TimeValue returns the value of the time pointer passed in or the zero time
// if the pointer is nil.
func TimeValue(v *time.Time) time.Time {
	if v != nil {
		return *v
	}
	return time.Time{}
}
