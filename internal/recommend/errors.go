// Flickpick - Personalized Movie Recommendations for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flickpick

package recommend

import "fmt"

// IncompleteRecordError reports a raw movie record missing a mandatory field
// (identifier or title). The record is skipped and the run continues; callers
// must never abort a batch on this error.
type IncompleteRecordError struct {
	// Field is the missing mandatory field name.
	Field string

	// Title is the record title when available, for log context.
	Title string
}

func (e *IncompleteRecordError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("incomplete record %q: missing %s", e.Title, e.Field)
	}
	return fmt.Sprintf("incomplete record: missing %s", e.Field)
}

// ConfigValidationError reports scoring configuration that invalidates every
// subsequent score (weights not summing to 1.0, negative limits). The run
// must abort before any scoring takes place.
type ConfigValidationError struct {
	Reason string
}

func (e *ConfigValidationError) Error() string {
	return "invalid scoring configuration: " + e.Reason
}
