// Flickpick - Personalized Movie Recommendations for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flickpick

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/flickpick/internal/recommend"
)

// validate holds the shared struct-tag validator. A single instance caches
// struct metadata across calls.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that required collaborator settings are present and the
// scoring section is usable. Scoring violations surface as
// recommend.ConfigValidationError; the run must abort before any scoring.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return &recommend.ConfigValidationError{Reason: describeFieldErrors(fieldErrs)}
		}
		return fmt.Errorf("configuration not validatable: %w", err)
	}

	// Weight-sum and rating-mode checks invalidate every score, so they get
	// the typed error the pipeline treats as fatal.
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if _, err := recommend.ParseRatingMode(c.General.RatingMode); err != nil {
		return err
	}

	return nil
}

// describeFieldErrors flattens validator field errors into one message.
func describeFieldErrors(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
