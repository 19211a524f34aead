// Package options provides shared utilities for option validation.
package options

import "fmt"

// ValidateSingleInputSource ensures exactly one input source is specified.
// sources is a variadic list of booleans indicating whether each source is set.
// noSourceMsg is the error message when no source is specified.
// multiSourceMsg is the error message when multiple sources are specified.
func ValidateSingleInputSource(noSourceMsg, multiSourceMsg string, sources ...bool) error {
	sourceCount := 0
	for _, hasSource := range sources {
		if hasSource {
			sourceCount++
		}
	}

	if sourceCount == 0 {
		return fmt.Errorf("%s", noSourceMsg)
	}
	if sourceCount > 1 {
		return fmt.Errorf("%s", multiSourceMsg)
	}

	return nil
}

// ValidateNonNegative returns an error naming the option when value is negative.
func ValidateNonNegative[T ~int | ~int64](prefix, name string, value T) error {
	if value < 0 {
		return fmt.Errorf("%s: %s cannot be negative", prefix, name)
	}
	return nil
}
