// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import "fmt"

// ValidateBudget validates a ProcessingBudget.
//
// Validation rules:
//   - MaxChars must be positive
//   - CharsPerToken must be positive
//   - CharsPerPage must be positive
func ValidateBudget(budget ProcessingBudget) error {
	if budget.MaxChars <= 0 {
		return fmt.Errorf("%w: max chars must be positive, got %d", ErrInvalidConfiguration, budget.MaxChars)
	}
	if budget.CharsPerToken <= 0 {
		return fmt.Errorf("%w: chars per token must be positive, got %g", ErrInvalidConfiguration, budget.CharsPerToken)
	}
	if budget.CharsPerPage <= 0 {
		return fmt.Errorf("%w: chars per page must be positive, got %g", ErrInvalidConfiguration, budget.CharsPerPage)
	}
	return nil
}

// ValidateContentUnit validates a ContentUnit according to domain rules.
//
// Validation rules:
//   - RawText must not be empty
//   - CharCount must equal the character count of RawText
//
// NOT validated:
//   - SourceID (an empty source is reported as-is)
//   - PageCountHint (informational only)
func ValidateContentUnit(unit *ContentUnit) error {
	if unit == nil {
		return fmt.Errorf("%w: %w", ErrInvalidContentUnit, ErrEmptyContent)
	}

	if unit.RawText == "" {
		return fmt.Errorf("%w: %w", ErrInvalidContentUnit, ErrEmptyContent)
	}

	if n := CountChars(unit.RawText); n != unit.CharCount {
		return fmt.Errorf("%w: %w: have %d, text has %d", ErrInvalidContentUnit, ErrCharCountMismatch, unit.CharCount, n)
	}

	return nil
}
