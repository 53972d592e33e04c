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

import "errors"

// Domain validation errors
var (
	// ErrInvalidConfiguration indicates a budget or chunking setting is not usable.
	// It is a startup error and is never produced while a request is in flight.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrEmptyContent indicates the extracted text is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidContentUnit indicates a ContentUnit failed validation.
	ErrInvalidContentUnit = errors.New("invalid content unit")

	// ErrCharCountMismatch indicates CharCount disagrees with RawText.
	ErrCharCountMismatch = errors.New("char count does not match text")
)
