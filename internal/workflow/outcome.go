// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import "encoding/json"

// Outcome is the result of attempting to parse structured model output.
// Either the value parsed (Fallback false) or it did not and the caller
// substitutes its fixed fallback value (Fallback true, Reason says why).
// Parse failure is the only recoverable condition in the engine; it never
// surfaces as an error.
type Outcome[T any] struct {
	Value    T
	Fallback bool
	Reason   string
}

// decodeStructured attempts to parse a model response as JSON into T.
// Model chatter around the JSON object is not repaired; anything that does
// not decode cleanly is a fallback.
func decodeStructured[T any](response string) Outcome[T] {
	var value T
	if err := json.Unmarshal([]byte(response), &value); err != nil {
		return Outcome[T]{Fallback: true, Reason: err.Error()}
	}
	return Outcome[T]{Value: value}
}
