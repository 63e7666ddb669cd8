// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package uuid generates the time-ordered identifiers used for comment ids and
// operation ids.
package uuid

import "github.com/google/uuid"

// # Generators

// New generates a new UUIDv7 string.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Only fails when the system entropy source does.
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}
	return id.String()
}

