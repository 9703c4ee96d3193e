package models

import "github.com/google/uuid"

// newID fills an empty string primary key.
func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
