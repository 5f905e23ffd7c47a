package ident

import (
	"github.com/google/uuid"
)

// Length is the length of a canonical identifier string.
const Length = 36

// Generator produces a new unique identifier on every call.
type Generator func() string

// New returns a fresh random identifier.
func New() string {
	return uuid.NewString()
}

// Valid reports whether id is a canonical version 4 identifier.
func Valid(id string) bool {
	if len(id) != Length {
		return false
	}
	u, err := uuid.Parse(id)
	if err != nil {
		return false
	}
	return u.Version() == 4 && u.String() == id
}
