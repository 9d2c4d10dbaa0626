package idgen

import "github.com/google/uuid"

// NewFunc produces a new globally unique identifier. Tests may stub it to
// obtain predictable IDs.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new identifier via NewFunc.
func New() string { return NewFunc() }
