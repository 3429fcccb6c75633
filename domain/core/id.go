package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Falls back to v4 if v7 generation fails
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	CalculationID ID
	BatchID       ID
)

// String conversions for domain IDs
func (id CalculationID) String() string { return ID(id).String() }
func (id BatchID) String() string       { return ID(id).String() }

// NewCalculationID returns a fresh time-ordered calculation identifier
func NewCalculationID() CalculationID { return CalculationID(NewID()) }

// NewBatchID returns a fresh time-ordered batch identifier
func NewBatchID() BatchID { return BatchID(NewID()) }

// ParseCalculationID parses a string into CalculationID
func ParseCalculationID(s string) (CalculationID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("calculation ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("calculation ID %q is not a UUID: %w", s, err)
	}
	return CalculationID(s), nil
}
