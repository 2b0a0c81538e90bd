package values

import (
	"fmt"

	"github.com/google/uuid"
)

// RequestID uniquely identifies a permission request.
// This is what ties a consent decision back to the request it answers
// in the audit log.
type RequestID struct {
	value uuid.UUID
}

// NewRequestID creates a new random request ID
func NewRequestID() RequestID {
	return RequestID{value: uuid.New()}
}

// ParseRequestID parses a string into a RequestID
func ParseRequestID(s string) (RequestID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return RequestID{}, fmt.Errorf("invalid request ID: %w", err)
	}
	return RequestID{value: id}, nil
}

// MustParseRequestID parses a string or panics (for tests only)
func MustParseRequestID(s string) RequestID {
	id, err := ParseRequestID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the string representation
func (r RequestID) String() string {
	return r.value.String()
}

// IsZero returns true if this is the zero value
func (r RequestID) IsZero() bool {
	return r.value == uuid.Nil
}

// Equals checks if two RequestIDs are equal
func (r RequestID) Equals(other RequestID) bool {
	return r.value == other.value
}

// MarshalJSON implements json.Marshaler
func (r RequestID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (r *RequestID) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 {
		return fmt.Errorf("invalid request ID JSON")
	}

	id, err := ParseRequestID(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*r = id
	return nil
}
