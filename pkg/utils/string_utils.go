package utils

// NewNullString returns nil for an empty string, otherwise a pointer to
// it. Optional text columns store NULL rather than "".
func NewNullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
