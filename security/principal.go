package security

// Principal is the authenticated identity of a request. Use cases receive
// it explicitly instead of reading it from ambient state.
type Principal struct {
	UserID string
	Email  string
}
