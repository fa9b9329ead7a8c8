package auth

// Identity is the caller of a request. The zero value is an anonymous caller.
type Identity struct {
	Username  string
	SessionID string
	ExpiresAt int64
}

// Anonymous is the identity of a caller without a valid session
var Anonymous = Identity{}

// LoggedIn reports whether the identity belongs to an authenticated user
func (i Identity) LoggedIn() bool {
	return i.Username != ""
}
