package models

// AuthenticationState gates access to reminder screens.
type AuthenticationState int

const (
	// Unknown is the state before the session has been checked, or when the
	// check itself failed.
	Unknown AuthenticationState = iota
	Unauthenticated
	Authenticated
)

func (s AuthenticationState) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}
