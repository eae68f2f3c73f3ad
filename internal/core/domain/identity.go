package domain

// Identity is the caller attached to a request by the auth pre-filter.
type Identity struct {
	Subject   string
	Anonymous bool
}

func AnonymousIdentity() Identity {
	return Identity{Subject: "anonymous", Anonymous: true}
}
