package models

// SessionCredential is the pair of opaque cookie values that authorize recipe
// API calls, harvested by the login handshake. The platform expresses no
// expiry for either value, so a credential is treated as valid for the
// lifetime of the client that owns it and is never persisted or refreshed.
type SessionCredential struct {
	AuthToken    string
	ProxySession string
}

// Complete reports whether both session cookies are present.
func (c SessionCredential) Complete() bool {
	return c.AuthToken != "" && c.ProxySession != ""
}
