// Package models defines the credential records and wire envelopes shared by
// the vault server and client.
package models

// CredentialRecord is one stored account entry.
type CredentialRecord struct {
	// ID is the surrogate row identifier assigned on creation.
	ID string `json:"account_id,omitempty"`
	// Owner groups records by the person they belong to.
	Owner string `json:"account_owner"`
	// Name is the service or account label.
	Name string `json:"account_name"`
	// Username is the login at the target service, stored in clear.
	Username string `json:"account_username"`
	// PasswordHash is the digest; no other form of the password is ever stored.
	PasswordHash string `json:"account_password"`
}

// NewEntry is the body of a create request. Password must already be a digest.
type NewEntry struct {
	Owner    string `json:"owner"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Envelope wraps every response of the vault API.
type Envelope struct {
	Message  string `json:"message"`
	HTTPCode int    `json:"http_code"`
	Data     any    `json:"data,omitempty"`
}
