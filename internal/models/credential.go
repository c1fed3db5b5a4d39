// Package models defines the data types shared across figfiles packages.
package models

// CredentialType selects which authentication header the transport sends.
type CredentialType string

const (
	// CredentialDelegated is an OAuth access token sent as a bearer token.
	CredentialDelegated CredentialType = "oauth"
	// CredentialPersonal is a personal access token sent in the provider's
	// static token header.
	CredentialPersonal CredentialType = "personal"
)

// Credential is an opaque token plus its type. It is never persisted.
type Credential struct {
	Token string
	Type  CredentialType
}
