package remote

import (
	"context"
	"fmt"

	"github.com/kilupskalvis/figfiles/internal/models"
	"golang.org/x/oauth2"
)

// CredentialSource hands the transport a credential for each request.
type CredentialSource interface {
	Credential(ctx context.Context) (models.Credential, error)
}

// PersonalToken is a static personal access token.
type PersonalToken string

// Credential returns the token typed as personal.
func (p PersonalToken) Credential(_ context.Context) (models.Credential, error) {
	if p == "" {
		return models.Credential{}, fmt.Errorf("personal access token: %w", ErrNoCredential)
	}
	return models.Credential{Token: string(p), Type: models.CredentialPersonal}, nil
}

// OAuthSource adapts an oauth2.TokenSource into a delegated credential.
type OAuthSource struct {
	TokenSource oauth2.TokenSource
}

// NewOAuthSource wraps ts so tokens are reused until they expire.
func NewOAuthSource(ts oauth2.TokenSource) *OAuthSource {
	return &OAuthSource{TokenSource: oauth2.ReuseTokenSource(nil, ts)}
}

// Credential fetches the current access token.
func (o *OAuthSource) Credential(_ context.Context) (models.Credential, error) {
	if o == nil || o.TokenSource == nil {
		return models.Credential{}, fmt.Errorf("oauth: %w", ErrNoCredential)
	}
	tok, err := o.TokenSource.Token()
	if err != nil {
		return models.Credential{}, fmt.Errorf("oauth token: %w", err)
	}
	if tok.AccessToken == "" {
		return models.Credential{}, fmt.Errorf("oauth token: %w", ErrNoCredential)
	}
	return models.Credential{Token: tok.AccessToken, Type: models.CredentialDelegated}, nil
}
