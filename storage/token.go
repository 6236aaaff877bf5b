package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/giantswarm/oauthapp/security"
)

// KnownExtraFields lists the token response fields kept through sealing.
// oauth2.Token stores them in a private field only reachable through Extra.
var KnownExtraFields = []string{
	"scope", // granted scopes, may differ from the requested ones
}

// tokenJSON is the sealed representation of an oauth2.Token.
type tokenJSON struct {
	AccessToken  string         `json:"access_token"`
	TokenType    string         `json:"token_type,omitempty"`
	RefreshToken string         `json:"refresh_token,omitempty"`
	Expiry       time.Time      `json:"expiry,omitempty"`
	Extra        map[string]any `json:"extra,omitempty"`
}

// ExtractTokenExtra returns the known extra fields of token, or nil when there are none.
func ExtractTokenExtra(token *oauth2.Token) map[string]any {
	if token == nil {
		return nil
	}

	extra := make(map[string]any, len(KnownExtraFields))
	for _, field := range KnownExtraFields {
		if v := token.Extra(field); v != nil {
			extra[field] = v
		}
	}

	if len(extra) == 0 {
		return nil
	}
	return extra
}

// SealToken serializes token and encrypts it with enc.
func SealToken(enc *security.Encryptor, token *oauth2.Token) ([]byte, error) {
	if token == nil {
		return nil, fmt.Errorf("token is nil")
	}

	data, err := json.Marshal(tokenJSON{
		AccessToken:  token.AccessToken,
		TokenType:    token.TokenType,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
		Extra:        ExtractTokenExtra(token),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token: %w", err)
	}

	sealed, err := enc.Seal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to seal token: %w", err)
	}
	return sealed, nil
}

// OpenToken reverses SealToken.
func OpenToken(enc *security.Encryptor, sealed []byte) (*oauth2.Token, error) {
	data, err := enc.Open(sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to open token: %w", err)
	}

	var j tokenJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}

	token := &oauth2.Token{
		AccessToken:  j.AccessToken,
		TokenType:    j.TokenType,
		RefreshToken: j.RefreshToken,
		Expiry:       j.Expiry,
	}
	if len(j.Extra) > 0 {
		token = token.WithExtra(j.Extra)
	}
	return token, nil
}
