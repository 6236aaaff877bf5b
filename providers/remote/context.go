package remote

import (
	"context"
	"sync"

	"golang.org/x/oauth2"
)

type tokenContextKey struct{}

// tokenHolder is shared by every request made with one WithToken context, so a
// token refreshed during a call is visible to the caller afterwards.
type tokenHolder struct {
	mu        sync.Mutex
	token     *oauth2.Token
	refreshed bool
}

func (h *tokenHolder) get() *oauth2.Token {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.token
}

func (h *tokenHolder) update(token *oauth2.Token) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if token == nil || h.token == nil || token.AccessToken == h.token.AccessToken {
		return
	}
	h.token = token
	h.refreshed = true
}

// WithToken returns a context carrying the access token used to sign requests.
func WithToken(ctx context.Context, token *oauth2.Token) context.Context {
	return context.WithValue(ctx, tokenContextKey{}, &tokenHolder{token: token})
}

// TokenFromContext returns the current token of a WithToken context. After a
// call that refreshed the token it returns the refreshed one.
func TokenFromContext(ctx context.Context) (*oauth2.Token, bool) {
	holder, ok := ctx.Value(tokenContextKey{}).(*tokenHolder)
	if !ok {
		return nil, false
	}
	token := holder.get()
	if token == nil || token.AccessToken == "" {
		return nil, false
	}
	return token, true
}

// RefreshedToken returns the token the oauth2 transport obtained during calls
// made with ctx. ok is false when no refresh happened.
func RefreshedToken(ctx context.Context) (*oauth2.Token, bool) {
	holder, ok := ctx.Value(tokenContextKey{}).(*tokenHolder)
	if !ok {
		return nil, false
	}
	holder.mu.Lock()
	defer holder.mu.Unlock()
	if !holder.refreshed {
		return nil, false
	}
	return holder.token, true
}

func holderFromContext(ctx context.Context) *tokenHolder {
	holder, _ := ctx.Value(tokenContextKey{}).(*tokenHolder)
	return holder
}
