package authapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"

	"github.com/vsgo/appcore/api/transport"
	"github.com/vsgo/appcore/domain"
)

// Client talks to the hosted auth provider and implements
// session.AuthProvider.
type Client struct {
	http    *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
}

// New creates an auth provider client.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return NewWithHTTPClient(&fasthttp.Client{}, baseURL, apiKey, timeout)
}

// NewWithHTTPClient creates a client over a preconfigured fasthttp
// client, used by tests to dial an in-memory listener.
func NewWithHTTPClient(httpClient *fasthttp.Client, baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http:    httpClient,
		baseURL: baseURL,
		apiKey:  apiKey,
		timeout: timeout,
	}
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*domain.Identity, error) {
	body, _ := json.Marshal(transport.SignUpRequest{Email: email, Password: password})
	return c.signIn(ctx, "/v1/auth/signup", body)
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*domain.Identity, error) {
	body, _ := json.Marshal(transport.SignInRequest{Email: email, Password: password})
	return c.signIn(ctx, "/v1/auth/signin", body)
}

func (c *Client) SignInAnonymously(ctx context.Context) (*domain.Identity, error) {
	return c.signIn(ctx, "/v1/auth/anonymous", nil)
}

func (c *Client) signIn(ctx context.Context, path string, body []byte) (*domain.Identity, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	if len(body) > 0 {
		req.SetBody(body)
	}

	if err := c.http.DoTimeout(req, resp, c.requestTimeout(ctx)); err != nil {
		return nil, domain.WrapError(domain.ErrCodeUnauthenticated, "layanan auth tidak dapat dihubungi", err)
	}

	var env transport.Envelope
	if len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), &env); err != nil {
			return nil, domain.WrapError(domain.ErrCodeUnauthenticated, "respons auth tidak valid", err)
		}
	}
	if status := resp.StatusCode(); status >= http.StatusBadRequest || env.IsError() {
		message := env.Error
		if message == "" {
			message = fmt.Sprintf("status %d", status)
		}
		return nil, domain.WrapError(domain.ErrCodeUnauthenticated, "autentikasi ditolak", fmt.Errorf("%s", message))
	}

	var payload transport.IdentityResponse
	if err := env.Decode(&payload); err != nil {
		return nil, domain.WrapError(domain.ErrCodeUnauthenticated, "respons auth tidak valid", err)
	}
	return identityFromResponse(payload), nil
}

func (c *Client) requestTimeout(ctx context.Context) time.Duration {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		timeout = time.Millisecond
	}
	return timeout
}

// identityFromResponse prefers the token's own claims over the
// response fields so a provider that issues longer-lived tokens than
// it advertises still gets an accurate expiry.
func identityFromResponse(payload transport.IdentityResponse) *domain.Identity {
	identity := &domain.Identity{
		UID:       payload.UID,
		Token:     payload.Token,
		Anonymous: payload.Anonymous,
	}
	if payload.ExpiresIn > 0 {
		identity.ExpiresAt = time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(payload.Token, claims); err == nil {
		if uid, ok := claims["uid"].(string); ok && uid != "" {
			identity.UID = uid
		}
		if anon, ok := claims["anonymous"].(bool); ok {
			identity.Anonymous = anon
		}
		if exp, ok := claims["exp"].(float64); ok && exp > 0 {
			identity.ExpiresAt = time.Unix(int64(exp), 0)
		}
	}
	return identity
}
