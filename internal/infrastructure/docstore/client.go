package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/vsgo/appcore/api/transport"
	"github.com/vsgo/appcore/domain"
	"github.com/vsgo/appcore/internal/gateway"
)

// Client talks to the hosted document store over its REST surface and
// implements gateway.Store.
type Client struct {
	http    *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
}

// New creates a document store client.
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

func (c *Client) Add(ctx context.Context, collection string, fields map[string]interface{}, authToken string) (string, error) {
	body, err := json.Marshal(transport.CreateDocumentRequest{Fields: fields})
	if err != nil {
		return "", domain.WrapError(domain.ErrCodeInternal, "gagal menyusun dokumen", err)
	}

	env, err := c.do(ctx, fasthttp.MethodPost, c.collectionURL(collection), body, authToken)
	if err != nil {
		return "", err
	}

	var resp transport.CreateDocumentResponse
	if err := env.Decode(&resp); err != nil {
		return "", domain.WrapError(domain.ErrCodeStorage, "respons tidak valid", err)
	}
	return resp.ID, nil
}

func (c *Client) Query(ctx context.Context, collection string, authToken string) ([]gateway.Document, error) {
	url := fmt.Sprintf("%s?orderBy=createdAt&dir=desc", c.collectionURL(collection))
	env, err := c.do(ctx, fasthttp.MethodGet, url, nil, authToken)
	if err != nil {
		return nil, err
	}

	var resp transport.ListDocumentsResponse
	if err := env.Decode(&resp); err != nil {
		return nil, domain.WrapError(domain.ErrCodeStorage, "respons tidak valid", err)
	}

	docs := make([]gateway.Document, 0, len(resp.Documents))
	for _, doc := range resp.Documents {
		docs = append(docs, gateway.Document{ID: doc.ID, Fields: doc.Fields})
	}
	return docs, nil
}

func (c *Client) Patch(ctx context.Context, collection, id string, fields map[string]interface{}, authToken string) error {
	body, err := json.Marshal(transport.PatchDocumentRequest{Fields: fields})
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "gagal menyusun dokumen", err)
	}
	_, err = c.do(ctx, fasthttp.MethodPatch, c.documentURL(collection, id), body, authToken)
	return err
}

func (c *Client) Remove(ctx context.Context, collection, id string, authToken string) error {
	_, err := c.do(ctx, fasthttp.MethodDelete, c.documentURL(collection, id), nil, authToken)
	return err
}

// Healthy performs a one-shot reachability check against the store.
func (c *Client) Healthy(ctx context.Context) bool {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/healthz")
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := c.http.DoTimeout(req, resp, c.requestTimeout(ctx)); err != nil {
		return false
	}
	return resp.StatusCode() == http.StatusOK
}

func (c *Client) do(ctx context.Context, method, url string, body []byte, authToken string) (transport.Envelope, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	if len(body) > 0 {
		req.SetBody(body)
	}

	if err := c.http.DoTimeout(req, resp, c.requestTimeout(ctx)); err != nil {
		return transport.Envelope{}, domain.WrapError(domain.ErrCodeStorage, "layanan tidak dapat dihubungi", err)
	}

	var env transport.Envelope
	if len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), &env); err != nil {
			return transport.Envelope{}, domain.WrapError(domain.ErrCodeStorage, "respons tidak valid", err)
		}
	}

	if status := resp.StatusCode(); status >= http.StatusBadRequest || env.IsError() {
		return transport.Envelope{}, mapRemoteError(status, env)
	}
	return env, nil
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

func (c *Client) collectionURL(collection string) string {
	return fmt.Sprintf("%s/v1/collections/%s", c.baseURL, collection)
}

func (c *Client) documentURL(collection, id string) string {
	return fmt.Sprintf("%s/v1/collections/%s/%s", c.baseURL, collection, id)
}

func mapRemoteError(status int, env transport.Envelope) error {
	message := env.Error
	if message == "" {
		message = fmt.Sprintf("status %d", status)
	}

	switch {
	case env.Code == transport.CodePermissionDenied || status == http.StatusForbidden:
		return domain.WrapError(domain.ErrCodeForbidden, "akses ditolak", fmt.Errorf("%s", message))
	case env.Code == transport.CodeNotFound || status == http.StatusNotFound:
		return domain.WrapError(domain.ErrCodeNotFound, "dokumen tidak ditemukan", fmt.Errorf("%s", message))
	default:
		return domain.WrapError(domain.ErrCodeStorage, "operasi gagal", fmt.Errorf("%s", message))
	}
}
