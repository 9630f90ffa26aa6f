package gateway

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/vsgo/appcore/domain"
)

// Document is one record read back from a remote collection. CreatedAt
// and UpdatedAt are the normalized instants; Fields keeps the raw
// values as returned by the store.
type Document struct {
	ID        string
	Fields    map[string]interface{}
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store abstracts the remote document store. Implementations map their
// failure modes onto domain error codes; in particular a write
// rejected for lack of permission must surface ErrCodeForbidden.
type Store interface {
	Add(ctx context.Context, collection string, fields map[string]interface{}, authToken string) (string, error)
	Query(ctx context.Context, collection string, authToken string) ([]Document, error)
	Patch(ctx context.Context, collection, id string, fields map[string]interface{}, authToken string) error
	Remove(ctx context.Context, collection, id string, authToken string) error
}

// SessionSource supplies the identity stamped on writes. A nil return
// means no identity could be established; the gateway degrades to the
// anonymous marker instead of failing.
type SessionSource interface {
	EnsureIdentity(ctx context.Context) *domain.Identity
}

// Gateway is the single choke point for all remote CRUD. It stamps the
// owning identity and timestamps on writes and normalizes timestamps
// on reads.
type Gateway struct {
	store    Store
	sessions SessionSource
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a gateway over the given store and session source.
func New(store Store, sessions SessionSource, logger *zap.Logger) *Gateway {
	return NewWithClock(store, sessions, logger, time.Now)
}

// NewWithClock creates a gateway with an injected clock.
func NewWithClock(store Store, sessions SessionSource, logger *zap.Logger, now func() time.Time) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Gateway{
		store:    store,
		sessions: sessions,
		logger:   logger,
		now:      now,
	}
}

// Create stamps userId, createdAt and updatedAt onto fields and submits
// the document. A write rejected for lack of permission is retried
// exactly once with the identity forced to the anonymous marker and no
// auth token; any other failure is wrapped as a storage error.
func (g *Gateway) Create(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	identity := g.sessions.EnsureIdentity(ctx)
	now := g.now()

	doc := cloneFields(fields)
	doc["userId"] = identity.UserID()
	doc["createdAt"] = encodeTimestamp(now)
	doc["updatedAt"] = encodeTimestamp(now)

	id, err := g.store.Add(ctx, collection, doc, authToken(identity))
	if err == nil {
		return id, nil
	}

	if domain.IsDomainError(err, domain.ErrCodeForbidden) {
		g.logger.Warn("create rejected for permissions, retrying anonymously",
			zap.String("collection", collection))
		doc["userId"] = domain.AnonymousUserID
		id, retryErr := g.store.Add(ctx, collection, doc, "")
		if retryErr == nil {
			return id, nil
		}
		err = retryErr
	}

	return "", domain.WrapError(domain.ErrCodeStorage, "gagal menyimpan data", err)
}

// List fetches the full collection ordered by creation instant,
// newest first. Session establishment is best-effort; absent or
// unreadable timestamps default to the current instant.
func (g *Gateway) List(ctx context.Context, collection string) ([]Document, error) {
	identity := g.sessions.EnsureIdentity(ctx)

	docs, err := g.store.Query(ctx, collection, authToken(identity))
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeStorage, "gagal mengambil data", err)
	}

	now := g.now()
	for i := range docs {
		docs[i].CreatedAt = decodeTimestamp(docs[i].Fields["createdAt"], now)
		docs[i].UpdatedAt = decodeTimestamp(docs[i].Fields["updatedAt"], now)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}

// Update merges updatedAt into the partial field set and applies a
// merge-write. Fields not present are left untouched remotely. A
// missing document surfaces as a storage error.
func (g *Gateway) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	identity := g.sessions.EnsureIdentity(ctx)

	doc := cloneFields(fields)
	doc["updatedAt"] = encodeTimestamp(g.now())

	if err := g.store.Patch(ctx, collection, id, doc, authToken(identity)); err != nil {
		return domain.WrapError(domain.ErrCodeStorage, "gagal memperbarui data", err)
	}
	return nil
}

// Delete removes the document. A not-found condition surfaces as a
// storage error rather than silently succeeding.
func (g *Gateway) Delete(ctx context.Context, collection, id string) error {
	identity := g.sessions.EnsureIdentity(ctx)

	if err := g.store.Remove(ctx, collection, id, authToken(identity)); err != nil {
		return domain.WrapError(domain.ErrCodeStorage, "gagal menghapus data", err)
	}
	return nil
}

func authToken(identity *domain.Identity) string {
	if identity == nil {
		return ""
	}
	return identity.Token
}

func cloneFields(fields map[string]interface{}) map[string]interface{} {
	doc := make(map[string]interface{}, len(fields)+3)
	for k, v := range fields {
		doc[k] = v
	}
	return doc
}

func encodeTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeTimestamp(raw interface{}, fallback time.Time) time.Time {
	switch v := raw.(type) {
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return parsed
		}
	case float64:
		if v > 0 {
			return time.UnixMilli(int64(v)).UTC()
		}
	case time.Time:
		return v
	}
	return fallback
}
