package emulator

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/fasthttp/router"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/vsgo/appcore/api/transport"
)

// Config controls the emulated backend.
type Config struct {
	Secret   string
	TokenTTL time.Duration
	// StrictWrites rejects writes carrying an invalid or expired
	// bearer token with a permission error. Requests with no token at
	// all stay allowed, mirroring a permissive-by-default backend.
	StrictWrites bool
}

// Server emulates the hosted document store and auth provider so the
// client stack can run end to end with no external services.
type Server struct {
	cfg    Config
	store  *memoryStore
	router *router.Router
	logger *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Server {
	if cfg.Secret == "" {
		cfg.Secret = "emulator-dev-secret"
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:    cfg,
		store:  newMemoryStore(),
		logger: logger,
	}

	r := router.New()
	r.GET("/healthz", s.health)

	r.POST("/v1/auth/signup", s.signUp)
	r.POST("/v1/auth/signin", s.signIn)
	r.POST("/v1/auth/anonymous", s.signInAnonymously)

	r.POST("/v1/collections/{collection}", s.createDocument)
	r.GET("/v1/collections/{collection}", s.listDocuments)
	r.PATCH("/v1/collections/{collection}/{id}", s.patchDocument)
	r.DELETE("/v1/collections/{collection}/{id}", s.deleteDocument)

	s.router = r
	return s
}

// Handler returns the fasthttp request handler for the emulator.
func (s *Server) Handler() fasthttp.RequestHandler {
	return s.router.Handler
}

func (s *Server) health(ctx *fasthttp.RequestCtx) {
	s.respond(ctx, http.StatusOK, transport.NewSuccess(map[string]string{"status": "ok"}))
}

func (s *Server) signUp(ctx *fasthttp.RequestCtx) {
	var req transport.SignUpRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Email == "" || req.Password == "" {
		s.respond(ctx, http.StatusBadRequest, transport.NewError(transport.CodeInvalidPayload, "email dan password wajib diisi"))
		return
	}

	uid, created := s.store.createAccount(req.Email, req.Password)
	if !created {
		s.respond(ctx, http.StatusBadRequest, transport.NewError(transport.CodeEmailExists, "email sudah terdaftar"))
		return
	}

	s.respondIdentity(ctx, uid, false)
}

func (s *Server) signIn(ctx *fasthttp.RequestCtx) {
	var req transport.SignInRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Email == "" {
		s.respond(ctx, http.StatusBadRequest, transport.NewError(transport.CodeInvalidPayload, "email dan password wajib diisi"))
		return
	}

	uid, ok := s.store.verifyAccount(req.Email, req.Password)
	if !ok {
		s.respond(ctx, http.StatusUnauthorized, transport.NewError(transport.CodeInvalidCredentials, "email atau password salah"))
		return
	}

	s.respondIdentity(ctx, uid, false)
}

func (s *Server) signInAnonymously(ctx *fasthttp.RequestCtx) {
	s.respondIdentity(ctx, "anon-"+uuid.NewString(), true)
}

func (s *Server) createDocument(ctx *fasthttp.RequestCtx) {
	if !s.authorizeWrite(ctx) {
		return
	}

	collection, ok := s.collectionParam(ctx)
	if !ok {
		return
	}

	var req transport.CreateDocumentRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || len(req.Fields) == 0 {
		s.respond(ctx, http.StatusBadRequest, transport.NewError(transport.CodeInvalidPayload, "dokumen kosong"))
		return
	}

	id := s.store.addDocument(collection, req.Fields)
	s.logger.Debug("document created", zap.String("collection", collection), zap.String("id", id))
	s.respond(ctx, http.StatusCreated, transport.NewSuccess(transport.CreateDocumentResponse{ID: id}))
}

func (s *Server) listDocuments(ctx *fasthttp.RequestCtx) {
	collection, ok := s.collectionParam(ctx)
	if !ok {
		return
	}

	stored := s.store.listDocuments(collection)
	docs := make([]transport.Document, 0, len(stored))
	for _, doc := range stored {
		docs = append(docs, transport.Document{ID: doc.ID, Fields: doc.Fields})
	}
	s.respond(ctx, http.StatusOK, transport.NewSuccess(transport.ListDocumentsResponse{Documents: docs}))
}

func (s *Server) patchDocument(ctx *fasthttp.RequestCtx) {
	if !s.authorizeWrite(ctx) {
		return
	}

	collection, ok := s.collectionParam(ctx)
	if !ok {
		return
	}
	id, _ := ctx.UserValue("id").(string)

	var req transport.PatchDocumentRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || len(req.Fields) == 0 {
		s.respond(ctx, http.StatusBadRequest, transport.NewError(transport.CodeInvalidPayload, "dokumen kosong"))
		return
	}

	if !s.store.patchDocument(collection, id, req.Fields) {
		s.respond(ctx, http.StatusNotFound, transport.NewError(transport.CodeNotFound, "dokumen tidak ditemukan"))
		return
	}
	s.respond(ctx, http.StatusOK, transport.NewSuccess(nil))
}

func (s *Server) deleteDocument(ctx *fasthttp.RequestCtx) {
	if !s.authorizeWrite(ctx) {
		return
	}

	collection, ok := s.collectionParam(ctx)
	if !ok {
		return
	}
	id, _ := ctx.UserValue("id").(string)

	if !s.store.removeDocument(collection, id) {
		s.respond(ctx, http.StatusNotFound, transport.NewError(transport.CodeNotFound, "dokumen tidak ditemukan"))
		return
	}
	s.respond(ctx, http.StatusOK, transport.NewSuccess(nil))
}

// authorizeWrite applies the strict-writes rule: a malformed or
// expired token is rejected, an absent token is not.
func (s *Server) authorizeWrite(ctx *fasthttp.RequestCtx) bool {
	if !s.cfg.StrictWrites {
		return true
	}

	token := extractToken(ctx)
	if token == "" {
		return true
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !parsed.Valid {
		s.logger.Warn("rejecting write with invalid token", zap.Error(err))
		s.respond(ctx, http.StatusForbidden, transport.NewError(transport.CodePermissionDenied, "akses ditolak"))
		return false
	}
	return true
}

func (s *Server) collectionParam(ctx *fasthttp.RequestCtx) (string, bool) {
	collection, _ := ctx.UserValue("collection").(string)
	if collection == "" {
		s.respond(ctx, http.StatusBadRequest, transport.NewError(transport.CodeInvalidPayload, "koleksi tidak valid"))
		return "", false
	}
	return collection, true
}

func (s *Server) respondIdentity(ctx *fasthttp.RequestCtx, uid string, anonymous bool) {
	expiresAt := time.Now().Add(s.cfg.TokenTTL)
	token, err := s.signToken(uid, anonymous, expiresAt)
	if err != nil {
		s.respond(ctx, http.StatusInternalServerError, transport.NewError(transport.CodeInternal, err.Error()))
		return
	}

	s.respond(ctx, http.StatusOK, transport.NewSuccess(transport.IdentityResponse{
		UID:       uid,
		Token:     token,
		ExpiresIn: int64(time.Until(expiresAt).Seconds()),
		Anonymous: anonymous,
	}))
}

func (s *Server) signToken(uid string, anonymous bool, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"uid":       uid,
		"anonymous": anonymous,
		"exp":       expiresAt.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
}

func (s *Server) respond(ctx *fasthttp.RequestCtx, status int, env transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(env)
	ctx.SetBody(body)
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}
