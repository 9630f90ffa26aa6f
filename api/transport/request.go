package transport

// Document is the wire shape of one record in a remote collection.
type Document struct {
	ID     string                 `json:"id"`
	Fields map[string]interface{} `json:"fields"`
}

type CreateDocumentRequest struct {
	Fields map[string]interface{} `json:"fields"`
}

type CreateDocumentResponse struct {
	ID string `json:"id"`
}

type PatchDocumentRequest struct {
	Fields map[string]interface{} `json:"fields"`
}

type ListDocumentsResponse struct {
	Documents []Document `json:"documents"`
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// IdentityResponse is returned by every sign-in variant.
type IdentityResponse struct {
	UID       string `json:"uid"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in_seconds"`
	Anonymous bool   `json:"anonymous"`
}
