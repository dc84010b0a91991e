package capsulesdk

import (
	"time"

	"github.com/aussiebroadwan/timecapsule/pkg/jwtx"
)

// MessageResponse is the body of every non-resource response, errors included.
type MessageResponse struct {
	Message string `json:"message"`
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned by POST /login. The token fields are only set
// when the service runs with signed access tokens.
type LoginResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`

	AccessToken string `json:"accessToken,omitempty"`
	TokenType   string `json:"tokenType,omitempty"`
	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int `json:"expiresIn,omitempty"`
}

// TimeCapsule is the wire shape of a capsule.
type TimeCapsule struct {
	ID      string `json:"id"`
	Creator string `json:"creator"`
	Title   string `json:"title"`
	Content string `json:"content"`
	// Image is the base64 encoding of the uploaded file, absent when none was sent.
	Image      *string   `json:"image,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	Recipients []string  `json:"recipients"`
}

// CreateCapsuleRequest is sent as multipart/form-data to POST /timecapsules.
type CreateCapsuleRequest struct {
	Title   string
	Content string

	// Image is uploaded as the "image" file part when non-nil.
	Image []byte
	// ImageName defaults to "image".
	ImageName string

	// Recipients are user ids, sent comma-joined.
	Recipients []string
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of each dependency on /readyz.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer,omitempty"`
}

// JWKSResponse is the body of /.well-known/jwks.json.
type JWKSResponse jwtx.JWKS
