package http

import (
	"encoding/json"
	"net/http"

	"github.com/aussiebroadwan/timecapsule/internal/timecapsule/service"
	"github.com/aussiebroadwan/timecapsule/pkg/capsulesdk"
	"github.com/aussiebroadwan/timecapsule/pkg/httpx"
	"github.com/aussiebroadwan/timecapsule/pkg/slogx"
)

type LoginHandler struct {
	IdentityService *service.IdentityService
	TokenService    *service.TokenService
}

// ServeHTTP godoc
//
//	@Summary		Login
//	@Description	Verify a username and password. The returned userId is the bearer credential for capsule endpoints.
//	@Description	When the service issues signed tokens the response also carries accessToken, tokenType and expiresIn,
//	@Description	and the accessToken must be presented instead.
//	@Tags			Identity
//	@Accept			json
//	@Produce		json
//	@Param			request	body		capsulesdk.LoginRequest		true	"username, password"
//	@Success		200		{object}	capsulesdk.LoginResponse	"message, userId"
//	@Failure		400		{object}	capsulesdk.MessageResponse	"Invalid username or password"
//	@Failure		500		{object}	capsulesdk.MessageResponse	"Server error"
//	@Router			/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req capsulesdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("invalid login body", "err", err)
		httpx.WriteMessage(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	user, err := h.IdentityService.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := capsulesdk.LoginResponse{
		Message: "Login successful",
		UserID:  user.ID,
	}

	if h.TokenService != nil {
		token, err := h.TokenService.Issue(user)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		resp.AccessToken = token.Token
		resp.TokenType = "Bearer"
		resp.ExpiresIn = int(token.ExpiresIn.Seconds())
		httpx.NoCache(w)
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}
