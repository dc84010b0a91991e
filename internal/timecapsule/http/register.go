package http

import (
	"encoding/json"
	"net/http"

	"github.com/aussiebroadwan/timecapsule/internal/timecapsule/service"
	"github.com/aussiebroadwan/timecapsule/pkg/capsulesdk"
	"github.com/aussiebroadwan/timecapsule/pkg/httpx"
	"github.com/aussiebroadwan/timecapsule/pkg/slogx"
)

type RegisterHandler struct {
	IdentityService *service.IdentityService
}

// ServeHTTP godoc
//
//	@Summary		Register
//	@Description	Create a user account. Username and email must both be unused.
//	@Tags			Identity
//	@Accept			json
//	@Produce		json
//	@Param			request	body		capsulesdk.RegisterRequest	true	"username, email, password"
//	@Success		201		{object}	capsulesdk.MessageResponse	"User registered successfully"
//	@Failure		400		{object}	capsulesdk.MessageResponse	"Username or email already exists"
//	@Failure		500		{object}	capsulesdk.MessageResponse	"Server error"
//	@Router			/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req capsulesdk.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slogx.FromContext(ctx).Warn("invalid register body", "err", err)
		httpx.WriteMessage(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	if _, err := h.IdentityService.Register(ctx, req.Username, req.Email, req.Password); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteMessage(w, http.StatusCreated, "User registered successfully")
}
