package http

import (
	"net/http"

	"github.com/aussiebroadwan/timecapsule/pkg/capsulesdk"
	"github.com/aussiebroadwan/timecapsule/pkg/httpx"
	"github.com/aussiebroadwan/timecapsule/pkg/jwtx"
)

// JWKSHandler exposes the public keys access tokens are signed with.
//
//	@Summary		Get JWKS
//	@Description	Returns the JSON Web Key Set used to verify access tokens. Only served when tokens are issued.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	capsulesdk.JWKSResponse	"The JSON Web Key Set"
//	@Router			/.well-known/jwks.json [get].
func JWKSHandler(keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, capsulesdk.JWKSResponse(keys.PublicJWKS()))
	}
}
