package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mkwawa-heritage/marketplace-api/internal/api/handler/v1/response"
	"github.com/mkwawa-heritage/marketplace-api/internal/pkg/jwthelper"
)

const staffIDKey = "staffID"

var errMissingToken = errors.New("missing bearer token")

type Authenticator struct {
	signingKey []byte
}

func NewAuthenticator(signingKey string) *Authenticator {
	return &Authenticator{
		signingKey: []byte(signingKey),
	}
}

// VerifyJWT rejects requests without a valid staff token and stores the
// staff id on the context.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		raw, ok := strings.CutPrefix(ctx.GetHeader("Authorization"), "Bearer ")
		if !ok || raw == "" {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingToken))
			return
		}

		claims, err := jwthelper.ParseToken(a.signingKey, raw)
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(jwthelper.ErrInvalidToken))
			return
		}

		ctx.Set(staffIDKey, claims.StaffID)
		ctx.Next()
	}
}

// StaffID returns the id stored by VerifyJWT, or 0 on public routes.
func StaffID(ctx *gin.Context) uint {
	return ctx.GetUint(staffIDKey)
}
