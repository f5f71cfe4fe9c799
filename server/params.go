package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cryptocrystian/pravado-gateway/proxy"
)

// paramResolver supplies a path parameter through an explicit resolution
// step. Handlers resolve before building the backend path, so a parameter
// sourced asynchronously behaves exactly like a literal segment.
type paramResolver func(ctx context.Context) (string, error)

// ginParam resolves a required path segment from the inbound route match.
func ginParam(c *gin.Context, name string) paramResolver {
	return func(context.Context) (string, error) {
		v := c.Param(name)
		if v == "" {
			return "", fmt.Errorf("missing path parameter %q", name)
		}
		return v, nil
	}
}

// withParam runs the resolve-then-proceed stage: next is only entered once
// the parameter resolved; a resolution failure short-circuits to a 400
// without any outbound call.
func (s *Server) withParam(c *gin.Context, policy envelopePolicy, r paramResolver, next func(value string)) {
	v, err := r(c.Request.Context())
	if err != nil {
		s.fail(c, policy, &proxy.Error{Status: http.StatusBadRequest, Message: err.Error()})
		return
	}
	next(v)
}
