package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	gateway "github.com/cryptocrystian/pravado-gateway"
	"github.com/cryptocrystian/pravado-gateway/proxy"
)

// envelopePolicy names the two outward envelope conventions. The wrapped
// {success,data} shape is the default; the PR route family echoes backend
// payloads raw on success and a bare {error,code} object on failure. Both
// conventions are kept as-is.
type envelopePolicy int

const (
	policyWrapped envelopePolicy = iota
	policyPassthrough
)

// forward is the shared adapter flow: one outbound call, then exactly one
// of success envelope or failure envelope.
func (s *Server) forward(c *gin.Context, be proxy.Forwarder, policy envelopePolicy, path string, opts *proxy.Options) {
	payload, err := be.Forward(c.Request.Context(), path, opts)
	if err != nil {
		s.fail(c, policy, err)
		return
	}

	switch policy {
	case policyPassthrough:
		c.Data(http.StatusOK, "application/json", payload)
	default:
		c.JSON(http.StatusOK, gateway.OK(payload))
	}
}

// fail normalizes the failure, emits the one diagnostic record for this
// request, and writes the failure envelope at the derived status.
func (s *Server) fail(c *gin.Context, policy envelopePolicy, err error) {
	desc := proxy.Normalize(err)

	fields := []zap.Field{
		zap.String("route", c.FullPath()),
		zap.String("request_id", requestID(c)),
		zap.Int("status", desc.Status),
		zap.String("message", desc.Message),
	}
	if desc.Code != "" {
		fields = append(fields, zap.String("code", desc.Code))
	}
	s.log.Error("backend call failed", fields...)

	switch policy {
	case policyPassthrough:
		c.JSON(desc.Status, gateway.PassthroughError{Error: desc.Message, Code: desc.Code})
	default:
		c.JSON(desc.Status, gateway.Fail(desc.Message, desc.Code))
	}
}

var errInvalidJSONBody = errors.New("request body must be valid JSON")

// readJSONBody reads the inbound body for forwarding. The bytes are passed
// through untouched so the backend sees exactly what the client sent.
func readJSONBody(c *gin.Context) (json.RawMessage, error) {
	defer c.Request.Body.Close()
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, errInvalidJSONBody
	}
	return raw, nil
}
