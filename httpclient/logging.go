package httpclient

import (
	nethttp "net/http"
	"strconv"

	"github.com/gaborage/adapter-bricks/logger"
)

const (
	msgRequest  = "REST client request"
	msgResponse = "REST client response"
)

// logRequest logs the outgoing attempt
func (c *client) logRequest(log logger.Logger, req *nethttp.Request, body []byte, traceID string, attempt int) {
	event := log.Info().
		Str("direction", "outbound").
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Str("request_id", traceID).
		Int("attempt", attempt)

	if len(req.Header) > 0 {
		event = event.Int("header_count", len(req.Header))
	}
	if len(body) > 0 {
		event = event.Int("body_size", len(body))
	}
	event.Msg(msgRequest)

	if c.config.LogPayloads {
		c.logPayload(log, "outbound", req.Header, body, traceID)
	}
}

// logResponse logs the incoming response of one attempt
func (c *client) logResponse(log logger.Logger, resp *Response, traceID string, attempt int) {
	event := log.Info().
		Str("direction", "inbound").
		Int("status", resp.StatusCode).
		Dur("elapsed", resp.Stats.ElapsedTime).
		Str("request_id", traceID).
		Int("attempt", attempt)

	if len(resp.Body) > 0 {
		event = event.Int("body_size", len(resp.Body))
	}
	event.Msg(msgResponse)

	if c.config.LogPayloads {
		c.logPayload(log, "inbound", resp.Headers, resp.Body, traceID)
	}
}

// logPayload writes a debug preview capped at MaxPayloadLogBytes.
func (c *client) logPayload(log logger.Logger, direction string, headers nethttp.Header, body []byte, traceID string) {
	limit := c.config.MaxPayloadLogBytes
	if limit <= 0 {
		limit = DefaultMaxPayloadLogBytes
	}
	preview := body
	truncated := len(body) > limit
	if truncated {
		preview = body[:limit]
	}

	log.Debug().
		Str("direction", direction).
		Str("request_id", traceID).
		Interface("headers", map[string][]string(headers)).
		Int("body_size", len(body)).
		Str("body_truncated", strconv.FormatBool(truncated)).
		Bytes("body_preview", preview).
		Msg(direction + " payload")
}
