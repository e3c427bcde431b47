package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/pkg/context"
)

const (
	// HeaderSettlementID overrides the configured settlement for read routes
	HeaderSettlementID = "X-Settlement-ID"
)

func Context(defaultSettlementID string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			req := c.Request()

			// get request id from header
			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			// get settlement id from header, falling back to the configured one
			settlementID := req.Header.Get(HeaderSettlementID)
			if settlementID == "" {
				settlementID = defaultSettlementID
			}

			ctx := req.Context()
			ctx = context.SetRequestID(ctx, requestID)
			ctx = context.SetMethod(ctx, req.Method)
			ctx = context.SetRoute(ctx, req.URL.Path)
			ctx = context.SetRemoteIP(ctx, c.RealIP())
			ctx = context.SetSettlementID(ctx, settlementID)

			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	}
}
