package handlers

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/hirelane/onboarding-engine/app/middleware"
	"github.com/hirelane/onboarding-engine/utils"
)

// requestContext carries the request metadata the flows log and audit with.
// Network timeouts live in the upstream client, not here.
func requestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx := context.WithValue(context.Background(), utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	return ctx
}

// sessionToken pulls the bearer token the auth middleware stashed.
func sessionToken(c fiber.Ctx) (string, bool) {
	token, ok := c.Locals(middleware.LocalsToken).(string)
	return token, ok && token != ""
}
