package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/hirelane/onboarding-engine/app/dto"
	"github.com/hirelane/onboarding-engine/models"
)

// SessionHandlerInterface defines the contract for session handlers
type SessionHandlerInterface interface {
	Begin(c fiber.Ctx) error
	End(c fiber.Ctx) error
}

// SessionHandler handles session lifecycle HTTP requests
type SessionHandler struct {
	registry  *EngineRegistry
	validator *validator.Validate
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(registry *EngineRegistry) *SessionHandler {
	return &SessionHandler{
		registry:  registry,
		validator: validator.New(),
	}
}

func (h *SessionHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *SessionHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Begin Session
// @Description Start an engine session from a marketplace token. The account snapshot is bootstrapped from the token claims.
// @Tags Session
// @Accept json
// @Produce json
// @Param request body dto.BeginSessionRequest true "Session begin request"
// @Success 201 {object} dto.APIResponse{data=dto.BeginSessionResponse} "Session started"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Token rejected"
// @Router /api/v1/session [post]
func (h *SessionHandler) Begin(c fiber.Ctx) error {
	var req dto.BeginSessionRequest
	if err := c.Bind().Body(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request format", "INVALID_REQUEST_FORMAT", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
	}

	engine := h.registry.Engine(req.Token)
	account, err := engine.Onboarding.BeginSession(requestContext(c, "/api/v1/session"), req.Token)
	if err != nil {
		h.registry.Remove(req.Token)
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Token rejected", "TOKEN_REJECTED", err.Error())
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Session started", dto.BeginSessionResponse{
		Account: toSessionAccountDTO(account),
	})
}

// End Session
// @Description End the engine session: clears the token, the account snapshot and the onboarding flags.
// @Tags Session
// @Produce json
// @Success 200 {object} dto.APIResponse "Session ended"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/v1/session [delete]
func (h *SessionHandler) End(c fiber.Ctx) error {
	token, ok := sessionToken(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Session token not found in context", "MISSING_SESSION_TOKEN", nil)
	}
	engine := h.registry.Engine(token)
	engine.Onboarding.EndSession(requestContext(c, "/api/v1/session"))
	h.registry.Remove(token)
	return h.SuccessResponse(c, fiber.StatusOK, "Session ended", nil)
}

func toSessionAccountDTO(account *models.Account) dto.SessionAccountDTO {
	out := dto.SessionAccountDTO{
		ID:    account.ID,
		Email: account.Email,
		Roles: models.RoleNames(account.Roles),
	}
	for role := range account.Provisional {
		out.Provisional = append(out.Provisional, string(role))
	}
	return out
}
