package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/hirelane/onboarding-engine/app/dto"
	"github.com/hirelane/onboarding-engine/app/middleware"
	businessflow "github.com/hirelane/onboarding-engine/business_flow"
	"github.com/hirelane/onboarding-engine/models"
)

// GateHandlerInterface defines the contract for profile gate handlers
type GateHandlerInterface interface {
	Gate(c fiber.Ctx) error
	ProfileSubmit(c fiber.Ctx) error
	Dismiss(c fiber.Ctx) error
	Notifications(c fiber.Ctx) error
}

// GateHandler handles profile gate HTTP requests
type GateHandler struct {
	registry  *EngineRegistry
	validator *validator.Validate
}

// NewGateHandler creates a new gate handler
func NewGateHandler(registry *EngineRegistry) *GateHandler {
	return &GateHandler{
		registry:  registry,
		validator: validator.New(),
	}
}

func (h *GateHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *GateHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func (h *GateHandler) engine(c fiber.Ctx) (*Engine, error) {
	token, ok := sessionToken(c)
	if !ok {
		return nil, h.ErrorResponse(c, fiber.StatusUnauthorized, "Session token not found in context", "MISSING_SESSION_TOKEN", nil)
	}
	return h.registry.Engine(token), nil
}

// Open Gate
// @Description Ensure a job-seeker profile exists before performing the intent. Either settles immediately or opens the create-profile dialog.
// @Tags Gate
// @Accept json
// @Produce json
// @Param request body dto.GateRequest true "Gate intent"
// @Success 200 {object} dto.APIResponse{data=dto.GateResponse} "Gate evaluated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/v1/gate [post]
func (h *GateHandler) Gate(c fiber.Ctx) error {
	var req dto.GateRequest
	if err := c.Bind().Body(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request format", "INVALID_REQUEST_FORMAT", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
	}
	intentType, err := models.ParseIntentType(req.Intent)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Unknown gate intent", "UNKNOWN_INTENT", nil)
	}

	engine, errResp := h.engine(c)
	if engine == nil {
		return errResp
	}

	deferred := engine.Gate.EnsureProfile(requestContext(c, "/api/v1/gate"), models.GateIntent{
		Type:     intentType,
		JobID:    req.JobID,
		JobTitle: req.JobTitle,
	})

	// All immediate branches settle before EnsureProfile returns; only the
	// create-profile dialog leaves the gate pending.
	resp := dto.GateResponse{}
	select {
	case result := <-deferred.Result():
		resp.Settled = true
		resp.HasProfile = result.HasProfile
		middleware.GateSettlementsTotal.WithLabelValues(outcomeLabel(result.HasProfile)).Inc()
	default:
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Gate evaluated", resp)
}

// Submit Profile
// @Description Complete a pending gate with the create-profile form. Creates the canonical profile and replays the stored intent.
// @Tags Gate
// @Accept json
// @Produce json
// @Param request body dto.ProfileSubmitRequest true "Profile form"
// @Success 201 {object} dto.APIResponse "Profile created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 409 {object} dto.APIResponse "No gate pending"
// @Failure 502 {object} dto.APIResponse "Upstream rejected the profile"
// @Router /api/v1/gate/profile [post]
func (h *GateHandler) ProfileSubmit(c fiber.Ctx) error {
	var req dto.ProfileSubmitRequest
	if err := c.Bind().Body(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request format", "INVALID_REQUEST_FORMAT", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
	}

	engine, errResp := h.engine(c)
	if engine == nil {
		return errResp
	}

	err := engine.Gate.HandleProfileSubmitted(requestContext(c, "/api/v1/gate/profile"), &models.JobSeekerProfile{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Headline: req.Headline,
		City:     req.City,
	})
	if err != nil {
		switch {
		case err == businessflow.ErrNoPendingGate:
			return h.ErrorResponse(c, fiber.StatusConflict, "No profile gate pending", "NO_PENDING_GATE", nil)
		case err == businessflow.ErrProfileFieldsEmpty:
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Profile fields missing", "PROFILE_FIELDS_EMPTY", nil)
		default:
			return h.ErrorResponse(c, fiber.StatusBadGateway, "Profile creation failed", "PROFILE_CREATE_FAILED", err.Error())
		}
	}
	middleware.GateSettlementsTotal.WithLabelValues("has_profile").Inc()
	return h.SuccessResponse(c, fiber.StatusCreated, "Profile created", nil)
}

// Dismiss Gate Dialog
// @Description Close the create-profile dialog, settling the pending gate with no profile.
// @Tags Gate
// @Produce json
// @Success 200 {object} dto.APIResponse "Dialog dismissed"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/v1/gate/dismiss [post]
func (h *GateHandler) Dismiss(c fiber.Ctx) error {
	engine, errResp := h.engine(c)
	if engine == nil {
		return errResp
	}
	engine.Gate.HandleDialogDismissed(requestContext(c, "/api/v1/gate/dismiss"))
	middleware.GateSettlementsTotal.WithLabelValues("dismissed").Inc()
	return h.SuccessResponse(c, fiber.StatusOK, "Dialog dismissed", nil)
}

// Drain Notifications
// @Description Return and clear the pending user-facing notifications for this session, plus the dialogs currently open.
// @Tags Gate
// @Produce json
// @Success 200 {object} dto.APIResponse "Notifications drained"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/v1/notifications [get]
func (h *GateHandler) Notifications(c fiber.Ctx) error {
	engine, errResp := h.engine(c)
	if engine == nil {
		return errResp
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Notifications drained", fiber.Map{
		"notifications": engine.Notifier.Drain(),
		"open_dialogs":  engine.Dialogs.OpenDialogs(),
	})
}

func outcomeLabel(hasProfile bool) string {
	if hasProfile {
		return "has_profile"
	}
	return "no_profile"
}
