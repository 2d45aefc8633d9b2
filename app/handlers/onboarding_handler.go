package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/hirelane/onboarding-engine/app/dto"
	"github.com/hirelane/onboarding-engine/app/middleware"
	businessflow "github.com/hirelane/onboarding-engine/business_flow"
	"github.com/hirelane/onboarding-engine/models"
)

// OnboardingHandlerInterface defines the contract for onboarding handlers
type OnboardingHandlerInterface interface {
	Stage(c fiber.Ctx) error
	Consultation(c fiber.Ctx) error
	CompanySource(c fiber.Ctx) error
}

// OnboardingHandler handles stage resolution and onboarding form requests
type OnboardingHandler struct {
	registry  *EngineRegistry
	validator *validator.Validate
}

// NewOnboardingHandler creates a new onboarding handler
func NewOnboardingHandler(registry *EngineRegistry) *OnboardingHandler {
	return &OnboardingHandler{
		registry:  registry,
		validator: validator.New(),
	}
}

func (h *OnboardingHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *OnboardingHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Resolve Stage
// @Description Resolve the onboarding stage for the given dashboard and path. May issue a redirect decision and heal a stale role cache.
// @Tags Onboarding
// @Produce json
// @Param path query string true "Current client path"
// @Param dashboard query string true "Dashboard variant" Enums(recruiter, job-seeker)
// @Success 200 {object} dto.APIResponse{data=dto.StageResponse} "Stage resolved"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/v1/onboarding/stage [get]
func (h *OnboardingHandler) Stage(c fiber.Ctx) error {
	req := dto.StageRequest{
		Path:      c.Query("path"),
		Dashboard: c.Query("dashboard"),
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
	}

	token, ok := sessionToken(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Session token not found in context", "MISSING_SESSION_TOKEN", nil)
	}
	engine := h.registry.Engine(token)
	engine.Navigator.SetCurrentPath(req.Path)

	ctx := requestContext(c, "/api/v1/onboarding/stage")
	var decision businessflow.StageDecision
	if req.Dashboard == "recruiter" {
		decision = engine.RecruiterGuard.Evaluate(ctx, req.Path)
	} else {
		decision = engine.JobSeekerGuard.Evaluate(ctx, req.Path)
	}
	middleware.StageResolutionsTotal.WithLabelValues(req.Dashboard, string(decision.Stage)).Inc()

	return h.SuccessResponse(c, fiber.StatusOK, "Stage resolved", dto.StageResponse{
		Stage:            string(decision.Stage),
		TargetPath:       decision.TargetPath,
		Redirect:         decision.Redirect,
		RenderSuppressed: decision.RenderSuppressed,
		Pending:          decision.Pending,
	})
}

// Submit Consultation
// @Description Record the recruiter's consultation need and advance the stage toward approval.
// @Tags Onboarding
// @Accept json
// @Produce json
// @Param request body dto.ConsultationRequest true "Consultation need"
// @Success 200 {object} dto.APIResponse "Consultation recorded"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 502 {object} dto.APIResponse "Upstream rejected the submission"
// @Router /api/v1/onboarding/consultation [post]
func (h *OnboardingHandler) Consultation(c fiber.Ctx) error {
	var req dto.ConsultationRequest
	if err := c.Bind().Body(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request format", "INVALID_REQUEST_FORMAT", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
	}

	token, ok := sessionToken(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Session token not found in context", "MISSING_SESSION_TOKEN", nil)
	}
	engine := h.registry.Engine(token)

	if err := engine.Onboarding.SubmitConsultation(requestContext(c, "/api/v1/onboarding/consultation"), req.Need); err != nil {
		if businessflow.IsNotAuthenticated(err) {
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "Session is not authenticated", "NOT_AUTHENTICATED", nil)
		}
		return h.ErrorResponse(c, fiber.StatusBadGateway, "Consultation submission failed", "CONSULTATION_FAILED", err.Error())
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Consultation recorded", nil)
}

// Set Company Source
// @Description Record which company-attachment path the recruiter chose during the upgrade.
// @Tags Onboarding
// @Accept json
// @Produce json
// @Param request body dto.CompanySourceRequest true "Company source"
// @Success 200 {object} dto.APIResponse "Company source recorded"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/v1/onboarding/company-source [post]
func (h *OnboardingHandler) CompanySource(c fiber.Ctx) error {
	var req dto.CompanySourceRequest
	if err := c.Bind().Body(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request format", "INVALID_REQUEST_FORMAT", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
	}

	token, ok := sessionToken(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Session token not found in context", "MISSING_SESSION_TOKEN", nil)
	}
	engine := h.registry.Engine(token)

	if err := engine.Onboarding.SetCompanySource(requestContext(c, "/api/v1/onboarding/company-source"), models.CompanySource(req.Source)); err != nil {
		if businessflow.IsNotAuthenticated(err) {
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "Session is not authenticated", "NOT_AUTHENTICATED", nil)
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid company source", "INVALID_COMPANY_SOURCE", err.Error())
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Company source recorded", nil)
}
