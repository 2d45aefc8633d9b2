package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/hirelane/onboarding-engine/app/dto"
	businessflow "github.com/hirelane/onboarding-engine/business_flow"
	"github.com/hirelane/onboarding-engine/models"
)

// ApplyHandlerInterface defines the contract for apply sub-flow handlers
type ApplyHandlerInterface interface {
	Confirm(c fiber.Ctx) error
	ParseUpload(c fiber.Ctx) error
	SubmitCV(c fiber.Ctx) error
	Cancel(c fiber.Ctx) error
}

// ApplyHandler handles apply-to-job HTTP requests
type ApplyHandler struct {
	registry  *EngineRegistry
	validator *validator.Validate
}

// NewApplyHandler creates a new apply handler
func NewApplyHandler(registry *EngineRegistry) *ApplyHandler {
	return &ApplyHandler{
		registry:  registry,
		validator: validator.New(),
	}
}

func (h *ApplyHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ApplyHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func (h *ApplyHandler) engine(c fiber.Ctx) (*Engine, error) {
	token, ok := sessionToken(c)
	if !ok {
		return nil, h.ErrorResponse(c, fiber.StatusUnauthorized, "Session token not found in context", "MISSING_SESSION_TOKEN", nil)
	}
	return h.registry.Engine(token), nil
}

func (h *ApplyHandler) stateResponse(engine *Engine) dto.ApplyStateResponse {
	snapshot := engine.Apply.Snapshot()
	return dto.ApplyStateResponse{
		State:    string(snapshot.State),
		JobID:    snapshot.JobID,
		JobTitle: snapshot.JobTitle,
	}
}

// Confirm CV Reuse
// @Description Accept or decline reusing the saved CV. Accepting submits the application; declining aborts the flow.
// @Tags Apply
// @Accept json
// @Produce json
// @Param request body dto.ApplyConfirmRequest true "Confirmation"
// @Success 200 {object} dto.APIResponse{data=dto.ApplyStateResponse} "Confirmation handled"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 409 {object} dto.APIResponse "Not at the confirmation step"
// @Failure 502 {object} dto.APIResponse "Submission failed, flow stays open for retry"
// @Router /api/v1/apply/confirm [post]
func (h *ApplyHandler) Confirm(c fiber.Ctx) error {
	var req dto.ApplyConfirmRequest
	if err := c.Bind().Body(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request format", "INVALID_REQUEST_FORMAT", nil)
	}

	engine, errResp := h.engine(c)
	if engine == nil {
		return errResp
	}

	if err := engine.Apply.ConfirmReuse(requestContext(c, "/api/v1/apply/confirm"), req.Accept); err != nil {
		if businessflow.IsInvalidApplyState(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Not at the confirmation step", "INVALID_APPLY_STATE", h.stateResponse(engine))
		}
		return h.ErrorResponse(c, fiber.StatusBadGateway, "Application submission failed", "APPLY_FAILED", h.stateResponse(engine))
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Confirmation handled", h.stateResponse(engine))
}

// Parse Uploaded CV
// @Description Upload a raw CV document and get back the parsed draft that fills the editor form.
// @Tags Apply
// @Accept json
// @Produce json
// @Param request body dto.ApplyUploadRequest true "CV document"
// @Success 200 {object} dto.APIResponse{data=dto.ParsedCVResponse} "CV parsed"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 409 {object} dto.APIResponse "Not at the editor step"
// @Failure 502 {object} dto.APIResponse "Parsing failed"
// @Router /api/v1/apply/cv/parse [post]
func (h *ApplyHandler) ParseUpload(c fiber.Ctx) error {
	var req dto.ApplyUploadRequest
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

	parsed, err := engine.Apply.UploadCV(requestContext(c, "/api/v1/apply/cv/parse"), req.FileName, req.Content)
	if err != nil {
		if businessflow.IsInvalidApplyState(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Not at the editor step", "INVALID_APPLY_STATE", h.stateResponse(engine))
		}
		return h.ErrorResponse(c, fiber.StatusBadGateway, "CV parsing failed", "CV_PARSE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "CV parsed", dto.ParsedCVResponse{
		FileKey:    parsed.FileKey,
		RawText:    parsed.RawText,
		FullName:   parsed.FullName,
		Email:      parsed.Email,
		Phone:      parsed.Phone,
		Headline:   parsed.Headline,
		Summary:    parsed.Summary,
		Skills:     parsed.Skills,
		YearsOfExp: parsed.YearsOfExp,
	})
}

// Submit Edited CV
// @Description Save the edited structured CV and submit the application with it.
// @Tags Apply
// @Accept json
// @Produce json
// @Param request body dto.ApplyCVRequest true "Edited CV"
// @Success 200 {object} dto.APIResponse{data=dto.ApplyStateResponse} "Application submitted"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 409 {object} dto.APIResponse "Not at the editor step"
// @Failure 502 {object} dto.APIResponse "Save or submission failed, flow stays open for retry"
// @Router /api/v1/apply/cv [post]
func (h *ApplyHandler) SubmitCV(c fiber.Ctx) error {
	var req dto.ApplyCVRequest
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

	err := engine.Apply.SubmitEditedCV(requestContext(c, "/api/v1/apply/cv"), &models.OnlineCV{
		FullName:   req.FullName,
		Email:      req.Email,
		Phone:      req.Phone,
		Headline:   req.Headline,
		Summary:    req.Summary,
		Skills:     req.Skills,
		YearsOfExp: req.YearsOfExp,
		FileKey:    req.FileKey,
		RawText:    req.RawText,
	})
	if err != nil {
		if businessflow.IsInvalidApplyState(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Not at the editor step", "INVALID_APPLY_STATE", h.stateResponse(engine))
		}
		return h.ErrorResponse(c, fiber.StatusBadGateway, "Submission failed", "APPLY_FAILED", h.stateResponse(engine))
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Application submitted", h.stateResponse(engine))
}

// Cancel Apply Flow
// @Description Abort the apply flow from any step. Clears the job intent and draft; a CV saved mid-flow stays saved.
// @Tags Apply
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ApplyStateResponse} "Flow cancelled"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/v1/apply/cancel [post]
func (h *ApplyHandler) Cancel(c fiber.Ctx) error {
	engine, errResp := h.engine(c)
	if engine == nil {
		return errResp
	}
	engine.Apply.Cancel(requestContext(c, "/api/v1/apply/cancel"))
	return h.SuccessResponse(c, fiber.StatusOK, "Flow cancelled", h.stateResponse(engine))
}
