package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/screengrabber/account-api/internal/api/metrics"
	"github.com/screengrabber/account-api/internal/api/middleware"
	"github.com/screengrabber/account-api/internal/core/domain"
	"github.com/screengrabber/account-api/internal/core/ports"
)

// proFeatures lists what a Pro entitlement unlocks.
var proFeatures = []string{
	"unlimited_frames",
	"advanced_annotations",
	"priority_support",
}

type LicenseHandler struct {
	entitlements ports.EntitlementService
}

func NewLicenseHandler(entitlements ports.EntitlementService) *LicenseHandler {
	return &LicenseHandler{entitlements: entitlements}
}

// Validate checks a license key. With a bearer token the caller's account is
// upgraded to Pro; without one the key is only checked.
//
// @Summary      Validate a license key
// @Tags         license
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      validateLicenseRequest  true  "License key"
// @Success      200   {object}  validateLicenseResponse
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /license/validate [post]
func (h *LicenseHandler) Validate(c echo.Context) error {
	var req validateLicenseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var caller *domain.User
	callerLabel := "anonymous"
	if sess, ok := middleware.SessionFrom(c); ok {
		caller = sess.User
		callerLabel = "authenticated"
	}

	res, err := h.entitlements.ValidateLicense(c.Request().Context(), req.LicenseKey, caller)
	if err != nil {
		return err
	}

	result := "invalid"
	if res.Valid {
		result = "valid"
	}
	metrics.LicenseValidationsTotal.WithLabelValues(result, callerLabel).Inc()

	return c.JSON(http.StatusOK, validateLicenseResponse{Valid: res.Valid, Message: res.Message})
}

// Issue creates a new active license key.
//
// @Summary      Issue a license
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     AdminKey
// @Param        body  body      issueLicenseRequest  false  "Optional note"
// @Success      201   {object}  licenseResponse
// @Failure      401   {object}  map[string]string
// @Router       /admin/licenses [post]
func (h *LicenseHandler) Issue(c echo.Context) error {
	var req issueLicenseRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid payload").SetInternal(err)
		}
	}

	license, err := h.entitlements.IssueLicense(c.Request().Context(), req.Note)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toLicenseResponse(license))
}

// Deactivate revokes a license key. Accounts already upgraded keep Pro.
//
// @Summary      Deactivate a license
// @Tags         admin
// @Security     AdminKey
// @Param        key  path  string  true  "License key"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /admin/licenses/{key} [delete]
func (h *LicenseHandler) Deactivate(c echo.Context) error {
	if err := h.entitlements.DeactivateLicense(c.Request().Context(), c.Param("key")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ProFeatures lists the Pro feature set. Only reachable with an active Pro
// entitlement.
//
// @Summary      Pro features
// @Tags         license
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  proFeaturesResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /pro/features [get]
func (h *LicenseHandler) ProFeatures(c echo.Context) error {
	return c.JSON(http.StatusOK, proFeaturesResponse{Features: proFeatures})
}
