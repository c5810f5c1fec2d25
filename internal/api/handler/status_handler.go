package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/screengrabber/account-api/internal/core/ports"
)

type StatusHandler struct {
	statuses ports.StatusService
}

func NewStatusHandler(statuses ports.StatusService) *StatusHandler {
	return &StatusHandler{statuses: statuses}
}

// Create records a client heartbeat.
//
// @Summary      Record a status check
// @Tags         status
// @Accept       json
// @Produce      json
// @Param        body  body      createStatusRequest  true  "Client name"
// @Success      201   {object}  statusResponse
// @Failure      422   {object}  map[string]string
// @Router       /status [post]
func (h *StatusHandler) Create(c echo.Context) error {
	var req createStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	check, err := h.statuses.Record(c.Request().Context(), req.ClientName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toStatusResponse(check))
}

// List returns the most recent status checks.
//
// @Summary      List status checks
// @Tags         status
// @Produce      json
// @Success      200  {array}  statusResponse
// @Router       /status [get]
func (h *StatusHandler) List(c echo.Context) error {
	checks, err := h.statuses.List(c.Request().Context())
	if err != nil {
		return err
	}

	resp := make([]statusResponse, 0, len(checks))
	for _, s := range checks {
		resp = append(resp, toStatusResponse(s))
	}
	return c.JSON(http.StatusOK, resp)
}
