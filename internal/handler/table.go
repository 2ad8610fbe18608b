package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusdesk/table-reservation/internal/model"
	"github.com/campusdesk/table-reservation/internal/repository"
)

// TableHandler serves the table registry endpoints. Reads are public;
// mutations sit behind JWT + role middleware in the router.
type TableHandler struct {
	Tables *repository.TableRepo
}

// NewTableHandler constructs a TableHandler.
func NewTableHandler(tables *repository.TableRepo) *TableHandler {
	if tables == nil {
		panic("nil repository passed to NewTableHandler")
	}
	return &TableHandler{Tables: tables}
}

type tableReq struct {
	Name           string   `json:"name"`
	Capacity       uint32   `json:"capacity"`
	Features       []string `json:"features"`
	Location       string   `json:"location"`
	AvailableSlots uint32   `json:"availableSlots"`
	TotalSlots     uint32   `json:"totalSlots"`
}

// List handles GET /v1/tables. The optional ?availability=available|full
// query narrows the result to tables with open slots or fully booked
// ones.
func (h *TableHandler) List(c echo.Context) error {
	availability := c.QueryParam("availability")
	switch availability {
	case "", "available", "full":
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "availability must be 'available' or 'full'"})
	}
	tables, err := h.Tables.List(c.Request().Context(), availability)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load tables"})
	}
	return c.JSON(http.StatusOK, tables)
}

// Get handles GET /v1/tables/:id.
func (h *TableHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	t, err := h.Tables.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrTableNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load table"})
	}
	return c.JSON(http.StatusOK, t)
}

// Create handles POST /v1/tables. totalSlots and availableSlots are
// stored as given, after the registry validates the slot invariant.
func (h *TableHandler) Create(c echo.Context) error {
	var req tableReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == "" || req.Capacity == 0 || req.TotalSlots == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, capacity and totalSlots are required"})
	}
	t := &model.Table{
		Name:           req.Name,
		Capacity:       req.Capacity,
		Features:       req.Features,
		Location:       req.Location,
		AvailableSlots: req.AvailableSlots,
		TotalSlots:     req.TotalSlots,
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Tables.Create(ctx, t); err != nil {
		if errors.Is(err, repository.ErrSlotBounds) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "availableSlots must be between 0 and totalSlots"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create table"})
	}
	return c.JSON(http.StatusCreated, t)
}

// Update handles PUT /v1/tables/:id. The id and totalSlots are
// immutable; a body that would push availableSlots past totalSlots is
// rejected so the counter invariant holds on every write.
func (h *TableHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	var req tableReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == "" || req.Capacity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and capacity are required"})
	}
	t := &model.Table{
		ID:             id,
		Name:           req.Name,
		Capacity:       req.Capacity,
		Features:       req.Features,
		Location:       req.Location,
		AvailableSlots: req.AvailableSlots,
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Tables.Update(ctx, t); err != nil {
		switch {
		case errors.Is(err, repository.ErrTableNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		case errors.Is(err, repository.ErrSlotBounds):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "availableSlots must be between 0 and totalSlots"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update table"})
	}
	return c.JSON(http.StatusOK, t)
}

// Delete handles DELETE /v1/tables/:id. Bookings keep their snapshots;
// nothing cascades.
func (h *TableHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	if err := h.Tables.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrTableNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete table"})
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": id})
}
