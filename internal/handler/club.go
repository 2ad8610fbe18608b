package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campusdesk/table-reservation/internal/model"
	"github.com/campusdesk/table-reservation/internal/repository"
)

// ClubHandler serves the club directory endpoints.
type ClubHandler struct {
	Clubs *repository.ClubRepo
}

// NewClubHandler constructs a ClubHandler.
func NewClubHandler(clubs *repository.ClubRepo) *ClubHandler {
	if clubs == nil {
		panic("nil repository passed to NewClubHandler")
	}
	return &ClubHandler{Clubs: clubs}
}

type clubReq struct {
	Name string `json:"name"`
}

// List handles GET /v1/clubs.
func (h *ClubHandler) List(c echo.Context) error {
	clubs, err := h.Clubs.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load clubs"})
	}
	return c.JSON(http.StatusOK, clubs)
}

// Get handles GET /v1/clubs/:id.
func (h *ClubHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid club id"})
	}
	club, err := h.Clubs.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrClubNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "club not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load club"})
	}
	return c.JSON(http.StatusOK, club)
}

// Create handles POST /v1/clubs.
func (h *ClubHandler) Create(c echo.Context) error {
	var req clubReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	club := &model.Club{Name: req.Name}
	if err := h.Clubs.Create(c.Request().Context(), club); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create club"})
	}
	return c.JSON(http.StatusCreated, club)
}

// Update handles PUT /v1/clubs/:id.
func (h *ClubHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid club id"})
	}
	var req clubReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	club := &model.Club{ID: id, Name: req.Name}
	if err := h.Clubs.Update(c.Request().Context(), club); err != nil {
		if errors.Is(err, repository.ErrClubNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "club not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update club"})
	}
	return c.JSON(http.StatusOK, club)
}

// Delete handles DELETE /v1/clubs/:id.
func (h *ClubHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid club id"})
	}
	if err := h.Clubs.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrClubNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "club not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete club"})
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": id})
}
