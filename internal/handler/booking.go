package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/campusdesk/table-reservation/internal/model"
	"github.com/campusdesk/table-reservation/internal/queue"
	"github.com/campusdesk/table-reservation/internal/repository"
	queue_publisher "github.com/campusdesk/table-reservation/internal/service"
)

// BookingHandler implements the booking lifecycle. Every operation
// that crosses the counts-against-capacity boundary runs the table
// counter adjustment and the booking write inside one transaction,
// with the table row locked, so the invariant
//
//	available_slots == total_slots - count(active bookings)
//
// holds under concurrent requests. The counter delta for every
// transition comes from model.SlotDelta; no endpoint carries its own
// slot math.
type BookingHandler struct {
	Bookings *repository.BookingRepo
	Tables   *repository.TableRepo
	Clubs    *repository.ClubRepo
	Logger   *zap.Logger
}

// NewBookingHandler constructs a BookingHandler. All dependencies must
// be non-nil.
func NewBookingHandler(bookings *repository.BookingRepo, tables *repository.TableRepo, clubs *repository.ClubRepo, logger *zap.Logger) *BookingHandler {
	if bookings == nil || tables == nil || clubs == nil || logger == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings, Tables: tables, Clubs: clubs, Logger: logger}
}

type bookingCreateReq struct {
	TableID   uint64 `json:"tableId"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	ClubID    uint64 `json:"clubId"`
	Purpose   string `json:"purpose"`
	Status    string `json:"status"`
	Attendees uint32 `json:"attendees"`
}

type bookingUpdateReq struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	Purpose   string `json:"purpose"`
	Status    string `json:"status"`
	Attendees uint32 `json:"attendees"`
}

func bookingEvent(kind string, b *model.Booking) queue.BookingEvent {
	return queue.BookingEvent{
		Kind:       kind,
		BookingID:  b.ID,
		Reference:  b.Reference,
		TableID:    b.TableID,
		TableName:  b.TableName,
		Location:   b.Location,
		Date:       b.Date,
		TimeSlot:   b.Time,
		ClubID:     b.ClubID,
		ClubName:   b.ClubName,
		UserID:     b.UserID,
		Attendees:  b.Attendees,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// List handles GET /v1/bookings. The optional
// ?filter=upcoming|past|cancelled query selects the corresponding
// view; upcoming and past compare the booking date against today's
// calendar date and exclude cancelled bookings.
func (h *BookingHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	today := time.Now().Format(model.DateLayout)

	var (
		bookings []*model.Booking
		err      error
	)
	switch c.QueryParam("filter") {
	case "":
		bookings, err = h.Bookings.List(ctx)
	case "upcoming":
		bookings, err = h.Bookings.ListUpcoming(ctx, today)
	case "past":
		bookings, err = h.Bookings.ListPast(ctx, today)
	case "cancelled":
		bookings, err = h.Bookings.ListCancelled(ctx)
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "filter must be 'upcoming', 'past' or 'cancelled'"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, bookings)
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Bookings.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	return c.JSON(http.StatusOK, b)
}

// ListByUser handles GET /v1/users/:id/bookings. Students may only
// list their own bookings; coordinators and admins may list anyone's.
func (h *BookingHandler) ListByUser(c echo.Context) error {
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	targetID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if !canManage(c, callerID, targetID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	bookings, err := h.Bookings.ListByUser(c.Request().Context(), targetID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, bookings)
}

// Create handles POST /v1/bookings. The referenced table and club must
// exist; their name and location are snapshotted onto the booking.
// When the initial status is active the table's availability drops by
// one, unless the table is already full, in which case the booking is
// still created and the counter stays at zero.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req bookingCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.TableID == 0 || req.ClubID == 0 || req.Date == "" || req.Time == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tableId, clubId, date and time are required"})
	}
	if _, err := time.Parse(model.DateLayout, req.Date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	if req.Attendees == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "attendees must be positive"})
	}
	status := req.Status
	if status == "" {
		status = model.StatusPending
	}
	if !model.ValidStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	ctx := c.Request().Context()
	club, err := h.Clubs.GetByID(ctx, req.ClubID)
	if err != nil {
		if errors.Is(err, repository.ErrClubNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "club does not exist"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load club"})
	}

	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	table, err := h.Tables.GetForUpdateTx(ctx, tx, req.TableID)
	if err != nil {
		if errors.Is(err, repository.ErrTableNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "table does not exist"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load table"})
	}
	// Creation is a transition out of cancelled into the initial status.
	if delta := model.SlotDelta(model.StatusCancelled, status); delta != 0 {
		if err := h.Tables.AdjustSlotsTx(ctx, tx, table.ID, delta); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to adjust availability"})
		}
	}

	b := &model.Booking{
		Reference: uuid.NewString(),
		TableID:   table.ID,
		TableName: table.Name,
		Location:  table.Location,
		Date:      req.Date,
		Time:      req.Time,
		ClubID:    club.ID,
		ClubName:  club.Name,
		Purpose:   req.Purpose,
		Status:    status,
		Attendees: req.Attendees,
		UserID:    userID,
	}
	if err := h.Bookings.CreateTx(ctx, tx, b); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusCreated, b)
}

// Update handles PUT /v1/bookings/:id. It replaces the booking's
// mutable fields (schedule, purpose, attendees, status). A status
// change applies the same counter rule as the dedicated endpoints
// based on the old/new pair, which is also the only way to revive a
// cancelled booking.
func (h *BookingHandler) Update(c echo.Context) error {
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req bookingUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Date == "" || req.Time == "" || req.Attendees == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date, time and attendees are required"})
	}
	if _, err := time.Parse(model.DateLayout, req.Date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	if !model.ValidStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	ctx := c.Request().Context()
	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := h.Bookings.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	if !canManage(c, callerID, b.UserID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	oldStatus := b.Status
	if delta := model.SlotDelta(oldStatus, req.Status); delta != 0 {
		if err := h.Tables.AdjustSlotsTx(ctx, tx, b.TableID, delta); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to adjust availability"})
		}
	}

	b.Date = req.Date
	b.Time = req.Time
	b.Purpose = req.Purpose
	b.Status = req.Status
	b.Attendees = req.Attendees
	if err := h.Bookings.UpdateTx(ctx, tx, b); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update booking"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	if oldStatus != b.Status {
		switch b.Status {
		case model.StatusConfirmed:
			_ = queue_publisher.PublishBookingEvent(ctx, h.Logger, bookingEvent(queue.KindBookingConfirmed, b))
		case model.StatusCancelled:
			_ = queue_publisher.PublishBookingEvent(ctx, h.Logger, bookingEvent(queue.KindBookingCancelled, b))
		}
	}
	return c.JSON(http.StatusOK, b)
}

// Cancel handles PUT /v1/bookings/:id/cancel. Cancelling releases the
// booking's slot back to its table; re-cancelling is a no-op that
// returns the booking unchanged.
func (h *BookingHandler) Cancel(c echo.Context) error {
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx := c.Request().Context()
	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := h.Bookings.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	if !canManage(c, callerID, b.UserID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if b.Status == model.StatusCancelled {
		return c.JSON(http.StatusOK, b)
	}

	if delta := model.SlotDelta(b.Status, model.StatusCancelled); delta != 0 {
		if err := h.Tables.AdjustSlotsTx(ctx, tx, b.TableID, delta); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to adjust availability"})
		}
	}
	if err := h.Bookings.UpdateStatusTx(ctx, tx, b.ID, model.StatusCancelled); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel booking"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	b.Status = model.StatusCancelled

	_ = queue_publisher.PublishBookingEvent(ctx, h.Logger, bookingEvent(queue.KindBookingCancelled, b))
	return c.JSON(http.StatusOK, b)
}

// Confirm handles PUT /v1/bookings/:id/confirm. Only a pending booking
// transitions; confirming a confirmed or cancelled booking is a no-op
// that returns it unchanged. The slot was already consumed at
// creation, so the counter does not move.
func (h *BookingHandler) Confirm(c echo.Context) error {
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx := c.Request().Context()
	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := h.Bookings.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	if !canManage(c, callerID, b.UserID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if b.Status != model.StatusPending {
		return c.JSON(http.StatusOK, b)
	}

	if err := h.Bookings.UpdateStatusTx(ctx, tx, b.ID, model.StatusConfirmed); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to confirm booking"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	b.Status = model.StatusConfirmed

	_ = queue_publisher.PublishBookingEvent(ctx, h.Logger, bookingEvent(queue.KindBookingConfirmed, b))
	return c.JSON(http.StatusOK, b)
}

// Delete handles DELETE /v1/bookings/:id. Removing a booking that was
// still active returns its slot to the table before the record goes
// away.
func (h *BookingHandler) Delete(c echo.Context) error {
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx := c.Request().Context()
	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := h.Bookings.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	if !canManage(c, callerID, b.UserID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	// Deletion is a transition into cancelled as far as the counter is
	// concerned.
	if delta := model.SlotDelta(b.Status, model.StatusCancelled); delta != 0 {
		if err := h.Tables.AdjustSlotsTx(ctx, tx, b.TableID, delta); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to adjust availability"})
		}
	}
	if err := h.Bookings.DeleteTx(ctx, tx, b.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete booking"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusOK, b)
}
