package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/utopia-air/booking/internal/domain"
	"github.com/utopia-air/booking/internal/service/reservation"
)

type ReservationHandler struct {
	service reservation.ReservationUseCase
}

type bookRequest struct {
	Holder     domain.Holder `json:"holder"`
	PriceCents int64         `json:"price_cents"`
}

type paymentRequest struct {
	PriceCents int64 `json:"price_cents"`
}

type reservationResponse struct {
	BookingID  string        `json:"booking_id"`
	FlightID   int64         `json:"flight_id"`
	Row        int           `json:"row"`
	Seat       string        `json:"seat"`
	Holder     domain.Holder `json:"holder"`
	PriceCents int64         `json:"price_cents"`
	Status     string        `json:"status"`
	ExpiresAt  string        `json:"expires_at,omitempty"`
	CreatedAt  string        `json:"created_at"`
}

func NewReservationHandler(service reservation.ReservationUseCase) *ReservationHandler {
	return &ReservationHandler{service: service}
}

func (h *ReservationHandler) Register(router *gin.RouterGroup) {
	router.POST("/book/flights/:flight/rows/:row/seats/:seat", h.book)
	router.DELETE("/book/flights/:flight/rows/:row/seats/:seat", h.cancelBySeat)
	router.DELETE("/book/bookings/:bookingId", h.cancelByBookingID)
	router.PUT("/pay/flights/:flight/rows/:row/seats/:seat", h.payBySeat)
	router.PUT("/pay/bookings/:bookingId", h.payByBookingID)
	router.PUT("/extend/flights/:flight/rows/:row/seats/:seat", h.extendBySeat)
	router.PUT("/extend/bookings/:bookingId", h.extendByBookingID)
	router.GET("/details/flights/:flight/rows/:row/seats/:seat", h.detailsBySeat)
	router.GET("/details/bookings/:bookingId", h.detailsByBookingID)
}

func (h *ReservationHandler) book(c *gin.Context) {
	seat, ok := seatParam(c)
	if !ok {
		return
	}
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := h.service.Book(c.Request.Context(), seat, req.Holder, req.PriceCents)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(r))
}

func (h *ReservationHandler) payBySeat(c *gin.Context) {
	seat, ok := seatParam(c)
	if !ok {
		return
	}
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.service.GetTicket(c.Request.Context(), seat)
	if err != nil {
		respondError(c, err)
		return
	}
	updated, err := h.service.AcceptPayment(c.Request.Context(), ticket.BookingID, req.PriceCents)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(updated))
}

func (h *ReservationHandler) payByBookingID(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.AcceptPayment(c.Request.Context(), c.Param("bookingId"), req.PriceCents)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(updated))
}

func (h *ReservationHandler) cancelBySeat(c *gin.Context) {
	seat, ok := seatParam(c)
	if !ok {
		return
	}
	ticket, err := h.service.GetTicket(c.Request.Context(), seat)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.service.CancelPendingReservation(c.Request.Context(), ticket.BookingID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ReservationHandler) cancelByBookingID(c *gin.Context) {
	if err := h.service.CancelPendingReservation(c.Request.Context(), c.Param("bookingId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ReservationHandler) extendBySeat(c *gin.Context) {
	seat, ok := seatParam(c)
	if !ok {
		return
	}
	ticket, err := h.service.GetTicket(c.Request.Context(), seat)
	if err != nil {
		respondError(c, err)
		return
	}
	if _, err := h.service.ExtendReservationTimeout(c.Request.Context(), ticket.BookingID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ReservationHandler) extendByBookingID(c *gin.Context) {
	if _, err := h.service.ExtendReservationTimeout(c.Request.Context(), c.Param("bookingId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ReservationHandler) detailsBySeat(c *gin.Context) {
	seat, ok := seatParam(c)
	if !ok {
		return
	}
	ticket, err := h.service.GetTicket(c.Request.Context(), seat)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(ticket))
}

func (h *ReservationHandler) detailsByBookingID(c *gin.Context) {
	ticket, err := h.service.GetBooking(c.Request.Context(), c.Param("bookingId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(ticket))
}

func seatParam(c *gin.Context) (domain.SeatLocation, bool) {
	flightID, err := strconv.ParseInt(c.Param("flight"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flight id"})
		return domain.SeatLocation{}, false
	}
	row, err := strconv.Atoi(c.Param("row"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid row"})
		return domain.SeatLocation{}, false
	}
	return domain.SeatLocation{FlightID: flightID, Row: row, Seat: c.Param("seat")}, true
}

// respondError maps the engine's error taxonomy onto HTTP statuses.
// Anything unclassified degrades to a generic 500 without leaking the
// underlying error.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrSeatUnavailable), errors.Is(err, domain.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrHoldExpired), errors.Is(err, domain.ErrAmountMismatch):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnknownSeat):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func toResponse(r *domain.Reservation) reservationResponse {
	resp := reservationResponse{
		BookingID:  r.BookingID,
		FlightID:   r.Seat.FlightID,
		Row:        r.Seat.Row,
		Seat:       r.Seat.Seat,
		Holder:     r.Holder,
		PriceCents: r.PriceCents,
		Status:     string(r.Status),
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
	}
	if r.Status == domain.ReservationStatusPending {
		resp.ExpiresAt = r.ExpiresAt.Format(time.RFC3339)
	}
	return resp
}
