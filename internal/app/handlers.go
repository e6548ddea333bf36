package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"booking-api/internal/apperrors"
	"booking-api/internal/availability"
	"booking-api/internal/booking"
	"booking-api/internal/notify"
	"booking-api/internal/timewindow"
)

type App struct {
	Availability *availability.Service
	Booking      *booking.Service
	Mailer       notify.Mailer
	OwnerEmail   string
	Timeout      time.Duration
	Log          *zap.Logger
}

// GET /api/available-slots?date=YYYY-MM-DD
// Returns the open "HH:MM" start times for the date. An empty array with
// status 200 always means genuinely no open slots; upstream failures get a
// 502 so the client can tell "fully booked" from "could not check".
func (a *App) GetAvailableSlotsHandler(c *gin.Context) {
	dateStr := c.Query("date")
	if dateStr == "" {
		c.JSON(http.StatusOK, []string{})
		return
	}
	d, err := timewindow.ParseDate(dateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := a.requestContext(c)
	defer cancel()

	slots, err := a.Availability.DaySlots(ctx, d)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": "could not check availability"})
		return
	}
	times := make([]string, 0, len(slots))
	for _, s := range slots {
		times = append(times, s.Label)
	}
	c.JSON(http.StatusOK, times)
}

// GET /api/unavailable-dates?year=YYYY&month=MM
func (a *App) GetUnavailableDatesHandler(c *gin.Context) {
	year, err1 := strconv.Atoi(c.Query("year"))
	month, err2 := strconv.Atoi(c.Query("month"))
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year and month required"})
		return
	}

	ctx, cancel := a.requestContext(c)
	defer cancel()

	dates, err := a.Availability.MonthUnavailableDates(ctx, year, time.Month(month))
	if err != nil {
		status := statusFor(err)
		if status == http.StatusBadRequest {
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(status, gin.H{"error": "could not check availability"})
		return
	}
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.String())
	}
	c.JSON(http.StatusOK, out)
}

type bookAppointmentReq struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
	Topic string `json:"topic"`
	Date  string `json:"date" binding:"required"`
	Time  string `json:"time" binding:"required"`
}

// POST /api/book-appointment
func (a *App) BookAppointmentHandler(c *gin.Context) {
	var req bookAppointmentReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	ctx, cancel := a.requestContext(c)
	defer cancel()

	conf, err := a.Booking.Book(ctx, booking.Request{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Topic: req.Topic,
		Date:  req.Date,
		Time:  req.Time,
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"message": bookingFailureMessage(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Appointment booked",
		"eventId": conf.EventID,
	})
}

type contactReq struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

// POST /api/contact
func (a *App) ContactHandler(c *gin.Context) {
	var req contactReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	body := fmt.Sprintf("From: %s <%s>\r\n\r\n%s\r\n", req.Name, req.Email, req.Message)
	if err := a.Mailer.Send(a.OwnerEmail, "Website contact form", body); err != nil {
		a.Log.Error("contact mail failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"message": "could not send message"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message sent"})
}

// GET /healthz
func (a *App) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (a *App) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), a.Timeout)
}

func statusFor(err error) int {
	var (
		ve  *apperrors.ValidationError
		dre *apperrors.DateRangeError
		ce  *apperrors.ConflictError
		ae  *apperrors.AmbiguousError
		ue  *apperrors.UpstreamError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &dre):
		return http.StatusBadRequest
	case errors.As(err, &ce):
		return http.StatusConflict
	case errors.As(err, &ae):
		return http.StatusGatewayTimeout
	case errors.As(err, &ue):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func bookingFailureMessage(err error) string {
	var (
		ve  *apperrors.ValidationError
		dre *apperrors.DateRangeError
		ce  *apperrors.ConflictError
		ae  *apperrors.AmbiguousError
	)
	switch {
	case errors.As(err, &ve):
		return ve.Msg
	case errors.As(err, &dre):
		return dre.Msg
	case errors.As(err, &ce):
		return ce.Msg
	case errors.As(err, &ae):
		return "the booking could not be confirmed; please contact us to verify before trying again"
	default:
		return "booking failed, please try again later"
	}
}
