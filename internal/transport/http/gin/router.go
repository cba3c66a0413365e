package httpgin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/campustix/campustix/internal/auth"
	"github.com/campustix/campustix/internal/booking"
	"github.com/campustix/campustix/internal/domain"
	redisrepo "github.com/campustix/campustix/internal/repository/redis"
	"github.com/campustix/campustix/internal/service"
	"github.com/campustix/campustix/internal/service/admin"
	"github.com/campustix/campustix/internal/service/catalog"
	"github.com/campustix/campustix/internal/service/purchase"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewRouter(
	svcs *service.Services,
	relay *booking.Relay,
	sessions *auth.Service,
	idem *redisrepo.IdempotencyStore,
	corsOrigins []string,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS(corsOrigins))
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Sessions
	r.POST("/auth/sessions", handleCreateSession(sessions))

	// Catalog
	r.GET("/events", handleListEvents(svcs))
	r.GET("/events/:id", handleGetEvent(svcs))

	// Purchases
	r.POST("/events/:id/purchase", handlePurchase(svcs, idem))
	r.POST("/bookings/confirm", handleConfirmBooking(relay))

	// Admin-API
	adminGroup := r.Group("/admin")
	{
		adminGroup.POST("/events", handleCreateEvent(svcs))
		adminGroup.PUT("/events/:id", handleUpdateEvent(svcs))
	}

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  Issue a session token
// @Param    req body  CreateSessionRequest true "payload"
// @Success  201 {object} CreateSessionResponse
// @Failure  400 {object} ErrorResponse
// @Router   /auth/sessions [post]
func handleCreateSession(sessions *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		token, err := sessions.Issue(domain.Subject{ID: req.UserID, Name: req.Name})
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, CreateSessionResponse{
			Token:     token,
			ExpiresIn: int64(sessions.TokenTTL() / time.Second),
		})
	}
}

// @Summary  List events
// @Success  200  {array}  EventResponse
// @Router   /events [get]
func handleListEvents(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := svcs.Catalog.ListEvents(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithETag(c, http.StatusOK, toEventResponses(events))
	}
}

// @Summary  Get event
// @Param    id  path  int  true  "Event ID"
// @Success  200  {object}  EventResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /events/{id} [get]
func handleGetEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		e, err := svcs.Catalog.GetEvent(c.Request.Context(), eventID)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithETag(c, http.StatusOK, toEventResponse(*e))
	}
}

// @Summary  Purchase tickets
// @Param    id  path  int  true  "Event ID"
// @Param    req body  PurchaseRequest true "payload"
// @Param    Authorization header string true "Bearer credential"
// @Header   201 {string} Idempotency-Key "echo"
// @Success  201 {object} PurchaseResponse
// @Failure  400 {object} ErrorResponse
// @Failure  401 {object} ErrorResponse "missing or invalid credential"
// @Failure  409 {object} ErrorResponse "insufficient tickets / idem in progress"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /events/{id}/purchase [post]
func handlePurchase(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req PurchaseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemPurchase(eventID, idemKey)

			if payload, ok, _ := idem.GetResult(
				c.Request.Context(),
				idemStorageKey,
			); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(
					http.StatusCreated,
					"application/json; charset=utf-8",
					[]byte(payload),
				)
				return
			}

			locked, err := idem.AcquireLock(
				c.Request.Context(),
				idemStorageKey,
				60*time.Second,
			)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(
					c.Request.Context(),
					idemStorageKey,
				); ok {
					c.Header("Idempotency-Key", idemKey)
					c.Data(
						http.StatusCreated,
						"application/json; charset=utf-8",
						[]byte(payload),
					)
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(
					http.StatusConflict,
					ErrorResponse{Error: "idempotency key in progress"},
				)
				return
			}
		}

		confirmation, err := svcs.Purchase.Purchase(
			c.Request.Context(),
			eventID,
			req.Quantity,
			bearerToken(c),
			"ip:"+c.ClientIP(),
		)
		if err != nil {
			if idemStorageKey != "" && idem != nil {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			respondErr(c, err)
			return
		}

		resp := PurchaseResponse{
			EventID:          confirmation.EventID,
			Purchased:        confirmation.Purchased,
			RemainingTickets: confirmation.RemainingTickets,
		}

		if idemStorageKey != "" && idem != nil {
			b, _ := json.Marshal(resp)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(b))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, resp)
	}
}

// @Summary  Confirm a parsed booking intent
// @Param    req body  ConfirmBookingRequest true "payload"
// @Param    Authorization header string true "Bearer credential"
// @Success  201 {object} PurchaseResponse
// @Failure  400 {object} ErrorResponse "invalid quantity / unresolved or ambiguous event"
// @Failure  409 {object} ErrorResponse "insufficient tickets"
// @Router   /bookings/confirm [post]
func handleConfirmBooking(relay *booking.Relay) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ConfirmBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		confirmation, err := relay.Confirm(
			c.Request.Context(),
			domain.BookingIntent{
				Intent:   req.Intent,
				Event:    req.Event,
				Quantity: req.Quantity,
			},
			bearerToken(c),
			"ip:"+c.ClientIP(),
		)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, PurchaseResponse{
			EventID:          confirmation.EventID,
			Purchased:        confirmation.Purchased,
			RemainingTickets: confirmation.RemainingTickets,
		})
	}
}

// @Summary  Create event
// @Param    req body  UpsertEventRequest true "payload"
// @Success  201 {object} EventResponse
// @Failure  400 {object} ErrorResponse
// @Router   /admin/events [post]
func handleCreateEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpsertEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		date, err := parseDate(req.Date)
		if err != nil {
			badRequest(c, "invalid date (YYYY-MM-DD)")
			return
		}
		e, err := svcs.Admin.CreateEvent(
			c.Request.Context(),
			req.Name,
			date,
			*req.TicketsAvailable,
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, toEventResponse(*e))
	}
}

// @Summary  Update event
// @Param    id  path  int  true  "Event ID"
// @Param    req body  UpsertEventRequest true "payload"
// @Success  200 {object} EventResponse
// @Failure  404 {object} ErrorResponse
// @Router   /admin/events/{id} [put]
func handleUpdateEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req UpsertEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		date, err := parseDate(req.Date)
		if err != nil {
			badRequest(c, "invalid date (YYYY-MM-DD)")
			return
		}
		e, err := svcs.Admin.UpdateEvent(
			c.Request.Context(),
			eventID,
			req.Name,
			date,
			*req.TicketsAvailable,
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toEventResponse(*e))
	}
}

// --- Helpers ---

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	s := c.Param(name)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, prefix))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	switch {
	// purchase coordinator
	case errors.Is(err, purchase.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "quantity must be a positive integer"})
		return
	case errors.Is(err, purchase.ErrMissingCredential):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing credential"})
		return
	case errors.Is(err, purchase.ErrInvalidCredential):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid or expired credential"})
		return
	case errors.Is(err, purchase.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found"})
		return
	case errors.Is(err, purchase.ErrInsufficientTickets):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "not enough tickets available"})
		return
	case errors.Is(err, purchase.ErrRateLimited):
		c.Header("Retry-After", "60")
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limited"})
		return
	case errors.Is(err, purchase.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "inventory store unavailable, retry later"})
		return
	// booking relay
	case errors.Is(err, booking.ErrUnsupportedIntent):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unsupported intent"})
		return
	case errors.Is(err, booking.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "quantity must be a positive integer"})
		return
	case errors.Is(err, booking.ErrUnresolvedEvent):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no matching event"})
		return
	case errors.Is(err, booking.ErrAmbiguousEvent):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "event name is ambiguous"})
		return
	// catalog service
	case errors.Is(err, catalog.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found"})
		return
	// admin service
	case errors.Is(err, admin.ErrInvalidName):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "event name must not be empty"})
		return
	case errors.Is(err, admin.ErrInvalidDate):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "event date must be a valid calendar date"})
		return
	case errors.Is(err, admin.ErrNegativeTickets):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "tickets available must not be negative"})
		return
	case errors.Is(err, admin.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found"})
		return
	case errors.Is(err, admin.ErrEventConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "event conflict"})
		return
	}

	// Unexpected failures stay generic; details go to the request log only.
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
