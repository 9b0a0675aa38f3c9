// Package http exposes the tracking engine over a REST API plus a WebSocket
// stream for live position updates. It coordinates between HTTP handlers and
// application use cases.
package http

import (
	"errors"
	"net/http"
	"time"

	"tracking/internal/core/application/usecases/commands"
	"tracking/internal/core/application/usecases/queries"
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Server handles HTTP requests for the tracking API.
type Server struct {
	// Command handlers
	createDeliveryHandler  commands.CreateDeliveryCommandHandler
	createDriverHandler    commands.CreateDriverCommandHandler
	startDeliveryHandler   commands.StartDeliveryCommandHandler
	stopDeliveryHandler    commands.StopDeliveryCommandHandler
	resumeDeliveryHandler  commands.ResumeDeliveryCommandHandler
	confirmDeliveryHandler commands.ConfirmDeliveryCommandHandler
	cancelDeliveryHandler  commands.CancelDeliveryCommandHandler

	// Query handlers
	getDeliveryHandler         queries.GetDeliveryQueryHandler
	getActiveDeliveriesHandler queries.GetActiveDeliveriesQueryHandler

	// Live event stream
	streamHandler *StreamHandler
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	createDeliveryHandler commands.CreateDeliveryCommandHandler,
	createDriverHandler commands.CreateDriverCommandHandler,
	startDeliveryHandler commands.StartDeliveryCommandHandler,
	stopDeliveryHandler commands.StopDeliveryCommandHandler,
	resumeDeliveryHandler commands.ResumeDeliveryCommandHandler,
	confirmDeliveryHandler commands.ConfirmDeliveryCommandHandler,
	cancelDeliveryHandler commands.CancelDeliveryCommandHandler,
	getDeliveryHandler queries.GetDeliveryQueryHandler,
	getActiveDeliveriesHandler queries.GetActiveDeliveriesQueryHandler,
	streamHandler *StreamHandler,
) *Server {
	return &Server{
		createDeliveryHandler:      createDeliveryHandler,
		createDriverHandler:        createDriverHandler,
		startDeliveryHandler:       startDeliveryHandler,
		stopDeliveryHandler:        stopDeliveryHandler,
		resumeDeliveryHandler:      resumeDeliveryHandler,
		confirmDeliveryHandler:     confirmDeliveryHandler,
		cancelDeliveryHandler:      cancelDeliveryHandler,
		getDeliveryHandler:         getDeliveryHandler,
		getActiveDeliveriesHandler: getActiveDeliveriesHandler,
		streamHandler:              streamHandler,
	}
}

// RegisterRoutes attaches all API routes to the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.POST("/deliveries", s.CreateDelivery)
	api.GET("/deliveries", s.GetActiveDeliveries)
	api.GET("/deliveries/:id", s.GetDelivery)
	api.POST("/deliveries/:id/start", s.StartDelivery)
	api.POST("/deliveries/:id/stop", s.StopDelivery)
	api.POST("/deliveries/:id/resume", s.ResumeDelivery)
	api.POST("/deliveries/:id/confirm", s.ConfirmDelivery)
	api.POST("/deliveries/:id/cancel", s.CancelDelivery)
	api.POST("/drivers", s.CreateDriver)

	e.GET("/ws/deliveries/:id", s.streamHandler.Stream)
}

// ErrorResponse is the uniform error body returned by all endpoints.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// LocationDTO is a latitude/longitude pair in request and response bodies.
type LocationDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewDeliveryRequest is the body of POST /api/v1/deliveries.
type NewDeliveryRequest struct {
	OrderID            string      `json:"orderId"`
	CustomerID         string      `json:"customerId"`
	RestaurantLocation LocationDTO `json:"restaurantLocation"`
	DeliveryLocation   LocationDTO `json:"deliveryLocation"`
}

// NewDeliveryResponse carries the identifier of the created delivery.
type NewDeliveryResponse struct {
	ID string `json:"id"`
}

// NewDriverRequest is the body of POST /api/v1/drivers.
type NewDriverRequest struct {
	Name          string      `json:"name"`
	ContactNumber string      `json:"contactNumber"`
	Location      LocationDTO `json:"location"`
}

// NewDriverResponse carries the identifier of the created driver.
type NewDriverResponse struct {
	ID string `json:"id"`
}

// StatusHistoryEntryDTO is one record of a delivery's status history.
type StatusHistoryEntryDTO struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// DeliveryResponse is the snapshot returned by GET /api/v1/deliveries/:id.
type DeliveryResponse struct {
	ID         string                  `json:"id"`
	OrderID    string                  `json:"orderId"`
	CustomerID string                  `json:"customerId"`
	Status     string                  `json:"status"`
	DriverID   *string                 `json:"driverId,omitempty"`
	Position   *LocationDTO            `json:"position,omitempty"`
	History    []StatusHistoryEntryDTO `json:"history"`
	UpdatedAt  time.Time               `json:"updatedAt"`
}

// ActiveDeliveryResponse is one element of GET /api/v1/deliveries.
type ActiveDeliveryResponse struct {
	ID       string       `json:"id"`
	OrderID  string       `json:"orderId"`
	Status   string       `json:"status"`
	DriverID *string      `json:"driverId,omitempty"`
	Position *LocationDTO `json:"position,omitempty"`
}

// CreateDelivery handles POST /api/v1/deliveries - registers a delivery for tracking.
func (s *Server) CreateDelivery(ctx echo.Context) error {
	var req NewDeliveryRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	orderID, err := kernel.UUIDFromString(req.OrderID)
	if err != nil {
		return badRequest(ctx, "Invalid order id: "+err.Error())
	}

	customerID, err := kernel.UUIDFromString(req.CustomerID)
	if err != nil {
		return badRequest(ctx, "Invalid customer id: "+err.Error())
	}

	restaurant, err := kernel.NewLocation(req.RestaurantLocation.Lat, req.RestaurantLocation.Lng)
	if err != nil {
		return badRequest(ctx, "Invalid restaurant location: "+err.Error())
	}

	dropOff, err := kernel.NewLocation(req.DeliveryLocation.Lat, req.DeliveryLocation.Lng)
	if err != nil {
		return badRequest(ctx, "Invalid delivery location: "+err.Error())
	}

	deliveryID := kernel.NewUUID()
	cmd, err := commands.NewCreateDeliveryCommand(deliveryID, orderID, customerID, restaurant, dropOff)
	if err != nil {
		return badRequest(ctx, "Invalid delivery data: "+err.Error())
	}

	if handleErr := s.createDeliveryHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return mapDomainError(ctx, handleErr, "Failed to create delivery")
	}

	return ctx.JSON(http.StatusCreated, NewDeliveryResponse{ID: deliveryID.String()})
}

// CreateDriver handles POST /api/v1/drivers - registers a driver in the assignment pool.
func (s *Server) CreateDriver(ctx echo.Context) error {
	var req NewDriverRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	location, err := kernel.NewLocation(req.Location.Lat, req.Location.Lng)
	if err != nil {
		return badRequest(ctx, "Invalid driver location: "+err.Error())
	}

	driverID := kernel.NewUUID()
	cmd, err := commands.NewCreateDriverCommand(driverID, req.Name, req.ContactNumber, location)
	if err != nil {
		return badRequest(ctx, "Invalid driver data: "+err.Error())
	}

	if handleErr := s.createDriverHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return mapDomainError(ctx, handleErr, "Failed to create driver")
	}

	return ctx.JSON(http.StatusCreated, NewDriverResponse{ID: driverID.String()})
}

// GetDelivery handles GET /api/v1/deliveries/:id - returns the delivery snapshot
// an observer reconciles against before subscribing to live events.
func (s *Server) GetDelivery(ctx echo.Context) error {
	deliveryID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid delivery id: "+err.Error())
	}

	query, err := queries.NewGetDeliveryQuery(deliveryID)
	if err != nil {
		return badRequest(ctx, "Invalid delivery id: "+err.Error())
	}

	snapshot, err := s.getDeliveryHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return mapDomainError(ctx, err, "Failed to retrieve delivery")
	}

	history := make([]StatusHistoryEntryDTO, len(snapshot.History))
	for i, entry := range snapshot.History {
		history[i] = StatusHistoryEntryDTO{Status: entry.Status, Timestamp: entry.Timestamp}
	}

	return ctx.JSON(http.StatusOK, DeliveryResponse{
		ID:         snapshot.ID.String(),
		OrderID:    snapshot.OrderID.String(),
		CustomerID: snapshot.CustomerID.String(),
		Status:     snapshot.Status,
		DriverID:   uuidToString(snapshot.DriverID),
		Position:   locationToDTO(snapshot.Position),
		History:    history,
		UpdatedAt:  snapshot.UpdatedAt,
	})
}

// GetActiveDeliveries handles GET /api/v1/deliveries - returns all in-flight deliveries.
func (s *Server) GetActiveDeliveries(ctx echo.Context) error {
	query := queries.NewGetActiveDeliveriesQuery()

	active, err := s.getActiveDeliveriesHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Failed to retrieve deliveries",
		})
	}

	response := make([]ActiveDeliveryResponse, len(active))
	for i, item := range active {
		response[i] = ActiveDeliveryResponse{
			ID:       item.ID.String(),
			OrderID:  item.OrderID.String(),
			Status:   item.Status,
			DriverID: uuidToString(item.DriverID),
			Position: locationToDTO(item.Position),
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// StartDelivery handles POST /api/v1/deliveries/:id/start - begins the
// restaurant-bound movement simulation for an assigned delivery.
func (s *Server) StartDelivery(ctx echo.Context) error {
	return s.handleTransition(ctx, func(deliveryID kernel.UUID) error {
		cmd, err := commands.NewStartDeliveryCommand(deliveryID)
		if err != nil {
			return err
		}
		return s.startDeliveryHandler.Handle(ctx.Request().Context(), cmd)
	}, "Failed to start delivery tracking")
}

// StopDelivery handles POST /api/v1/deliveries/:id/stop - halts the movement
// simulation without changing the delivery's status.
func (s *Server) StopDelivery(ctx echo.Context) error {
	return s.handleTransition(ctx, func(deliveryID kernel.UUID) error {
		cmd, err := commands.NewStopDeliveryCommand(deliveryID)
		if err != nil {
			return err
		}
		return s.stopDeliveryHandler.Handle(ctx.Request().Context(), cmd)
	}, "Failed to stop delivery tracking")
}

// ResumeDelivery handles POST /api/v1/deliveries/:id/resume - restarts movement
// after the restaurant stop.
func (s *Server) ResumeDelivery(ctx echo.Context) error {
	return s.handleTransition(ctx, func(deliveryID kernel.UUID) error {
		cmd, err := commands.NewResumeDeliveryCommand(deliveryID)
		if err != nil {
			return err
		}
		return s.resumeDeliveryHandler.Handle(ctx.Request().Context(), cmd)
	}, "Failed to resume delivery")
}

// ConfirmDelivery handles POST /api/v1/deliveries/:id/confirm - records the
// customer's receipt confirmation.
func (s *Server) ConfirmDelivery(ctx echo.Context) error {
	return s.handleTransition(ctx, func(deliveryID kernel.UUID) error {
		cmd, err := commands.NewConfirmDeliveryCommand(deliveryID)
		if err != nil {
			return err
		}
		return s.confirmDeliveryHandler.Handle(ctx.Request().Context(), cmd)
	}, "Failed to confirm delivery")
}

// CancelDelivery handles POST /api/v1/deliveries/:id/cancel - cancels the
// delivery while keeping its record observable.
func (s *Server) CancelDelivery(ctx echo.Context) error {
	return s.handleTransition(ctx, func(deliveryID kernel.UUID) error {
		cmd, err := commands.NewCancelDeliveryCommand(deliveryID)
		if err != nil {
			return err
		}
		return s.cancelDeliveryHandler.Handle(ctx.Request().Context(), cmd)
	}, "Failed to cancel delivery")
}

// handleTransition parses the :id parameter, runs the transition and maps
// domain errors onto HTTP statuses.
func (s *Server) handleTransition(ctx echo.Context, run func(kernel.UUID) error, failMessage string) error {
	deliveryID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid delivery id: "+err.Error())
	}

	if err = run(deliveryID); err != nil {
		return mapDomainError(ctx, err, failMessage)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// mapDomainError converts domain errors to HTTP responses: missing aggregates
// become 404, rejected state transitions 409, everything else 500.
func mapDomainError(ctx echo.Context, err error, fallback string) error {
	var notFound *errs.ObjectNotFoundError
	if errors.As(err, &notFound) {
		return ctx.JSON(http.StatusNotFound, ErrorResponse{
			Code:    http.StatusNotFound,
			Message: err.Error(),
		})
	}

	if errors.Is(err, errs.ErrInvalidDeliveryState) {
		return ctx.JSON(http.StatusConflict, ErrorResponse{
			Code:    http.StatusConflict,
			Message: err.Error(),
		})
	}

	return ctx.JSON(http.StatusInternalServerError, ErrorResponse{
		Code:    http.StatusInternalServerError,
		Message: fallback,
	})
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

func uuidToString(id *kernel.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func locationToDTO(location *kernel.Location) *LocationDTO {
	if location == nil {
		return nil
	}
	return &LocationDTO{Lat: location.Latitude(), Lng: location.Longitude()}
}
