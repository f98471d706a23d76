package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/poabike/rental-backend/internal/auth"
	"github.com/poabike/rental-backend/internal/middleware"
	"github.com/poabike/rental-backend/rental"
)

type startRentalRequest struct {
	BicycleID       uuid.UUID `json:"bicicleta_id" binding:"required"`
	DurationMinutes int       `json:"tempo_alugado_minutos" binding:"required"`
	OriginDockID    uuid.UUID `json:"catraca_id_origem" binding:"required"`
}

func (a *API) startRentalHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	if _, ok := requireRole(c, auth.Role.CanRent, "only clients can start rentals"); !ok {
		return
	}

	caller, ok := a.caller(c)
	if !ok {
		return
	}

	var req startRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	r, err := a.rr.Start(c, req.BicycleID, req.DurationMinutes, req.OriginDockID, caller.ID)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	a.rentalsStarted.Inc()
	logger.InfoContext(c, "rental started",
		"rentalId", r.ID, "bicycleId", r.BicycleID, "userId", r.UserID)
	c.JSON(http.StatusCreated, r)
}

type finishRentalRequest struct {
	ReturnDockID uuid.UUID `json:"catraca_id_retorno" binding:"required"`
	ChargeLevel  int       `json:"quilometragem_carga_final" binding:"required"`
}

func (a *API) finishRentalHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	if _, ok := requireRole(c, auth.Role.CanRent, "only clients can finish rentals"); !ok {
		return
	}

	rentalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid rental id"})
		return
	}

	caller, ok := a.caller(c)
	if !ok {
		return
	}

	var req finishRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	r, err := a.rr.Finish(c, rental.FinishParams{
		RentalID:     rentalID,
		ReturnDockID: req.ReturnDockID,
		ChargeLevel:  req.ChargeLevel,
		CallerID:     &caller.ID,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}

	a.rentalsFinished.Inc()
	logger.InfoContext(c, "rental finished",
		"rentalId", r.ID, "elapsedMinutes", r.DurationMinutes, "price", r.Price)
	c.JSON(http.StatusOK, r)
}

func (a *API) listRentalsHandler(c *gin.Context) {
	role, ok := middleware.GetRole(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"message": "access denied"})
		return
	}

	var status *rental.Status
	if s := c.Query("status"); s != "" {
		st := rental.Status(s)
		if st != rental.StatusActive && st != rental.StatusFinished {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid status filter"})
			return
		}
		status = &st
	}

	// Clients only see their own rentals.
	var userID *uuid.UUID
	if role == auth.RoleClient {
		caller, ok := a.caller(c)
		if !ok {
			return
		}
		userID = &caller.ID
	}

	rentals, err := a.rr.GetRentals(c, status, userID)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	if rentals == nil {
		rentals = []rental.Rental{}
	}
	c.JSON(http.StatusOK, rentals)
}

func (a *API) getRentalHandler(c *gin.Context) {
	role, ok := middleware.GetRole(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"message": "access denied"})
		return
	}

	rentalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid rental id"})
		return
	}

	r, err := a.rr.GetRental(c, rentalID)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	if role == auth.RoleClient {
		caller, ok := a.caller(c)
		if !ok {
			return
		}
		if !auth.CanViewRecord(role, caller.ID, r.UserID) {
			c.JSON(http.StatusForbidden, gin.H{"message": "cannot access another user's rentals"})
			return
		}
	}

	c.JSON(http.StatusOK, r)
}
