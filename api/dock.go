package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/poabike/rental-backend/dock"
	"github.com/poabike/rental-backend/internal/auth"
	"github.com/poabike/rental-backend/internal/middleware"
	"github.com/poabike/rental-backend/station"
)

func (a *API) listDocksHandler(c *gin.Context) {
	var baia *string
	if b := c.Query("baia"); b != "" {
		baia = &b
	}

	var status *dock.Status
	switch c.Query("status") {
	case "":
	case "livre":
		s := dock.Free
		status = &s
	case "ocupada":
		s := dock.Occupied
		status = &s
	default:
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid status filter, options: livre, ocupada"})
		return
	}

	docks, err := a.dr.GetDocks(c, baia, status)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	if docks == nil {
		docks = []dock.Dock{}
	}
	c.JSON(http.StatusOK, docks)
}

func (a *API) getDockHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid catraca id"})
		return
	}

	d, err := a.dr.GetDock(c, id)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, d)
}

type createDockRequest struct {
	Station string `json:"baia" binding:"required"`
}

func (a *API) createDockHandler(c *gin.Context) {
	if _, ok := requireRole(c, auth.Role.CanManageFleet, "only developers can add catracas"); !ok {
		return
	}

	var req createDockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if !station.Valid(req.Station) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid or missing baia"})
		return
	}

	d, err := a.dr.CreateDock(c, req.Station)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, d)
}

type attachBicycleRequest struct {
	BicycleID uuid.UUID `json:"bicicleta_id" binding:"required"`
}

func (a *API) attachBicycleHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	if _, ok := requireRole(c, auth.Role.CanManageFleet, "only developers can dock bicycles"); !ok {
		return
	}

	dockID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid catraca id"})
		return
	}

	var req attachBicycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	d, err := a.dr.AttachBicycle(c, dockID, req.BicycleID)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	logger.InfoContext(c, "bicycle docked", "catracaId", d.ID, "bicycleId", req.BicycleID)
	c.JSON(http.StatusOK, d)
}
