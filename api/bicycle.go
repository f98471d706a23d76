package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/poabike/rental-backend/bicycle"
	"github.com/poabike/rental-backend/internal/auth"
	"github.com/poabike/rental-backend/station"
)

func (a *API) listBicyclesHandler(c *gin.Context) {
	var status *bicycle.Status
	if s := c.Query("status"); s != "" {
		st := bicycle.Status(s)
		if !st.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid status filter"})
			return
		}
		status = &st
	}

	var baia *string
	if b := c.Query("baia"); b != "" {
		baia = &b
	}

	bicycles, err := a.br.GetBicycles(c, status, baia)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	if bicycles == nil {
		bicycles = []bicycle.Bicycle{}
	}
	c.JSON(http.StatusOK, bicycles)
}

func (a *API) getBicycleHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid bicycle id"})
		return
	}

	b, err := a.br.GetBicycle(c, id)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

type createBicycleRequest struct {
	ChargeLevel int                `json:"quilometragem_carga" binding:"required"`
	Station     string             `json:"baia" binding:"required"`
	ImageURL    string             `json:"img"`
	DockStatus  bicycle.DockStatus `json:"turnstile_status"`
	DockID      *uuid.UUID         `json:"catraca_id"`
}

func (a *API) createBicycleHandler(c *gin.Context) {
	if _, ok := requireRole(c, auth.Role.CanManageFleet, "only developers can add bicycles"); !ok {
		return
	}

	var req createBicycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if !bicycle.ValidChargeLevel(req.ChargeLevel) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "charge level must be 10, 15 or 20"})
		return
	}
	if !station.Valid(req.Station) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid or missing baia"})
		return
	}
	if req.DockStatus != "" && !req.DockStatus.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid turnstile status, options: docked, undocked, unavailable_dock"})
		return
	}
	if req.DockStatus == bicycle.Docked && req.DockID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "a docked bicycle needs a catraca_id"})
		return
	}

	b, err := a.br.CreateBicycle(c, bicycle.CreateParams{
		ChargeLevel: req.ChargeLevel,
		Station:     req.Station,
		ImageURL:    req.ImageURL,
		DockStatus:  req.DockStatus,
		DockID:      req.DockID,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, b)
}

type updateBicycleRequest struct {
	Status      *bicycle.Status     `json:"status"`
	ChargeLevel *int                `json:"quilometragem_carga"`
	Station     *string             `json:"baia"`
	ImageURL    *string             `json:"img"`
	DockStatus  *bicycle.DockStatus `json:"turnstile_status"`
}

func (r updateBicycleRequest) empty() bool {
	return r.Status == nil && r.ChargeLevel == nil && r.Station == nil &&
		r.ImageURL == nil && r.DockStatus == nil
}

func (a *API) updateBicycleHandler(c *gin.Context) {
	if _, ok := requireRole(c, auth.Role.CanManageFleet, "only developers can update bicycles"); !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid bicycle id"})
		return
	}

	var req updateBicycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if req.empty() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "no valid fields to update"})
		return
	}
	if req.Status != nil && !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid status, options: disponível, alugada, indisponível"})
		return
	}
	if req.ChargeLevel != nil && !bicycle.ValidChargeLevel(*req.ChargeLevel) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "charge level must be 10, 15 or 20"})
		return
	}
	if req.Station != nil && !station.Valid(*req.Station) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid baia"})
		return
	}
	if req.DockStatus != nil && !req.DockStatus.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid turnstile status, options: docked, undocked, unavailable_dock"})
		return
	}

	b, err := a.br.UpdateBicycle(c, id, bicycle.UpdateParams{
		Status:      req.Status,
		ChargeLevel: req.ChargeLevel,
		Station:     req.Station,
		ImageURL:    req.ImageURL,
		DockStatus:  req.DockStatus,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

func (a *API) deleteBicycleHandler(c *gin.Context) {
	if _, ok := requireRole(c, auth.Role.CanManageFleet, "only developers can remove bicycles"); !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid bicycle id"})
		return
	}

	if err := a.br.DeleteBicycle(c, id); err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "bicycle removed"})
}
