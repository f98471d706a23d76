package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/poabike/rental-backend/internal/auth"
	"github.com/poabike/rental-backend/internal/middleware"
	"github.com/poabike/rental-backend/user"
)

type registerRequest struct {
	Username   string  `json:"username" binding:"required"`
	Password   string  `json:"password" binding:"required"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Address    string  `json:"address"`
	ImageURL   string  `json:"img"`
	Kilometers float64 `json:"kms"`
	Emission   float64 `json:"emissao"`
}

func (a *API) registerHandler(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "username and password are required"})
		return
	}

	u, err := a.ur.Register(c, user.RegisterParams{
		Username:   req.Username,
		Password:   req.Password,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		ImageURL:   req.ImageURL,
		Kilometers: req.Kilometers,
		Emission:   req.Emission,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}

	// The password hash and token are excluded by the entity's JSON tags.
	c.JSON(http.StatusCreated, gin.H{"message": "user registered", "user": u})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (a *API) loginHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "username and password are required"})
		return
	}

	u, err := a.ur.Authenticate(c, req.Username, req.Password)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	logger.InfoContext(c, "user authenticated", "userId", u.ID)
	c.JSON(http.StatusOK, gin.H{
		"message": "login successful",
		"token":   u.Token,
		"user_id": u.ID,
	})
}

func (a *API) getUserHandler(c *gin.Context) {
	role, ok := middleware.GetRole(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"message": "access denied"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid user id"})
		return
	}

	if role == auth.RoleClient {
		caller, ok := a.caller(c)
		if !ok {
			return
		}
		if !auth.CanViewRecord(role, caller.ID, id) {
			c.JSON(http.StatusForbidden, gin.H{"message": "cannot access another user's profile"})
			return
		}
		c.JSON(http.StatusOK, caller)
		return
	}

	u, err := a.ur.GetByID(c, id)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, u)
}
