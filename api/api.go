// Package api exposes the rental network over HTTP.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/poabike/rental-backend/bicycle"
	"github.com/poabike/rental-backend/dock"
	"github.com/poabike/rental-backend/internal/auth"
	"github.com/poabike/rental-backend/internal/database"
	"github.com/poabike/rental-backend/internal/middleware"
	"github.com/poabike/rental-backend/internal/o11y"
	"github.com/poabike/rental-backend/rental"
	"github.com/poabike/rental-backend/station"
	"github.com/poabike/rental-backend/user"
)

type Config struct {
	DeveloperAPIKey string
	ClientAPIKey    string

	MetricsUsername string
	MetricsPassword string
}

type API struct {
	r      *gin.Engine
	br     *bicycle.Repository
	dr     *dock.Repository
	rr     *rental.Repository
	ur     *user.Repository
	policy *auth.Policy

	rentalsStarted  prometheus.Counter
	rentalsFinished prometheus.Counter
}

func New(obs *o11y.Observability, cfg Config,
	br *bicycle.Repository, dr *dock.Repository, rr *rental.Repository, ur *user.Repository,
	policy *auth.Policy,
) *API {
	a := &API{
		r:      gin.New(),
		br:     br,
		dr:     dr,
		rr:     rr,
		ur:     ur,
		policy: policy,
		rentalsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rentals_started_total",
			Help: "Total number of rentals started",
		}),
		rentalsFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rentals_finished_total",
			Help: "Total number of rentals finished",
		}),
	}
	obs.Registry.MustRegister(a.rentalsStarted, a.rentalsFinished)

	a.r.Use(gin.Recovery())
	a.r.Use(middleware.Tracing())
	a.r.Use(middleware.Metrics(obs.Registry))

	a.r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	a.r.GET("/metrics",
		gin.BasicAuth(gin.Accounts{cfg.MetricsUsername: cfg.MetricsPassword}),
		gin.WrapH(promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{})))

	limiter := middleware.NewRateLimiter(100, 15*time.Minute)

	authed := a.r.Group("/")
	authed.Use(middleware.APIKey(cfg.DeveloperAPIKey, cfg.ClientAPIKey))
	authed.Use(middleware.Logging(obs.Logger))
	authed.Use(limiter.Middleware())
	{
		authed.GET("/bicicletas", a.listBicyclesHandler)
		authed.GET("/bicicletas/:id", a.getBicycleHandler)
		authed.POST("/bicicletas", a.createBicycleHandler)
		authed.PUT("/bicicletas/:id", a.updateBicycleHandler)
		authed.DELETE("/bicicletas/:id", a.deleteBicycleHandler)

		authed.POST("/alugueis", a.startRentalHandler)
		authed.PUT("/alugueis/:id/finalizar", a.finishRentalHandler)
		authed.GET("/alugueis", a.listRentalsHandler)
		authed.GET("/alugueis/:id", a.getRentalHandler)

		authed.POST("/usuarios", a.registerHandler)
		authed.POST("/usuarios/login", a.loginHandler)
		authed.GET("/usuarios/:id", a.getUserHandler)

		authed.GET("/catracas", a.listDocksHandler)
		authed.GET("/catracas/:id", a.getDockHandler)
		authed.POST("/catracas", a.createDockHandler)
		authed.PUT("/catracas/:id/acoplar", a.attachBicycleHandler)

		authed.GET("/baias", func(c *gin.Context) {
			c.JSON(http.StatusOK, station.Names)
		})
	}

	return a
}

func (a *API) Router() *gin.Engine {
	return a.r
}

// writeDomainError translates the core error taxonomy to HTTP. Handlers
// call it after ruling out their own request-shape errors.
func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, rental.ErrNotFound),
		errors.Is(err, rental.ErrBicycleNotFound),
		errors.Is(err, bicycle.ErrNotFound),
		errors.Is(err, dock.ErrNotFound),
		errors.Is(err, dock.ErrBicycleNotFound),
		errors.Is(err, user.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})

	case errors.Is(err, rental.ErrInvalidDuration),
		errors.Is(err, rental.ErrInvalidChargeLevel):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})

	case errors.Is(err, rental.ErrNotActive),
		errors.Is(err, rental.ErrBicycleUnavailable),
		errors.Is(err, bicycle.ErrRentedOut),
		errors.Is(err, dock.ErrMismatch),
		errors.Is(err, dock.ErrUnavailable),
		errors.Is(err, dock.ErrBicycleNotDockable),
		errors.Is(err, user.ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})

	case errors.Is(err, rental.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})

	case errors.Is(err, database.ErrTxConflict):
		// Lost a serialization race; the caller can retry immediately.
		c.JSON(http.StatusConflict, gin.H{"message": "concurrent update, retry the request"})

	case errors.Is(err, auth.ErrTokenRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})

	case errors.Is(err, user.ErrInvalidToken):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})

	case errors.Is(err, user.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})

	default:
		logger := middleware.GetLogger(c)
		logger.ErrorContext(c, "internal error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
}

// caller resolves the bearer token of the current request to a user.
func (a *API) caller(c *gin.Context) (user.User, bool) {
	u, err := a.policy.ResolveBearer(c, c.GetHeader("Authorization"))
	if err != nil {
		writeDomainError(c, err)
		return user.User{}, false
	}
	return u, true
}

// requireRole aborts with 403 unless the check passes for the caller role.
func requireRole(c *gin.Context, check func(auth.Role) bool, message string) (auth.Role, bool) {
	role, ok := middleware.GetRole(c)
	if !ok || !check(role) {
		c.JSON(http.StatusForbidden, gin.H{"message": message})
		return role, false
	}
	return role, true
}
