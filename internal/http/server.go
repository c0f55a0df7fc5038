// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"chauffeur/internal/http/handlers"
	"chauffeur/internal/http/middleware"
	"chauffeur/internal/infra"
	"chauffeur/internal/modules/booking"
	"chauffeur/internal/modules/pricing"
)

type ServerDeps struct {
	Pricing  *pricing.Service
	Booking  *booking.Service
	Verifier infra.TokenVerifier
	Log      logrus.FieldLogger
}

type Server struct {
	pricing  *pricing.Service
	booking  *booking.Service
	verifier infra.TokenVerifier
	log      logrus.FieldLogger
}

func NewServer(deps ServerDeps) *Server {
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	return &Server{
		pricing:  deps.Pricing,
		booking:  deps.Booking,
		verifier: deps.Verifier,
		log:      deps.Log,
	}
}

// Routes builds the gin engine. Booking routes are only mounted when a verifier is configured.
func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(middleware.Recovery(s.log), middleware.Logging(s.log))

	quotes := handlers.NewQuoteHandler(s.pricing)
	r.POST("/api/quotes", quotes.Create)
	r.GET("/api/quotes/:id", quotes.Get)
	r.GET("/api/currency/convert", quotes.Convert)

	if s.booking != nil && s.verifier != nil {
		bookings := handlers.NewBookingHandler(s.booking)
		authed := r.Group("/api/bookings", middleware.Auth(s.verifier))
		authed.POST("", bookings.Confirm)
		authed.GET("/:id", bookings.Get)
		authed.POST("/:id/cancel", bookings.Cancel)
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	return r
}
