package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paraphe-sign/internal/api/handlers"
	"github.com/paraphe-sign/internal/api/middleware"
	"github.com/paraphe-sign/internal/services"
	"github.com/paraphe-sign/pkg/metrics"
	"go.uber.org/zap"
)

type Router struct {
	engine             *gin.Engine
	logger             *zap.Logger
	metrics            *metrics.MetricsCollector
	participantHandler *handlers.ParticipantHandler
	signatureHandler   *handlers.SignatureHandler
	reassignHandler    *handlers.ReassignHandler
	reqMiddleware      *middleware.RequestMiddleware
}

func NewRouter(
	logger *zap.Logger,
	collector *metrics.MetricsCollector,
	packageService *services.PackageService,
	signatureService *services.SignatureService,
	reassignService *services.ReassignService,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	reqMiddleware := middleware.NewRequestMiddleware(logger)
	engine.Use(reqMiddleware.ProcessRequest())
	engine.Use(reqMiddleware.RecoverPanic())

	return &Router{
		engine:             engine,
		logger:             logger,
		metrics:            collector,
		participantHandler: handlers.NewParticipantHandler(packageService, logger),
		signatureHandler:   handlers.NewSignatureHandler(signatureService, logger),
		reassignHandler:    handlers.NewReassignHandler(reassignService, logger),
		reqMiddleware:      reqMiddleware,
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "up", "name": "paraphe-sign"})
	})

	r.engine.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"counters":  r.metrics.GetCounters(),
			"latencies": r.metrics.GetLatencies(),
		})
	})

	participant := r.engine.Group("/packages/participant/:packageId/:participantId")
	{
		participant.GET("", r.participantHandler.GetView)
		participant.POST("/submit-fields", r.participantHandler.SubmitFields)
		participant.POST("/send-otp", r.reqMiddleware.ThrottleOtp(), r.signatureHandler.SendOtp)
		participant.POST("/verify-otp", r.signatureHandler.VerifyOtp)
		participant.POST("/send-sms-otp", r.reqMiddleware.ThrottleOtp(), r.signatureHandler.SendSmsOtp)
		participant.POST("/verify-sms-otp", r.signatureHandler.VerifyOtp)
		participant.POST("/reject", r.participantHandler.Reject)
		participant.GET("/download", r.participantHandler.Download)

		participant.GET("/reassignment/contacts", r.reassignHandler.ListContacts)
		participant.POST("/reassignment/register-contact", r.reassignHandler.RegisterContact)
		participant.POST("/reassignment/perform", r.reassignHandler.Perform)
		participant.POST("/add-receiver", r.reassignHandler.AddReceiver)
	}

	r.engine.POST("/packages/:packageId/revoke", r.participantHandler.Revoke)
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

func (r *Router) Run(addr string) error {
	r.logger.Info("Starting HTTP server", zap.String("address", addr))
	return r.engine.Run(addr)
}
