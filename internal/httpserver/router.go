package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"workorder-service/internal/handler"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth          *handler.AuthHandler
	WorkOrders    *handler.WorkOrderHandler
	Projects      *handler.ProjectHandler
	Notifications *handler.NotificationHandler
	Admin         *handler.AdminHandler
}

// ReadyChecker reports whether downstream dependencies are reachable.
type ReadyChecker func() error

// NewRouter wires the full HTTP surface: health and metrics unauthenticated,
// auth endpoints public, everything else behind the JWT middleware.
func NewRouter(h Handlers, jwtSecret string, ready ReadyChecker, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		if err := ready(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/auth/register", h.Auth.Register)
	r.POST("/auth/login", h.Auth.Login)

	api := r.Group("/")
	api.Use(Auth(jwtSecret))
	{
		api.GET("/me", h.Auth.Me)

		api.GET("/workorders", h.WorkOrders.List)
		api.GET("/workorders/:id", h.WorkOrders.Get)
		api.POST("/workorders/:id/start", h.WorkOrders.Start)
		api.POST("/workorders/:id/cancel", h.WorkOrders.Cancel)
		api.POST("/workorders/:id/escrow/fund", h.WorkOrders.FundEscrow)
		api.POST("/workorders/:id/deliveries", h.WorkOrders.SubmitDelivery)
		api.POST("/workorders/:id/milestones", h.WorkOrders.AddMilestone)
		api.PUT("/workorders/:id/milestones/order", h.WorkOrders.ReorderMilestones)
		api.PUT("/workorders/:id/milestones/:mid", h.WorkOrders.UpdateMilestone)
		api.DELETE("/workorders/:id/milestones/:mid", h.WorkOrders.RemoveMilestone)
		api.POST("/workorders/:id/dispute", h.WorkOrders.OpenDispute)
		api.POST("/workorders/:id/dispute/resolve", h.WorkOrders.ResolveDispute)

		api.POST("/deliveries/:id/approve", h.WorkOrders.ApproveDelivery)
		api.POST("/deliveries/:id/revision", h.WorkOrders.RequestRevision)

		api.POST("/projects", h.Projects.Create)
		api.POST("/projects/:id/accept", h.Projects.AcceptDirectRequest)
		api.POST("/projects/:id/decline", h.Projects.DeclineDirectRequest)
		api.POST("/projects/:id/applications", h.Projects.Apply)
		api.POST("/applications/:id/accept", h.Projects.AcceptApplication)

		api.GET("/notifications", h.Notifications.List)
		api.POST("/notifications/:id/read", h.Notifications.MarkRead)

		api.POST("/admin/outbox/:id/replay", h.Admin.ReplayOutboxEvent)
	}

	return r
}
