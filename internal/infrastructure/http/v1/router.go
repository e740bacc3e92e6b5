// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"smeerp/internal/core/numerator"
	"smeerp/internal/core/security"
	"smeerp/internal/domain/approval"
	"smeerp/internal/domain/catalogs/currency"
	"smeerp/internal/domain/documents/expense"
	"smeerp/internal/domain/documents/inventory"
	"smeerp/internal/domain/documents/purchase"
	"smeerp/internal/domain/documents/scrap"
	"smeerp/internal/domain/registers/stock"
	"smeerp/internal/domain/reports"
	"smeerp/internal/infrastructure/http/v1/handlers"
	"smeerp/internal/infrastructure/http/v1/middleware"
	"smeerp/internal/infrastructure/metrics"
	"smeerp/internal/infrastructure/storage/postgres"
	"smeerp/internal/infrastructure/storage/postgres/catalog_repo"
	"smeerp/internal/infrastructure/storage/postgres/document_repo"
	"smeerp/internal/infrastructure/storage/postgres/register_repo"
	"smeerp/internal/infrastructure/storage/postgres/report_repo"
	"smeerp/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Pool      *postgres.Pool
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Numerator names documents on validation.
	Numerator numerator.Generator

	Audit   *postgres.AuditService
	Metrics *metrics.Metrics

	// HomeCurrency decides when report amounts are zero.
	HomeCurrency   *currency.Currency
	ReportPageSize int

	// ReleaseMode switches gin to release mode.
	ReleaseMode bool
	Version     string
}

// services are shared by every route group; repositories take the
// querier from the request context.
type services struct {
	ledger    *reports.Service
	expense   *expense.Service
	purchase  *purchase.Service
	inventory *inventory.Service
	scrap     *scrap.Service
}

func newServices(cfg RouterConfig) services {
	products := catalog_repo.NewProductRepo()
	locations := catalog_repo.NewLocationRepo()
	stockService := stock.NewService(register_repo.NewStockRepo())
	flow := approval.NewFlow(document_repo.NewApproverRepo(), postgres.NewOutboxPublisher())

	return services{
		ledger: reports.NewService(report_repo.NewStockLedgerRepo(), products, cfg.HomeCurrency, cfg.ReportPageSize, cfg.TxManager),
		expense: expense.NewService(
			document_repo.NewExpenseSheetRepo(), flow, cfg.Audit, cfg.TxManager,
		),
		purchase: purchase.NewService(
			document_repo.NewPurchaseOrderRepo(), flow, cfg.Audit, cfg.TxManager,
		),
		inventory: inventory.NewService(
			document_repo.NewInventoryRepo(), stockService, products, locations, cfg.Numerator, cfg.Audit, cfg.TxManager,
		),
		scrap: scrap.NewService(
			document_repo.NewScrapRepo(), stockService, products, locations, cfg.Numerator, cfg.Audit, cfg.TxManager,
		),
	}
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware (order matters!). Recovery runs inside
	// ErrorHandler so a recovered panic is still rendered.
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		router.Use(middleware.Metrics(cfg.Metrics))
	}
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Recovery())

	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	svc := newServices(cfg)
	base := handlers.NewBaseHandler(cfg.Metrics)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Database(cfg.TxManager))
	v1.Use(middleware.Auth(cfg.JWTValidator))
	{
		registerReportRoutes(v1, base, svc)
		registerApprovalRoutes(v1, base, svc)
		registerStockRoutes(v1, base, svc)
		registerAuditRoutes(v1, base, cfg)
	}

	return router
}

func registerReportRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc services) {
	h := handlers.NewReportsHandler(base, svc.ledger)
	reportsGroup := rg.Group("/reports")
	reportsGroup.Use(middleware.RequireRole(security.RoleStockUser, security.RoleAdmin))
	reportsGroup.POST("/stock-ledger/lines", h.GetStockLedgerLines)
}

// registerApprovalRoutes mounts expense sheets and purchase orders. Who may
// approve is decided by the domain services; the groups only require a
// signed-in user.
func registerApprovalRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc services) {
	eh := handlers.NewExpenseHandler(base, svc.expense)
	sheets := rg.Group("/expense-sheets/:id")
	{
		sheets.GET("", eh.Get)
		sheets.POST("/submit", eh.Submit)
		sheets.POST("/approve", eh.Approve)
		sheets.POST("/refuse", eh.Refuse)
		sheets.POST("/approvers", eh.AddApprover)
	}

	ph := handlers.NewPurchaseHandler(base, svc.purchase)
	orders := rg.Group("/purchase-orders/:id")
	{
		orders.GET("", ph.Get)
		orders.POST("/confirm", ph.Confirm)
		orders.POST("/approve", ph.Approve)
		orders.POST("/refuse", ph.Refuse)
		orders.POST("/approvers", ph.AddApprover)
	}
}

func registerStockRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc services) {
	stockUser := middleware.RequireRole(security.RoleStockUser, security.RoleAdmin)

	ih := handlers.NewInventoryHandler(base, svc.inventory)
	inventories := rg.Group("/inventories/:id", stockUser)
	{
		inventories.GET("", ih.Get)
		inventories.POST("/date", ih.SetDate)
		inventories.POST("/start", ih.Start)
		inventories.POST("/validate", ih.Validate)
	}

	sh := handlers.NewScrapHandler(base, svc.scrap)
	scraps := rg.Group("/scraps/:id", stockUser)
	{
		scraps.GET("", sh.Get)
		scraps.POST("/date", sh.SetDate)
		scraps.POST("/do", sh.Do)
	}
}

func registerAuditRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.Audit == nil {
		return
	}
	h := handlers.NewAuditHandler(base, cfg.Audit)
	rg.GET("/audit/:entityType/:id", middleware.RequireRole(security.RoleAdmin), h.History)
}
