package router

import (
	"time"

	"github.com/rmoralez/pos-sub000/internal/config"
	"github.com/rmoralez/pos-sub000/internal/handler"
	"github.com/rmoralez/pos-sub000/internal/middleware"
	"github.com/rmoralez/pos-sub000/internal/repository"
	"github.com/rmoralez/pos-sub000/internal/service"
	"github.com/rmoralez/pos-sub000/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	stockRepo := repository.NewStockRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	purchaseRepo := repository.NewPurchaseOrderRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	methodRepo := repository.NewPaymentMethodRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	productSvc := service.NewProductService(productRepo)
	stockSvc := service.NewStockService(stockRepo)
	ledgerSvc := service.NewLedgerService(ledgerRepo)
	reconciler := service.NewPaymentReconciler(ledgerSvc, methodRepo)
	saleSvc := service.NewSaleService(saleRepo, productRepo, customerRepo, stockSvc, ledgerSvc, reconciler, dispatcher)
	quoteSvc := service.NewQuoteService(quoteRepo, productRepo, saleSvc)
	customerSvc := service.NewCustomerService(customerRepo, ledgerSvc)
	treasurySvc := service.NewTreasuryService(ledgerSvc, supplierRepo)
	pettyCashSvc := service.NewPettyCashService(ledgerSvc)
	purchaseSvc := service.NewPurchaseService(purchaseRepo, supplierRepo, productRepo, stockSvc)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, saleRepo, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(userRepo)
	productsH := handler.NewProductsHandler(productSvc)
	stockH := handler.NewStockHandler(stockSvc)
	salesH := handler.NewSalesHandler(saleSvc)
	quotesH := handler.NewQuotesHandler(quoteSvc)
	customersH := handler.NewCustomersHandler(customerSvc)
	treasuryH := handler.NewTreasuryHandler(treasurySvc, ledgerSvc, methodRepo)
	pettyCashH := handler.NewPettyCashHandler(pettyCashSvc)
	purchasesH := handler.NewPurchasesHandler(purchaseSvc)
	invoicesH := handler.NewInvoicesHandler(invoiceSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyRole := middleware.RequireRole("cashier", "supervisor", "admin")
	supervisorUp := middleware.RequireRole("supervisor", "admin")
	adminOnly := middleware.RequireRole("admin")

	v1 := r.Group("/v1", jwtMW)
	{
		// Sales — cashiers settle, supervisors cancel
		v1.POST("/sales", anyRole, salesH.CreateSale)
		v1.GET("/sales", anyRole, salesH.ListSales)
		v1.GET("/sales/:id", anyRole, salesH.GetSale)
		v1.DELETE("/sales/:id", supervisorUp, salesH.CancelSale)
		v1.GET("/sales/:id/invoice", anyRole, invoicesH.GetBySale)
		v1.POST("/sales/:id/invoice/retry", supervisorUp, invoicesH.Retry)

		// Quotes
		v1.POST("/quotes", anyRole, quotesH.CreateQuote)
		v1.GET("/quotes", anyRole, quotesH.ListQuotes)
		v1.GET("/quotes/:id", anyRole, quotesH.GetQuote)
		v1.PUT("/quotes/:id", anyRole, quotesH.UpdateQuote)
		v1.PATCH("/quotes/:id/status", anyRole, quotesH.UpdateStatus)
		v1.POST("/quotes/:id/convert", anyRole, quotesH.Convert)

		// Catalog — all roles read, admin writes
		v1.GET("/products", anyRole, productsH.ListProducts)
		v1.GET("/products/:id", anyRole, productsH.GetProduct)
		prods := v1.Group("/products", adminOnly)
		{
			prods.POST("", productsH.CreateProduct)
			prods.PUT("/:id", productsH.UpdateProduct)
			prods.DELETE("/:id", productsH.DeactivateProduct)
		}

		// Stock
		v1.GET("/stock/availability", anyRole, stockH.Availability)
		v1.GET("/stock/low", supervisorUp, stockH.LowStock)
		v1.GET("/stock/movements", supervisorUp, stockH.ListMovements)
		v1.POST("/stock/adjust", supervisorUp, stockH.Adjust)

		// Customers and their running accounts
		v1.GET("/customers", anyRole, customersH.ListCustomers)
		v1.GET("/customers/:id", anyRole, customersH.GetCustomer)
		v1.GET("/customers/:id/movements", anyRole, customersH.Statement)
		v1.POST("/customers", supervisorUp, customersH.CreateCustomer)
		v1.PUT("/customers/:id", supervisorUp, customersH.UpdateCustomer)
		v1.POST("/customers/:id/credits", anyRole, customersH.Credit)
		v1.POST("/customers/:id/charges", supervisorUp, customersH.Charge)

		// Treasury — supervisor and admin
		treasury := v1.Group("/treasury", supervisorUp)
		{
			treasury.POST("/accounts", treasuryH.CreateAccount)
			treasury.GET("/accounts", treasuryH.ListAccounts)
			treasury.GET("/accounts/:id/movements", treasuryH.Statement)
			treasury.POST("/transfers", treasuryH.Transfer)
			treasury.PUT("/method-mappings", treasuryH.UpsertMapping)
			treasury.GET("/method-mappings", treasuryH.ListMappings)
			treasury.POST("/supplier-payments", treasuryH.PaySupplier)
			treasury.DELETE("/supplier-payments/:id", treasuryH.VoidSupplierPayment)
		}

		// Petty cash
		pc := v1.Group("/petty-cash", supervisorUp)
		{
			pc.POST("", pettyCashH.CreateFund)
			pc.POST("/:id/deposits", pettyCashH.Deposit)
			pc.POST("/:id/expenses", pettyCashH.Expense)
		}

		// Purchasing — supervisor and admin
		v1.POST("/suppliers", supervisorUp, purchasesH.CreateSupplier)
		v1.GET("/suppliers", supervisorUp, purchasesH.ListSuppliers)
		v1.GET("/supplier-invoices", supervisorUp, purchasesH.ListSupplierInvoices)
		po := v1.Group("/purchase-orders", supervisorUp)
		{
			po.POST("", purchasesH.CreateOrder)
			po.GET("", purchasesH.ListOrders)
			po.GET("/:id", purchasesH.GetOrder)
			po.POST("/:id/send", purchasesH.SendOrder)
			po.POST("/:id/cancel", purchasesH.CancelOrder)
			po.POST("/:id/receive", purchasesH.ReceiveOrder)
		}

		// Users — admin only
		users := v1.Group("/users", adminOnly)
		{
			users.POST("", usersH.CreateUser)
			users.GET("", usersH.ListUsers)
			users.PUT("/:id", usersH.UpdateUser)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
