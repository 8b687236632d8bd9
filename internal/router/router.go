package router

import (
	"net/http"

	"whatsledger/config"
	"whatsledger/internal/conversation"
	"whatsledger/internal/dedup"
	"whatsledger/internal/domain"
	"whatsledger/internal/handler"
	"whatsledger/internal/ledger"
	"whatsledger/internal/middleware"
	"whatsledger/internal/reply"
	"whatsledger/internal/repository"
	"whatsledger/internal/service"
	"whatsledger/internal/ws"
	"whatsledger/pkg/cloudinary"
	"whatsledger/pkg/whatsapp"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps are the runtime pieces chosen in main.
type Deps struct {
	Sender whatsapp.Sender
	Seen   dedup.Store
	Hub    *ws.Hub
	Cloud  cloudinary.Uploader // nil disables receipt uploads
}

// NewDispatcher wires the ledger and the conversation service behind the active sender.
func NewDispatcher(cfg *config.Config, db *gorm.DB, deps Deps) *handler.Dispatcher {
	ledgerSvc := ledger.NewService(
		repository.NewCustomerRepository(db),
		repository.NewPaymentRepository(db),
		reply.NewRenderer(cfg.Currency.Locale, cfg.Currency.Symbol),
	)
	if deps.Hub != nil {
		ledgerSvc.SetNotifier(ws.NewPaymentNotifier(deps.Hub))
	}
	conv := conversation.NewService(ledgerSvc, deps.Seen, repository.NewMessageLogRepository(db))
	return handler.NewDispatcher(conv, deps.Sender)
}

func Setup(cfg *config.Config, db *gorm.DB, dispatch *handler.Dispatcher, deps Deps) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)))

	// Repositories
	customerRepo := repository.NewCustomerRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	businessRepo := repository.NewBusinessRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	codeRepo := repository.NewAccessCodeRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	messageRepo := repository.NewMessageLogRepository(db)

	var notifier ledger.Notifier
	if deps.Hub != nil {
		notifier = ws.NewPaymentNotifier(deps.Hub)
	}

	// Services
	authSvc := service.NewAuthService(cfg, businessRepo, adminRepo, codeRepo)
	bookSvc := service.NewBookService(customerRepo, paymentRepo, notifier)
	codeSvc := service.NewAccessCodeService(codeRepo)
	adminSvc := service.NewAdminService(businessRepo, messageRepo, adminRepo)
	settingsSvc := service.NewSettingsService(cfg.WhatsApp, settingRepo, deps.Sender)

	// Handlers
	webhookHandler := handler.NewWebhookHandler(dispatch)
	twilioHandler := handler.NewTwilioHandler(dispatch)
	dialogHandler := handler.NewDialog360Handler(dispatch)
	metaHandler := handler.NewMetaHandler(&cfg.WhatsApp.Meta, dispatch)
	botbizHandler := handler.NewBotbizHandler(&cfg.WhatsApp.Botbiz, dispatch)
	authHandler := handler.NewAuthHandler(authSvc, auditRepo)
	bookHandler := handler.NewBookHandler(bookSvc, deps.Cloud, cfg.Cloudinary.Folder, auditRepo)
	settingsHandler := handler.NewSettingsHandler(settingsSvc, auditRepo)
	adminHandler := handler.NewAdminHandler(adminSvc, codeSvc, messageRepo, auditRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)
	businessMw := middleware.RequireRole(domain.RoleBusiness, domain.RoleAdmin)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "provider": deps.Sender.Name()})
	})
	r.POST("/webhook", webhookHandler.Receive)

	api := r.Group("/api")
	{
		api.POST("/webhook", webhookHandler.Receive)

		wa := api.Group("/whatsapp")
		{
			wa.POST("/twilio", twilioHandler.Receive)
			wa.POST("/360dialog", dialogHandler.Receive)
			wa.GET("/meta", metaHandler.Verify)
			wa.POST("/meta", metaHandler.Receive)
			wa.GET("/botbiz", botbizHandler.Verify)
			wa.POST("/botbiz", botbizHandler.Receive)
		}

		biz := api.Group("/business")
		{
			biz.POST("/register", authHandler.Register)
			biz.POST("/register-with-code", authHandler.RegisterWithCode)
			biz.POST("/login", authHandler.Login)
			biz.GET("/dashboard", authMw, businessMw, bookHandler.Dashboard)
		}

		customers := api.Group("/customers")
		customers.Use(authMw, businessMw)
		{
			customers.GET("", bookHandler.ListCustomers)
			customers.POST("", bookHandler.CreateCustomer)
			customers.GET("/:id", bookHandler.GetCustomer)
			customers.PUT("/:id", bookHandler.UpdateCustomer)
			customers.GET("/:id/history", bookHandler.CustomerHistory)
		}

		payments := api.Group("/payments")
		payments.Use(authMw, businessMw)
		{
			payments.GET("", bookHandler.ListPayments)
			payments.POST("", bookHandler.CreatePayment)
			payments.GET("/summary", bookHandler.PaymentSummary)
			payments.DELETE("/:id", bookHandler.DeletePayment)
			payments.POST("/:id/receipt", bookHandler.UploadReceipt)
		}

		settings := api.Group("/settings")
		settings.Use(authMw, businessMw)
		{
			settings.GET("/whatsapp", settingsHandler.GetWhatsApp)
			settings.POST("/whatsapp", settingsHandler.SaveWhatsApp)
			settings.POST("/whatsapp/test", settingsHandler.TestWhatsApp)
		}

		api.POST("/admin/login", authHandler.AdminLogin)
		admin := api.Group("/admin")
		admin.Use(authMw, middleware.AdminRequired())
		{
			admin.GET("/stats", adminHandler.Dashboard)
			admin.GET("/businesses", adminHandler.ListBusinesses)
			admin.GET("/businesses/:id", adminHandler.GetBusiness)
			admin.PATCH("/businesses/:id/status", adminHandler.SetBusinessStatus)
			admin.GET("/access-codes", adminHandler.ListAccessCodes)
			admin.POST("/access-codes", adminHandler.CreateAccessCode)
			admin.PATCH("/access-codes/:id/extend", adminHandler.ExtendAccessCode)
			admin.DELETE("/access-codes/:id", adminHandler.RevokeAccessCode)
			admin.GET("/messages", adminHandler.ListMessages)
		}
	}

	if deps.Hub != nil {
		r.GET("/ws", ws.ServeDashboard(&cfg.JWT, deps.Hub))
	}
	return r
}
