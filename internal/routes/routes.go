package routes

import (
	"net/http"

	"github.com/01moynul/mintverse-golang/internal/handlers"
	"github.com/01moynul/mintverse-golang/internal/metrics"
	"github.com/01moynul/mintverse-golang/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Options carries the cross-cutting pieces the router wires around the
// handlers.
type Options struct {
	Metrics     *metrics.Metrics
	AuthLimiter *middleware.RateLimiter
}

func SetupRouter(h *handlers.Handlers, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(h.Log))
	router.Use(opts.Metrics.Middleware())

	// --- APPLY THE CORS GUARD ---
	router.Use(middleware.CORSMiddleware(h.Config.CORSOrigin))

	router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	router.Static("/uploads", h.Config.UploadDir)

	requireAuth := middleware.AuthMiddleware(h.DB, h.Tokens)

	v1 := router.Group("/v1")
	{
		// --- Ping Route (Public) ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Auth Routes (Public, rate limited) ---
		authRoutes := v1.Group("/auth")
		authRoutes.Use(opts.AuthLimiter.Handler())
		{
			authRoutes.POST("/register", h.Register)
			authRoutes.POST("/login", h.Login)
			authRoutes.POST("/logout", h.Logout)
			authRoutes.POST("/verify-email", h.VerifyEmail)
			authRoutes.POST("/resend-verification", h.ResendVerification)
		}

		// --- Public Catalog ---
		v1.GET("/listings", h.GetListings)
		v1.GET("/listings/search", h.SearchListings)
		v1.GET("/listings/trending", h.GetTrending)
		v1.GET("/listings/:id", h.GetListing)
		v1.GET("/listings/:id/offer-range", h.GetOfferRange)
		v1.GET("/categories", h.GetAllCategories)
		v1.GET("/categories/:slug/listings", h.GetListingsByCategory)
		v1.GET("/minting-fee", h.GetMintingFee)
		v1.POST("/contact", h.SubmitContact)

		// --- Protected Routes (Login Required) ---
		auth := v1.Group("/")
		auth.Use(requireAuth)
		{
			auth.GET("/me", h.GetProfile)
			auth.PATCH("/me", h.UpdateProfile)
			auth.GET("/me/dashboard", h.GetDashboard)
			auth.GET("/me/collections", h.GetMyCollections)

			// --- Wallet ---
			auth.GET("/wallet", h.GetMyWallet)
			auth.POST("/wallet/deposits", h.CreateDeposit)
			auth.GET("/wallet/deposits", h.GetMyDeposits)
			auth.POST("/wallet/gas-deposits", h.CreateGasDeposit)
			auth.GET("/wallet/gas-deposits", h.GetMyGasDeposits)
			auth.POST("/wallet/withdrawals", h.CreateWithdrawal)
			auth.GET("/wallet/withdrawals", h.GetMyWithdrawals)

			// --- Marketplace ---
			auth.POST("/listings/:id/view", h.RecordView)
			auth.POST("/mint-requests", h.CreateMintRequest)
			auth.GET("/mint-requests", h.GetMyMintRequests)
			auth.POST("/purchases", h.CreatePurchase)
			auth.GET("/purchases", h.GetMyPurchases)
			auth.POST("/offers", h.CreateOffer)
			auth.GET("/offers", h.GetMyOffers)

			// --- Notification Routes ---
			auth.GET("/notifications", h.GetMyNotifications)
			auth.PATCH("/notifications/:id/read", h.MarkNotificationAsRead)
		}

		// --- Admin-Only Routes ---
		admin := v1.Group("/admin")
		admin.Use(requireAuth)
		admin.Use(middleware.AdminMiddleware())
		{
			admin.GET("/stats", h.GetAdminStats)

			admin.GET("/deposits", h.GetAllDeposits)
			admin.PATCH("/deposits/:id/approve", h.Decide(h.Approvals.ApproveDeposit))
			admin.PATCH("/deposits/:id/reject", h.Decide(h.Approvals.RejectDeposit))

			admin.GET("/gas-deposits", h.GetAllGasDeposits)
			admin.PATCH("/gas-deposits/:id/approve", h.Decide(h.Approvals.ApproveGasDeposit))
			admin.PATCH("/gas-deposits/:id/reject", h.Decide(h.Approvals.RejectGasDeposit))

			admin.GET("/withdrawals", h.GetAllWithdrawals)
			admin.PATCH("/withdrawals/:id/approve", h.Decide(h.Approvals.ApproveWithdrawal))
			admin.PATCH("/withdrawals/:id/reject", h.Decide(h.Approvals.RejectWithdrawal))

			admin.GET("/transactions", h.GetAllTransactions)
			admin.PATCH("/transactions/:id/approve", h.Decide(h.Approvals.ApproveTransaction))
			admin.PATCH("/transactions/:id/reject", h.Decide(h.Approvals.RejectTransaction))

			admin.GET("/mint-requests", h.GetAllMintRequests)
			admin.PATCH("/mint-requests/:id/approve", h.ApproveMint)
			admin.PATCH("/mint-requests/:id/reject", h.Decide(h.Approvals.RejectMint))

			admin.GET("/offers", h.GetAllOffers)
			admin.PATCH("/offers/:id/accept", h.Decide(h.Approvals.AcceptOffer))
			admin.PATCH("/offers/:id/decline", h.Decide(h.Approvals.DeclineOffer))

			admin.GET("/users", h.GetUsers)
			admin.POST("/users", h.CreateUser)
			admin.DELETE("/users/:id", h.DeleteUser)
			admin.GET("/users/:id/ledger", h.GetUserLedger)
			admin.PUT("/users/:id/ledger", h.AdjustUserLedger)

			admin.POST("/categories", h.CreateCategory)
			admin.PATCH("/listings/:id", h.UpdateListing)
			admin.DELETE("/listings/:id", h.DeleteListing)
			admin.POST("/listings/bulk-delete", h.BulkDeleteListings)

			admin.GET("/contact", h.GetContactMessages)
			admin.DELETE("/contact/:id", h.DeleteContactMessage)
			admin.POST("/contact/bulk-delete", h.BulkDeleteContactMessages)

			admin.POST("/ai/chat", h.ChatAI)
		}
	}

	return router
}
