package routes

import (
	"djbooks_back_end/internal/handlers"
	"djbooks_back_end/internal/handlers/admin"
	"djbooks_back_end/internal/handlers/payment"
	"djbooks_back_end/internal/handlers/product"
	"djbooks_back_end/internal/handlers/user"
	"djbooks_back_end/internal/middleware"
	"djbooks_back_end/internal/notify"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Revoker is what the auth middleware and the rate limits need from redis.
type Revoker interface {
	middleware.Revocations
	middleware.Limiter
}

type Deps struct {
	JWTSecret string
	Redis     Revoker
	Flashes   *notify.Flashes
	Checks    map[string]handlers.Check
	Logger    *zap.Logger

	Auth      *user.AuthHandler
	Cart      *user.CartHandler
	CartWS    *user.CartSocket
	Wishlist  *user.WishlistHandler
	Addresses *user.AddressHandler
	Purchases *user.PurchasesHandler
	Catalog   *product.CatalogHandler
	Requests  *product.BookRequestHandler
	Checkout  *payment.CheckoutHandler
	Payments  *payment.PaymentHandler
	Books     *admin.BookHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/healthz", handlers.Health(d.Checks))
	r.GET("/metrics", middleware.PrometheusHandler())

	// Gateway back URLs land here.
	r.GET("/payments/:outcome", d.Payments.Callback)

	api := r.Group("/api")
	api.Use(middleware.Present(middleware.Presentation{}))

	auth := api.Group("/auth")
	{
		auth.POST("/signup", middleware.RegisterRateLimit(d.Redis), d.Auth.Signup)
		auth.POST("/login", middleware.LoginRateLimit(d.Redis), d.Auth.Login)
	}

	api.GET("/books", middleware.Present(middleware.Presentation{Header: "transparent"}), d.Catalog.Home)
	api.GET("/books/:slug", d.Catalog.Book)
	api.GET("/search", middleware.SearchRateLimit(d.Redis), d.Catalog.Search)
	api.GET("/collection", d.Catalog.Collection)
	api.GET("/categories/:slug", d.Catalog.Category)
	api.POST("/book-requests", d.Requests.Submit)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(d.JWTSecret, d.Redis))
	{
		authed.POST("/auth/logout", d.Auth.Logout)
		authed.GET("/auth/me", d.Auth.Me)
		authed.GET("/messages", handlers.Messages(d.Flashes))

		cart := authed.Group("/cart")
		cart.GET("", d.Cart.Summary)
		cart.GET("/ws", d.CartWS.Serve)
		cart.POST("/add/:slug", middleware.CartRateLimit(d.Redis), d.Cart.Add)
		cart.POST("/remove/:slug", middleware.CartRateLimit(d.Redis), d.Cart.Remove)
		cart.POST("/remove-item/:slug", middleware.CartRateLimit(d.Redis), d.Cart.Decrement)

		authed.GET("/wishlist", d.Wishlist.List)
		authed.POST("/wishlist/:slug", d.Wishlist.Add)
		authed.DELETE("/wishlist/:slug", d.Wishlist.Remove)

		authed.GET("/checkout", d.Checkout.Render)
		authed.POST("/checkout", d.Checkout.Submit)
		authed.GET("/payment", d.Payments.Page)
		authed.GET("/purchases", d.Purchases.List)

		authed.GET("/addresses", d.Addresses.List)
		authed.POST("/addresses", d.Addresses.Create)
		authed.POST("/addresses/:id/default", d.Addresses.MakeDefault)
	}

	staff := authed.Group("/admin")
	staff.Use(middleware.RequireStaff)
	{
		staff.POST("/books", middleware.AuditStaffAction(d.Logger, "book.create"), d.Books.Create)
		staff.PUT("/books/:slug", middleware.AuditStaffAction(d.Logger, "book.update"), d.Books.Update)
		staff.GET("/books/:slug/images", d.Books.ListImages)
		staff.POST("/books/:slug/images", middleware.AuditStaffAction(d.Logger, "book.images"), d.Books.UploadImages)
	}
}
