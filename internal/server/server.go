package server

import (
	"angohost-storefront/internal/cart"
	"angohost-storefront/internal/handler"
	custommiddleware "angohost-storefront/internal/middleware"
	"angohost-storefront/internal/repository"
	"angohost-storefront/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo            *echo.Echo
	jwtSecret       string
	cartHandler     *handler.CartHandler
	profileHandler  *handler.ProfileHandler
	checkoutHandler *handler.CheckoutHandler
	paymentHandler  *handler.PaymentHandler
}

func NewServer(
	jwtSecret string,
	carts *cart.Store,
	checkoutService service.CheckoutService,
	bootstrapper *service.SessionBootstrapper,
	confirmations *service.ConfirmationService,
	profileRepo repository.ContactProfileRepository,
) *Server {
	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:            e,
		jwtSecret:       jwtSecret,
		cartHandler:     handler.NewCartHandler(carts),
		profileHandler:  handler.NewProfileHandler(carts, profileRepo),
		checkoutHandler: handler.NewCheckoutHandler(checkoutService),
		paymentHandler:  handler.NewPaymentHandler(carts, checkoutService, bootstrapper, confirmations),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	auth := custommiddleware.AuthMiddleware(s.jwtSecret)

	// -------- cart --------
	cartGroup := api.Group("/cart", auth)
	cartGroup.GET("", s.cartHandler.GetCart)
	cartGroup.DELETE("", s.cartHandler.ClearCart)
	cartGroup.POST("/items", s.cartHandler.AddItem)
	cartGroup.PUT("/items/:itemID", s.cartHandler.UpdateItem)
	cartGroup.DELETE("/items/:itemID", s.cartHandler.RemoveItem)
	cartGroup.PUT("/customer", s.cartHandler.SetCustomer)
	cartGroup.GET("/payment", s.cartHandler.GetPayment)

	// -------- contact profiles --------
	profiles := api.Group("/profiles", auth)
	profiles.GET("", s.profileHandler.ListProfiles)
	profiles.POST("", s.profileHandler.SaveProfile)
	profiles.DELETE("/:profileID", s.profileHandler.DeleteProfile)
	profiles.POST("/select", s.profileHandler.SelectProfile)
	profiles.GET("/selected", s.profileHandler.SelectedProfile)

	// -------- checkout --------
	api.POST("/checkout", s.checkoutHandler.Checkout, auth)

	// -------- payments --------
	payments := api.Group("/payments")
	payments.POST("/session", s.paymentHandler.RetrySession, auth)
	payments.GET("/status", s.paymentHandler.Status, auth)
	payments.GET("/frame", s.paymentHandler.Frame, auth)
	payments.POST("/confirm-manual", s.paymentHandler.ConfirmManually, auth)
	payments.POST("/cancel", s.paymentHandler.Cancel, auth)

	// gateway callback channel, reached from outside our session
	payments.POST("/callback", s.paymentHandler.Callback)

	s.echo.GET("/payment/success", s.paymentHandler.Success)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
