package echoServer

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"rentique/app/echoServer/controller/auth"
	"rentique/app/echoServer/controller/newsletter"
	"rentique/app/echoServer/controller/payment"
	"rentique/app/echoServer/controller/product"
	"rentique/app/echoServer/controller/rental"
	"rentique/app/echoServer/controller/user"
	"rentique/app/echoServer/jwtx"
)

type C struct {
	Auth       *auth.Controller
	User       *user.Controller
	Product    *product.Controller
	Rental     *rental.Controller
	Payment    *payment.Controller
	Newsletter *newsletter.Controller

	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)

	pub.GET("/products", c.Product.List)
	pub.GET("/products/:id", c.Product.Detail)

	pub.POST("/newsletter/subscribe", c.Newsletter.Subscribe)
	pub.POST("/newsletter/unsubscribe", c.Newsletter.Unsubscribe)
	pub.GET("/newsletter/status", c.Newsletter.Status)

	// Stripe calls this, it carries its own signature instead of a JWT.
	pub.POST("/payments/stripe/webhook", c.Payment.StripeWebhook)

	// Auth
	priv := e.Group("/v1")
	priv.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),

		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	// user_id + role extraction from the verified token
	priv.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			tokenObj, ok := ctx.Get("user").(*jwt.Token)
			if !ok || tokenObj == nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			claims, ok := tokenObj.Claims.(jwt.MapClaims)
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			sub, ok := claims["sub"].(float64)
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			role, _ := claims["role"].(string)

			ctx.Set(jwtx.CtxUserID, int64(sub))
			ctx.Set(jwtx.CtxRole, role)
			return next(ctx)
		}
	})

	// Profile
	priv.GET("/users/profile", c.User.Profile)
	priv.PUT("/users/profile", c.User.UpdateProfile)

	// User administration
	priv.GET("/users", c.User.List)
	priv.GET("/users/:id", c.User.Get)
	priv.PUT("/users/:id", c.User.Update)
	priv.DELETE("/users/:id", c.User.Delete)
	priv.PUT("/users/:id/role", c.User.UpdateRole)

	// Catalog administration + ratings
	priv.POST("/products", c.Product.Create)
	priv.PUT("/products/:id", c.Product.Update)
	priv.DELETE("/products/:id", c.Product.Delete)
	priv.POST("/products/:id/ratings", c.Product.AddRating)
	priv.POST("/products/:id/force-return", c.Rental.ForceReturn)

	// Rentals
	priv.POST("/rentals", c.Rental.Create)
	priv.GET("/rentals", c.Rental.ListAll)
	priv.GET("/rentals/my-rentals", c.Rental.MyRentals)
	priv.GET("/rentals/:id", c.Rental.Get)
	priv.POST("/rentals/:id/confirm-payment", c.Rental.ConfirmPayment)
	priv.PUT("/rentals/:id/status", c.Rental.UpdateStatus)
	priv.POST("/rentals/:id/return", c.Rental.Return)
	priv.POST("/rentals/:id/damage-report", c.Rental.ReportDamage)
}
