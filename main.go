// Package main Rentique API.
//
// @title           Rentique API
// @version         1.0
// @description     Clothing rental service (catalog, rentals, payments, newsletter).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	echoSwagger "github.com/swaggo/echo-swagger"

	"rentique/app/echoServer"
	authctrl "rentique/app/echoServer/controller/auth"
	newsctrl "rentique/app/echoServer/controller/newsletter"
	paymentctrl "rentique/app/echoServer/controller/payment"
	productctrl "rentique/app/echoServer/controller/product"
	rentalctrl "rentique/app/echoServer/controller/rental"
	userctrl "rentique/app/echoServer/controller/user"
	"rentique/app/echoServer/validation"
	"rentique/config"
	"rentique/repository/mailer"
	productrepo "rentique/repository/product"
	rentalrepo "rentique/repository/rental"
	striperepo "rentique/repository/stripe"
	subscriberrepo "rentique/repository/subscriber"
	userrepo "rentique/repository/user"
	authsvc "rentique/service/auth"
	newslettersvc "rentique/service/newsletter"
	paymentsvc "rentique/service/payment"
	productsvc "rentique/service/product"
	rentalsvc "rentique/service/rental"
	usersvc "rentique/service/user"
	"rentique/util/database"
	"rentique/util/redisx"
)

const cleanupInterval = 5 * time.Minute

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// redis is optional; without it webhook dedup falls back to the
	// status guard in the rental repo.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redisx.New(cfg.RedisAddr)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, dedup disabled", "err", err)
			rdb = nil
		}
	}

	// repos
	ur := userrepo.New(db)
	pr := productrepo.New(db)
	rr := rentalrepo.New(db)
	sr := subscriberrepo.New(db)
	xr := striperepo.NewHTTP(cfg.StripeSecretKey)
	ml := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, log)

	// services
	as := authsvc.New(ur, cfg.JWTSecret)
	us := usersvc.New(ur)
	ns := newslettersvc.New(sr, ml, cfg.FrontendURL, log)
	ps := productsvc.New(pr, ns)
	rs := rentalsvc.New(rr, xr)
	whs := paymentsvc.New(rr, paymentsvc.NewRedisDedup(rdb))

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	userC := &userctrl.Controller{Svc: us, V: v, Log: log}
	productC := &productctrl.Controller{Svc: ps, V: v, Log: log}
	rentalC := &rentalctrl.Controller{Svc: rs, V: v, Log: log}
	paymentC := &paymentctrl.Controller{Svc: whs, Log: log}
	newsC := &newsctrl.Controller{Svc: ns, V: v, Log: log}

	// reclaim products held by card rentals that never paid
	cleaner := rentalsvc.NewCleaner(rr, xr)
	go func() {
		t := time.NewTicker(cleanupInterval)
		defer t.Stop()
		for range t.C {
			n, err := cleaner.ReleaseExpired(ctx)
			if err != nil {
				log.Error("expired hold cleanup failed", "err", err)
				continue
			}
			if n > 0 {
				log.Info("released expired payment holds", "count", n)
			}
		}
	}()

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:       authC,
		User:       userC,
		Product:    productC,
		Rental:     rentalC,
		Payment:    paymentC,
		Newsletter: newsC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	if port == "" {
		port = "8080"
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
