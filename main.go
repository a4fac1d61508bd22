// Package main biblioinfo API.
//
// @title           BiblioInfo API
// @version         1.0
// @description     catalog, reviews and moderation backend for the shared book repository.
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
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/Luis24M/biblioinfo-back/app/echoServer"
	authctrl "github.com/Luis24M/biblioinfo-back/app/echoServer/controller/auth"
	comentarioctrl "github.com/Luis24M/biblioinfo-back/app/echoServer/controller/comentario"
	libroctrl "github.com/Luis24M/biblioinfo-back/app/echoServer/controller/libro"
	personactrl "github.com/Luis24M/biblioinfo-back/app/echoServer/controller/persona"
	reportectrl "github.com/Luis24M/biblioinfo-back/app/echoServer/controller/reporte"
	sugerenciactrl "github.com/Luis24M/biblioinfo-back/app/echoServer/controller/sugerencia"
	"github.com/Luis24M/biblioinfo-back/app/echoServer/validation"
	"github.com/Luis24M/biblioinfo-back/config"
	comentariorepo "github.com/Luis24M/biblioinfo-back/repository/comentario"
	librorepo "github.com/Luis24M/biblioinfo-back/repository/libro"
	personarepo "github.com/Luis24M/biblioinfo-back/repository/persona"
	reporterepo "github.com/Luis24M/biblioinfo-back/repository/reporte"
	sugerenciarepo "github.com/Luis24M/biblioinfo-back/repository/sugerencia"
	userrepo "github.com/Luis24M/biblioinfo-back/repository/user"
	authsvc "github.com/Luis24M/biblioinfo-back/service/auth"
	librosvc "github.com/Luis24M/biblioinfo-back/service/libro"
	moderacionsvc "github.com/Luis24M/biblioinfo-back/service/moderacion"
	personasvc "github.com/Luis24M/biblioinfo-back/service/persona"
	resenasvc "github.com/Luis24M/biblioinfo-back/service/resena"
	"github.com/Luis24M/biblioinfo-back/util/database"
)

func main() {

	_ = godotenv.Load()
	cfg := config.Load()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	// DB: lazy mongo handle, the server starts even when mongo is down
	db := database.New(cfg.MongoURI, cfg.MongoDB, log)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := db.Connect(ctx); err != nil {
			log.Warn("mongo not reachable at startup, will retry on demand", "err", err)
		}
		cancel()
	}
	defer db.Close(context.Background())

	// repos
	ur := userrepo.New(db)
	pr := personarepo.New(db)
	lr := librorepo.New(db)
	cr := comentariorepo.New(db)
	sr := sugerenciarepo.New(db)
	rr := reporterepo.New(db)

	{
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		for _, idx := range []interface {
			EnsureIndexes(ctx context.Context) error
		}{ur, pr, lr, cr, sr, rr} {
			if err := idx.EnsureIndexes(ctx); err != nil {
				log.Warn("index bootstrap failed", "err", err)
				break
			}
		}
		cancel()
	}

	// services
	as := authsvc.New(ur, cfg.JWTSecret, cfg.BcryptCost)
	ps := personasvc.New(pr, ur, lr, cfg.BcryptCost)
	ls := librosvc.New(lr, cr)
	res := resenasvc.New(cr, lr, log)
	ms := moderacionsvc.New(sr, lr, rr, cr, pr, log)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	personaC := &personactrl.Controller{Svc: ps, V: v, Log: log}
	libroC := &libroctrl.Controller{Svc: ls, Persona: ps, V: v, Log: log}
	comentarioC := &comentarioctrl.Controller{Svc: res, V: v, Log: log}
	sugerenciaC := &sugerenciactrl.Controller{Svc: ms, V: v, Log: log}
	reporteC := &reportectrl.Controller{Svc: ms, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:       authC,
		Persona:    personaC,
		Libro:      libroC,
		Comentario: comentarioC,
		Sugerencia: sugerenciaC,
		Reporte:    reporteC,

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
