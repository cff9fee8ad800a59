package main

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	httpadp "nftpawn-backend/internal/adapter/http"
	idemp "nftpawn-backend/internal/adapter/middleware"
	"nftpawn-backend/internal/adapter/repository/mysql"
	"nftpawn-backend/internal/config"
	"nftpawn-backend/internal/domain/ledger"
	domain "nftpawn-backend/internal/domain/pawn"
	"nftpawn-backend/internal/infrastructure/cache"
	"nftpawn-backend/internal/infrastructure/db"
	"nftpawn-backend/internal/usecase/pawn"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.WithError(err).Fatal("mysql connect failed")
	}
	if err := gdb.AutoMigrate(
		&domain.Config{}, &domain.Loan{}, &domain.LoanDetail{}, &domain.EscrowAuthority{},
		&ledger.TokenHolding{}, &ledger.Account{},
	); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.WithError(err).Fatal("redis connect failed")
	}

	uc := pawn.NewUsecase(mysql.NewGormUoW(gdb))
	h := httpadp.NewHandler()
	ph := httpadp.NewPawnHandler(uc)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())

	// routes
	e.GET("/health", h.Health)

	v1 := e.Group("/v1", idemp.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second))
	v1.POST("/protocol", ph.Initialize)
	v1.POST("/loans", ph.DepositCollateral)
	v1.POST("/loans/:loan_id/fund", ph.FundLoan)
	v1.POST("/loans/:loan_id/repay", ph.RepayLoan)
	v1.GET("/loans/:loan_id", ph.GetLoan)

	addr := ":" + cfg.AppPort
	log.WithField("addr", addr).Info("listening")
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
