// Seed creates a demo borrower, lender and collateral asset in the ledger so
// the API can be exercised locally end to end.
package main

import (
	"context"
	"flag"

	"github.com/sirupsen/logrus"

	"nftpawn-backend/internal/adapter/repository/mysql"
	"nftpawn-backend/internal/config"
	"nftpawn-backend/internal/domain/ledger"
	"nftpawn-backend/internal/infrastructure/db"
	"nftpawn-backend/pkg/id"
)

func main() {
	balance := flag.Uint64("balance", 10_000_000, "starting balance for the seeded accounts")
	flag.Parse()

	log := logrus.New()

	cfg := config.Load()
	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.WithError(err).Fatal("mysql connect failed")
	}
	if err := gdb.AutoMigrate(&ledger.TokenHolding{}, &ledger.Account{}); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	ctx := context.Background()
	currency := mysql.NewCurrencyLedger(gdb)
	tokens := mysql.NewTokenLedger(gdb)

	borrower := id.NewID32()
	lender := id.NewID32()
	asset := id.NewID32()

	if err := currency.Mint(ctx, borrower, *balance); err != nil {
		log.WithError(err).Fatal("mint borrower balance")
	}
	if err := currency.Mint(ctx, lender, *balance); err != nil {
		log.WithError(err).Fatal("mint lender balance")
	}
	if err := tokens.Mint(ctx, asset, borrower); err != nil {
		log.WithError(err).Fatal("mint collateral asset")
	}

	log.WithFields(logrus.Fields{
		"borrower": borrower,
		"lender":   lender,
		"asset":    asset,
		"balance":  *balance,
	}).Info("seeded demo parties")
}
