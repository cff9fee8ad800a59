package uow

import (
	"context"

	"nftpawn-backend/internal/domain/ledger"
	"nftpawn-backend/internal/domain/pawn"
)

// Repos bundles every repository bound to one transaction, ledger
// collaborators included, so a failed transfer rolls back the whole
// operation.
type Repos struct {
	Configs  pawn.ConfigRepository
	Loans    pawn.LoanRepository
	Escrows  pawn.EscrowRepository
	Tokens   ledger.TokenService
	Currency ledger.CurrencyService
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the loan row first, then pass it in
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *pawn.Loan) error) error
}
