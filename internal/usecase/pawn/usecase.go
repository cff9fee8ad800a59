package pawn

import (
	"context"
	"errors"
	"time"

	domain "nftpawn-backend/internal/domain/pawn"
	"nftpawn-backend/internal/domain/uow"
	"nftpawn-backend/pkg/derive"

	"gorm.io/gorm"
)

// Usecase is the loan state machine. Every operation runs entirely inside one
// unit-of-work transaction: the collateral/currency transfers and the record
// mutation commit together or not at all.
type Usecase struct {
	uow   uow.UnitOfWork
	nowFn func() time.Time
}

func NewUsecase(tx uow.UnitOfWork) *Usecase {
	return &Usecase{uow: tx, nowFn: func() time.Time { return time.Now().UTC() }}
}

// SetNowFunc overrides the time source, for deterministic timestamps in tests.
func (u *Usecase) SetNowFunc(now func() time.Time) {
	if now == nil {
		u.nowFn = func() time.Time { return time.Now().UTC() }
		return
	}
	u.nowFn = now
}

// Initialize creates the deployment's singleton config, owned by the calling
// admin. The fee rate is fixed at 30 bps and is not a caller input.
func (u *Usecase) Initialize(ctx context.Context, in InitializeInput) (*ConfigDTO, error) {
	var dto *ConfigDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		_, err := r.Configs.Get(ctx)
		switch {
		case err == nil:
			return domain.ErrAlreadyInitialized
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		c := &domain.Config{
			ConfigID:   derive.ConfigAddress(in.AdminID),
			Admin:      in.AdminID,
			LoanAmount: in.LoanAmount,
			FeeBps:     domain.DefaultFeeBps,
		}
		if err := r.Configs.Create(ctx, c); err != nil {
			return err
		}
		dto = &ConfigDTO{
			ConfigID:   c.ConfigID,
			Admin:      c.Admin,
			LoanAmount: c.LoanAmount,
			FeeBps:     c.FeeBps,
			CreatedAt:  c.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// DepositCollateral locks one unit of the collateral asset in escrow custody
// and creates the loan record for the (borrower, asset) pair. The loan's
// address is derived from the pair, so a second deposit collides with the
// first and is rejected.
func (u *Usecase) DepositCollateral(ctx context.Context, in DepositInput) (*LoanDTO, error) {
	var dto *LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		cfg, err := r.Configs.Get(ctx)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotInitialized
			}
			return err
		}

		loanID := derive.LoanAddress(in.BorrowerID, in.CollateralAsset)
		if _, err := r.Loans.GetByLoanID(ctx, loanID); err == nil {
			return domain.ErrLoanIsActive
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// Lock the collateral under the loan's escrow custody identity.
		escrowOwner := derive.EscrowAuthorityAddress(loanID)
		if err := r.Tokens.Transfer(ctx, in.CollateralAsset, in.BorrowerID, escrowOwner); err != nil {
			return err
		}

		l := &domain.Loan{
			LoanID:          loanID,
			Borrower:        in.BorrowerID,
			CollateralAsset: in.CollateralAsset,
			Amount:          cfg.LoanAmount,
			Active:          true,
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		dto = toLoanDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// FundLoan moves the principal from the lender into the loan's currency
// escrow and appends one history entry. It does not change the loan's active
// flag; the escrow authority is created on the first funding.
func (u *Usecase) FundLoan(ctx context.Context, in FundInput) (*LoanDetailDTO, error) {
	var dto *LoanDetailDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanIDForUpdate(ctx, in.LoanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrBorrowerNotFound
			}
			return err
		}
		if l.Borrower == "" {
			return domain.ErrBorrowerNotFound
		}
		if len(l.History) >= domain.HistoryCapacity {
			return domain.ErrHistoryFull
		}

		if err := r.Currency.Transfer(ctx, in.LenderID, derive.CurrencyEscrowAddress(l.LoanID), l.Amount); err != nil {
			return err
		}

		// First funding creates the custody capability bound to this loan.
		if _, err := r.Escrows.GetByLoanID(ctx, l.LoanID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			auth := &domain.EscrowAuthority{
				Owner:  derive.EscrowAuthorityAddress(l.LoanID),
				LoanID: l.LoanID,
			}
			if err := r.Escrows.Create(ctx, auth); err != nil {
				return err
			}
		}

		now := u.nowFn()
		d := &domain.LoanDetail{
			DetailID:  uint64(now.Unix()),
			Timestamp: now,
			Lender:    in.LenderID,
			Borrower:  l.Borrower,
			Amount:    l.Amount,
			Status:    domain.StatusActive,
		}
		if err := r.Loans.AppendDetail(ctx, l, d); err != nil {
			return err
		}
		detail := toDetailDTO(d)
		dto = &detail
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// RepayLoan settles principal plus fee into the currency escrow, releases the
// collateral back to the borrower under the escrow authority, closes the last
// history entry and deactivates the loan.
func (u *Usecase) RepayLoan(ctx context.Context, in RepayInput) (*RepayReceiptDTO, error) {
	var dto *RepayReceiptDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanIDForUpdate(ctx, in.LoanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrLoanIsNotActive
			}
			return err
		}
		if !l.Active {
			return domain.ErrLoanIsNotActive
		}
		// The transfer collaborator only debits the caller's own account;
		// this check closes the remaining gap where a third party could
		// settle someone else's loan.
		if in.BorrowerID != l.Borrower {
			return domain.ErrBorrowerNotFound
		}

		cfg, err := r.Configs.Get(ctx)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotInitialized
			}
			return err
		}
		fee, total, err := domain.RepayTotal(l.Amount, cfg.FeeBps)
		if err != nil {
			return err
		}

		if err := r.Currency.Transfer(ctx, in.BorrowerID, derive.CurrencyEscrowAddress(l.LoanID), total); err != nil {
			return err
		}

		auth, err := r.Escrows.GetByLoanID(ctx, l.LoanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrEscrowMismatch
			}
			return err
		}
		if err := auth.AuthorizeRelease(l); err != nil {
			return err
		}
		if err := r.Tokens.Transfer(ctx, l.CollateralAsset, auth.Owner, l.Borrower); err != nil {
			return err
		}

		if last := l.LastDetail(); last != nil {
			last.Status = domain.StatusClosed
			if err := r.Loans.SaveDetail(ctx, last); err != nil {
				return err
			}
		}
		l.Active = false
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		dto = &RepayReceiptDTO{LoanID: l.LoanID, Principal: l.Amount, Fee: fee, Total: total}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Get returns a loan with its full funding history.
func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	var dto *LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, loanID)
		if err != nil {
			return err
		}
		dto = toLoanDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}
