package pawn

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	ledgerDomain "nftpawn-backend/internal/domain/ledger"
	domain "nftpawn-backend/internal/domain/pawn"
	"nftpawn-backend/internal/domain/uow"
	"nftpawn-backend/internal/testutil/ledgermock"
	"nftpawn-backend/internal/testutil/pawnmock"
	"nftpawn-backend/internal/testutil/uowmock"
	"nftpawn-backend/pkg/derive"

	"gorm.io/gorm"
)

const (
	adminID  = "11111111111111111111111111111111"
	borrower = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	lender   = "cccccccccccccccccccccccccccccccc"
	asset    = "dddddddddddddddddddddddddddddddd"
)

// env is an in-memory backing store shared by all the mocks, so a test can
// drive the full deposit → fund → repay sequence without a database.
type env struct {
	cfg      *domain.Config
	loans    map[string]*domain.Loan
	escrows  map[string]*domain.EscrowAuthority
	balances map[string]uint64
	holdings map[string]string // asset -> owner
}

func newEnv() *env {
	return &env{
		loans:    map[string]*domain.Loan{},
		escrows:  map[string]*domain.EscrowAuthority{},
		balances: map[string]uint64{},
		holdings: map[string]string{},
	}
}

func (e *env) repos() uow.Repos {
	return uow.Repos{
		Configs: &pawnmock.ConfigRepo{
			GetFn: func(ctx context.Context) (*domain.Config, error) {
				if e.cfg == nil {
					return nil, gorm.ErrRecordNotFound
				}
				return e.cfg, nil
			},
			CreateFn: func(ctx context.Context, c *domain.Config) error {
				e.cfg = c
				return nil
			},
		},
		Loans: &pawnmock.LoanRepo{
			GetByLoanIDFn: func(ctx context.Context, loanID string) (*domain.Loan, error) {
				if l, ok := e.loans[loanID]; ok {
					return l, nil
				}
				return nil, gorm.ErrRecordNotFound
			},
			GetByLoanIDForUpdateFn: func(ctx context.Context, loanID string) (*domain.Loan, error) {
				if l, ok := e.loans[loanID]; ok {
					return l, nil
				}
				return nil, gorm.ErrRecordNotFound
			},
			CreateFn: func(ctx context.Context, l *domain.Loan) error {
				e.loans[l.LoanID] = l
				return nil
			},
			// Save, AppendDetail and SaveDetail mutate the shared pointers,
			// the mock defaults are enough.
		},
		Escrows: &pawnmock.EscrowRepo{
			GetByLoanIDFn: func(ctx context.Context, loanID string) (*domain.EscrowAuthority, error) {
				if a, ok := e.escrows[loanID]; ok {
					return a, nil
				}
				return nil, gorm.ErrRecordNotFound
			},
			CreateFn: func(ctx context.Context, a *domain.EscrowAuthority) error {
				e.escrows[a.LoanID] = a
				return nil
			},
		},
		Tokens: &ledgermock.TokenService{
			TransferFn: func(ctx context.Context, asset, from, to string) error {
				owner, ok := e.holdings[asset]
				if !ok {
					return ledgerDomain.ErrAssetNotFound
				}
				if owner != from {
					return ledgerDomain.ErrNotAssetOwner
				}
				e.holdings[asset] = to
				return nil
			},
		},
		Currency: &ledgermock.CurrencyService{
			TransferFn: func(ctx context.Context, from, to string, amount uint64) error {
				if e.balances[from] < amount {
					return ledgerDomain.ErrInsufficientFunds
				}
				e.balances[from] -= amount
				e.balances[to] += amount
				return nil
			},
		},
	}
}

func newTestUsecase(e *env) *Usecase {
	return NewUsecase(uowmock.Passthrough(e.repos()))
}

func initialized(t *testing.T, e *env, loanAmount uint64) *Usecase {
	t.Helper()
	uc := newTestUsecase(e)
	if _, err := uc.Initialize(context.Background(), InitializeInput{AdminID: adminID, LoanAmount: loanAmount}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return uc
}

func TestInitialize_CreatesSingletonWithFixedFee(t *testing.T) {
	e := newEnv()
	uc := newTestUsecase(e)

	dto, err := uc.Initialize(context.Background(), InitializeInput{AdminID: adminID, LoanAmount: 1000})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if dto.FeeBps != 30 {
		t.Fatalf("FeeBps = %d, want 30", dto.FeeBps)
	}
	if dto.LoanAmount != 1000 || dto.Admin != adminID {
		t.Fatalf("unexpected config: %+v", dto)
	}
	if dto.ConfigID != derive.ConfigAddress(adminID) {
		t.Fatalf("ConfigID not derived from admin: %q", dto.ConfigID)
	}

	// second initialization collides with the singleton
	_, err = uc.Initialize(context.Background(), InitializeInput{AdminID: adminID, LoanAmount: 2000})
	if !errors.Is(err, domain.ErrAlreadyInitialized) {
		t.Fatalf("second Initialize = %v, want ErrAlreadyInitialized", err)
	}
}

func TestDeposit_LocksCollateralAndCreatesLoan(t *testing.T) {
	e := newEnv()
	e.holdings[asset] = borrower
	uc := initialized(t, e, 1000)

	dto, err := uc.DepositCollateral(context.Background(), DepositInput{BorrowerID: borrower, CollateralAsset: asset})
	if err != nil {
		t.Fatalf("DepositCollateral: %v", err)
	}
	if !dto.Active || dto.Amount != 1000 || len(dto.History) != 0 {
		t.Fatalf("unexpected loan: %+v", dto)
	}
	if dto.LoanID != derive.LoanAddress(borrower, asset) {
		t.Fatalf("LoanID not derived from (borrower, asset): %q", dto.LoanID)
	}
	if got := e.holdings[asset]; got != derive.EscrowAuthorityAddress(dto.LoanID) {
		t.Fatalf("collateral owner = %q, want escrow custody", got)
	}
}

func TestDeposit_WithoutInitialize(t *testing.T) {
	e := newEnv()
	e.holdings[asset] = borrower
	uc := newTestUsecase(e)

	_, err := uc.DepositCollateral(context.Background(), DepositInput{BorrowerID: borrower, CollateralAsset: asset})
	if !errors.Is(err, domain.ErrNotInitialized) {
		t.Fatalf("deposit without config = %v, want ErrNotInitialized", err)
	}
}

func TestDeposit_TwiceFailsLoanIsActive(t *testing.T) {
	e := newEnv()
	e.holdings[asset] = borrower
	uc := initialized(t, e, 1000)

	if _, err := uc.DepositCollateral(context.Background(), DepositInput{BorrowerID: borrower, CollateralAsset: asset}); err != nil {
		t.Fatalf("first deposit: %v", err)
	}
	_, err := uc.DepositCollateral(context.Background(), DepositInput{BorrowerID: borrower, CollateralAsset: asset})
	if !errors.Is(err, domain.ErrLoanIsActive) {
		t.Fatalf("second deposit = %v, want ErrLoanIsActive", err)
	}
}

func TestDeposit_TransferFailureCreatesNothing(t *testing.T) {
	e := newEnv() // no holdings seeded: borrower does not own the asset
	uc := initialized(t, e, 1000)

	_, err := uc.DepositCollateral(context.Background(), DepositInput{BorrowerID: borrower, CollateralAsset: asset})
	if !errors.Is(err, ledgerDomain.ErrAssetNotFound) {
		t.Fatalf("deposit = %v, want ErrAssetNotFound", err)
	}
	if len(e.loans) != 0 {
		t.Fatalf("loan persisted despite failed transfer")
	}
}

func TestFund_BeforeDepositFailsBorrowerNotFound(t *testing.T) {
	e := newEnv()
	uc := initialized(t, e, 1000)

	_, err := uc.FundLoan(context.Background(), FundInput{LoanID: derive.LoanAddress(borrower, asset), LenderID: lender})
	if !errors.Is(err, domain.ErrBorrowerNotFound) {
		t.Fatalf("fund before deposit = %v, want ErrBorrowerNotFound", err)
	}
}

func TestFund_MovesPrincipalAndAppendsHistory(t *testing.T) {
	e := newEnv()
	e.holdings[asset] = borrower
	e.balances[lender] = 5000
	uc := initialized(t, e, 1000)

	dto, err := uc.DepositCollateral(context.Background(), DepositInput{BorrowerID: borrower, CollateralAsset: asset})
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}

	fundedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	uc.SetNowFunc(func() time.Time { return fundedAt })

	detail, err := uc.FundLoan(context.Background(), FundInput{LoanID: dto.LoanID, LenderID: lender})
	if err != nil {
		t.Fatalf("FundLoan: %v", err)
	}
	if detail.Lender != lender || detail.Borrower != borrower || detail.Amount != 1000 {
		t.Fatalf("unexpected detail: %+v", detail)
	}
	if detail.Status != string(domain.StatusActive) {
		t.Fatalf("detail status = %s, want ACTIVE", detail.Status)
	}
	if detail.DetailID != uint64(fundedAt.Unix()) {
		t.Fatalf("DetailID = %d, want funding timestamp %d", detail.DetailID, fundedAt.Unix())
	}

	if got := e.balances[lender]; got != 4000 {
		t.Fatalf("lender balance = %d, want 4000", got)
	}
	if got := e.balances[derive.CurrencyEscrowAddress(dto.LoanID)]; got != 1000 {
		t.Fatalf("escrow balance = %d, want 1000", got)
	}

	l := e.loans[dto.LoanID]
	if !l.Active {
		t.Fatal("funding must not change the active flag")
	}
	if len(l.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(l.History))
	}
	auth, ok := e.escrows[dto.LoanID]
	if !ok {
		t.Fatal("escrow authority not created on first funding")
	}
	if auth.Owner != derive.EscrowAuthorityAddress(dto.LoanID) {
		t.Fatalf("authority owner = %q", auth.Owner)
	}
}

func TestFund_InsufficientLenderFunds(t *testing.T) {
	e := newEnv()
	e.holdings[asset] = borrower
	uc := initialized(t, e, 1000)

	dto, err := uc.DepositCollateral(context.Background(), DepositInput{BorrowerID: borrower, CollateralAsset: asset})
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}

	_, err = uc.FundLoan(context.Background(), FundInput{LoanID: dto.LoanID, LenderID: lender})
	if !errors.Is(err, ledgerDomain.ErrInsufficientFunds) {
		t.Fatalf("fund = %v, want ErrInsufficientFunds", err)
	}
	if len(e.loans[dto.LoanID].History) != 0 {
		t.Fatal("history appended despite failed transfer")
	}
}

func TestFund_HistoryBound(t *testing.T) {
	e := newEnv()
	e.holdings[asset] = borrower
	e.balances[lender] = math.MaxUint64 / 2
	uc := initialized(t, e, 1000)

	dto, err := uc.DepositCollateral(context.Background(), DepositInput{BorrowerID: borrower, CollateralAsset: asset})
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}

	for i := 0; i < domain.HistoryCapacity; i++ {
		if _, err := uc.FundLoan(context.Background(), FundInput{LoanID: dto.LoanID, LenderID: lender}); err != nil {
			t.Fatalf("fund %d: %v", i+1, err)
		}
	}

	escrowBefore := e.balances[derive.CurrencyEscrowAddress(dto.LoanID)]
	_, err = uc.FundLoan(context.Background(), FundInput{LoanID: dto.LoanID, LenderID: lender})
	if !errors.Is(err, domain.ErrHistoryFull) {
		t.Fatalf("11th fund = %v, want ErrHistoryFull", err)
	}
	if got := e.balances[derive.CurrencyEscrowAddress(dto.LoanID)]; got != escrowBefore {
		t.Fatal("rejected funding still moved money")
	}
}

func TestRepay_EndToEnd(t *testing.T) {
	e := newEnv()
	e.holdings[asset] = borrower
	e.balances[lender] = 5000
	e.balances[borrower] = 2000
	uc := initialized(t, e, 1000)
	ctx := context.Background()

	dto, err := uc.DepositCollateral(ctx, DepositInput{BorrowerID: borrower, CollateralAsset: asset})
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if _, err := uc.FundLoan(ctx, FundInput{LoanID: dto.LoanID, LenderID: lender}); err != nil {
		t.Fatalf("fund: %v", err)
	}

	receipt, err := uc.RepayLoan(ctx, RepayInput{LoanID: dto.LoanID, BorrowerID: borrower})
	if err != nil {
		t.Fatalf("RepayLoan: %v", err)
	}
	if receipt.Fee != 3 || receipt.Total != 1003 || receipt.Principal != 1000 {
		t.Fatalf("receipt = %+v, want fee=3 total=1003", receipt)
	}

	// borrower paid 1003 and got the collateral back
	if got := e.balances[borrower]; got != 2000-1003 {
		t.Fatalf("borrower balance = %d, want %d", got, 2000-1003)
	}
	if got := e.holdings[asset]; got != borrower {
		t.Fatalf("collateral owner = %q, want borrower", got)
	}
	// escrow holds the principal from funding plus the repayment
	if got := e.balances[derive.CurrencyEscrowAddress(dto.LoanID)]; got != 1000+1003 {
		t.Fatalf("escrow balance = %d, want 2003", got)
	}

	l := e.loans[dto.LoanID]
	if l.Active {
		t.Fatal("loan still active after repayment")
	}
	if last := l.LastDetail(); last == nil || last.Status != domain.StatusClosed {
		t.Fatalf("last history entry not closed: %+v", last)
	}
}

func TestRepay_SecondTimeFailsAndLeavesStateUnchanged(t *testing.T) {
	e := newEnv()
	e.holdings[asset] = borrower
	e.balances[lender] = 5000
	e.balances[borrower] = 5000
	uc := initialized(t, e, 1000)
	ctx := context.Background()

	dto, _ := uc.DepositCollateral(ctx, DepositInput{BorrowerID: borrower, CollateralAsset: asset})
	if _, err := uc.FundLoan(ctx, FundInput{LoanID: dto.LoanID, LenderID: lender}); err != nil {
		t.Fatalf("fund: %v", err)
	}
	if _, err := uc.RepayLoan(ctx, RepayInput{LoanID: dto.LoanID, BorrowerID: borrower}); err != nil {
		t.Fatalf("first repay: %v", err)
	}

	balanceBefore := e.balances[borrower]
	_, err := uc.RepayLoan(ctx, RepayInput{LoanID: dto.LoanID, BorrowerID: borrower})
	if !errors.Is(err, domain.ErrLoanIsNotActive) {
		t.Fatalf("second repay = %v, want ErrLoanIsNotActive", err)
	}
	if e.balances[borrower] != balanceBefore {
		t.Fatal("failed repay still moved money")
	}
	if e.holdings[asset] != borrower {
		t.Fatal("failed repay moved the collateral")
	}
}

func TestRepay_UnknownLoan(t *testing.T) {
	e := newEnv()
	uc := initialized(t, e, 1000)

	_, err := uc.RepayLoan(context.Background(), RepayInput{
		LoanID:     derive.LoanAddress(borrower, asset),
		BorrowerID: borrower,
	})
	if !errors.Is(err, domain.ErrLoanIsNotActive) {
		t.Fatalf("repay unknown loan = %v, want ErrLoanIsNotActive", err)
	}
}

func TestRepay_WrongBorrower(t *testing.T) {
	e := newEnv()
	e.holdings[asset] = borrower
	e.balances[lender] = 5000
	uc := initialized(t, e, 1000)
	ctx := context.Background()

	dto, _ := uc.DepositCollateral(ctx, DepositInput{BorrowerID: borrower, CollateralAsset: asset})
	if _, err := uc.FundLoan(ctx, FundInput{LoanID: dto.LoanID, LenderID: lender}); err != nil {
		t.Fatalf("fund: %v", err)
	}

	stranger := strings.Repeat("e", 32)
	e.balances[stranger] = 5000
	_, err := uc.RepayLoan(ctx, RepayInput{LoanID: dto.LoanID, BorrowerID: stranger})
	if !errors.Is(err, domain.ErrBorrowerNotFound) {
		t.Fatalf("repay by stranger = %v, want ErrBorrowerNotFound", err)
	}
	if !e.loans[dto.LoanID].Active {
		t.Fatal("loan closed by a stranger")
	}
}

func TestRepay_InsufficientBorrowerFunds(t *testing.T) {
	e := newEnv()
	e.holdings[asset] = borrower
	e.balances[lender] = 5000
	e.balances[borrower] = 1000 // needs 1003
	uc := initialized(t, e, 1000)
	ctx := context.Background()

	dto, _ := uc.DepositCollateral(ctx, DepositInput{BorrowerID: borrower, CollateralAsset: asset})
	if _, err := uc.FundLoan(ctx, FundInput{LoanID: dto.LoanID, LenderID: lender}); err != nil {
		t.Fatalf("fund: %v", err)
	}

	_, err := uc.RepayLoan(ctx, RepayInput{LoanID: dto.LoanID, BorrowerID: borrower})
	if !errors.Is(err, ledgerDomain.ErrInsufficientFunds) {
		t.Fatalf("repay = %v, want ErrInsufficientFunds", err)
	}
	l := e.loans[dto.LoanID]
	if !l.Active {
		t.Fatal("failed repay closed the loan")
	}
	if e.holdings[asset] == borrower {
		t.Fatal("failed repay released the collateral")
	}
}

func TestRepay_FeeOverflow(t *testing.T) {
	e := newEnv()
	e.holdings[asset] = borrower
	uc := initialized(t, e, 1000)
	ctx := context.Background()

	dto, _ := uc.DepositCollateral(ctx, DepositInput{BorrowerID: borrower, CollateralAsset: asset})

	// force an amount near the numeric maximum
	e.loans[dto.LoanID].Amount = math.MaxUint64

	_, err := uc.RepayLoan(ctx, RepayInput{LoanID: dto.LoanID, BorrowerID: borrower})
	if !errors.Is(err, domain.ErrMathOverflow) {
		t.Fatalf("repay = %v, want ErrMathOverflow", err)
	}
	if !e.loans[dto.LoanID].Active {
		t.Fatal("overflowing repay closed the loan")
	}
}

func TestGet_ReturnsLoanWithHistory(t *testing.T) {
	e := newEnv()
	e.holdings[asset] = borrower
	e.balances[lender] = 5000
	uc := initialized(t, e, 1000)
	ctx := context.Background()

	dto, _ := uc.DepositCollateral(ctx, DepositInput{BorrowerID: borrower, CollateralAsset: asset})
	if _, err := uc.FundLoan(ctx, FundInput{LoanID: dto.LoanID, LenderID: lender}); err != nil {
		t.Fatalf("fund: %v", err)
	}

	got, err := uc.Get(ctx, dto.LoanID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.LoanID != dto.LoanID || len(got.History) != 1 {
		t.Fatalf("unexpected loan: %+v", got)
	}
}
