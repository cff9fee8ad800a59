package http

import (
	"errors"
	"net/http"

	"nftpawn-backend/internal/domain/ledger"
	domain "nftpawn-backend/internal/domain/pawn"
	"nftpawn-backend/internal/usecase/pawn"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type PawnHandler struct{ uc *pawn.Usecase }

func NewPawnHandler(uc *pawn.Usecase) *PawnHandler { return &PawnHandler{uc: uc} }

type initializeReq struct {
	AdminID    string `json:"admin_id" validate:"required,hex32"`
	LoanAmount uint64 `json:"loan_amount" validate:"required,gt=0"`
}

type depositReq struct {
	BorrowerID      string `json:"borrower_id" validate:"required,hex32"`
	CollateralAsset string `json:"collateral_asset" validate:"required,hex32"`
}

type fundReq struct {
	LenderID string `json:"lender_id" validate:"required,hex32"`
}

type repayReq struct {
	BorrowerID string `json:"borrower_id" validate:"required,hex32"`
}

func (h *PawnHandler) Initialize(c echo.Context) error {
	var req initializeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.Initialize(c.Request().Context(), pawn.InitializeInput{
		AdminID:    req.AdminID,
		LoanAmount: req.LoanAmount,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *PawnHandler) DepositCollateral(c echo.Context) error {
	var req depositReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.DepositCollateral(c.Request().Context(), pawn.DepositInput{
		BorrowerID:      req.BorrowerID,
		CollateralAsset: req.CollateralAsset,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *PawnHandler) FundLoan(c echo.Context) error {
	var req fundReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.FundLoan(c.Request().Context(), pawn.FundInput{
		LoanID:   c.Param("loan_id"),
		LenderID: req.LenderID,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *PawnHandler) RepayLoan(c echo.Context) error {
	var req repayReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.RepayLoan(c.Request().Context(), pawn.RepayInput{
		LoanID:     c.Param("loan_id"),
		BorrowerID: req.BorrowerID,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *PawnHandler) GetLoan(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
		}
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// writeDomainError maps the domain error taxonomy onto HTTP statuses.
func writeDomainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrBorrowerNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrLoanIsActive),
		errors.Is(err, domain.ErrLoanIsNotActive),
		errors.Is(err, domain.ErrAlreadyInitialized),
		errors.Is(err, domain.ErrNotInitialized),
		errors.Is(err, domain.ErrHistoryFull),
		errors.Is(err, domain.ErrEscrowMismatch):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrMathOverflow),
		errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrBalanceOverflow),
		errors.Is(err, ledger.ErrAssetNotFound),
		errors.Is(err, ledger.ErrNotAssetOwner):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
