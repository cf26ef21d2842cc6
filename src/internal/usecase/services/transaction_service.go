package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/api-sage/cashflow-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/cashflow-ledger/src/internal/commons"
	"github.com/api-sage/cashflow-ledger/src/internal/domain"
	"github.com/api-sage/cashflow-ledger/src/internal/logger"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

type TransactionService struct {
	accounts accountReader
	txnRepo  domain.TransactionRepository
}

func NewTransactionService(accounts accountReader, txnRepo domain.TransactionRepository) *TransactionService {
	return &TransactionService{accounts: accounts, txnRepo: txnRepo}
}

// ListTransactions returns newest records first. A non-positive limit means
// the default; larger limits are capped.
func (s *TransactionService) ListTransactions(ctx context.Context, accountID string, limit int) (commons.Response[models.TransactionListResponse], error) {
	logger.Info("transaction service list request", logger.Fields{
		"accountId": accountID,
		"limit":     limit,
	})

	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		err := fmt.Errorf("%w: account id is required", domain.ErrInvalidArgument)
		return commons.ErrorResponse[models.TransactionListResponse]("validation failed", "account id is required").WithCode(domain.ErrorCode(err)), err
	}

	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}

	if _, err := s.accounts.Get(ctx, accountID); err != nil {
		logger.Error("transaction service account lookup failed", err, logger.Fields{"accountId": accountID})
		if errors.Is(err, domain.ErrAccountNotFound) {
			return commons.ErrorResponse[models.TransactionListResponse]("Client not found").WithCode(domain.ErrorCode(err)), err
		}
		return commons.ErrorResponse[models.TransactionListResponse]("failed to list transactions", "Unable to fetch transactions right now"), err
	}

	txns, err := s.txnRepo.ListByAccount(ctx, accountID, limit)
	if err != nil {
		logger.Error("transaction service list failed", err, logger.Fields{"accountId": accountID})
		return commons.ErrorResponse[models.TransactionListResponse]("failed to list transactions", "Unable to fetch transactions right now"), err
	}

	items := make([]models.TransactionResponse, 0, len(txns))
	for _, txn := range txns {
		items = append(items, models.NewTransactionResponse(txn))
	}

	logger.Info("transaction service list success", logger.Fields{
		"accountId": accountID,
		"count":     len(items),
	})

	return commons.SuccessResponse("transactions fetched successfully", models.TransactionListResponse{
		AccountID:    accountID,
		Count:        len(items),
		Transactions: items,
	}), nil
}
