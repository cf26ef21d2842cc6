package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/api-sage/cashflow-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/cashflow-ledger/src/internal/commons"
	"github.com/api-sage/cashflow-ledger/src/internal/domain"
	"github.com/api-sage/cashflow-ledger/src/internal/logger"
	"github.com/api-sage/cashflow-ledger/src/internal/metrics"
	"github.com/api-sage/cashflow-ledger/src/internal/usecase/engine"
)

type MovementApplier interface {
	Apply(ctx context.Context, accountID string, req domain.MovementRequest) (engine.Result, error)
}

type accountReader interface {
	Get(ctx context.Context, accountID string) (domain.Account, error)
}

type MovementService struct {
	engine   MovementApplier
	accounts accountReader
	metrics  *metrics.Metrics
}

func NewMovementService(applier MovementApplier, accounts accountReader, m *metrics.Metrics) *MovementService {
	return &MovementService{engine: applier, accounts: accounts, metrics: m}
}

func (s *MovementService) SubmitMovement(ctx context.Context, accountID string, req models.SubmitMovementRequest) (commons.Response[models.MovementResponse], error) {
	logger.Info("movement service submit request", logger.Fields{
		"accountId": accountID,
		"payload":   logger.SanitizePayload(req),
	})

	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		err := fmt.Errorf("%w: account id is required", domain.ErrInvalidArgument)
		return s.failure(err, "validation failed", "account id is required"), err
	}

	if err := req.Validate(); err != nil {
		logger.Error("movement service submit validation failed", err, logger.Fields{"accountId": accountID})
		wrapped := fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
		s.metrics.ObserveMovement(movementLabel(req.Type), domain.ErrorCode(wrapped), 0, false, 0)
		return s.failure(wrapped, "validation failed", err.Error()), wrapped
	}

	account, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		logger.Error("movement service account lookup failed", err, logger.Fields{"accountId": accountID})
		return s.failure(err, "", ""), err
	}

	if err := verifyTransactionPin(account.TransactionPinHash, req.TransactionPin); err != nil {
		logger.Info("movement service pin rejected", logger.Fields{"accountId": accountID})
		return s.failure(err, "", ""), err
	}

	started := time.Now()
	result, err := s.engine.Apply(ctx, accountID, req.ToDomain())
	s.metrics.ObserveMovement(movementLabel(req.Type), domain.ErrorCode(err), result.Attempts, result.Replayed, time.Since(started))
	if err != nil {
		logger.Error("movement service apply failed", err, logger.Fields{
			"accountId": accountID,
			"type":      req.Type,
			"code":      domain.ErrorCode(err),
		})
		return s.failure(err, "", ""), err
	}

	response := models.MovementResponse{
		Client:      models.NewClientResponse(result.Account),
		Transaction: models.NewTransactionResponse(result.Transaction),
		Attempts:    result.Attempts,
		Replayed:    result.Replayed,
	}

	logger.Info("movement service submit success", logger.Fields{
		"accountId":     accountID,
		"transactionId": response.Transaction.ID,
		"type":          response.Transaction.Type,
		"amount":        response.Transaction.Amount,
		"balance":       response.Client.Balance,
		"attempts":      result.Attempts,
		"replayed":      result.Replayed,
	})

	message := "movement applied successfully"
	if result.Replayed {
		message = "movement already applied"
	}

	return commons.SuccessResponse(message, response), nil
}

func (s *MovementService) failure(err error, message, detail string) commons.Response[models.MovementResponse] {
	code := domain.ErrorCode(err)
	if message == "" {
		message = failureMessage(err)
	}
	if detail == "" && code != "INTERNAL" {
		detail = err.Error()
	}
	if detail == "" {
		detail = "Unable to apply movement right now"
	}

	return commons.ErrorResponse[models.MovementResponse](message, detail).WithCode(code)
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return "Client not found"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "validation failed"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient funds"
	case errors.Is(err, domain.ErrActiveLoanConflict):
		return "an active loan must be repaid first"
	case errors.Is(err, domain.ErrExcessivePayment):
		return "payment exceeds outstanding debt"
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return "account is busy, retry the movement"
	case errors.Is(err, domain.ErrInvalidPin):
		return "invalid pin"
	default:
		return "failed to apply movement"
	}
}

func movementLabel(raw string) string {
	movementType, err := domain.ParseMovementType(raw)
	if err != nil {
		return "unknown"
	}
	return string(movementType)
}
