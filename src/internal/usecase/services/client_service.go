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
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type ClientService struct {
	clientRepo domain.ClientRepository
	newID      func() string
	now        func() time.Time
}

func NewClientService(clientRepo domain.ClientRepository) *ClientService {
	return &ClientService{clientRepo: clientRepo, newID: uuid.NewString, now: time.Now}
}

func (s *ClientService) CreateClient(ctx context.Context, req models.CreateClientRequest) (commons.Response[models.ClientResponse], error) {
	logger.Info("client service create client request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("client service create client validation failed", err, nil)
		return commons.ErrorResponse[models.ClientResponse]("validation failed", err.Error()).WithCode(domain.ErrorCode(domain.ErrInvalidArgument)),
			fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
	}

	hashedPin, err := hashTransactionPin(strings.TrimSpace(req.TransactionPin))
	if err != nil {
		logger.Error("client service create client hash pin failed", err, nil)
		return commons.ErrorResponse[models.ClientResponse]("failed to create client", "failed to hash transaction pin"), err
	}

	now := s.now().UTC()
	account := domain.Account{
		ID:                 s.newID(),
		Name:               strings.TrimSpace(req.Name),
		Email:              strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:              strings.TrimSpace(req.Phone),
		Balance:            decimal.Zero,
		Savings:            decimal.Zero,
		CreditUsed:         decimal.Zero,
		LoanTotal:          decimal.Zero,
		InstallmentValue:   decimal.Zero,
		TransactionPinHash: hashedPin,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	created, err := s.clientRepo.Create(ctx, account)
	if err != nil {
		logger.Error("client service create client repository failed", err, logger.Fields{
			"accountId": account.ID,
		})
		if errors.Is(err, domain.ErrEmailTaken) {
			return commons.ErrorResponse[models.ClientResponse]("email already registered").WithCode(domain.ErrorCode(err)), err
		}
		return commons.ErrorResponse[models.ClientResponse]("failed to create client", "Unable to create client right now"), err
	}

	response := models.NewClientResponse(created)

	logger.Info("client service create client success", logger.Fields{
		"accountId": response.ID,
		"email":     response.Email,
	})

	return commons.SuccessResponse("client created successfully", response), nil
}

func (s *ClientService) GetClient(ctx context.Context, id string) (commons.Response[models.ClientResponse], error) {
	logger.Info("client service get client request", logger.Fields{
		"accountId": id,
	})

	id = strings.TrimSpace(id)
	if id == "" {
		err := fmt.Errorf("%w: id is required", domain.ErrInvalidArgument)
		return commons.ErrorResponse[models.ClientResponse]("validation failed", "id is required").WithCode(domain.ErrorCode(err)), err
	}

	account, err := s.clientRepo.Get(ctx, id)
	if err != nil {
		return s.lookupFailure(err, logger.Fields{"accountId": id})
	}

	return commons.SuccessResponse("client fetched successfully", models.NewClientResponse(account)), nil
}

func (s *ClientService) FindClientByEmail(ctx context.Context, email string) (commons.Response[models.ClientResponse], error) {
	email = strings.ToLower(strings.TrimSpace(email))
	logger.Info("client service find client by email request", logger.Fields{
		"email": email,
	})

	if email == "" {
		err := fmt.Errorf("%w: email is required", domain.ErrInvalidArgument)
		return commons.ErrorResponse[models.ClientResponse]("validation failed", "email is required").WithCode(domain.ErrorCode(err)), err
	}

	account, err := s.clientRepo.GetByEmail(ctx, email)
	if err != nil {
		return s.lookupFailure(err, logger.Fields{"email": email})
	}

	return commons.SuccessResponse("client fetched successfully", models.NewClientResponse(account)), nil
}

func (s *ClientService) lookupFailure(err error, fields logger.Fields) (commons.Response[models.ClientResponse], error) {
	logger.Error("client service get client failed", err, fields)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return commons.ErrorResponse[models.ClientResponse]("Client not found").WithCode(domain.ErrorCode(err)), err
	}
	return commons.ErrorResponse[models.ClientResponse]("failed to get client", "Unable to fetch client right now"), err
}

func hashTransactionPin(pin string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash transaction pin: %w", err)
	}

	return string(hashed), nil
}

func verifyTransactionPin(hash, pin string) error {
	if hash == "" {
		return nil
	}
	if strings.TrimSpace(pin) == "" {
		return fmt.Errorf("%w: transactionPin is required", domain.ErrInvalidPin)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(strings.TrimSpace(pin))); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return domain.ErrInvalidPin
		}
		return fmt.Errorf("verify transaction pin: %w", err)
	}

	return nil
}
