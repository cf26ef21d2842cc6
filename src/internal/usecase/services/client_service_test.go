package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/api-sage/cashflow-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/cashflow-ledger/src/internal/adapter/repository/memory"
	"github.com/api-sage/cashflow-ledger/src/internal/domain"
	"github.com/api-sage/cashflow-ledger/src/internal/usecase/services"
	"golang.org/x/crypto/bcrypt"
)

func TestClientServiceCreateClientValidationError(t *testing.T) {
	svc := services.NewClientService(memory.NewStore())

	resp, err := svc.CreateClient(context.Background(), models.CreateClientRequest{})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if resp.Success || resp.Code != "INVALID_ARGUMENT" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestClientServiceCreateClientHashesPinAndZeroesBalances(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := services.NewClientService(store)

	resp, err := svc.CreateClient(ctx, models.CreateClientRequest{
		Name:           " Ana Souza ",
		Email:          "Ana@Example.com",
		TransactionPin: "4321",
	})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	if resp.Data == nil || resp.Data.Email != "ana@example.com" || resp.Data.Name != "Ana Souza" {
		t.Fatalf("unexpected response %+v", resp.Data)
	}
	if resp.Data.Balance != "0.00" || resp.Data.Version != 0 || resp.Data.Loan.Status != "none" {
		t.Fatalf("expected zeroed client, got %+v", resp.Data)
	}

	stored, err := store.Get(ctx, resp.Data.ID)
	if err != nil {
		t.Fatalf("get stored client: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.TransactionPinHash), []byte("4321")); err != nil {
		t.Fatalf("expected stored bcrypt hash of pin: %v", err)
	}
}

func TestClientServiceCreateClientDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := services.NewClientService(memory.NewStore())
	req := models.CreateClientRequest{Name: "Ana", Email: "ana@example.com", TransactionPin: "4321"}

	if _, err := svc.CreateClient(ctx, req); err != nil {
		t.Fatalf("first create: %v", err)
	}
	req.Email = "ANA@example.com"
	resp, err := svc.CreateClient(ctx, req)
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}
	if resp.Code != "EMAIL_TAKEN" {
		t.Fatalf("expected EMAIL_TAKEN code, got %q", resp.Code)
	}
}

func TestClientServiceLookups(t *testing.T) {
	ctx := context.Background()
	svc := services.NewClientService(memory.NewStore())
	created, err := svc.CreateClient(ctx, models.CreateClientRequest{Name: "Ana", Email: "ana@example.com", TransactionPin: "4321"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	byID, err := svc.GetClient(ctx, created.Data.ID)
	if err != nil || byID.Data.ID != created.Data.ID {
		t.Fatalf("expected client by id, got %+v (%v)", byID, err)
	}

	byEmail, err := svc.FindClientByEmail(ctx, " ANA@example.com ")
	if err != nil || byEmail.Data.ID != created.Data.ID {
		t.Fatalf("expected client by email, got %+v (%v)", byEmail, err)
	}

	_, err = svc.GetClient(ctx, "missing")
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	_, err = svc.FindClientByEmail(ctx, "")
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for empty email, got %v", err)
	}
}
