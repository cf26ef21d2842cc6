package models

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/api-sage/cashflow-ledger/src/internal/domain"
)

type CreateClientRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	TransactionPin string `json:"transactionPin"`
}

func (r CreateClientRequest) Validate() error {
	var errs []string

	name := strings.TrimSpace(r.Name)
	if name == "" {
		errs = append(errs, "name is required")
	} else if len(name) > 120 {
		errs = append(errs, "name must be at most 120 characters")
	}

	email := strings.TrimSpace(r.Email)
	if email == "" {
		errs = append(errs, "email is required")
	} else if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		errs = append(errs, "email must be a valid address")
	}

	if len(strings.TrimSpace(r.Phone)) > 32 {
		errs = append(errs, "phone must be at most 32 characters")
	}

	pin := strings.TrimSpace(r.TransactionPin)
	if pin == "" {
		errs = append(errs, "transactionPin is required")
	} else if !isDigits(pin) || len(pin) < 4 || len(pin) > 6 {
		errs = append(errs, "transactionPin must be 4 to 6 digits")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

type LoanProgressResponse struct {
	Status                string `json:"status"`
	InstallmentsPaid      int    `json:"installmentsPaid"`
	InstallmentsRemaining int    `json:"installmentsRemaining"`
	Percentage            string `json:"percentage"`
}

type ClientResponse struct {
	ID                string               `json:"id"`
	Name              string               `json:"name"`
	Email             string               `json:"email"`
	Phone             string               `json:"phone,omitempty"`
	Balance           string               `json:"balance"`
	Savings           string               `json:"savings"`
	CreditUsed        string               `json:"creditUsed"`
	LoanTotal         string               `json:"loanTotal"`
	InstallmentValue  string               `json:"installmentValue"`
	TotalInstallments int                  `json:"totalInstallments"`
	Version           int64                `json:"version"`
	Loan              LoanProgressResponse `json:"loan"`
	CreatedAt         string               `json:"createdAt"`
	UpdatedAt         string               `json:"updatedAt"`
}

func NewClientResponse(account domain.Account) ClientResponse {
	progress := account.LoanProgress()

	return ClientResponse{
		ID:                account.ID,
		Name:              account.Name,
		Email:             account.Email,
		Phone:             account.Phone,
		Balance:           domain.FormatMoney(account.Balance),
		Savings:           domain.FormatMoney(account.Savings),
		CreditUsed:        domain.FormatMoney(account.CreditUsed),
		LoanTotal:         domain.FormatMoney(account.LoanTotal),
		InstallmentValue:  domain.FormatMoney(account.InstallmentValue),
		TotalInstallments: account.TotalInstallments,
		Version:           account.Version,
		Loan: LoanProgressResponse{
			Status:                string(progress.Status),
			InstallmentsPaid:      progress.InstallmentsPaid,
			InstallmentsRemaining: progress.InstallmentsRemaining,
			Percentage:            progress.Percentage.StringFixed(2),
		},
		CreatedAt: account.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: account.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func isDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return value != ""
}
