package cli

import (
	"encoding/json"
	"fmt"

	"github.com/api-sage/cashflow-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/cashflow-ledger/src/internal/config"
	"github.com/api-sage/cashflow-ledger/src/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(movementCmd)
	movementCmd.Flags().String("account", "", "Account id the movement applies to")
	movementCmd.Flags().String("type", "", "deposit, withdrawal, loan_origination, installment_payment or savings_transfer")
	movementCmd.Flags().String("amount", "", "Positive decimal amount, rounded to cents")
	movementCmd.Flags().Int("installments", 0, "Installment count for loan_origination")
	movementCmd.Flags().String("description", "", "Free-text label for the transaction record")
	movementCmd.Flags().String("idempotency-key", "", "Replay-safe key for retried submissions")
	_ = movementCmd.MarkFlagRequired("account")
	_ = movementCmd.MarkFlagRequired("type")
	_ = movementCmd.MarkFlagRequired("amount")
}

var movementCmd = &cobra.Command{
	Use:   "movement",
	Short: "Apply one movement to an account",
	Long: `Apply one movement through the transaction engine against the configured
store and print the resulting snapshot and transaction record as JSON.`,
	Example: `  cashflow movement --account 7c1f... --type deposit --amount 150.00
  cashflow movement --account 7c1f... --type loan_origination --amount 300 --installments 3`,
	RunE: runMovement,
}

func runMovement(cmd *cobra.Command, _ []string) error {
	req, accountID, err := movementFromFlags(cmd)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.engine.Apply(cmd.Context(), accountID, req)
	if err != nil {
		return fmt.Errorf("%s: %w", domain.ErrorCode(err), err)
	}

	out := models.MovementResponse{
		Client:      models.NewClientResponse(result.Account),
		Transaction: models.NewTransactionResponse(result.Transaction),
		Attempts:    result.Attempts,
		Replayed:    result.Replayed,
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func movementFromFlags(cmd *cobra.Command) (domain.MovementRequest, string, error) {
	accountID, _ := cmd.Flags().GetString("account")
	rawType, _ := cmd.Flags().GetString("type")
	rawAmount, _ := cmd.Flags().GetString("amount")
	installments, _ := cmd.Flags().GetInt("installments")
	description, _ := cmd.Flags().GetString("description")
	key, _ := cmd.Flags().GetString("idempotency-key")

	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return domain.MovementRequest{}, "", fmt.Errorf("amount %q is not a decimal: %w", rawAmount, err)
	}

	return domain.MovementRequest{
		Type:           domain.MovementType(rawType),
		Amount:         amount,
		Description:    description,
		Installments:   installments,
		IdempotencyKey: key,
	}, accountID, nil
}
