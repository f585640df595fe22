package transaction

import (
	"time"

	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

type transactionResponse struct {
	ID          int64              `json:"id"`
	UserID      int64              `json:"user_id"`
	Amount      int64              `json:"amount"`
	Type        transaction.Type   `json:"type"`
	Status      transaction.Status `json:"status"`
	Description string             `json:"description,omitempty"`
	Date        time.Time          `json:"date"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   *time.Time         `json:"updated_at,omitempty"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		UserID:      tx.UserID,
		Amount:      tx.Amount,
		Type:        tx.Type,
		Status:      tx.Status,
		Description: tx.Description,
		Date:        tx.Date,
		CreatedAt:   tx.CreatedAt,
		UpdatedAt:   tx.UpdatedAt,
	}
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}

type analyticsResponse struct {
	UserID        int64      `json:"user_id"`
	AverageAmount float64    `json:"average_amount"`
	MaxDate       *time.Time `json:"max_date,omitempty"`
	TotalCredits  int64      `json:"total_credits"`
	TotalDebits   int64      `json:"total_debits"`
}

func toAnalyticsResponse(a *transaction.Analytics) analyticsResponse {
	return analyticsResponse{
		UserID:        a.UserID,
		AverageAmount: a.AverageAmount,
		MaxDate:       a.MaxDate,
		TotalCredits:  a.TotalCredits,
		TotalDebits:   a.TotalDebits,
	}
}
