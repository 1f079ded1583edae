package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"iqai-quiz-service/internal/bank"
	"iqai-quiz-service/internal/domain"
)

// DefaultBankID is the bank row used when none is configured.
const DefaultBankID = "default"

// BankLoader loads a question bank stored as JSONB.
type BankLoader struct {
	pool   *pgxpool.Pool
	bankID string
}

func NewBankLoader(pool *pgxpool.Pool, bankID string) *BankLoader {
	if bankID == "" {
		bankID = DefaultBankID
	}
	return &BankLoader{pool: pool, bankID: bankID}
}

func (l *BankLoader) LoadBank(ctx context.Context) ([]domain.Question, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM question_banks WHERE id=$1`, l.bankID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBankNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load bank %q: %w", l.bankID, err)
	}
	return bank.Decode(raw)
}
