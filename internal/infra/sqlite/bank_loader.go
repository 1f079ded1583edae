package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"iqai-quiz-service/internal/domain"
	"iqai-quiz-service/internal/quiz"
)

// BankLoader reads the question bank from a local SQLite file, one row per
// question with options stored as a JSON array.
type BankLoader struct {
	db *sql.DB
}

// Open opens the bank database and verifies the connection.
func Open(path string) (*BankLoader, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open bank database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping bank database: %w", err)
	}
	return &BankLoader{db: db}, nil
}

func (l *BankLoader) Close() error {
	return l.db.Close()
}

// CreateTables creates the questions table if missing, so a fresh file can
// be seeded in place.
func (l *BankLoader) CreateTables() error {
	_, err := l.db.Exec(`CREATE TABLE IF NOT EXISTS questions (
		id TEXT PRIMARY KEY,
		text TEXT NOT NULL,
		options TEXT NOT NULL,
		answer TEXT NOT NULL,
		explanation TEXT,
		category TEXT
	)`)
	if err != nil {
		return fmt.Errorf("create questions table: %w", err)
	}
	return nil
}

// Insert stores one bank question.
func (l *BankLoader) Insert(ctx context.Context, q domain.Question) error {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO questions (id, text, options, answer, explanation, category) VALUES (?, ?, ?, ?, ?, ?)`,
		q.ID, q.Text, string(options), q.Answer, q.Explanation, q.Category,
	)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

func (l *BankLoader) LoadBank(ctx context.Context) ([]domain.Question, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT id, text, options, answer, explanation, category FROM questions`)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		var options string
		var explanation, category sql.NullString
		if err := rows.Scan(&q.ID, &q.Text, &options, &q.Answer, &explanation, &category); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
			continue
		}
		q.Explanation = explanation.String
		q.Category = category.String
		norm, ok := quiz.Normalize(q, quiz.NormalizeOptions{})
		if !ok {
			continue
		}
		if norm.Category == "" {
			norm.Category = domain.DefaultCategory
		}
		norm.Kind = domain.KindSafe
		questions = append(questions, norm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, domain.ErrBankEmpty
	}
	return questions, nil
}
