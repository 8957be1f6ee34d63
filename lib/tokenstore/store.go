package tokenstore

import (
	"context"
	"database/sql"

	"gradescrape-backend/lib/scrapers/gradescope/core"

	_ "embed"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

// Store keeps normalized token sets for multiple accounts so a login
// survives across runs. It never mutates a TokenSet it hands out.
type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

func Open(path string) (Store, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return Store{}, err
	}
	_, err = database.Exec(Schema)
	if err != nil {
		return Store{}, err
	}
	return NewStore(database), nil
}

func (s Store) Close() error {
	return s.db.Close()
}

// Put replaces the stored token set for an account wholesale. Stale
// cookies from a previous login must not linger, so the old rows go
// first, in the same transaction.
func (s Store) Put(ctx context.Context, account string, tokens core.TokenSet) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM token WHERE account = ?`, account)
	if err != nil {
		return err
	}
	for name, value := range tokens {
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO token (account, name, value) VALUES (?, ?, ?)`,
			account, name, value,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s Store) Get(ctx context.Context, account string) (core.TokenSet, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT name, value FROM token WHERE account = ?`,
		account,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tokens := core.TokenSet{}
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		tokens[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, sql.ErrNoRows
	}
	return tokens, nil
}

func (s Store) Accounts(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT DISTINCT account FROM token ORDER BY account`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []string
	for rows.Next() {
		var account string
		if err := rows.Scan(&account); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (s Store) Delete(ctx context.Context, account string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM token WHERE account = ?`, account)
	return err
}
