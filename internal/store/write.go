package store

import (
	"context"
	"fmt"

	"github.com/roach88/uniterm/internal/seq"
)

// Create validates d and appends it as a new record, returning the id
// assigned by SQLite.
//
// String fields are trimmed and NFC-normalised before validation. Name,
// description and both terms must be non-empty; on a strict store both
// alternates must be too. Validation failures are returned as
// *seq.ValidationError and nothing is written.
//
// No uniqueness is checked: saving the same name and description twice
// yields two records.
func (s *Store) Create(ctx context.Context, d seq.Draft) (int64, error) {
	if err := s.check(); err != nil {
		return 0, err
	}

	d = d.Normalize()
	if err := d.Validate(s.Strict()); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, wrap("create", fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO sequences
		(name, description, term_a, term_b, term_a_alt, term_b_alt, operator, operator_alt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		d.Name,
		d.Description,
		d.TermA,
		d.TermB,
		d.TermAAlt,
		d.TermBAlt,
		string(d.Operator),
		string(seq.CanonicalSeparator),
	)
	if err != nil {
		return 0, wrap("create", fmt.Errorf("insert: %w", err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, wrap("create", fmt.Errorf("last insert id: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return 0, wrap("create", fmt.Errorf("commit: %w", err))
	}

	s.logger.Debug("record created", "id", id, "name", d.Name)
	return id, nil
}

// DeleteByName removes every record whose name matches exactly and returns
// how many were removed. Deleting an unknown name is a no-op. The name is
// normalised as in Create.
//
// Records that share a name but differ in description are all removed.
func (s *Store) DeleteByName(ctx context.Context, name string) (int64, error) {
	if err := s.check(); err != nil {
		return 0, err
	}

	name = seq.Normalize(name)
	result, err := s.db.ExecContext(ctx, `DELETE FROM sequences WHERE name = ?`, name)
	if err != nil {
		return 0, wrap("delete", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, wrap("delete", fmt.Errorf("rows affected: %w", err))
	}

	s.logger.Debug("records deleted", "name", name, "count", n)
	return n, nil
}
