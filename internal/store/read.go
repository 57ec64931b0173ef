package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"

	"github.com/roach88/uniterm/internal/seq"
)

// List returns the (name, description) pair of every record in insertion
// order.
//
// The sequence is lazy: rows are read while the caller ranges over it, and
// each range runs the query again. A failure is yielded as the final
// element with a zero Label. Do not call other Store methods from inside
// the loop; the single connection is held until iteration ends.
func (s *Store) List(ctx context.Context) iter.Seq2[seq.Label, error] {
	return func(yield func(seq.Label, error) bool) {
		if err := s.check(); err != nil {
			yield(seq.Label{}, err)
			return
		}

		rows, err := s.db.QueryContext(ctx, `
			SELECT name, description
			FROM sequences
			ORDER BY id ASC
		`)
		if err != nil {
			yield(seq.Label{}, wrap("list", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var l seq.Label
			if err := rows.Scan(&l.Name, &l.Description); err != nil {
				yield(seq.Label{}, wrap("list", fmt.Errorf("scan: %w", err)))
				return
			}
			if !yield(l, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(seq.Label{}, wrap("list", fmt.Errorf("iterate: %w", err)))
		}
	}
}

// Labels collects List into a slice.
// Returns an empty slice (not nil) for an empty store.
func (s *Store) Labels(ctx context.Context) ([]seq.Label, error) {
	labels := []seq.Label{}
	for l, err := range s.List(ctx) {
		if err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	return labels, nil
}

// FetchByNameAndDescription returns every record matching both fields
// exactly, ordered by id. The keys are normalised the way Create
// normalises them, so the strings passed to Create find the record.
//
// Returns an empty slice (not nil) if nothing matches. Callers must
// disambiguate multiple matches, e.g. by ID.
func (s *Store) FetchByNameAndDescription(ctx context.Context, name, description string) ([]seq.Record, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, term_a, term_b, term_a_alt, term_b_alt, operator, operator_alt
		FROM sequences
		WHERE name = ? AND description = ?
		ORDER BY id ASC
	`, seq.Normalize(name), seq.Normalize(description))
	if err != nil {
		return nil, wrap("fetch", err)
	}
	defer rows.Close()

	records := []seq.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, wrap("fetch", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, wrap("fetch", fmt.Errorf("iterate: %w", err))
	}

	return records, nil
}

// Get retrieves a single record by id.
// Returns ErrNotFound if no record has that id.
func (s *Store) Get(ctx context.Context, id int64) (seq.Record, error) {
	if err := s.check(); err != nil {
		return seq.Record{}, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, term_a, term_b, term_a_alt, term_b_alt, operator, operator_alt
		FROM sequences
		WHERE id = ?
	`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return seq.Record{}, fmt.Errorf("get record %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return seq.Record{}, wrap("get", err)
	}
	return rec, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (seq.Record, error) {
	var (
		rec         seq.Record
		operator    string
		operatorAlt string
	)
	err := row.Scan(
		&rec.ID,
		&rec.Name,
		&rec.Description,
		&rec.TermA,
		&rec.TermB,
		&rec.TermAAlt,
		&rec.TermBAlt,
		&operator,
		&operatorAlt,
	)
	if err != nil {
		return seq.Record{}, err
	}
	rec.Operator = seq.Operator(operator)
	rec.OperatorAlt = seq.Operator(operatorAlt)
	return rec, nil
}
