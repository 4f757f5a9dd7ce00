package store

import (
	"context"
	"database/sql"
	"fmt"
)

// AddCorpus inserts or renames a corpus.
func (s *Store) AddCorpus(ctx context.Context, c Corpus) error {
	if c.ID == "" {
		return fmt.Errorf("write corpus: empty id")
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO corpus (id, title) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title
	`), c.ID, c.Title)
	if err != nil {
		return fmt.Errorf("write corpus %s: %w", c.ID, err)
	}
	return nil
}

// AddDocument inserts a document with its attributes and corpus memberships
// in one transaction and returns its id. Referenced corpora must exist.
func (s *Store) AddDocument(ctx context.Context, d Document) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("write document: begin: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, s.rebind(`
		INSERT INTO document (author, title, date_value, sort_key, source, profile_id)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`), d.Author, d.Title, d.DateValue, d.SortKey, d.Source, d.ProfileID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("write document: %w", err)
	}

	for _, a := range d.Attributes {
		if _, err := tx.ExecContext(ctx, s.rebind(
			`INSERT INTO document_attribute (document_id, name, value) VALUES (?, ?, ?)`),
			id, a.Name, a.Value); err != nil {
			return 0, fmt.Errorf("write document attribute %s: %w", a.Name, err)
		}
	}

	for _, corpus := range d.Corpora {
		if _, err := tx.ExecContext(ctx, s.rebind(
			`INSERT INTO document_corpus (document_id, corpus_id) VALUES (?, ?)`),
			id, corpus); err != nil {
			return 0, fmt.Errorf("write document corpus %s: %w", corpus, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("write document: commit: %w", err)
	}
	return id, nil
}

// AddSpans inserts spans and their attributes in one transaction and
// returns their ids in input order.
func (s *Store) AddSpans(ctx context.Context, spans []Span) ([]int64, error) {
	for i, sp := range spans {
		if sp.P1 > sp.P2 {
			return nil, fmt.Errorf("write span %d: p1 %d > p2 %d", i, sp.P1, sp.P2)
		}
		if sp.Type == "" {
			return nil, fmt.Errorf("write span %d: empty type", i)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("write spans: begin: %w", err)
	}
	defer tx.Rollback()

	ids := make([]int64, len(spans))
	for i, sp := range spans {
		err := tx.QueryRowContext(ctx, s.rebind(`
			INSERT INTO span (document_id, type, p1, p2, "index", length, language, pos, lemma, value, text)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id
		`), sp.DocumentID, sp.Type, sp.P1, sp.P2, sp.Index, sp.Length,
			nullable(sp.Language), nullable(sp.Pos), nullable(sp.Lemma),
			nullable(sp.Value), nullable(sp.Text)).Scan(&ids[i])
		if err != nil {
			return nil, fmt.Errorf("write span %d: %w", i, err)
		}

		for _, a := range sp.Attributes {
			if _, err := tx.ExecContext(ctx, s.rebind(
				`INSERT INTO span_attribute (span_id, name, value) VALUES (?, ?, ?)`),
				ids[i], a.Name, a.Value); err != nil {
				return nil, fmt.Errorf("write span attribute %s: %w", a.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("write spans: commit: %w", err)
	}
	return ids, nil
}

// nullable stores empty strings as NULL.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
