package store

import (
	"context"
	"database/sql"
	"fmt"
)

// TokenType is the span type of tokens.
const TokenType = "tok"

// Tokens returns the tokens of a document whose position lies in
// [from, to], ordered by position.
func (s *Store) Tokens(ctx context.Context, documentID int64, from, to int) ([]Span, error) {
	rows, err := s.Query(ctx, `
		SELECT id, document_id, type, p1, p2, "index", length, value
		FROM span
		WHERE document_id = ? AND type = ? AND p1 >= ? AND p1 <= ?
		ORDER BY p1, id
	`, documentID, TokenType, from, to)
	if err != nil {
		return nil, fmt.Errorf("read tokens of document %d: %w", documentID, err)
	}
	defer rows.Close()

	var spans []Span
	for rows.Next() {
		var sp Span
		var value sql.NullString
		if err := rows.Scan(&sp.ID, &sp.DocumentID, &sp.Type, &sp.P1, &sp.P2, &sp.Index, &sp.Length, &value); err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		sp.Value = value.String
		spans = append(spans, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tokens: %w", err)
	}
	return spans, nil
}

// Document returns a document's privileged metadata and attributes.
// Returns sql.ErrNoRows wrapped if the document does not exist.
func (s *Store) Document(ctx context.Context, id int64) (Document, error) {
	var d Document
	err := s.QueryRow(ctx, `
		SELECT id, author, title, date_value, sort_key, source, profile_id
		FROM document WHERE id = ?
	`, id).Scan(&d.ID, &d.Author, &d.Title, &d.DateValue, &d.SortKey, &d.Source, &d.ProfileID)
	if err != nil {
		return Document{}, fmt.Errorf("read document %d: %w", id, err)
	}

	rows, err := s.Query(ctx, `
		SELECT name, value FROM document_attribute WHERE document_id = ? ORDER BY name, id
	`, id)
	if err != nil {
		return Document{}, fmt.Errorf("read document %d attributes: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var a Attribute
		if err := rows.Scan(&a.Name, &a.Value); err != nil {
			return Document{}, fmt.Errorf("scan document attribute: %w", err)
		}
		d.Attributes = append(d.Attributes, a)
	}
	if err := rows.Err(); err != nil {
		return Document{}, fmt.Errorf("iterate document attributes: %w", err)
	}
	return d, nil
}
