package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pythia/internal/store"
)

func seedDatabase(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "corpus.db")

	s, err := store.Open(path)
	require.NoError(t, err)
	defer s.Close()

	id, err := s.AddDocument(ctx, store.Document{Author: "Catullus", Title: "Carmina", SortKey: "catullus"})
	require.NoError(t, err)

	var spans []store.Span
	for i, tok := range []string{"odi", "et", "amo"} {
		spans = append(spans, store.Span{DocumentID: id, Type: store.TokenType, P1: i + 1, P2: i + 1, Value: tok})
	}
	_, err = s.AddSpans(ctx, spans)
	require.NoError(t, err)
	return path
}

func TestSearchCommand_Text(t *testing.T) {
	db := seedDatabase(t)

	out, err := execute(t, "search", "--db", db, `[value="amo"]`)
	require.NoError(t, err)
	assert.Contains(t, out, "1 result(s), page 1 (size 20)")
	assert.Contains(t, out, "1:3-3  amo  Catullus, Carmina")
}

func TestSearchCommand_KWIC(t *testing.T) {
	db := seedDatabase(t)

	out, err := execute(t, "search", "--db", db, "--kwic", "2", `[value="et"]`)
	require.NoError(t, err)
	assert.Contains(t, out, "1:2  odi [et] amo")
}

func TestSearchCommand_JSON(t *testing.T) {
	db := seedDatabase(t)

	out, err := execute(t, "search", "--db", db, "--format", "json", "--kwic", "1", `[value^="a"] OR [value="odi"]`)
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.RequestID)

	data := resp.Data.(map[string]any)
	assert.EqualValues(t, 2, data["total"])
	assert.Len(t, data["hits"], 2)
	assert.Len(t, data["context"], 2)
}

func TestSearchCommand_MissingDatabase(t *testing.T) {
	out, err := execute(t, "search", "--db", filepath.Join(t.TempDir(), "missing.db"), "--format", "json", `[value="amo"]`)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeResponse(t, out)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeDatabase, resp.Error.Code)
}

func TestSearchCommand_PageSizeAboveMax(t *testing.T) {
	db := seedDatabase(t)

	_, err := execute(t, "search", "--db", db, "--size", "101", `[value="amo"]`)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
