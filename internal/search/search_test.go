package search

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pythia/internal/dialect"
	"github.com/roach88/pythia/internal/querylang"
	"github.com/roach88/pythia/internal/querysql"
	"github.com/roach88/pythia/internal/store"
)

type testDoc struct {
	author, title, sortKey, corpus string
	tokens                         []string
	lines                          [][2]int
}

var testCorpus = []testDoc{
	{
		author: "Catullus", title: "Carmina", sortKey: "catullus", corpus: "poetry",
		tokens: []string{"vivamus", "mea", "lesbia", "atque", "amemus"},
		lines:  [][2]int{{1, 3}, {4, 5}},
	},
	{
		author: "Vergilius", title: "Aeneis", sortKey: "vergilius", corpus: "epic",
		tokens: []string{"arma", "virumque", "cano", "troiae", "qui"},
		lines:  [][2]int{{1, 5}},
	},
}

func seedStore(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()

	s, err := store.Open(filepath.Join(t.TempDir(), "corpus.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	for _, d := range testCorpus {
		require.NoError(t, s.AddCorpus(ctx, store.Corpus{ID: d.corpus}))
		id, err := s.AddDocument(ctx, store.Document{
			Author:  d.author,
			Title:   d.title,
			SortKey: d.sortKey,
			Corpora: []string{d.corpus},
		})
		require.NoError(t, err)

		var spans []store.Span
		offset := 0
		for i, tok := range d.tokens {
			spans = append(spans, store.Span{
				DocumentID: id, Type: store.TokenType, P1: i + 1, P2: i + 1,
				Index: offset, Length: len(tok), Value: tok,
			})
			offset += len(tok) + 1
		}
		for _, l := range d.lines {
			spans = append(spans, store.Span{DocumentID: id, Type: "l", P1: l[0], P2: l[1]})
		}
		_, err = s.AddSpans(ctx, spans)
		require.NoError(t, err)
	}
	return s
}

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	d, err := dialect.New("sqlite")
	require.NoError(t, err)
	return NewService(querysql.NewBuilder(d), seedStore(t), opts...)
}

func hitValues(page *Page) []string {
	values := make([]string, len(page.Hits))
	for i, h := range page.Hits {
		values[i] = h.Value
	}
	return values
}

func TestSearch(t *testing.T) {
	svc := newTestService(t)

	testCases := []struct {
		name  string
		query string
		sort  []string
		want  []string
	}{
		{"single token", `[value="mea"]`, nil, []string{"mea"}},
		{"case insensitive", `[value="MEA"]`, nil, []string{"mea"}},
		{"or across documents", `[value="mea"] OR [value="arma"]`, nil, []string{"mea", "arma"}},
		{"sorted descending", `[value="mea"] OR [value="arma"]`, []string{"-author"}, []string{"arma", "mea"}},
		{"and needs same span", `[value="mea"] AND [value="arma"]`, nil, []string{}},
		{"near", `[value="mea"] NEAR(n=0,m=0) [value="lesbia"]`, nil, []string{"mea"}},
		{"near too far", `[value="vivamus"] NEAR(m=0) [value="lesbia"]`, nil, []string{}},
		{"not before", `[value="vivamus"] NOTBEFORE(n=0,m=0) [value="lesbia"]`, nil, []string{"vivamus"}},
		{"not before excluded", `[value="vivamus"] NOTBEFORE(m=5) [value="lesbia"]`, nil, []string{}},
		{"inside structure", `[value="atque"] INSIDE() [$l]`, nil, []string{"atque"}},
		{"shared context", `[value="mea"] NEAR(m=0,s=l) [value="lesbia"]`, nil, []string{"mea"}},
		{"shared context across lines", `[value="lesbia"] NEAR(m=0,s=l) [value="atque"]`, nil, []string{}},
		{"prefix", `[value^="vi"]`, nil, []string{"vivamus", "virumque"}},
		{"regexp", `[value~="^a.*a$"]`, nil, []string{"arma"}},
		{"numeric position", `[p1>="5"]`, nil, []string{"amemus", "qui"}},
		{"corpus filter", `@@POETRY;[value="mea"] OR [value="arma"]`, nil, []string{"mea"}},
		{"document filter", `@[author="Vergilius"];[value="mea"] OR [value="arma"]`, nil, []string{"arma"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := svc.Search(context.Background(), Request{
				Query: tc.query, PageNumber: 1, PageSize: 20, SortFields: tc.sort,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, hitValues(page))
			assert.Equal(t, len(tc.want), page.Total)
			assert.NotEmpty(t, page.RequestID)
		})
	}
}

func TestSearch_HitMetadata(t *testing.T) {
	svc := newTestService(t)

	page, err := svc.Search(context.Background(), Request{Query: `[value="lesbia"]`, PageNumber: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page.Hits, 1)

	h := page.Hits[0]
	assert.Equal(t, "tok", h.Type)
	assert.Equal(t, 3, h.P1)
	assert.Equal(t, 3, h.P2)
	assert.Equal(t, 12, h.Index)
	assert.Equal(t, 6, h.Length)
	assert.Equal(t, "Catullus", h.Author)
	assert.Equal(t, "Carmina", h.Title)
	assert.Equal(t, "catullus", h.SortKey)
}

func TestSearch_Paging(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	page, err := svc.Search(ctx, Request{Query: `[value^="a"]`, PageNumber: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, []string{"arma"}, hitValues(page))

	page, err = svc.Search(ctx, Request{Query: `[value^="a"]`, PageNumber: 5, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Empty(t, page.Hits)
}

func TestSearch_InvalidRequest(t *testing.T) {
	svc := newTestService(t, WithMaxPageSize(10))
	ctx := context.Background()

	_, err := svc.Search(ctx, Request{Query: `[a]`, PageNumber: 0, PageSize: 5})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.Search(ctx, Request{Query: `[a]`, PageNumber: 1, PageSize: 11})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.Search(ctx, Request{Query: `[value="a"`, PageNumber: 1, PageSize: 5})
	assert.True(t, querylang.IsSyntaxError(err))
}

func TestSearch_DatabaseFailure(t *testing.T) {
	d, err := dialect.New("sqlite")
	require.NoError(t, err)
	s := seedStore(t)
	_, err = s.DB().Exec("DROP TABLE span_attribute; DROP TABLE span")
	require.NoError(t, err)

	svc := NewService(querysql.NewBuilder(d), s)
	_, err = svc.Search(context.Background(), Request{Query: `[value="mea"]`, PageNumber: 1, PageSize: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDatabase)
	assert.False(t, querylang.IsSyntaxError(err))
}

func TestContext(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	page, err := svc.Search(ctx, Request{Query: `[value="mea"] OR [value="troiae"]`, PageNumber: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page.Hits, 2)

	kwic, err := svc.Context(ctx, page.Hits, 2)
	require.NoError(t, err)
	require.Len(t, kwic, 2)

	assert.Equal(t, "mea", kwic[0].Hit.Value)
	assert.Equal(t, []string{"", "vivamus"}, kwic[0].Left)
	assert.Equal(t, []string{"lesbia", "atque"}, kwic[0].Right)

	assert.Equal(t, "troiae", kwic[1].Hit.Value)
	assert.Equal(t, []string{"virumque", "cano"}, kwic[1].Left)
	assert.Equal(t, []string{"qui", ""}, kwic[1].Right)
}

func TestContext_InvalidSize(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Context(context.Background(), nil, 0)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = svc.Context(context.Background(), nil, 11)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestPadding(t *testing.T) {
	assert.Equal(t, []string{"", "", "a"}, padLeft([]string{"a"}, 3))
	assert.Equal(t, []string{"b", "c"}, padLeft([]string{"a", "b", "c"}, 2))
	assert.Equal(t, []string{"a", "", ""}, padRight([]string{"a"}, 3))
	assert.Equal(t, []string{"a", "b"}, padRight([]string{"a", "b", "c"}, 2))
	assert.Equal(t, "", strings.Join(padRight(nil, 1), ""))
}
