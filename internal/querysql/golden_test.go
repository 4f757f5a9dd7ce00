package querysql

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pythia/internal/dialect"
)

// To regenerate golden files, run:
//
//	go test ./internal/querysql -run TestBuild_Golden -update
func TestBuild_Golden(t *testing.T) {
	testCases := []struct {
		name  string
		query string
		sort  []string
	}{
		{"pair_eq", `[value="cat"]`, nil},
		{"boolean_and", `[value="a"] AND [value="b"]`, nil},
		{"near", `[value="a"] NEAR(n=0,m=5) [value="b"]`, nil},
		{"not_before", `[value="a"] NOTBEFORE(n=0,m=0) [value="b"]`, nil},
		{"filtered_structure", `@@alpha;@[author="Catullus"];[$lg]`, []string{"-title"}},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	b := NewBuilder(dialect.NewPostgres())

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, count, err := b.Build(tc.query, 1, 20, tc.sort)
			require.NoError(t, err)
			g.Assert(t, tc.name, []byte(data+"\n\n-- count\n"+count+"\n"))
		})
	}
}
