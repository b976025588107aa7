package categorytree

import (
	"context"
	"strings"
	"testing"

	"github.com/Veraticus/bookkeeper/internal/common"
	"github.com/Veraticus/bookkeeper/internal/storage"
	"github.com/Veraticus/bookkeeper/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func top(name string) Pair {
	return Pair{Name: name}
}

func child(name, parent string) Pair {
	return Pair{Name: name, Parent: parent, HasParent: true}
}

func TestParseLines(t *testing.T) {
	tests := []struct {
		name    string
		outline string
		want    []Pair
		wantErr error
	}{
		{
			name:    "nested outline",
			outline: "produce\n  meat\n    raw meat\n    meat products\n  sweets\nbooks\nclothes",
			want: []Pair{
				top("produce"),
				child("meat", "produce"),
				child("raw meat", "meat"),
				child("meat products", "meat"),
				child("sweets", "produce"),
				top("books"),
				top("clothes"),
			},
		},
		{
			name:    "blank lines are ignored",
			outline: "\nparent\n\n    child1\n   \n        child2\n    child3\n",
			want: []Pair{
				top("parent"),
				child("child1", "parent"),
				child("child2", "child1"),
				child("child3", "parent"),
			},
		},
		{
			name:    "tabs and uneven widths compare structurally",
			outline: "a\n\tb\n\t   c\n\td",
			want: []Pair{
				top("a"),
				child("b", "a"),
				child("c", "b"),
				child("d", "a"),
			},
		},
		{
			name:    "indented first line is still top level",
			outline: "   a\n   b",
			want:    []Pair{top("a"), top("b")},
		},
		{
			name:    "unindent to unknown level",
			outline: "parent\n    child\n  stray",
			wantErr: common.ErrIndentationMismatch,
		},
		{
			name:    "empty outline",
			outline: "\n  \n",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLines(strings.Split(tt.outline, "\n"))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_DefaultOutline(t *testing.T) {
	pairs, err := Parse(strings.NewReader(DefaultOutline))
	require.NoError(t, err)
	require.Len(t, pairs, 7)
	assert.Equal(t, top("produce"), pairs[0])
	assert.Equal(t, child("meat products", "meat"), pairs[3])
	assert.Equal(t, top("clothes"), pairs[6])
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	pairs, err := Parse(strings.NewReader(DefaultOutline))
	require.NoError(t, err)

	calls := 0
	cats, err := Import(ctx, db.Categories, pairs, func() { calls++ })
	require.NoError(t, err)
	require.Len(t, cats, 7)
	assert.Equal(t, 7, calls)

	byName := map[string]int64{}
	for _, c := range cats {
		assert.Positive(t, c.PK)
		byName[c.Name] = c.PK
	}

	rawMeat, err := db.Categories.GetAll(ctx, storage.Filter{"name": "raw meat"})
	require.NoError(t, err)
	require.Len(t, rawMeat, 1)
	require.NotNil(t, rawMeat[0].Parent)
	assert.Equal(t, byName["meat"], *rawMeat[0].Parent)

	roots, err := db.Categories.GetAll(ctx, storage.Filter{"parent": nil})
	require.NoError(t, err)
	assert.Len(t, roots, 3)

	// Importing again reuses what exists.
	again, err := Import(ctx, db.Categories, pairs, nil)
	require.NoError(t, err)
	assert.Equal(t, cats, again)
	n, err := db.Categories.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestImport_ParentFromStore(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	produce := db.MustAddCategory("produce", nil)

	cats, err := Import(ctx, db.Categories, []Pair{child("fruit", "produce")}, nil)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	require.NotNil(t, cats[0].Parent)
	assert.Equal(t, produce.PK, *cats[0].Parent)
}

func TestImport_UnknownParent(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	_, err := Import(ctx, db.Categories, []Pair{child("orphan", "nobody")}, nil)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestImport_InvalidName(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	_, err := Import(ctx, db.Categories, []Pair{top(strings.Repeat("x", 30))}, nil)
	assert.ErrorIs(t, err, common.ErrValidationFailed)
}
