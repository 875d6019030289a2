package candidates

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"applygen-backend/internal/catalog"
	"applygen-backend/resume/model"
)

func TestSelectReturnsDistinctBalancedCandidates(t *testing.T) {
	cat := catalog.Default()
	poolSize := len(cat.Candidates())

	for seed := int64(1); seed <= 5; seed++ {
		sel := NewCatalogSelector(cat, NewSource(seed))
		for n := 2; n <= 24; n++ {
			got, err := sel.Select(n)
			require.NoError(t, err)

			want := n
			if want > poolSize {
				want = poolSize
			}
			all := got.Candidates()
			require.Len(t, all, want, "n=%d seed=%d", n, seed)
			require.Equal(t, want, got.Len())

			seen := make(map[string]bool)
			for _, c := range all {
				require.False(t, seen[c.ID], "duplicate %s for n=%d", c.ID, n)
				seen[c.ID] = true
			}

			limit := (n + len(Cells) - 1) / len(Cells)
			for cell, picked := range got.Cells {
				assert.LessOrEqual(t, len(picked), limit, "cell %s n=%d", cell, n)
				for _, c := range picked {
					assert.Equal(t, cell.Gender, c.Gender)
				}
			}
		}
	}
}

func TestSelectSixFillsEveryCell(t *testing.T) {
	sel := NewCatalogSelector(catalog.Default(), NewSource(42))
	got, err := sel.Select(6)
	require.NoError(t, err)

	assert.Empty(t, got.Backfill)
	for _, cell := range Cells {
		assert.Len(t, got.Cells[cell], 1, "cell %s", cell)
	}

	got, err = sel.Select(12)
	require.NoError(t, err)
	for _, cell := range Cells {
		assert.Len(t, got.Cells[cell], 2, "cell %s", cell)
	}
}

func TestSelectBackfillsUnderSuppliedCells(t *testing.T) {
	pool := []model.Candidate{
		{ID: "1", Name: "A", Gender: model.GenderFemale, Origin: "White"},
		{ID: "2", Name: "B", Gender: model.GenderFemale, Origin: "White"},
		{ID: "3", Name: "C", Gender: model.GenderFemale, Origin: "White"},
		{ID: "4", Name: "D", Gender: model.GenderMale, Origin: "White"},
		{ID: "5", Name: "E", Gender: model.GenderMale, Origin: "White"},
		{ID: "6", Name: "F", Gender: model.GenderMale, Origin: "Martian"},
	}
	groups := catalog.OriginGroups{Majority: []string{"White"}, MinorityA: []string{"Asian"}}
	got, err := NewSelector(pool, groups, NewSource(7)).Select(6)
	require.NoError(t, err)

	assert.Len(t, got.Cells[Cell{Gender: model.GenderFemale, Group: GroupMajority}], 1)
	assert.Len(t, got.Cells[Cell{Gender: model.GenderMale, Group: GroupMajority}], 1)
	assert.Len(t, got.Backfill, 4)
	assert.Len(t, got.Candidates(), 6)
}

func TestSelectErrors(t *testing.T) {
	_, err := NewSelector(nil, catalog.OriginGroups{}, NewSource(1)).Select(4)
	assert.True(t, errors.Is(err, ErrEmptyPool))

	_, err = NewCatalogSelector(catalog.Default(), NewSource(1)).Select(0)
	assert.True(t, errors.Is(err, ErrInvalidCount))
}

func TestSelectIsDeterministicForSeed(t *testing.T) {
	a, err := NewCatalogSelector(catalog.Default(), NewSource(99)).Select(8)
	require.NoError(t, err)
	b, err := NewCatalogSelector(catalog.Default(), NewSource(99)).Select(8)
	require.NoError(t, err)
	assert.Equal(t, a.Candidates(), b.Candidates())
}

func TestRandomizerAssign(t *testing.T) {
	cat := catalog.Default()
	germany, ok := cat.Country("Germany")
	require.True(t, ok)
	r := NewRandomizer(NewSource(3), cat.Universities())

	base := cat.Candidates()[0]
	for i := 0; i < 50; i++ {
		master := r.Assign(base, germany, "Master of Science in Computer Science")
		require.True(t, strings.HasSuffix(master.Location, ", Germany"), master.Location)
		assert.Contains(t, germany.Cities, strings.TrimSuffix(master.Location, ", Germany"))
		require.NotEmpty(t, master.MastersUniversity)
		require.NotEmpty(t, master.BachelorsUniversity)
		assert.NotEqual(t, master.MastersUniversity, master.BachelorsUniversity)

		bachelor := r.Assign(base, germany, "Bachelor of Science in Computer Science")
		assert.Empty(t, bachelor.MastersUniversity)
		assert.Contains(t, cat.Universities(), bachelor.BachelorsUniversity)
	}
	assert.Empty(t, base.Location, "Assign must not mutate its input")
}

func TestRandomizerTheme(t *testing.T) {
	r := NewRandomizer(NewSource(5), nil)
	for i := 0; i < 100; i++ {
		th := r.Theme()
		assert.Contains(t, model.Palette, th.AccentColor)
		assert.Contains(t, model.Palette, th.LetterHeaderColor)
		assert.Contains(t, model.NameFonts, th.NameFont)
		assert.Contains(t, model.LetterFonts, th.LetterHeaderFont)
		assert.Contains(t, model.Alignments, th.NameAlign)
		assert.Contains(t, model.HeadingCases, th.HeadingCase)
		assert.Contains(t, model.Emphases, th.CompanyEmphasis)
		assert.Contains(t, model.Separators, th.Separator)
	}
}

func TestSampleAndPick(t *testing.T) {
	src := NewSource(11)
	items := []int{1, 2, 3, 4, 5}
	got := Sample(src, items, 3)
	assert.Len(t, got, 3)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, items)
	assert.Len(t, Sample(src, items, 10), 5)
	assert.Nil(t, Sample(src, items, 0))
	assert.Equal(t, "", Pick(src, []string(nil)))
}
