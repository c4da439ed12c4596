package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/KaramelBytes/sporesheet-cli/internal/grid"
	"github.com/KaramelBytes/sporesheet-cli/internal/sheet"
)

// buildSheet lays out one header row with n sample columns and "Total",
// followed by the given data rows (label first).
func buildSheet(n int, rows ...[]any) *grid.Memory {
	header := []any{"Type"}
	for i := 1; i <= n; i++ {
		header = append(header, "S"+string(rune('0'+i%10)))
	}
	header = append(header, sheet.Total)
	all := [][]any{{"Spore counts"}, {}, header}
	all = append(all, rows...)
	return grid.FromRows(all)
}

func statRow(t *testing.T, g grid.Grid, row int) map[string]grid.Value {
	t.Helper()
	out := make(map[string]grid.Value)
	for _, name := range sheet.StatColumns {
		col, ok, err := sheet.Find(g, name)
		require.NoError(t, err)
		require.True(t, ok, "column %s missing", name)
		v, err := g.Cell(row, col)
		require.NoError(t, err)
		out[name] = v
	}
	return out
}

func headers(t *testing.T, g grid.Grid) []string {
	t.Helper()
	var out []string
	for c := 1; c <= g.MaxColumn(); c++ {
		v, err := g.Cell(sheet.HeaderRow, c)
		require.NoError(t, err)
		out = append(out, v.Text())
	}
	return out
}

func TestPipelineReferenceRow(t *testing.T) {
	g := buildSheet(8, []any{"Alternaria", 2, 4, 4, 4, 5, 5, 7, 9})
	require.NoError(t, New().Run(g))

	got := statRow(t, g, 4)
	assert.True(t, got[sheet.Total].Equal(grid.IntValue(40)))
	assert.True(t, got[sheet.Mean].Equal(grid.FloatValue(5)))
	stdv := got[sheet.Stdv]
	require.Equal(t, grid.Float, stdv.Kind())
	f, _ := stdv.Raw().(float64)
	assert.InDelta(t, 2.1381, f, 1e-4)
	assert.True(t, got[sheet.Frequency].Equal(grid.FloatValue(100)))
	assert.True(t, got[sheet.Min].Equal(grid.IntValue(2)))
	assert.True(t, got[sheet.Percentile5].Equal(grid.IntValue(2)))
	assert.True(t, got[sheet.Median].Equal(grid.FloatValue(4.5)))
	assert.True(t, got[sheet.Percentile95].Equal(grid.IntValue(9)))
	assert.True(t, got[sheet.Max].Equal(grid.IntValue(9)))
	assert.True(t, got[sheet.Count].Equal(grid.IntValue(8)))
}

func TestPipelineColumnOrder(t *testing.T) {
	g := buildSheet(2, []any{"Alternaria", 1, 2})
	require.NoError(t, New().Run(g))
	want := append([]string{"Type", "S1", "S2"}, sheet.StatColumns...)
	assert.Equal(t, want, headers(t, g))
}

func TestPipelineEmptyRow(t *testing.T) {
	g := buildSheet(3, []any{"Alternaria", 1, 2, 3}, []any{"Stachybotrys"})
	require.NoError(t, New().Run(g))

	got := statRow(t, g, 5)
	assert.True(t, got[sheet.Total].Equal(grid.IntValue(0)))
	assert.True(t, got[sheet.Count].Equal(grid.IntValue(0)))
	assert.True(t, got[sheet.Frequency].Equal(grid.FloatValue(0)))
	for _, name := range []string{sheet.Mean, sheet.Stdv, sheet.Min, sheet.Percentile5, sheet.Median, sheet.Percentile95, sheet.Max} {
		assert.True(t, got[name].IsEmpty(), "%s should be empty, got %v", name, got[name])
	}
}

func TestPipelineSingleValueHasNoStdv(t *testing.T) {
	g := buildSheet(3, []any{"Alternaria", nil, 6, nil})
	require.NoError(t, New().Run(g))
	got := statRow(t, g, 4)
	assert.True(t, got[sheet.Stdv].IsEmpty())
	assert.True(t, got[sheet.Mean].Equal(grid.FloatValue(6)))
	assert.True(t, got[sheet.Median].Equal(grid.IntValue(6)), "odd count yields the middle value itself")
}

func TestFrequencyUsesWholeSpan(t *testing.T) {
	g := buildSheet(10, []any{"Alternaria", 3, 0, "0", nil, 12, nil, nil, 0, 1, nil})
	require.NoError(t, New().Run(g))
	got := statRow(t, g, 4)
	assert.True(t, got[sheet.Frequency].Equal(grid.FloatValue(30)), "got %v", got[sheet.Frequency])
	assert.True(t, got[sheet.Count].Equal(grid.IntValue(6)))
}

func TestFrequencyRoundsToTwoPlaces(t *testing.T) {
	g := buildSheet(3, []any{"Alternaria", 1, nil, nil})
	require.NoError(t, New().Run(g))
	got := statRow(t, g, 4)
	assert.True(t, got[sheet.Frequency].Equal(grid.FloatValue(33.33)), "got %v", got[sheet.Frequency])
}

func TestFrequencyRoundsTiesToEven(t *testing.T) {
	tests := []struct {
		present int
		want    float64
	}{
		{1, 3.12},  // 3.125
		{5, 15.62}, // 15.625
		{7, 21.88}, // 21.875
		{3, 9.38},  // 9.375
	}
	for _, tt := range tests {
		row := []any{"Alternaria"}
		for i := 0; i < 32; i++ {
			if i < tt.present {
				row = append(row, 7)
			} else {
				row = append(row, nil)
			}
		}
		g := buildSheet(32, row)
		require.NoError(t, New().Run(g))
		got := statRow(t, g, 4)
		assert.True(t, got[sheet.Frequency].Equal(grid.FloatValue(tt.want)),
			"%d of 32 present: got %v, want %v", tt.present, got[sheet.Frequency], tt.want)
	}
}

func TestSpanBoundaries(t *testing.T) {
	tests := []struct {
		mode SpanMode
		want map[string]grid.Value
	}{
		{SpanUniform, map[string]grid.Value{
			sheet.Total:        grid.IntValue(6),
			sheet.Mean:         grid.FloatValue(2),
			sheet.Frequency:    grid.FloatValue(100),
			sheet.Min:          grid.IntValue(1),
			sheet.Percentile5:  grid.IntValue(1),
			sheet.Median:       grid.IntValue(2),
			sheet.Percentile95: grid.IntValue(3),
			sheet.Max:          grid.IntValue(3),
			sheet.Count:        grid.IntValue(3),
		}},
		{SpanLegacy, map[string]grid.Value{
			sheet.Total:        grid.IntValue(6),
			sheet.Mean:         grid.FloatValue(2),
			sheet.Frequency:    grid.FloatValue(100),
			sheet.Min:          grid.IntValue(1),
			sheet.Percentile5:  grid.IntValue(1),
			sheet.Median:       grid.FloatValue(1.5),
			sheet.Percentile95: grid.IntValue(2),
			sheet.Max:          grid.IntValue(2),
			sheet.Count:        grid.IntValue(2),
		}},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			g := buildSheet(3, []any{"Alternaria", 1, 2, 3})
			require.NoError(t, New(WithSpanMode(tt.mode)).Run(g))
			got := statRow(t, g, 4)
			for name, want := range tt.want {
				assert.True(t, got[name].Equal(want), "%s: got %v want %v", name, got[name], want)
			}
		})
	}
}

func TestPipelineIsIdempotent(t *testing.T) {
	g := buildSheet(4,
		[]any{"Alternaria", 1, 5, nil, 2},
		[]any{"Cladosporium", 10, 0, 30, 22},
		[]any{"Stachybotrys"},
	)
	p := New()
	require.NoError(t, p.Run(g))
	first := snapshot(t, g)
	width := g.MaxColumn()

	require.NoError(t, sheet.Reset(g))
	require.NoError(t, p.Run(g))
	assert.Equal(t, width, g.MaxColumn())
	assert.Equal(t, first, snapshot(t, g))

	// skipping the reset must not accumulate anything either
	require.NoError(t, p.Run(g))
	assert.Equal(t, first, snapshot(t, g))
}

func TestPipelineRequiresTotal(t *testing.T) {
	g := grid.FromRows([][]any{{}, {}, {"Type", "S1"}, {"Alternaria", 1}})
	err := New().Run(g)
	var missing *sheet.MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, 2, g.MaxColumn(), "nothing is provisioned without Total")
}

func TestNonNumericCellsAreSkippedAndLoggedOnce(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	g := buildSheet(3, []any{"Alternaria", 4, "n/a", 6})
	require.NoError(t, New(WithLogger(zap.New(core))).Run(g))

	got := statRow(t, g, 4)
	assert.True(t, got[sheet.Total].Equal(grid.IntValue(10)))
	assert.True(t, got[sheet.Mean].Equal(grid.FloatValue(5)))
	assert.True(t, got[sheet.Count].Equal(grid.IntValue(3)), "text still counts as a filled cell")
	assert.Equal(t, 1, logs.FilterMessage("non-numeric sample cell treated as empty").Len())
}

func TestStageAnchorsFollowLayout(t *testing.T) {
	stages := Stages()
	require.Len(t, stages, len(sheet.StatColumns))
	for i, s := range stages {
		assert.Equal(t, sheet.StatColumns[i], s.Name)
		if i > 0 {
			assert.Equal(t, sheet.StatColumns[i-1], s.Anchor, "anchor of %s", s.Name)
		}
	}
	maxStage, ok := Lookup(sheet.Max)
	require.True(t, ok)
	assert.Equal(t, sheet.Percentile95, maxStage.Anchor)
}

func TestParseSpanMode(t *testing.T) {
	m, err := ParseSpanMode("")
	require.NoError(t, err)
	assert.Equal(t, SpanUniform, m)
	m, err = ParseSpanMode(" Legacy ")
	require.NoError(t, err)
	assert.Equal(t, SpanLegacy, m)
	_, err = ParseSpanMode("sideways")
	assert.Error(t, err)
}

func snapshot(t *testing.T, g grid.Grid) [][]string {
	t.Helper()
	var out [][]string
	for r := 1; r <= g.MaxRow(); r++ {
		row := make([]string, g.MaxColumn())
		for c := 1; c <= g.MaxColumn(); c++ {
			v, err := g.Cell(r, c)
			require.NoError(t, err)
			row[c-1] = v.Kind().String() + ":" + v.Text()
		}
		out = append(out, row)
	}
	return out
}
