package cleaner

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/wonny/strikezone/internal/contracts"
	"github.com/wonny/strikezone/internal/dataset"
)

func reader(t *testing.T, content string) dataset.Reader {
	t.Helper()
	r, err := dataset.NewCSVReader(strings.NewReader(content))
	require.NoError(t, err)
	return r
}

func TestCleanReader(t *testing.T) {
	content := `px,pz,is_strike,sz_top,sz_bot,pitch_type
0.1,2.5,1,3.4,1.6,FF
abc,2.0,1,3.4,1.6,SL
0.3,,0,3.4,1.6,CH
-0.2,1.8,0,,1.5,FF
0.0,3.0,x,3.4,1.6,CU
1.1,0.4,2,3.3,bad,FF
-0.7,2.2,-1,3.3,1.6,SI
0.5,2.1,true,3.3,1.6,FF
`
	rs, err := CleanReader(context.Background(), 2022, "mem", reader(t, content), DefaultColumns())
	require.NoError(t, err)

	assert.Equal(t, 2022, rs.Year)
	assert.Equal(t, 8, rs.RawRows)
	require.Equal(t, 5, rs.Len())
	assert.Equal(t, 3, rs.DroppedTotal())
	assert.Equal(t, map[string]int{"px": 1, "pz": 1, "is_strike": 1}, rs.Dropped)

	// 순서 유지
	assert.Equal(t, []float64{0.1, -0.2, 1.1, -0.7, 0.5}, []float64{
		rs.Records[0].PX, rs.Records[1].PX, rs.Records[2].PX, rs.Records[3].PX, rs.Records[4].PX,
	})

	// outcome > 0 → 1, 나머지 0
	assert.Equal(t, []int{1, 0, 1, 0, 1}, []int{
		rs.Records[0].IsStrike, rs.Records[1].IsStrike, rs.Records[2].IsStrike, rs.Records[3].IsStrike, rs.Records[4].IsStrike,
	})

	// zone 컬럼은 원문 그대로
	assert.Equal(t, "", rs.Records[1].ZoneTop)
	assert.Equal(t, "bad", rs.Records[2].ZoneBottom)
}

func TestCleanReaderInvariants(t *testing.T) {
	content := "px,pz,is_strike,sz_top,sz_bot\n" +
		"inf,2,1,3,1\n" +
		"1,NaN,1,3,1\n" +
		"1e3,-5,0.5,3,1\n" +
		"0,0,0,3,1\n"

	rs, err := CleanReader(context.Background(), 2020, "mem", reader(t, content), DefaultColumns())
	require.NoError(t, err)
	require.Equal(t, 2, rs.Len())

	for _, r := range rs.Records {
		assert.False(t, math.IsInf(r.PX, 0) || math.IsNaN(r.PX))
		assert.False(t, math.IsInf(r.PZ, 0) || math.IsNaN(r.PZ))
		assert.Contains(t, []int{0, 1}, r.IsStrike)
	}
	// 범위 제한 없음
	assert.Equal(t, 1000.0, rs.Records[0].PX)
	assert.Equal(t, -5.0, rs.Records[0].PZ)
}

func TestCleanReaderMissingColumn(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		missing string
	}{
		{"no px", "pz,is_strike,sz_top,sz_bot", "px"},
		{"no outcome", "px,pz,sz_top,sz_bot", "is_strike"},
		{"no zone top", "px,pz,is_strike,sz_bot", "sz_top"},
		{"no zone bottom", "px,pz,is_strike,sz_top", "sz_bot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CleanReader(context.Background(), 2020, "pitches_2020.csv", reader(t, tt.header+"\n"), DefaultColumns())

			var se *contracts.SchemaError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.missing, se.Field)
			assert.Equal(t, "pitches_2020.csv", se.Source)
		})
	}
}

func TestCleanCustomColumns(t *testing.T) {
	cols := Columns{
		Horizontal: "plate_x",
		Vertical:   "plate_z",
		Outcome:    "called_strike",
		ZoneTop:    "top",
		ZoneBottom: "bottom",
	}
	content := "plate_x,plate_z,called_strike,top,bottom\n0.2,2.4,1,3.5,1.5\n"

	rs, err := CleanReader(context.Background(), 2024, "mem", reader(t, content), cols)
	require.NoError(t, err)
	require.Equal(t, 1, rs.Len())
	assert.Equal(t, "3.5", rs.Records[0].ZoneTop)
}

func TestCleanFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pitches_2021.csv")
	require.NoError(t, os.WriteFile(path, []byte("px,pz,is_strike,sz_top,sz_bot\n0.1,2.0,1,3.4,1.6\n"), 0o644))

	rs, err := Clean(context.Background(), 2021, path, DefaultColumns())
	require.NoError(t, err)
	assert.Equal(t, path, rs.Source)
	assert.Equal(t, 1, rs.Len())

	_, err = Clean(context.Background(), 2021, path+".missing", DefaultColumns())
	var nf *contracts.SourceNotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestCleanXLSXKeepsStoredPrecision(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pitches_2021.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"px", "pz", "is_strike", "sz_top", "sz_bot"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{0.12345, 2.71828, 1, 3.4125, 1.5875}))
	twoDecimals, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "A2", "E2", twoDecimals))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	r, err := dataset.Open(path)
	require.NoError(t, err)
	defer r.Close()

	rs, err := CleanReader(context.Background(), 2021, path, r, DefaultColumns())
	require.NoError(t, err)
	require.Equal(t, 1, rs.Len())
	assert.Equal(t, 0.12345, rs.Records[0].PX)
	assert.Equal(t, 2.71828, rs.Records[0].PZ)
	assert.Equal(t, "3.4125", rs.Records[0].ZoneTop)
	assert.Equal(t, "1.5875", rs.Records[0].ZoneBottom)
}
