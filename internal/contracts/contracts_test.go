package contracts

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus Status
		wantKind   ErrorKind
	}{
		{"nil", nil, StatusSuccess, ""},
		{"not found", &SourceNotFoundError{Path: "x.csv"}, StatusSkipped, KindSourceNotFound},
		{"wrapped not found", fmt.Errorf("clean: %w", &SourceNotFoundError{Path: "x.csv"}), StatusSkipped, KindSourceNotFound},
		{"schema", &SchemaError{Field: "px"}, StatusFailed, KindSchema},
		{"wrapped schema", fmt.Errorf("open: %w", &SchemaError{Field: "sz_top"}), StatusFailed, KindSchema},
		{"processing", &ProcessingError{Stage: StageBin, Err: ErrEmptyRecordSet}, StatusFailed, KindProcessing},
		{"plain", errors.New("disk full"), StatusFailed, KindProcessing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, kind := Classify(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantKind, kind)
		})
	}
}

func TestProcessing(t *testing.T) {
	assert.Nil(t, Processing(StageBin, nil))

	err := Processing(StageBin, ErrEmptyRecordSet)
	var pe *ProcessingError
	assert.True(t, errors.As(err, &pe))
	assert.Equal(t, StageBin, pe.Stage)
	assert.ErrorIs(t, err, ErrEmptyRecordSet)

	// 이미 분류된 에러는 그대로
	schema := &SchemaError{Field: "px", Source: "a.csv"}
	assert.Same(t, schema, Processing(StageClean, schema))
	assert.Contains(t, schema.Error(), `"px"`)
}

func TestYearResultFail(t *testing.T) {
	r := YearResult{Year: 2022}
	r.Fail(StageClean, &SchemaError{Field: "is_strike"})

	assert.Equal(t, StatusFailed, r.Status)
	assert.Equal(t, KindSchema, r.Kind)
	assert.Equal(t, StageClean, r.Stage)
	assert.Contains(t, r.Reason, "is_strike")
}

func TestBatchReportCounts(t *testing.T) {
	report := BatchReport{Years: []YearResult{
		{Year: 2020, Status: StatusSuccess},
		{Year: 2021, Status: StatusSkipped},
		{Year: 2022, Status: StatusFailed},
		{Year: 2023, Status: StatusSuccess},
	}}

	assert.Equal(t, 2, report.Succeeded())
	assert.Equal(t, 1, report.Skipped())
	assert.Equal(t, 1, report.Failed())
}

func TestSurfaceAt(t *testing.T) {
	s := &StrikeRateSurface{
		Rate: [][]float64{
			{0.5, math.NaN()},
			{1.0, 0},
		},
	}

	r, ok := s.At(0, 0)
	assert.True(t, ok)
	assert.Equal(t, 0.5, r)

	_, ok = s.At(0, 1)
	assert.False(t, ok, "empty bin must not report a rate")

	r, ok = s.At(1, 1)
	assert.True(t, ok)
	assert.Equal(t, 0.0, r)

	_, ok = s.At(5, 0)
	assert.False(t, ok)

	assert.Equal(t, 3, s.Defined())
}

func TestRecordSet(t *testing.T) {
	rs := RecordSet{
		RawRows: 5,
		Records: []Record{{IsStrike: 1}, {IsStrike: 0}, {IsStrike: 1}},
	}
	assert.Equal(t, 3, rs.Len())
	assert.Equal(t, 2, rs.DroppedTotal())
	assert.Equal(t, 2, rs.Strikes())
}

func TestStages(t *testing.T) {
	for _, s := range AllStages() {
		assert.True(t, IsValidStage(s.String()))
		assert.NotEqual(t, "알 수 없음", s.Description())
	}
	assert.False(t, IsValidStage("S0_DATA_QUALITY"))
}
