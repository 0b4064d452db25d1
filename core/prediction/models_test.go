package prediction

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/alama/core"
)

func TestHistoryQuery_Filter(t *testing.T) {
	kinshasa := time.FixedZone("WAT", 1*60*60)

	tests := []struct {
		name    string
		query   HistoryQuery
		loc     *time.Location
		want    QueryFilter
		wantErr []string // fields
	}{
		{name: "empty", query: HistoryQuery{}, loc: time.UTC, want: QueryFilter{}},
		{name: "ALL", query: HistoryQuery{Grade: "ALL"}, loc: time.UTC, want: QueryFilter{}},
		{name: "grade", query: HistoryQuery{Grade: " B "}, loc: time.UTC, want: QueryFilter{Grade: "B"}},
		{name: "unknown grade is kept", query: HistoryQuery{Grade: "Z"}, loc: time.UTC, want: QueryFilter{Grade: "Z"}},
		{
			name: "dates", query: HistoryQuery{Start: "2024-03-10", End: "2024-03-11"}, loc: time.UTC,
			want: QueryFilter{
				Start: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
				End:   time.Date(2024, 3, 11, 23, 59, 59, 999999000, time.UTC),
			},
		},
		{
			name: "dates in reference zone", query: HistoryQuery{Start: "2024-03-10", End: "2024-03-10"}, loc: kinshasa,
			want: QueryFilter{
				Start: time.Date(2024, 3, 10, 0, 0, 0, 0, kinshasa),
				End:   time.Date(2024, 3, 10, 23, 59, 59, 999999000, kinshasa),
			},
		},
		{
			name: "timestamps", query: HistoryQuery{Start: "2024-03-10T10:00:00Z", End: "2024-03-10T12:30:00+01:00"}, loc: time.UTC,
			want: QueryFilter{
				Start: time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC),
				End:   time.Date(2024, 3, 10, 11, 30, 0, 0, time.UTC),
			},
		},
		{name: "bad start", query: HistoryQuery{Start: "10/03/2024"}, loc: time.UTC, wantErr: []string{"start"}},
		{name: "bad bounds", query: HistoryQuery{Start: "yesterday", End: "2024-13-01"}, loc: time.UTC, wantErr: []string{"start", "end"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.query.Filter(tt.loc)
			if tt.wantErr != nil {
				var vErr *core.ValidationError
				require.True(t, errors.As(err, &vErr), "error = %v", err)
				fields := make([]string, 0, len(vErr.Fields))
				for _, f := range vErr.Fields {
					fields = append(fields, f.Field)
				}
				assert.Equal(t, tt.wantErr, fields)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.Grade, got.Grade)
			assert.True(t, tt.want.Start.Equal(got.Start), "Start = %v; want %v", got.Start, tt.want.Start)
			assert.True(t, tt.want.End.Equal(got.End), "End = %v; want %v", got.End, tt.want.End)
		})
	}
}
