package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_Scan(t *testing.T) {
	tests := []struct {
		name    string
		src     interface{}
		want    Date
		wantErr bool
	}{
		{name: "time", src: time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC), want: NewDate(2024, time.March, 9)},
		{name: "string", src: "2024-03-09", want: NewDate(2024, time.March, 9)},
		{name: "timestamp string", src: "2024-03-09T00:00:00Z", want: NewDate(2024, time.March, 9)},
		{name: "bytes", src: []byte("2024-12-31"), want: NewDate(2024, time.December, 31)},
		{name: "nil", src: nil, want: Date{}},
		{name: "garbage", src: "lol", wantErr: true},
		{name: "unsupported", src: 42, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			err := d.Scan(tt.src)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d)
		})
	}
}

func TestDate_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Datum Date `json:"datum"`
	}{NewDate(2024, time.July, 1)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"datum": "2024-07-01"}`, string(data))

	var d Date
	v, err := NewDate(2024, time.July, 1).Value()
	require.NoError(t, err)
	require.NoError(t, d.Scan(v))
	assert.Equal(t, 2024, d.Year)
	assert.False(t, Date{}.IsSet())
}

func TestMonthRange(t *testing.T) {
	start, end := MonthRange(2024, 12)
	assert.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), end)

	assert.True(t, ValidYearMonth(2024, 1))
	assert.False(t, ValidYearMonth(2024, 13))
	assert.False(t, ValidYearMonth(1899, 5))
}
