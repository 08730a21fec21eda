package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestFormatOrderNumber(t *testing.T) {
	assert.Equal(t, "0001", FormatOrderNumber(1))
	assert.Equal(t, "0042", FormatOrderNumber(42))
	assert.Equal(t, "12345", FormatOrderNumber(12345))
}

func TestResolveDisplayNumber(t *testing.T) {
	main := &Order{OrderNumber: "0042"}
	assert.Equal(t, "0042", ResolveDisplayNumber(main, ""))
	assert.Equal(t, MainOrder{}, main.Kind())

	extra := &Order{OrderNumber: "0042", IsExtraWork: true, ParentOrderID: intPtr(7), SubNumber: intPtr(3)}
	assert.Equal(t, "0042-03", ResolveDisplayNumber(extra, "0042"))
	assert.Equal(t, ExtraWork{ParentID: 7, SubNumber: 3}, extra.Kind())

	extra.SubNumber = intPtr(12)
	assert.Equal(t, "0042-12", ResolveDisplayNumber(extra, "0042"))
}

func TestParseDisplayNumber(t *testing.T) {
	tests := []struct {
		in      string
		number  string
		sub     int
		wantErr bool
	}{
		{"0042", "0042", 0, false},
		{" 0042-03 ", "0042", 3, false},
		{"0042-10", "0042", 10, false},
		{"", "", 0, true},
		{"abc", "", 0, true},
		{"0042-", "", 0, true},
		{"0042-00", "", 0, true},
		{"0042-x1", "", 0, true},
		{"0042-+1", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			number, sub, err := ParseDisplayNumber(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.number, number)
			assert.Equal(t, tt.sub, sub)
		})
	}
}
