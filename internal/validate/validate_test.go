package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"simple", "John", "John", false},
		{"lowercased input", "john", "John", false},
		{"collapses whitespace", "  mary   ann ", "Mary Ann", false},
		{"apostrophe kept", "O'Brien", "O'brien", false},
		{"hyphenated", "smith-jones", "Smith-Jones", false},
		{"empty", "", "", true},
		{"whitespace only", "   ", "", true},
		{"digits rejected", "John3", "", true},
		{"leading hyphen rejected", "-John", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Name(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"simple", "john@example.com", "john@example.com", false},
		{"lowercases", "John@Example.COM", "john@example.com", false},
		{"trims", "  a@x.io ", "a@x.io", false},
		{"plus tag", "a+tag@x.io", "a+tag@x.io", false},
		{"empty", "", "", true},
		{"no at", "johnexample.com", "", true},
		{"no tld", "john@example", "", true},
		{"spaces inside", "jo hn@example.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Email(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCents(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int64
		wantErr bool
	}{
		{"integer dollars", "400", 40000, false},
		{"two decimals", "12.34", 1234, false},
		{"one decimal", "12.3", 1230, false},
		{"bare fraction", ".5", 50, false},
		{"trailing dot", "12.", 1200, false},
		{"rounds half up", "1.005", 101, false},
		{"rounds down", "1.004", 100, false},
		{"zero", "0", 0, false},
		{"explicit plus", "+3.50", 350, false},
		{"negative", "-1", 0, true},
		{"negative decimal", "-0.01", 0, true},
		{"empty", "", 0, true},
		{"non-numeric", "abc", 0, true},
		{"mixed", "12a.00", 0, true},
		{"lone dot", ".", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Cents(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "$350.25", FormatCents(35025))
	assert.Equal(t, "$0.00", FormatCents(0))
	assert.Equal(t, "$0.05", FormatCents(5))
	assert.Equal(t, "$400.00", FormatCents(40000))
	assert.Equal(t, "-$1.50", FormatCents(-150))
}

func TestDate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"iso passes through", "2026-12-20", "2026-12-20", false},
		{"us dashes", "12-20-2026", "2026-12-20", false},
		{"us slashes", "12/20/2026", "2026-12-20", false},
		{"trims", " 2026-12-20 ", "2026-12-20", false},
		{"empty means no date", "", "", false},
		{"garbage", "not-a-date", "", true},
		{"bad month", "13-20-2026", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Date(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
