package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderDate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"full month name", "Order placed June 3, 2025 at 10:04 AM", "2025-06-03"},
		{"abbreviation with ordinal", "Shipped Sept. 14th, 2024", "2024-09-14"},
		{"numeric", "Date: 06/03/2025", "2025-06-03"},
		{"invalid numeric", "Date: 13/45/2025", ""},
		{"invalid numeric leaves date empty", "02/30/2024 was rejected, charged 03/01/2024", ""},
		{"invalid month name leaves date empty", "Ordered June 31, 2025\nShipped 06/03/2025", ""},
		{"invalid month name not rescued by later one", "Feb 30, 2024 then Jan 2, 2024", ""},
		{"month name preferred over numeric", "04/05/2024 then Jan 2, 2024", "2024-01-02"},
		{"no date", "Thanks for your order", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OrderDate(tt.text)
			if tt.want == "" {
				assert.False(t, got.OK())
				return
			}
			assert.True(t, got.OK())
			assert.Equal(t, tt.want, got.Value().String())
		})
	}
}
