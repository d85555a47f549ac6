package money

import "testing"

func TestFormat(t *testing.T) {
	tests := []struct {
		amount   float64
		currency string
		want     string
	}{
		{1234.56, "USD", "$1,234.56"},
		{0, "", "$0.00"},
		{-10, "BRL", "-R$10.00"},
		{1000000, "EUR", "€1,000,000.00"},
		{12.345, "usd", "$12.35"},
		{5, "SEK", "SEK 5.00"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Format(tt.amount, tt.currency); got != tt.want {
				t.Errorf("Format(%v, %q) = %q, want %q", tt.amount, tt.currency, got, tt.want)
			}
		})
	}
}

func TestIsValidCurrency(t *testing.T) {
	tests := map[string]bool{
		"USD":  true,
		"BRL":  true,
		"EUR":  true,
		"XXXX": false,
		"":     false,
		"ZZZ":  false,
	}
	for code, want := range tests {
		if got := IsValidCurrency(code); got != want {
			t.Errorf("IsValidCurrency(%q) = %v, want %v", code, got, want)
		}
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(10.005); got != 10.01 {
		t.Errorf("Round2(10.005) = %v, want 10.01", got)
	}
	if got := Round2(3.14159); got != 3.14 {
		t.Errorf("Round2(3.14159) = %v, want 3.14", got)
	}
}
