package utils

import (
	"math/big"
	"testing"
	"time"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		input    string
		length   int
		expected string
	}{
		{"hello world", 5, "he..."},
		{"short", 10, "short"},
		{"exact", 5, "exact"},
		{"", 5, ""},
		{"abc", 2, "ab"},
		{"abc", 3, "abc"},
		{"ünïcödé", 6, "ünï..."},
	}

	for _, tt := range tests {
		result := TruncateString(tt.input, tt.length)
		if result != tt.expected {
			t.Errorf("TruncateString(%q, %d) = %q; want %q", tt.input, tt.length, result, tt.expected)
		}
	}
}

func TestShortenAddr(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045", "0xd8dA...6045"},
		{"0x1234", "0x1234"},
		{"vitalik.eth", "vitalik.eth"},
		{"averyveryverylongname.eth", "averyveryve..."},
	}

	for _, tt := range tests {
		result := ShortenAddr(tt.input)
		if result != tt.expected {
			t.Errorf("ShortenAddr(%q) = %q; want %q", tt.input, result, tt.expected)
		}
	}
}

func TestAddCommas(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"123", "123"},
		{"1234", "1,234"},
		{"123456", "123,456"},
		{"1234567", "1,234,567"},
		{"1234.56", "1,234.56"},
		{"-1234", "-1,234"},
		{"-123", "-123"},
		{"", ""},
	}

	for _, tt := range tests {
		result := AddCommas(tt.input)
		if result != tt.expected {
			t.Errorf("AddCommas(%q) = %q; want %q", tt.input, result, tt.expected)
		}
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		input    float64
		decimals int
		expected string
	}{
		{1234.5678, 2, "1,234.57"},
		{1234.5, 2, "1,234.50"},
		{0, 2, "0.00"},
	}

	for _, tt := range tests {
		result := FormatFloat(tt.input, tt.decimals)
		if result != tt.expected {
			t.Errorf("FormatFloat(%f, %d) = %q; want %q", tt.input, tt.decimals, result, tt.expected)
		}
	}
}

func TestFormatUnits(t *testing.T) {
	oneEther, _ := new(big.Int).SetString("1000000000000000000", 10)
	bigWei, _ := new(big.Int).SetString("1234500000000000000000", 10)

	tests := []struct {
		input    *big.Int
		decimals int
		places   int
		expected string
	}{
		{nil, 18, 4, "-"},
		{oneEther, 18, 4, "1.0000"},
		{bigWei, 18, 2, "1,234.50"},
		{big.NewInt(1500000), 6, 2, "1.50"},
		{big.NewInt(42), 0, 0, "42"},
	}

	for _, tt := range tests {
		result := FormatUnits(tt.input, tt.decimals, tt.places)
		if result != tt.expected {
			t.Errorf("FormatUnits(%v, %d, %d) = %q; want %q", tt.input, tt.decimals, tt.places, result, tt.expected)
		}
	}

	if got := FormatEther(oneEther); got != "1.0000" {
		t.Errorf("FormatEther = %q", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{25 * 1024 * 1024, "25.0 MiB"},
	}

	for _, tt := range tests {
		result := FormatBytes(tt.input)
		if result != tt.expected {
			t.Errorf("FormatBytes(%d) = %q; want %q", tt.input, result, tt.expected)
		}
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		input    time.Time
		expected string
	}{
		{time.Time{}, "-"},
		{now.Add(time.Minute), "now"},
		{now.Add(-30 * time.Second), "30s"},
		{now.Add(-5 * time.Minute), "5m"},
		{now.Add(-3 * time.Hour), "3h"},
		{now.Add(-50 * time.Hour), "2d"},
	}

	for _, tt := range tests {
		result := FormatAge(tt.input, now)
		if result != tt.expected {
			t.Errorf("FormatAge(%v) = %q; want %q", tt.input, result, tt.expected)
		}
	}
}
