// Package utils holds the display formatting shared by the table views.
package utils

import (
	"fmt"
	"math/big"
	"strings"
	"time"
)

// TruncateString shortens str to num runes, ending in "..." when there is
// room for it.
func TruncateString(str string, num int) string {
	r := []rune(str)
	if len(r) <= num {
		return str
	}
	if num <= 3 {
		return string(r[:max(num, 0)])
	}
	return string(r[:num-3]) + "..."
}

// ShortenAddr renders 0x1234...abcd for an address or hash. Anything that
// does not look like hex is truncated instead.
func ShortenAddr(addr string) string {
	if !strings.HasPrefix(addr, "0x") || len(addr) <= 14 {
		return TruncateString(addr, 14)
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

// AddCommas groups the integer part of a decimal string by thousands.
func AddCommas(s string) string {
	if s == "" {
		return s
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	sign := ""
	if strings.HasPrefix(intPart, "-") {
		sign, intPart = "-", intPart[1:]
	}
	n := len(intPart)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	b.WriteString(sign)
	for i, c := range intPart {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

func FormatFloat(f float64, decimals int) string {
	return AddCommas(fmt.Sprintf("%.*f", decimals, f))
}

// FormatUnits renders an integer amount of base units with the given token
// decimals, rounded down to places fractional digits.
func FormatUnits(amount *big.Int, decimals, places int) string {
	if amount == nil {
		return "-"
	}
	v := new(big.Float).SetPrec(256).SetInt(amount)
	if decimals > 0 {
		div := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
		v.Quo(v, div)
	}
	return AddCommas(v.Text('f', places))
}

// FormatEther renders a wei amount in ether with four places.
func FormatEther(wei *big.Int) string {
	return FormatUnits(wei, 18, 4)
}

// FormatBytes renders a size with a binary unit.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// FormatAge renders how long ago t was, coarsely.
func FormatAge(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := now.Sub(t)
	switch {
	case d < 0:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return fmt.Sprintf("%dd", int(d.Hours()/24))
}
