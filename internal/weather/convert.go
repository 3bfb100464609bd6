package weather

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// CelsiusToFahrenheit converts a Celsius value given as text into a
// Fahrenheit display string such as "59.0°F". Unparsable input yields "N/A".
func CelsiusToFahrenheit(celsius string) string {
	c, err := strconv.ParseFloat(strings.TrimSpace(celsius), 64)
	if err != nil {
		return NotAvailable
	}
	return formatFahrenheit(c)
}

func formatFahrenheit(celsius float64) string {
	if math.IsNaN(celsius) || math.IsInf(celsius, 0) {
		return NotAvailable
	}
	return formatFixed(celsius*9/5+32, 1) + "°F"
}

// formatFixed renders v with the given number of decimals the way
// Number.prototype.toFixed does: the exact binary value is rounded, and only
// exact ties go away from zero. 0.35 is stored just below 0.35, so it renders
// as "0.3". Negative zero renders without a sign.
func formatFixed(v float64, decimals int) string {
	if exactTie(v, decimals) {
		pow := math.Pow(10, float64(decimals))
		v = math.Round(v*pow) / pow
	}
	out := strconv.FormatFloat(v, 'f', decimals, 64)
	if strings.TrimLeft(out, "-0.") == "" {
		out = strings.TrimPrefix(out, "-")
	}
	return out
}

// exactTie reports whether v lies exactly halfway between two values with
// the given number of decimals.
func exactTie(v float64, decimals int) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	x := new(big.Float).SetPrec(tiePrec).SetFloat64(math.Abs(v))
	scale := new(big.Float).SetPrec(tiePrec).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	x.Mul(x, scale)

	whole, _ := x.Int(nil)
	frac := x.Sub(x, new(big.Float).SetPrec(tiePrec).SetInt(whole))
	return frac.Cmp(big.NewFloat(0.5)) == 0
}

// tiePrec holds any float64 times a small power of ten without rounding.
const tiePrec = 256

func formatPercent(v float64) string {
	return formatFixed(v, 0) + "%"
}

func formatWind(v float64) string {
	return formatFixed(v, 1) + " m/s"
}

// formatChance scales a 0..1 probability to a whole percentage.
func formatChance(p float64) string {
	return formatFixed(p*100, 0) + "%"
}
