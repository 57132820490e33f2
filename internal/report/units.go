package report

import (
	"github.com/cockroachdb/apd/v3"
)

// unitContext performs unit conversions in exact decimal arithmetic so
// that rounding happens once, at display precision.
var unitContext = func() *apd.Context {
	ctx := apd.BaseContext.WithPrecision(34)
	ctx.Rounding = apd.RoundHalfUp
	return ctx
}()

// scaled returns v/divisor rounded to places decimal places.
func scaled(v, divisor int64, places int32) string {
	var q apd.Decimal
	if _, err := unitContext.Quo(&q, apd.New(v, 0), apd.New(divisor, 0)); err != nil {
		return "NaN"
	}
	if _, err := unitContext.Quantize(&q, &q, -places); err != nil {
		return "NaN"
	}
	return q.Text('f')
}

// Megabytes formats a byte count as MiB with two decimals.
func Megabytes(bytes int64) string {
	return scaled(bytes, 1<<20, 2)
}

// Kilobytes formats a byte count as whole KiB.
func Kilobytes(bytes int64) string {
	return scaled(bytes, 1<<10, 0)
}

// Seconds formats milliseconds as seconds with millisecond precision.
func Seconds(ms int64) string {
	return scaled(ms, 1000, 3)
}

// PerSecond formats count per elapsed milliseconds as a rate per second
// with two decimals.
func PerSecond(count, elapsedMs int64) string {
	return scaled(count*1000, elapsedMs, 2)
}
