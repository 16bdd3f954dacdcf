package parser

import "math"

// maxValueToMultiply is the accumulator limit checked before each
// multiplication by ten. An accumulator just below it can still leave the
// int64 range when multiplied; the check after the multiplication reports
// that case as overflow.
const maxValueToMultiply = math.MaxInt64/10 + math.MaxInt64%10

// ParseInteger converts the decimal text of a number token to an int64,
// independent of locale. The overflow result reports whether the value did
// not fit; the returned value is then clamped to math.MaxInt64 or
// math.MinInt64 according to sign.
func ParseInteger(number []byte) (int64, bool) {
	var ret int64
	sign := int64(1)
	pos := 0

	if pos < len(number) && number[pos] == '-' {
		pos++
		sign = -1
	}
	if pos < len(number) && number[pos] == '+' {
		pos++
	}

	clamped := int64(math.MaxInt64)
	if sign == -1 {
		clamped = math.MinInt64
	}

	for ; pos < len(number); pos++ {
		if ret > maxValueToMultiply {
			return clamped, true
		}
		ret *= 10
		c := number[pos]
		if c < '0' || c > '9' {
			return clamped, true
		}
		if math.MaxInt64-ret < int64(c-'0') {
			return clamped, true
		}
		ret += int64(c - '0')
	}

	return sign * ret, false
}
