// Package cpf normalizes, validates and formats Brazilian taxpayer numbers (CPF).
//
// A CPF has 11 digits. The last two are check digits derived from the first
// nine and first ten digits with a weighted sum modulo 11. All functions are
// pure and safe for concurrent use.
package cpf

const Length = 11

// Normalize strips every non-digit character from input.
func Normalize(input string) string {
	out := make([]byte, 0, len(input))
	for i := 0; i < len(input); i++ {
		if c := input[i]; c >= '0' && c <= '9' {
			out = append(out, c)
		}
	}
	return string(out)
}

// IsValid reports whether input normalizes to 11 digits whose check digits
// match and which are not all the same digit.
func IsValid(input string) bool {
	digits := Normalize(input)
	if len(digits) != Length {
		return false
	}
	if allSame(digits) {
		return false
	}
	// The second check uses the literal tenth digit from input, not the
	// recomputed one.
	return checkDigit(digits, 9) == digits[9]-'0' &&
		checkDigit(digits, 10) == digits[10]-'0'
}

// IsValidValue is IsValid for untyped values: nil, a nil *string and
// non-string values are never valid.
func IsValidValue(v any) bool {
	switch s := v.(type) {
	case string:
		return IsValid(s)
	case *string:
		if s == nil {
			return false
		}
		return IsValid(*s)
	default:
		return false
	}
}

// Format renders input as ddd.ddd.ddd-dd. Input that does not normalize to
// exactly 11 digits is returned normalized, without punctuation.
func Format(input string) string {
	d := Normalize(input)
	if len(d) != Length {
		return d
	}
	return d[0:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:11]
}

// checkDigit computes the expected digit at position pos from digits[0:pos].
func checkDigit(digits string, pos int) byte {
	sum := 0
	for i := 0; i < pos; i++ {
		sum += int(digits[i]-'0') * (pos + 1 - i)
	}
	r := sum % 11
	if r < 2 {
		return 0
	}
	return byte(11 - r)
}

func allSame(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}
