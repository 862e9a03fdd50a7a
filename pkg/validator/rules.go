package validator

import (
	"regexp"
	"strings"
	"time"
)

// RegexUKPostcode covers the full UK grammar including GIR 0AA. Input is upper-cased first.
const RegexUKPostcode = `^(GIR ?0AA|[A-PR-UWYZ]([0-9]{1,2}|[A-HK-Y][0-9]([0-9ABEHMNPRV-Y])?|[0-9][A-HJKPS-UW]) ?[0-9][ABD-HJLNP-UW-Z]{2})$`

var (
	postcodePattern  = regexp.MustCompile(RegexUKPostcode)
	nhsNumberPattern = regexp.MustCompile(`^[0-9]{10}$`)
	nhsSeparators    = strings.NewReplacer(" ", "", "-", "")
)

// NormalizeNHSNumber strips the spaces and hyphens people use to group NHS numbers (3-3-4).
func NormalizeNHSNumber(s string) string {
	return nhsSeparators.Replace(strings.TrimSpace(s))
}

// IsNHSNumberFormat reports whether s is ten digits once separators are removed.
func IsNHSNumberFormat(s string) bool {
	return nhsNumberPattern.MatchString(NormalizeNHSNumber(s))
}

// IsValidNHSNumber checks the format and the modulus 11 check digit.
func IsValidNHSNumber(s string) bool {
	digits := NormalizeNHSNumber(s)
	if !nhsNumberPattern.MatchString(digits) {
		return false
	}

	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(digits[i]-'0') * (10 - i)
	}
	check := 11 - sum%11
	switch check {
	case 11:
		check = 0
	case 10:
		return false
	}
	return check == int(digits[9]-'0')
}

// NormalizePostcode upper-cases a postcode and puts a single space before the inward code.
func NormalizePostcode(s string) string {
	compact := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	if len(compact) < 5 {
		return compact
	}
	return compact[:len(compact)-3] + " " + compact[len(compact)-3:]
}

func IsValidPostcode(s string) bool {
	return postcodePattern.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}

// IsPlausibleDateOfBirth rejects dates after today and dates more than maxAge years before today.
// Both bounds are calendar days in UTC.
func IsPlausibleDateOfBirth(dob time.Time, now time.Time, maxAge int) bool {
	today := truncateToDay(now.UTC())
	day := time.Date(dob.Year(), dob.Month(), dob.Day(), 0, 0, 0, 0, time.UTC)
	if day.After(today) {
		return false
	}
	return !day.Before(today.AddDate(-maxAge, 0, 0))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
