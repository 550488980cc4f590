package request

import (
	"errors"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/shopspring/decimal"
)

const (
	passwordRegexPattern = `^(?=.*[A-Za-z])(?=.*\d).{8,}$`
	// 3 to 32 characters, no leading, trailing or doubled separators.
	couponCodeRegexPattern = `^(?![-_])(?!.*[-_]{2})[A-Za-z0-9_-]{3,32}(?<![-_])$`
)

var (
	passwordExp   = regexp2.MustCompile(passwordRegexPattern, regexp2.None)
	couponCodeExp = regexp2.MustCompile(couponCodeRegexPattern, regexp2.None)

	errInvalidPassword   = errors.New("the password must be at least 8 characters and contain 1 letter and 1 number")
	errInvalidCouponCode = errors.New("must be 3-32 letters, digits, '-' or '_' without leading, trailing or repeated separators")
	errNotPositive       = errors.New("must be greater than zero")
	errNegative          = errors.New("must not be negative")
)

func matches(exp *regexp2.Regexp, value string) bool {
	ok, err := exp.MatchString(value)
	return err == nil && ok
}

// ValidatePassword enforces the operator password policy.
func ValidatePassword(password string) error {
	if !matches(passwordExp, password) {
		return errInvalidPassword
	}

	return nil
}

func validCouponCode(value interface{}) error {
	code, _ := value.(string)
	if code == "" || matches(couponCodeExp, code) {
		return nil
	}

	return errInvalidCouponCode
}

func positiveDecimal(value interface{}) error {
	if d, ok := value.(decimal.Decimal); ok && !d.IsPositive() {
		return errNotPositive
	}

	return nil
}

func nonNegativeDecimal(value interface{}) error {
	if d, ok := value.(decimal.Decimal); ok && d.IsNegative() {
		return errNegative
	}

	return nil
}

func inFuture(value interface{}) error {
	at, ok := value.(*time.Time)
	if ok && at != nil && !at.After(time.Now()) {
		return errors.New("must be in the future")
	}

	return nil
}
