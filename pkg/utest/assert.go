package utest

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

const assertMessage = "ASSERT error"

// Assert fails the test when cond holds. The condition is a failure signal,
// so callers write the broken state: Assert(len(buf) == 0).
func Assert(cond bool) error {
	if cond {
		return newFailure(1, 0, assertMessage)
	}
	return nil
}

// Check is an alias of Assert.
func Check(cond bool) error {
	if cond {
		return newFailure(1, 0, assertMessage)
	}
	return nil
}

// CheckEqual fails the test when expected and actual differ.
func CheckEqual[T constraints.Integer](expected, actual T) error {
	if expected != actual {
		return newFailure(1, 0, fmt.Sprintf("CHECK_EQUAL expected: %d actual: %d", expected, actual))
	}
	return nil
}

// Fail always fails the test with the given result code and message. The
// message is cut to MaxMessageLen bytes.
func Fail(result int, message string) error {
	return newFailure(1, result, message)
}

// Failf is Fail with a formatted message.
func Failf(result int, format string, args ...any) error {
	return newFailure(1, result, fmt.Sprintf(format, args...))
}
