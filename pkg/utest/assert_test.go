package utest

import (
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func currentLine() int {
	_, _, line, _ := runtime.Caller(1)
	return line
}

func TestAssert(t *testing.T) {
	require.NoError(t, Assert(false))
	require.NoError(t, Check(false))

	err, line := Assert(true), currentLine()
	f, ok := AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, "ASSERT error", f.Message)
	assert.Equal(t, 0, f.Result)
	assert.Equal(t, "assert_test.go", f.File)
	assert.Equal(t, line, f.Line)

	err, line = Check(true), currentLine()
	f, ok = AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, line, f.Line)
}

func TestCheckEqual(t *testing.T) {
	for _, x := range []int64{0, 1, -1, 1 << 40, -(1 << 62)} {
		require.NoError(t, CheckEqual(x, x))
	}
	require.NoError(t, CheckEqual(uint8(255), uint8(255)))

	cases := []struct {
		expected, actual int
		want             string
	}{
		{1, 2, "CHECK_EQUAL expected: 1 actual: 2"},
		{-5, 5, "CHECK_EQUAL expected: -5 actual: 5"},
		{0, 100, "CHECK_EQUAL expected: 0 actual: 100"},
	}
	for _, c := range cases {
		err := CheckEqual(c.expected, c.actual)
		f, ok := AsFailure(err)
		require.True(t, ok, "CheckEqual(%d, %d)", c.expected, c.actual)
		assert.Equal(t, c.want, f.Message)
		assert.Contains(t, f.Message, fmt.Sprint(c.expected))
		assert.Contains(t, f.Message, fmt.Sprint(c.actual))
		assert.Equal(t, 0, f.Result)
	}
}

func TestFail(t *testing.T) {
	err, line := Fail(42, "Error Here"), currentLine()
	f, ok := AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, Outcome{Message: "Error Here", File: "assert_test.go", Line: line, Result: 42}, f.Outcome)

	f, ok = AsFailure(Failf(-3, "bad sector %d", 7))
	require.True(t, ok)
	assert.Equal(t, "bad sector 7", f.Message)
	assert.Equal(t, -3, f.Result)
}

func TestFailTruncatesMessage(t *testing.T) {
	long := strings.Repeat("x", MaxMessageLen+40)
	f, _ := AsFailure(Fail(0, long))
	assert.Len(t, f.Message, MaxMessageLen)

	// a multi-byte rune straddling the limit is dropped whole
	multi := strings.Repeat("a", MaxMessageLen-1) + "é"
	f, _ = AsFailure(Fail(0, multi))
	assert.Equal(t, strings.Repeat("a", MaxMessageLen-1), f.Message)
}

func TestAsFailureWrapped(t *testing.T) {
	wrapped := errors.Wrap(Fail(9, "inner"), "outer")
	f, ok := AsFailure(wrapped)
	require.True(t, ok)
	assert.Equal(t, 9, f.Result)

	_, ok = AsFailure(errors.New("plain"))
	assert.False(t, ok)
}

func TestFailureFromPlainError(t *testing.T) {
	f := failureFrom(errors.New("disk full"))
	assert.Equal(t, Outcome{Message: "disk full", File: "unknown", Line: 0, Result: -1}, f.Outcome)
}

func TestFailStopsTest(t *testing.T) {
	reached := false
	fn := func(any) error {
		if err := CheckEqual(1, 2); err != nil {
			return err
		}
		reached = true
		return nil
	}

	r := Start(nil, Options{})
	r.TestOnly("early exit", fn, nil)
	assert.False(t, reached)
	assert.Equal(t, 1, r.Failed())
}
