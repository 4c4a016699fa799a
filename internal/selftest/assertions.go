package selftest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bgricker/utest/pkg/utest"
)

func assertionsSuite() utest.Suite {
	return utest.Suite{
		Name: "assertions",
		Groups: []utest.Group{
			{Name: "Assert", Cases: []utest.Case{
				{Name: "false condition passes", Func: assertFalsePasses},
				{Name: "true condition fails", Func: assertTrueFails},
				{Name: "check matches assert", Func: checkMatchesAssert},
			}},
			{Name: "CheckEqual", Cases: []utest.Case{
				{Name: "equal values pass", Func: checkEqualPasses},
				{Name: "mismatch names both values", Func: checkEqualMismatch},
				{Name: "negative values", Func: checkEqualNegative},
			}},
			{Name: "Fail", Cases: []utest.Case{
				{Name: "carries result and message", Func: failCarriesResult},
				{Name: "message is bounded", Func: failTruncates},
				{Name: "formatted message", Func: failfFormats},
				{Name: "wrapped failure is found", Func: wrappedFailure},
			}},
		},
	}
}

func assertFalsePasses(any) error {
	return expect(utest.Assert(false) == nil, "Assert(false) returned an error")
}

func assertTrueFails(any) error {
	f, ok := utest.AsFailure(utest.Assert(true))
	if err := expect(ok, "Assert(true) did not fail"); err != nil {
		return err
	}
	if err := expect(f.Message == "ASSERT error", "unexpected message %q", f.Message); err != nil {
		return err
	}
	if err := utest.CheckEqual(0, f.Result); err != nil {
		return err
	}
	return expect(f.File == "assertions.go" && f.Line > 0, "unexpected location %s:%d", f.File, f.Line)
}

func checkMatchesAssert(any) error {
	if err := expect(utest.Check(false) == nil, "Check(false) returned an error"); err != nil {
		return err
	}
	f, ok := utest.AsFailure(utest.Check(true))
	return expect(ok && f.Message == "ASSERT error", "Check(true) = %v", f)
}

func checkEqualPasses(any) error {
	if err := expect(utest.CheckEqual(42, 42) == nil, "CheckEqual(42, 42) failed"); err != nil {
		return err
	}
	return expect(utest.CheckEqual(uint8(255), uint8(255)) == nil, "CheckEqual on uint8 failed")
}

func checkEqualMismatch(any) error {
	f, ok := utest.AsFailure(utest.CheckEqual(3, 4))
	if err := expect(ok, "CheckEqual(3, 4) did not fail"); err != nil {
		return err
	}
	return expect(f.Message == "CHECK_EQUAL expected: 3 actual: 4", "unexpected message %q", f.Message)
}

func checkEqualNegative(any) error {
	f, ok := utest.AsFailure(utest.CheckEqual(int16(-1), int16(1)))
	return expect(ok && f.Message == "CHECK_EQUAL expected: -1 actual: 1", "unexpected failure %v", f)
}

func failCarriesResult(any) error {
	f, ok := utest.AsFailure(utest.Fail(-5, "sensor offline"))
	if err := expect(ok, "Fail did not return a failure"); err != nil {
		return err
	}
	if err := utest.CheckEqual(-5, f.Result); err != nil {
		return err
	}
	return expect(f.Message == "sensor offline", "unexpected message %q", f.Message)
}

func failTruncates(any) error {
	f, _ := utest.AsFailure(utest.Fail(1, strings.Repeat("é", utest.MaxMessageLen)))
	if err := expect(len(f.Message) <= utest.MaxMessageLen, "message is %d bytes", len(f.Message)); err != nil {
		return err
	}
	return expect(strings.Trim(f.Message, "é") == "", "message cut inside a rune")
}

func failfFormats(any) error {
	f, _ := utest.AsFailure(utest.Failf(2, "register 0x%02x reads %d", 0x1f, 7))
	return expect(f.Message == "register 0x1f reads 7", "unexpected message %q", f.Message)
}

func wrappedFailure(any) error {
	err := fmt.Errorf("probe: %w", utest.Fail(9, "inner"))
	f, ok := utest.AsFailure(err)
	if err := expect(ok && f.Result == 9, "wrapped failure not found in %v", err); err != nil {
		return err
	}
	_, ok = utest.AsFailure(errors.New("plain"))
	return expect(!ok, "plain error reported as failure")
}
