// Package selftest holds the suites run by `utest selftest`. They drive the
// harness through nested runs and check what those runs printed and counted,
// so a board that passes them has a working harness port.
package selftest

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"

	"github.com/bgricker/utest/pkg/utest"
)

// Register adds the built-in suites to reg.
func Register(reg *utest.Registry) error {
	for _, s := range []utest.Suite{assertionsSuite(), invocationSuite(), reportingSuite()} {
		if err := reg.Register(s); err != nil {
			return errors.Wrap(err, "register selftest suites")
		}
	}
	return nil
}

// Registry returns a registry holding only the built-in suites.
func Registry() *utest.Registry {
	reg := utest.NewRegistry()
	if err := Register(reg); err != nil {
		panic(err)
	}
	return reg
}

// harness is the context shared by cases that need a nested run.
type harness struct {
	buf bytes.Buffer
	run *utest.Run
}

func harnessFrom(ctx any) (*harness, error) {
	h, ok := ctx.(*harness)
	if !ok || h == nil {
		return nil, utest.Failf(-1, "context is %T, not a harness", ctx)
	}
	return h, nil
}

// startHarness gives each case a fresh nested run with plain output.
func startHarness(ctx any) error {
	h, err := harnessFrom(ctx)
	if err != nil {
		return err
	}
	h.buf.Reset()
	h.run = utest.Start(&h.buf, utest.Options{})
	return nil
}

func stopHarness(ctx any) error {
	h, err := harnessFrom(ctx)
	if err != nil {
		return err
	}
	if h.run == nil {
		return utest.Fail(-1, "nested run missing at teardown")
	}
	if werr := h.run.Err(); werr != nil {
		return utest.Failf(-1, "nested run write error: %v", werr)
	}
	h.run = nil
	return nil
}

// expect fails with msg unless ok holds.
func expect(ok bool, format string, args ...any) error {
	if ok {
		return nil
	}
	return utest.Failf(1, format, args...)
}

// counts checks the nested run's counters.
func counts(r *utest.Run, passed, failed int) error {
	if err := utest.CheckEqual(passed, r.Passed()); err != nil {
		return err
	}
	return utest.CheckEqual(failed, r.Failed())
}

func contains(out, want string) error {
	return expect(strings.Contains(out, want), "missing %q", want)
}

func pass(any) error { return nil }
