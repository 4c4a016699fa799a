package selftest

import (
	"errors"

	"github.com/bgricker/utest/pkg/utest"
)

func invocationSuite() utest.Suite {
	h := &harness{}
	return utest.Suite{
		Name:    "invocation",
		Fixture: utest.Fixture{Setup: startHarness, Teardown: stopHarness},
		Groups: []utest.Group{
			{Name: "Counting", Cases: []utest.Case{
				{Name: "passing test counts once", Func: passingCountsOnce, Context: h},
				{Name: "failing test counts once", Func: failingCountsOnce, Context: h},
				{Name: "setup failure counts nowhere", Func: setupFailureCountsNowhere, Context: h},
				{Name: "teardown failure after failure counts twice", Func: teardownAfterFailure, Context: h},
				{Name: "teardown failure after success", Func: teardownAfterSuccess, Context: h},
				{Name: "end status", Func: endStatus, Context: h},
			}},
			{Name: "Fixtures", Cases: []utest.Case{
				{Name: "fixture shares context", Func: fixtureSharesContext, Context: h},
				{Name: "test only skips fixture", Func: testOnlySkipsFixture, Context: h},
				{Name: "runs are independent", Func: runsAreIndependent, NoFixture: true},
			}},
			{Name: "Outcome", Cases: []utest.Case{
				{Name: "fail stops the test", Func: failStopsTest, Context: h},
				{Name: "plain error has no location", Func: plainErrorOutcome, Context: h},
				{Name: "last failure wins", Func: lastFailureWins, Context: h},
			}},
		},
	}
}

type probe struct {
	setup, body, teardown int
	value                 string
}

func (p *probe) fixture(setupErr, teardownErr error) utest.Fixture {
	return utest.Fixture{
		Setup: func(ctx any) error {
			p.setup++
			p.value = "ready"
			return setupErr
		},
		Teardown: func(ctx any) error {
			p.teardown++
			return teardownErr
		},
	}
}

func (p *probe) test(err error) utest.Func {
	return func(ctx any) error {
		p.body++
		return err
	}
}

func passingCountsOnce(ctx any) error {
	h, err := harnessFrom(ctx)
	if err != nil {
		return err
	}
	p := &probe{}
	ok := h.run.Test("t", p.test(nil), nil, p.fixture(nil, nil))
	if err := expect(ok, "Test reported failure"); err != nil {
		return err
	}
	if err := expect(p.setup == 1 && p.body == 1 && p.teardown == 1, "calls %+v", *p); err != nil {
		return err
	}
	return counts(h.run, 1, 0)
}

func failingCountsOnce(ctx any) error {
	h, err := harnessFrom(ctx)
	if err != nil {
		return err
	}
	p := &probe{}
	ok := h.run.Test("t", p.test(utest.Fail(7, "Error Here")), nil, p.fixture(nil, nil))
	if err := expect(!ok && p.teardown == 1, "failing test: ok=%v calls %+v", ok, *p); err != nil {
		return err
	}
	if err := counts(h.run, 0, 1); err != nil {
		return err
	}
	o := h.run.Outcome()
	if err := utest.CheckEqual(7, o.Result); err != nil {
		return err
	}
	return expect(o.Message == "Error Here", "outcome message %q", o.Message)
}

func setupFailureCountsNowhere(ctx any) error {
	h, err := harnessFrom(ctx)
	if err != nil {
		return err
	}
	p := &probe{}
	h.run.Test("t", p.test(nil), nil, p.fixture(utest.Fail(3, "no device"), nil))
	if err := expect(p.body == 0 && p.teardown == 0, "setup failure still ran %+v", *p); err != nil {
		return err
	}
	if err := counts(h.run, 0, 0); err != nil {
		return err
	}
	if err := contains(h.buf.String(), utest.StatusSetupFailed); err != nil {
		return err
	}
	return utest.CheckEqual(0, h.run.End())
}

func teardownAfterFailure(ctx any) error {
	h, err := harnessFrom(ctx)
	if err != nil {
		return err
	}
	p := &probe{}
	h.run.Test("t", p.test(utest.Fail(1, "body")), nil, p.fixture(nil, utest.Fail(2, "teardown")))
	if err := counts(h.run, 0, 2); err != nil {
		return err
	}
	if err := contains(h.buf.String(), utest.StatusTeardownFailed); err != nil {
		return err
	}
	return expect(h.run.Outcome().Message == "teardown", "outcome %+v", h.run.Outcome())
}

func teardownAfterSuccess(ctx any) error {
	h, err := harnessFrom(ctx)
	if err != nil {
		return err
	}
	p := &probe{}
	ok := h.run.Test("t", p.test(nil), nil, p.fixture(nil, utest.Fail(2, "leak")))
	if err := expect(!ok, "teardown failure reported as pass"); err != nil {
		return err
	}
	return counts(h.run, 0, 1)
}

func endStatus(ctx any) error {
	h, err := harnessFrom(ctx)
	if err != nil {
		return err
	}
	h.run.TestOnly("ok", pass, nil)
	if err := utest.CheckEqual(0, h.run.End()); err != nil {
		return err
	}
	h.run.TestOnly("bad", func(any) error { return utest.Assert(true) }, nil)
	return utest.CheckEqual(-1, h.run.End())
}

type board struct{ state string }

func fixtureSharesContext(ctx any) error {
	h, err := harnessFrom(ctx)
	if err != nil {
		return err
	}
	b := &board{}
	fx := utest.Fixture{
		Setup: func(ctx any) error {
			ctx.(*board).state = "powered"
			return nil
		},
		Teardown: func(ctx any) error {
			ctx.(*board).state = "off"
			return nil
		},
	}
	var seen string
	h.run.Test("t", func(ctx any) error {
		seen = ctx.(*board).state
		return nil
	}, b, fx)
	return expect(seen == "powered" && b.state == "off", "saw %q, left %q", seen, b.state)
}

func testOnlySkipsFixture(ctx any) error {
	h, err := harnessFrom(ctx)
	if err != nil {
		return err
	}
	var calls int
	ok := h.run.TestOnly("t", func(any) error {
		calls++
		return nil
	}, nil)
	if err := expect(ok && calls == 1, "TestOnly ok=%v calls=%d", ok, calls); err != nil {
		return err
	}
	return counts(h.run, 1, 0)
}

func runsAreIndependent(any) error {
	a := utest.Start(nil, utest.Options{})
	b := utest.Start(nil, utest.Options{})
	a.TestOnly("fails", func(any) error { return utest.Fail(1, "a") }, nil)
	b.TestOnly("passes", pass, nil)
	if err := counts(a, 0, 1); err != nil {
		return err
	}
	if err := counts(b, 1, 0); err != nil {
		return err
	}
	return expect(a.ID() != b.ID(), "runs share id %s", a.ID())
}

func failStopsTest(ctx any) error {
	h, err := harnessFrom(ctx)
	if err != nil {
		return err
	}
	reached := false
	h.run.TestOnly("t", func(any) error {
		if err := utest.Fail(4, "stop"); err != nil {
			return err
		}
		reached = true
		return nil
	}, nil)
	if err := expect(!reached, "test continued after Fail"); err != nil {
		return err
	}
	return counts(h.run, 0, 1)
}

func plainErrorOutcome(ctx any) error {
	h, err := harnessFrom(ctx)
	if err != nil {
		return err
	}
	h.run.TestOnly("t", func(any) error { return errors.New("i2c nack") }, nil)
	o := h.run.Outcome()
	if err := utest.CheckEqual(-1, o.Result); err != nil {
		return err
	}
	return expect(o.Message == "i2c nack" && o.File == "unknown" && o.Line == 0, "outcome %+v", o)
}

func lastFailureWins(ctx any) error {
	h, err := harnessFrom(ctx)
	if err != nil {
		return err
	}
	h.run.TestOnly("first", func(any) error { return utest.Fail(1, "first") }, nil)
	h.run.TestOnly("ok", pass, nil)
	h.run.TestOnly("second", func(any) error { return utest.Fail(2, "second") }, nil)
	o := h.run.Outcome()
	return expect(o.Result == 2 && o.Message == "second", "outcome %+v", o)
}
