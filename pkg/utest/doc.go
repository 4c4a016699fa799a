// Package utest is a small unit-test harness for programs that cannot rely on
// the go test toolchain at run time, such as firmware images, emulator builds
// or self-checking binaries shipped to a device.
//
// A Run owns the counters and the transcript writer. Tests are plain functions
// that return an error; the assertion helpers return a *Failure which the test
// propagates with return, so nothing after a failing check executes:
//
//	func checkAdder(ctx any) error {
//		if err := utest.CheckEqual(4, add(2, 2)); err != nil {
//			return err
//		}
//		return utest.Assert(add(1, 1) != 2)
//	}
//
//	r := utest.Start(os.Stdout, utest.DefaultOptions())
//	r.Group("Math")
//	r.Test("adder", checkAdder, nil, utest.Fixture{})
//	os.Exit(r.End())
//
// The transcript format is stable and scraped by host tooling, see
// internal/transcript.
package utest
