package filter

import (
	"testing"

	"github.com/bgricker/utest/pkg/utest"
)

func sampleSuites() []utest.Suite {
	return []utest.Suite{
		{
			Name: "drivers",
			Groups: []utest.Group{
				{Name: "GPIO", Cases: []utest.Case{{Name: "toggle"}, {Name: "debounce"}}},
				{Name: "SPI", Cases: []utest.Case{{Name: "loopback"}, {Name: "burst read"}}},
			},
		},
		{
			Name: "storage",
			Groups: []utest.Group{
				{Name: "Flash", Cases: []utest.Case{{Name: "erase"}, {Name: "burst write"}}},
			},
		},
	}
}

func TestFilterSuitesByGroup(t *testing.T) {
	sel, err := NewSelection(nil, []string{"spi"}, nil, nil)
	if err != nil {
		t.Fatalf("selection: %v", err)
	}

	filtered := FilterSuites(sampleSuites(), sel)
	if len(filtered) != 1 {
		t.Fatalf("expected 1 suite, got %d", len(filtered))
	}
	if len(filtered[0].Groups) != 1 || filtered[0].Groups[0].Name != "SPI" {
		t.Fatalf("expected only SPI group, got %+v", filtered[0].Groups)
	}
}

func TestFilterSuitesCases(t *testing.T) {
	sel, err := NewSelection(nil, nil, []string{"/^burst/"}, []string{"write"})
	if err != nil {
		t.Fatalf("selection: %v", err)
	}

	filtered := FilterSuites(sampleSuites(), sel)
	if len(filtered) != 1 {
		t.Fatalf("expected storage suite dropped, got %d suites", len(filtered))
	}
	cases := filtered[0].Groups[0].Cases
	if len(cases) != 1 || cases[0].Name != "burst read" {
		t.Fatalf("expected burst read only, got %+v", cases)
	}
}

func TestFilterSuitesByName(t *testing.T) {
	sel, err := NewSelection([]string{"storage"}, nil, nil, nil)
	if err != nil {
		t.Fatalf("selection: %v", err)
	}

	filtered := FilterSuites(sampleSuites(), sel)
	if len(filtered) != 1 || filtered[0].Name != "storage" {
		t.Fatalf("expected storage suite, got %+v", filtered)
	}
	if filtered[0].Len() != 2 {
		t.Fatalf("expected both storage cases, got %d", filtered[0].Len())
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	suites := sampleSuites()
	sel, _ := NewSelection(nil, nil, []string{"toggle"}, nil)
	FilterSuites(suites, sel)
	if len(suites[0].Groups[0].Cases) != 2 {
		t.Fatalf("input suites modified: %+v", suites[0].Groups[0].Cases)
	}
}

func TestCompileErrors(t *testing.T) {
	if _, err := Compile([]string{"/(/"}); err == nil {
		t.Fatalf("expected compile error")
	}
	if _, err := NewSelection(nil, nil, nil, []string{"/[/"}); err == nil {
		t.Fatalf("expected selection error")
	}
}

func TestPatternMatch(t *testing.T) {
	patterns, err := Compile([]string{"  ", "Flash", "/^e.+e$/"})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(patterns) != 2 {
		t.Fatalf("expected blank pattern skipped, got %d", len(patterns))
	}
	if !patterns[0].Match("flash") || patterns[0].Match("") {
		t.Fatalf("substring match should be case-insensitive and reject empty input")
	}
	if !patterns[1].Match("erase") || patterns[1].Match("burst") {
		t.Fatalf("regex match mismatch")
	}
	if patterns[1].String() != "/^e.+e$/" {
		t.Fatalf("unexpected raw pattern %q", patterns[1].String())
	}
}
