package utest

import (
	"strings"

	"github.com/pkg/errors"
)

// Case is one registered test.
type Case struct {
	Name    string
	Func    Func
	Context any
	// NoFixture runs the case through TestOnly, skipping the suite fixture.
	NoFixture bool
}

// Group is a labelled, ordered list of cases.
type Group struct {
	Name  string
	Cases []Case
}

// Suite is a set of groups sharing one fixture.
type Suite struct {
	Name    string
	Fixture Fixture
	Groups  []Group
}

// Len returns the number of cases in the suite.
func (s Suite) Len() int {
	n := 0
	for _, g := range s.Groups {
		n += len(g.Cases)
	}
	return n
}

// Execute runs every group of the suite against r, in order.
func (s Suite) Execute(r *Run) {
	for _, g := range s.Groups {
		r.Group(g.Name)
		for _, c := range g.Cases {
			if c.NoFixture {
				r.TestOnly(c.Name, c.Func, c.Context)
				continue
			}
			r.Test(c.Name, c.Func, c.Context, s.Fixture)
		}
	}
}

// Registry holds suites in registration order.
type Registry struct {
	suites []Suite
	index  map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register adds s. Suite names must be non-empty and unique.
func (reg *Registry) Register(s Suite) error {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return errors.New("suite name is empty")
	}
	if _, ok := reg.index[name]; ok {
		return errors.Errorf("suite %q already registered", name)
	}
	s.Name = name
	reg.index[name] = len(reg.suites)
	reg.suites = append(reg.suites, s)
	return nil
}

// MustRegister is Register that panics on error, for package-level wiring.
func (reg *Registry) MustRegister(s Suite) {
	if err := reg.Register(s); err != nil {
		panic(err)
	}
}

// Lookup returns the suite registered under name.
func (reg *Registry) Lookup(name string) (Suite, bool) {
	i, ok := reg.index[name]
	if !ok {
		return Suite{}, false
	}
	return reg.suites[i], true
}

// Suites returns a copy of the registered suites.
func (reg *Registry) Suites() []Suite {
	return append([]Suite(nil), reg.suites...)
}

// Execute runs all registered suites against r.
func (reg *Registry) Execute(r *Run) {
	for _, s := range reg.suites {
		s.Execute(r)
	}
}
