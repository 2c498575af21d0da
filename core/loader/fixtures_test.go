package loader_test

import (
	"github.com/kilianp07/classloader/core/class"
	"github.com/kilianp07/classloader/core/loader"
	"github.com/kilianp07/classloader/core/metrics"
	"github.com/kilianp07/classloader/core/module"
)

type fakeObject struct {
	Var1 any `json:"var1"`
	Var2 any `json:"var2"`
}

// fakes mirrors a small package tree:
//
//	tests.fake.namespace1                         FakeClass1 FakeClass2 FakeClass3
//	tests.fake.namespace2                         FakeClass1 FakeClass2
//	tests.fake.namespace3.subnamespace            FakeClass4
//	tests.fake.namespace3.subsubnamespace.subnamespace FakeClass4
type fakes struct {
	cat *module.Catalog

	ns1Fake1, ns1Fake2, ns1Fake3 *class.Class
	ns2Fake1, ns2Fake2           *class.Class
	subFake4, subSubFake4        *class.Class
}

const (
	ns1 = "tests.fake.namespace1"
	ns2 = "tests.fake.namespace2"
	ns3 = "tests.fake.namespace3"
)

func newFakes() *fakes {
	f := &fakes{cat: module.NewCatalog()}
	f.ns1Fake1 = class.Define[fakeObject]("FakeClass1")
	f.ns1Fake2 = class.Define[fakeObject]("FakeClass2")
	f.ns1Fake3 = class.Define[fakeObject]("FakeClass3")
	f.ns2Fake1 = class.Define[fakeObject]("FakeClass1")
	f.ns2Fake2 = class.Define[fakeObject]("FakeClass2")
	f.subFake4 = class.Define[fakeObject]("FakeClass4")
	f.subSubFake4 = class.Define[fakeObject]("FakeClass4")

	f.cat.Define(ns1).Add(f.ns1Fake1, f.ns1Fake2, f.ns1Fake3)
	f.cat.Define(ns2).Add(f.ns2Fake1, f.ns2Fake2)
	f.cat.Define(ns3)
	f.cat.Define(ns3 + ".subnamespace").Add(f.subFake4)
	f.cat.Define(ns3 + ".subsubnamespace.subnamespace").Add(f.subSubFake4)
	return f
}

// recorder keeps every event it receives.
type recorder struct {
	lookups       []metrics.LookupEvent
	resolutions   []metrics.ResolutionEvent
	invalidations []metrics.InvalidationEvent
}

func (r *recorder) RecordLookup(ev metrics.LookupEvent) error {
	r.lookups = append(r.lookups, ev)
	return nil
}

func (r *recorder) RecordResolution(ev metrics.ResolutionEvent) error {
	r.resolutions = append(r.resolutions, ev)
	return nil
}

func (r *recorder) RecordInvalidation(ev metrics.InvalidationEvent) error {
	r.invalidations = append(r.invalidations, ev)
	return nil
}

func (r *recorder) outcomes(cache string) []string {
	var out []string
	for _, ev := range r.lookups {
		if ev.Cache == cache {
			out = append(out, ev.Outcome)
		}
	}
	return out
}

// publisher collects published events synchronously.
type publisher struct {
	events []loader.Event
}

func (p *publisher) Publish(ev loader.Event) { p.events = append(p.events, ev) }

func (p *publisher) kinds() []loader.EventKind {
	out := make([]loader.EventKind, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Kind
	}
	return out
}
