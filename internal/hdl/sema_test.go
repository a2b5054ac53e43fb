// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package hdl

import (
	"testing"

	"github.com/tky-kevin/phdc/internal/diagnostics"
	"github.com/tky-kevin/phdc/pkg/util/source"
)

// compileText runs the full pipeline over one source text.
func compileText(t *testing.T, text string) ([]Unit, []*diagnostics.Sink) {
	t.Helper()

	return CompileFile(source.NewSourceFile("test.phd", []byte(text)))
}

// buildOne compiles text and returns the single successfully emitted module
// named name, failing the test on any error diagnostic.
func buildOne(t *testing.T, text, name string) *Module {
	t.Helper()

	units, sinks := compileText(t, text)

	for _, sink := range sinks {
		for _, d := range sink.All() {
			if d.Kind.Severity() == diagnostics.Error {
				t.Fatalf("unexpected diagnostic: %v", d)
			}
		}
	}

	for _, u := range units {
		if u.Name == name {
			return u.Module
		}
	}

	t.Fatalf("module %q was not emitted", name)

	return nil
}

// countKind tallies diagnostics of one kind across all sinks.
func countKind(sinks []*diagnostics.Sink, kind diagnostics.Kind) int {
	n := 0

	for _, sink := range sinks {
		for _, d := range sink.All() {
			if d.Kind == kind {
				n++
			}
		}
	}

	return n
}

func TestSema_00(t *testing.T) {
	// declarations populate the symbol table: ports, explicit signals,
	// parameters, enums.
	m := buildOne(t, `from phd import bit, In, Out, Module, Enum

class Mix(Module):
    width = 8
    clk = In(bit)
    d = In(bit[width])
    q = Out(bit[width])

    class State(Enum):
        IDLE = 0
        BUSY = 1

    buf = bit[width]
    if clk.posedge:
        buf = d
        q = buf
`, "Mix")

	if len(m.Ports) != 3 {
		t.Errorf("expected 3 ports, got %d", len(m.Ports))
	}

	if p := m.LookupParameter("width"); p == nil || p.Value != 8 {
		t.Errorf("expected parameter width=8, got %v", p)
	}

	if s := m.LookupSignal("buf"); s == nil || s.Shape.Width != 8 {
		t.Errorf("expected 8-bit signal buf, got %v", s)
	}

	if e := m.LookupEnum("State"); e == nil || e.Width != 1 {
		t.Errorf("expected 1-bit enum State, got %v", e)
	}
}

func TestSema_01(t *testing.T) {
	// a first assignment under an edge guard declares a flip-flop; the
	// signal's class and edges follow the guard.
	m := buildOne(t, `class Counter(Module):
    clk = In(bit)
    rst_n = In(bit)
    count = bit[8]
    if clk.posedge or rst_n.negedge:
        if not rst_n:
            count = 0
        else:
            count = count + 1
`, "Counter")

	s := m.LookupSignal("count")
	if s == nil || s.Class != Seq {
		t.Fatalf("expected sequential signal count, got %v", s)
	}

	if len(s.Edges) != 2 || s.Edges[0] != (Edge{"clk", Posedge}) || s.Edges[1] != (Edge{"rst_n", Negedge}) {
		t.Errorf("unexpected edge list %v", s.Edges)
	}

	if len(m.SeqGroupOrder) != 1 {
		t.Errorf("expected one sequential group, got %d", len(m.SeqGroupOrder))
	}
}

// A signal assigned both combinationally and sequentially produces exactly
// one MixedStorageClass diagnostic and no output for that module.
func TestSema_02(t *testing.T) {
	units, sinks := compileText(t, `class Broken(Module):
    clk = In(bit)
    x = bit[4]
    x = 1
    if clk.posedge:
        x = 2
`)

	if got := countKind(sinks, diagnostics.MixedStorageClass); got != 1 {
		t.Errorf("expected exactly 1 MixedStorageClass diagnostic, got %d", got)
	}

	if len(units) != 0 {
		t.Errorf("expected no emitted units, got %d", len(units))
	}
}

func TestSema_03(t *testing.T) {
	// disagreeing edge sets on one signal are also a storage-class error.
	_, sinks := compileText(t, `class Broken(Module):
    clk_a = In(bit)
    clk_b = In(bit)
    x = bit[4]
    if clk_a.posedge:
        x = 1
    if clk_b.posedge:
        x = 2
`)

	if got := countKind(sinks, diagnostics.MixedStorageClass); got != 1 {
		t.Errorf("expected exactly 1 MixedStorageClass diagnostic, got %d", got)
	}
}

func TestSema_04(t *testing.T) {
	// constant indices outside the declared range are rejected.
	_, sinks := compileText(t, `class Oob(Module):
    req = In(bit[8])
    y = Out(bit)
    y = req[8]
`)

	if got := countKind(sinks, diagnostics.IndexOutOfBounds); got != 1 {
		t.Errorf("expected 1 IndexOutOfBounds diagnostic, got %d", got)
	}
}

func TestSema_05(t *testing.T) {
	// a wider RHS is a warning, not an error; emission proceeds.
	units, sinks := compileText(t, `class Narrow(Module):
    d = In(bit[8])
    q = Out(bit[4])
    q = d
`)

	if got := countKind(sinks, diagnostics.WidthMismatch); got != 1 {
		t.Errorf("expected 1 WidthMismatch warning, got %d", got)
	}

	if len(units) != 1 {
		t.Errorf("expected the module to still emit, got %d units", len(units))
	}
}

func TestSema_06(t *testing.T) {
	// a conditionally assigned combinational signal with no preceding
	// default draws the latch warning.
	units, sinks := compileText(t, `class Latchy(Module):
    en = In(bit)
    q = Out(bit)
    if en:
        q = 1
`)

	if got := countKind(sinks, diagnostics.LatchWarning); got != 1 {
		t.Errorf("expected 1 latch warning, got %d", got)
	}

	if len(units) != 1 {
		t.Errorf("expected the module to still emit, got %d units", len(units))
	}
}

func TestSema_07(t *testing.T) {
	// the defaulting pattern suppresses the latch warning.
	_, sinks := compileText(t, `class Clean(Module):
    en = In(bit)
    q = Out(bit)
    q = 0
    if en:
        q = 1
`)

	if got := countKind(sinks, diagnostics.LatchWarning); got != 0 {
		t.Errorf("expected no latch warning, got %d", got)
	}
}

func TestSema_08(t *testing.T) {
	// wiring a nonexistent submodule port is an error.
	_, sinks := compileText(t, `class Leaf(Module):
    d = In(bit)
    q = Out(bit)
    q = d

class Top(Module):
    a = In(bit)
    u = Leaf()
    u.nosuch = a
`)

	if got := countKind(sinks, diagnostics.UnknownPort); got != 1 {
		t.Errorf("expected 1 UnknownPort diagnostic, got %d", got)
	}
}

func TestSema_09(t *testing.T) {
	// duplicate module names fail collection; the first definition wins.
	units, sinks := compileText(t, `class Dup(Module):
    q = Out(bit)
    q = 0

class Dup(Module):
    q = Out(bit)
    q = 1
`)

	if got := countKind(sinks, diagnostics.DuplicateDefinition); got != 1 {
		t.Errorf("expected 1 DuplicateDefinition diagnostic, got %d", got)
	}

	if len(units) != 1 {
		t.Errorf("expected 1 unit from the surviving definition, got %d", len(units))
	}
}

func TestSema_10(t *testing.T) {
	// duplicate port declarations within one module.
	_, sinks := compileText(t, `class Dup(Module):
    d = In(bit)
    d = In(bit[2])
`)

	if got := countKind(sinks, diagnostics.DuplicateDefinition); got != 1 {
		t.Errorf("expected 1 DuplicateDefinition diagnostic, got %d", got)
	}
}

func TestSema_11(t *testing.T) {
	// a top-level constant reassigned later is a defaulted signal, not a
	// parameter.
	m := buildOne(t, `class Defaulted(Module):
    en = In(bit)
    sel = 0
    if en:
        sel = 1
`, "Defaulted")

	if m.LookupParameter("sel") != nil {
		t.Error("sel must not be recorded as a parameter")
	}

	s := m.LookupSignal("sel")
	if s == nil || s.Class != Comb {
		t.Fatalf("expected combinational signal sel, got %v", s)
	}
}

func TestSema_12(t *testing.T) {
	// a signal first assigned from an enum member adopts the enum type.
	m := buildOne(t, `class Fsm(Module):
    clk = In(bit)

    class State(Enum):
        RED = 0
        GREEN = 1
        YELLOW = 2

    if clk.posedge:
        state = State.GREEN
`, "Fsm")

	s := m.LookupSignal("state")
	if s == nil || s.EnumType != "State" || s.Shape.Width != 2 {
		t.Fatalf("expected 2-bit State-typed signal, got %+v", s)
	}
}

func TestSema_13(t *testing.T) {
	// a zero-width declaration is rejected.
	_, sinks := compileText(t, `class Bad(Module):
    q = Out(bit)
    m = bit[0]
    q = 0
`)

	if got := countKind(sinks, diagnostics.NonStaticExpression); got != 1 {
		t.Errorf("expected 1 NonStaticExpression diagnostic, got %d", got)
	}
}

func TestSema_14(t *testing.T) {
	// reading a submodule output interposes exactly one intermediate wire,
	// reused across mentions.
	m := buildOne(t, `class Leaf(Module):
    d = In(bit[4])
    q = Out(bit[4])
    q = d

class Top(Module):
    a = In(bit[4])
    y = Out(bit[4])
    z = Out(bit[4])
    u = Leaf()
    u.d = a
    y = u.q
    z = u.q
`, "Top")

	if len(m.IntermediateWires) != 1 {
		t.Fatalf("expected 1 intermediate wire, got %d", len(m.IntermediateWires))
	}

	w := m.IntermediateWires[0]
	if w.Name != "u_q" || w.Shape.Width != 4 {
		t.Errorf("unexpected wire %+v", w)
	}
}

// Every declared signal lands in exactly one classification bucket.
func TestSema_15(t *testing.T) {
	m := buildOne(t, `class TwoBuckets(Module):
    clk = In(bit)
    d = In(bit[4])
    sum = Out(bit[4])
    reg = bit[4]
    sum = d + reg
    if clk.posedge:
        reg = d
`, "TwoBuckets")

	for _, s := range m.Signals {
		if s.Class == Unclassified {
			t.Errorf("signal %q was never classified", s.Name)
		}
	}

	seen := map[string]StorageClass{}

	for _, a := range m.CombAssigns {
		seen[renderExpr(m, a.Target)] = Comb
	}

	for _, key := range m.SeqGroupOrder {
		for _, a := range m.SeqGroups[key] {
			name := renderExpr(m, a.Target)
			if cls, ok := seen[name]; ok && cls != Seq {
				t.Errorf("signal %q appears in both buckets", name)
			}

			seen[name] = Seq
		}
	}
}
