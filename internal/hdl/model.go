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

// Package hdl implements the elaboration-and-lowering compiler: the module
// collector, template registry, constant evaluator, semantic pass, loop
// unroller, and the lowering/emission stage that turns a classified module
// descriptor into SystemVerilog text.
package hdl

import "github.com/tky-kevin/phdc/internal/ast"

// Direction is a port's data direction.
type Direction int

// Port directions.
const (
	In Direction = iota
	Out
)

func (d Direction) String() string {
	if d == Out {
		return "out"
	}

	return "in"
}

// Shape is a signal or port's bit-vector width, and optionally a memory
// depth (Depth > 0 means `bit[Width][Depth]`, a `Width`-bit word array of
// `Depth` entries).
type Shape struct {
	Width int
	Depth int
}

// IsMemory reports whether this shape describes a word array rather than a
// plain bit vector.
func (s Shape) IsMemory() bool { return s.Depth > 0 }

// Port is a module input or output.
type Port struct {
	Name  string
	Dir   Direction
	Shape Shape
}

// StorageClass is the hardware kind inferred for a signal, per the
// classification state machine: Unknown -> Comb | Seq(edges).
type StorageClass int

// Storage classes.
const (
	Unclassified StorageClass = iota
	Comb
	Seq
)

// EdgeKind distinguishes a rising from a falling edge predicate.
type EdgeKind int

// Edge kinds.
const (
	Posedge EdgeKind = iota
	Negedge
)

func (k EdgeKind) String() string {
	if k == Negedge {
		return "negedge"
	}

	return "posedge"
}

// Edge is one member of a sequential block's sensitivity list.
type Edge struct {
	Signal string
	Kind   EdgeKind
}

// EdgeSetKey renders a canonical, order-preserving key for a set of edges so
// assignments sharing the same sensitivity list can be grouped.
func EdgeSetKey(edges []Edge) string {
	key := ""
	for _, e := range edges {
		key += e.Signal + ":" + e.Kind.String() + ";"
	}

	return key
}

// Signal is an internal wire or flip-flop, discovered by first assignment.
type Signal struct {
	Name     string
	Shape    Shape
	Class    StorageClass
	Edges    []Edge
	EnumType string // empty unless this signal's declared value space is an EnumType
}

// Parameter is a module-level constant, bound by assignment (concrete
// module) or by an instantiation keyword argument (template).
type Parameter struct {
	Name  string
	Value int64
}

// EnumMember is one `NAME = value` entry of an enum type.
type EnumMember struct {
	Name  string
	Value int64
}

// EnumType is a nested `class Name(Enum): ...` declaration.
type EnumType struct {
	Name    string
	Members []EnumMember
	Width   int
}

// SubmoduleInstance is a `name = Template(k=v, ...)` declaration together
// with the port-wiring table later populated by `instance.port = expr` and
// `target = instance.port` assignments.
type SubmoduleInstance struct {
	Name        string
	Template    string
	EmittedName string
	Bindings    []Parameter // declaration order of the template's formal parameters
	Inputs      map[string]ast.Expr
	InputOrder  []string

	resolved *Module // the monomorphized/concrete descriptor of Template, for port lookups
}

// Resolved returns the elaborated descriptor of this instance's template,
// for port-shape and UnknownPort lookups.
func (s *SubmoduleInstance) Resolved() *Module { return s.resolved }

// IntermediateWire is the auto-generated signal sitting between a
// submodule's output port and its consumer(s).
type IntermediateWire struct {
	Name     string
	Shape    Shape
	Instance string
	Port     string
}

// Assignment is one classified `target = value` statement, in source
// (post-unroll) order.
type Assignment struct {
	Target ast.Expr
	Value  ast.Expr
	Class  StorageClass
	Edges  []Edge
}

// Module is the fully elaborated descriptor for one concrete module, either
// one with no free parameters or one produced by monomorphizing a template.
type Module struct {
	Name        string // source class name (the template name, for a monomorphization)
	EmittedName string

	Ports      []*Port
	Parameters []*Parameter
	Enums      []*EnumType

	Signals     []*Signal
	signalIndex map[string]*Signal

	Instances         []*SubmoduleInstance
	IntermediateWires []*IntermediateWire
	wireIndex         map[string]*IntermediateWire

	CombAssigns []*Assignment
	// SeqGroups preserves first-appearance order of distinct edge sets.
	SeqGroupOrder []string
	SeqGroups     map[string][]*Assignment
	SeqEdges      map[string][]Edge

	// CombBody and SeqBodies hold the lowered statement trees the emitter
	// renders; CombAssigns/SeqGroups above are the flat per-assignment view
	// the classification state machine and the HIR dump work from.
	CombBody  []LoweredStmt
	SeqBodies map[string][]LoweredStmt
}

// NewModule constructs an empty descriptor ready for the semantic pass.
func NewModule(name, emitted string) *Module {
	return &Module{
		Name:        name,
		EmittedName: emitted,
		signalIndex: map[string]*Signal{},
		wireIndex:   map[string]*IntermediateWire{},
		SeqGroups:   map[string][]*Assignment{},
		SeqEdges:    map[string][]Edge{},
		SeqBodies:   map[string][]LoweredStmt{},
	}
}

// LookupPort returns the named port, or nil.
func (m *Module) LookupPort(name string) *Port {
	for _, p := range m.Ports {
		if p.Name == name {
			return p
		}
	}

	return nil
}

// LookupSignal returns the named internal signal, or nil.
func (m *Module) LookupSignal(name string) *Signal {
	return m.signalIndex[name]
}

// LookupParameter returns the named parameter, or nil.
func (m *Module) LookupParameter(name string) *Parameter {
	for _, p := range m.Parameters {
		if p.Name == name {
			return p
		}
	}

	return nil
}

// LookupInstance returns the named submodule instance, or nil.
func (m *Module) LookupInstance(name string) *SubmoduleInstance {
	for _, inst := range m.Instances {
		if inst.Name == name {
			return inst
		}
	}

	return nil
}

// LookupEnum returns the named enum type, or nil.
func (m *Module) LookupEnum(name string) *EnumType {
	for _, e := range m.Enums {
		if e.Name == name {
			return e
		}
	}

	return nil
}

// DeclareSignal registers a new internal signal the first time it is
// assigned. Returns the existing signal if already declared.
func (m *Module) DeclareSignal(name string, shape Shape) *Signal {
	if s, ok := m.signalIndex[name]; ok {
		return s
	}

	s := &Signal{Name: name, Shape: shape}
	m.signalIndex[name] = s
	m.Signals = append(m.Signals, s)

	return s
}

// InternedWire returns the intermediate wire for instance.port, creating it
// (with the given shape) on first use.
func (m *Module) InternedWire(instance, port string, shape Shape) *IntermediateWire {
	key := instance + "." + port
	if w, ok := m.wireIndex[key]; ok {
		return w
	}

	w := &IntermediateWire{Name: instance + "_" + port, Shape: shape, Instance: instance, Port: port}
	m.wireIndex[key] = w
	m.IntermediateWires = append(m.IntermediateWires, w)

	return w
}

// WireFor returns the intermediate wire already interned for instance.port,
// or nil if that output was never consumed.
func (m *Module) WireFor(instance, port string) *IntermediateWire {
	return m.wireIndex[instance+"."+port]
}

func (m *Module) ensureSeqGroup(edges []Edge) string {
	key := EdgeSetKey(edges)
	if _, ok := m.SeqEdges[key]; !ok {
		m.SeqGroupOrder = append(m.SeqGroupOrder, key)
		m.SeqEdges[key] = edges
	}

	return key
}

// AddAssignment files a classified assignment into the combinational list or
// the appropriate sequential edge-set group.
func (m *Module) AddAssignment(a *Assignment) {
	if a.Class == Comb {
		m.CombAssigns = append(m.CombAssigns, a)
		return
	}

	key := m.ensureSeqGroup(a.Edges)
	m.SeqGroups[key] = append(m.SeqGroups[key], a)
}

// AddSeqStmts appends a lowered statement tree to the always_ff block for
// the given edge set; successive edge-guarded ifs over identical edges merge
// into one block.
func (m *Module) AddSeqStmts(edges []Edge, stmts []LoweredStmt) {
	if len(stmts) == 0 {
		return
	}

	key := m.ensureSeqGroup(edges)
	m.SeqBodies[key] = append(m.SeqBodies[key], stmts...)
}
