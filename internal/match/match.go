// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match recognizes TTree creation and Branch registration
// statements in raw C++ source lines. The matchers are pure functions
// over single physical lines: no parsing, no type information, just an
// ordered cascade of patterns with first-match-wins semantics.
package match

import (
	"errors"
	"regexp"
)

// Tree creation patterns. Two mutually exclusive surface forms capture
// the bound variable and the tree name; the text immediately after the
// match is probed separately for a trailing title argument.
var (
	// treeFactoryRe matches factory-style creation:
	//   t = tfs->make<TTree>("name" ...
	treeFactoryRe = regexp.MustCompile(`(\w+) *= *\w+ *-> *make *< *TTree *> *\( *"(\w+)" *`)

	// treeDirectRe matches direct construction:
	//   t = new TTree("name" ...
	treeDirectRe = regexp.MustCompile(`(\w+) *= *new *TTree *\( *"(\w+)" *`)

	// treeTitleRe matches the title argument immediately following a
	// creation match, anchored at the start of the remainder.
	treeTitleRe = regexp.MustCompile(`^, *"(.*)" *\)`)
)

// Branch registration patterns. branchCallRe recognizes the call itself;
// the remainder of the line is then probed against four argument shapes,
// strictly in order. The cascade order is the tie-break for lines that
// could be read more than one way; keep it.
var (
	// branchCallRe matches t->Branch("name" and captures the tree
	// variable and the branch name.
	branchCallRe = regexp.MustCompile(`(\w+) *-> *Branch *\( *"(\w+)" *`)

	// branchArgsLeafRe: value variable (optionally address-of) followed
	// by a quoted leaf definition like "x/F".
	branchArgsLeafRe = regexp.MustCompile(`^, *&?([\w.]+) *, *"(\w+/?\w?)" *[,)]`)

	// branchArgsArrayRe: value variable followed by a quoted leaf
	// definition with an array size, like "x[n]/F".
	branchArgsArrayRe = regexp.MustCompile(`^, *([\w.]+) *, *"(\w+\[\w+\]/?\w?)" *[,)]`)

	// branchArgsDescRe: quoted descriptor first, value variable second.
	// The quotes stay part of the captured descriptor.
	branchArgsDescRe = regexp.MustCompile(`^, *("[^"]+") *, *&?([\w.]+) *[,)]`)

	// branchArgsObjectRe: bare value variable, no leaf definition.
	branchArgsObjectRe = regexp.MustCompile(`^, *&?([\w.]+) *[,)]`)
)

// ErrBranchArgs reports a line whose Branch call was recognized but whose
// argument list fit none of the four known shapes. Callers must treat it
// as fatal: skipping the line would silently drop a branch from the
// extracted dataset.
var ErrBranchArgs = errors.New("unrecognized Branch argument syntax")

// TreeMatch is one recognized tree creation statement.
type TreeMatch struct {
	// VarName is the variable the new tree is assigned to.
	VarName string

	// Name is the tree name in the ROOT output file.
	Name string

	// Title is the title argument if one followed the creation call, or
	// the entire raw line if not, so the information is never dropped.
	Title string
}

// BranchShape identifies which argument shape a Branch call matched.
type BranchShape int

const (
	// ShapeLeaf is a value variable plus a scalar leaf definition.
	ShapeLeaf BranchShape = iota + 1

	// ShapeArrayLeaf is a value variable plus an array leaf definition.
	ShapeArrayLeaf

	// ShapeDescriptor is a quoted descriptor followed by the value
	// variable, with the leaf definition synthesized from both.
	ShapeDescriptor

	// ShapeObject is a bare value variable registering an opaque object.
	ShapeObject
)

// BranchMatch is one recognized Branch registration statement.
type BranchMatch struct {
	// TreeVar is the variable the Branch call is made on.
	TreeVar string

	// Name is the branch name in the ROOT output file.
	Name string

	// ValueVar is the variable holding the branch value.
	ValueVar string

	// LeafDef is the leaf definition, synthesized for shapes 3 and 4.
	LeafDef string

	// Shape records which argument shape matched.
	Shape BranchShape
}

// Tree probes a line for a tree creation statement, factory form first,
// then direct construction. At most one creation is recognized per line.
// Returns nil when the line contains neither form.
func Tree(line string) *TreeMatch {
	loc := treeFactoryRe.FindStringSubmatchIndex(line)
	if loc == nil {
		loc = treeDirectRe.FindStringSubmatchIndex(line)
	}
	if loc == nil {
		return nil
	}

	m := &TreeMatch{
		VarName: line[loc[2]:loc[3]],
		Name:    line[loc[4]:loc[5]],
	}

	rest := line[loc[1]:]
	if t := treeTitleRe.FindStringSubmatch(rest); t != nil {
		m.Title = t[1]
	} else {
		// No recognizable title argument: keep the whole line so the
		// information survives, at the cost of a noisy title.
		m.Title = line
	}
	return m
}

// Branch probes a line for a Branch registration. Returns (nil, nil) when
// no Branch call is present. When the call matches but the arguments fit
// none of the four shapes, returns ErrBranchArgs.
func Branch(line string) (*BranchMatch, error) {
	loc := branchCallRe.FindStringSubmatchIndex(line)
	if loc == nil {
		return nil, nil
	}

	m := &BranchMatch{
		TreeVar: line[loc[2]:loc[3]],
		Name:    line[loc[4]:loc[5]],
	}

	rest := line[loc[1]:]
	switch {
	case matchTwo(branchArgsLeafRe, rest, &m.ValueVar, &m.LeafDef):
		m.Shape = ShapeLeaf
	case matchTwo(branchArgsArrayRe, rest, &m.ValueVar, &m.LeafDef):
		m.Shape = ShapeArrayLeaf
	case matchTwo(branchArgsDescRe, rest, &m.LeafDef, &m.ValueVar):
		m.LeafDef = m.Name + " (" + m.LeafDef + ")"
		m.Shape = ShapeDescriptor
	default:
		g := branchArgsObjectRe.FindStringSubmatch(rest)
		if g == nil {
			return nil, ErrBranchArgs
		}
		m.ValueVar = g[1]
		m.LeafDef = m.Name + " (object)"
		m.Shape = ShapeObject
	}
	return m, nil
}

// matchTwo applies a two-group pattern and stores the captures in order.
func matchTwo(re *regexp.Regexp, s string, first, second *string) bool {
	g := re.FindStringSubmatch(s)
	if g == nil {
		return false
	}
	*first, *second = g[1], g[2]
	return true
}
