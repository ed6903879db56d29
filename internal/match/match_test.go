// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"errors"
	"testing"
)

// --- tree creation ---

func TestTree(t *testing.T) {
	tests := []struct {
		name string
		line string
		want *TreeMatch
	}{
		{
			"factory form with title",
			`_tree = tfs->make<TTree>("SelectedEvents", "Selected Events TTree");`,
			&TreeMatch{VarName: "_tree", Name: "SelectedEvents", Title: "Selected Events TTree"},
		},
		{
			"direct construction with title",
			`t = new TTree("mytree", "my title");`,
			&TreeMatch{VarName: "t", Name: "mytree", Title: "my title"},
		},
		{
			"loose spacing",
			`myTree  =  fs -> make < TTree > ( "nu" , "numu events" )`,
			&TreeMatch{VarName: "myTree", Name: "nu", Title: "numu events"},
		},
		{
			"empty title argument",
			`t = new TTree("bare", "")`,
			&TreeMatch{VarName: "t", Name: "bare", Title: ""},
		},
		{
			"no match",
			`int nslice = 0;`,
			nil,
		},
		{
			"branch call is not a creation",
			`t->Branch("b1", &x, "x/F");`,
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tree(tt.line)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("Tree(%q) = %+v, want nil", tt.line, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("Tree(%q) = nil, want %+v", tt.line, tt.want)
			}
			if *got != *tt.want {
				t.Errorf("Tree(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

// A creation call whose remaining arguments do not look like a title
// keeps the entire raw line as the title rather than dropping it.
func TestTreeTitleFallback(t *testing.T) {
	line := `t = new TTree("odd", title_variable);`
	got := Tree(line)
	if got == nil {
		t.Fatal("expected a match")
	}
	if got.Title != line {
		t.Errorf("Title = %q, want the raw line", got.Title)
	}
}

// --- branch registration ---

func TestBranchShapes(t *testing.T) {
	tests := []struct {
		name string
		line string
		want BranchMatch
	}{
		{
			"shape 1: scalar leaf",
			`t->Branch("b1", &x, "x/F");`,
			BranchMatch{TreeVar: "t", Name: "b1", ValueVar: "x", LeafDef: "x/F", Shape: ShapeLeaf},
		},
		{
			"shape 1: no address-of, member variable",
			`_tree->Branch("nu_e", fNuEnergy, "nu_e/D");`,
			BranchMatch{TreeVar: "_tree", Name: "nu_e", ValueVar: "fNuEnergy", LeafDef: "nu_e/D", Shape: ShapeLeaf},
		},
		{
			"shape 1: leaf without type suffix",
			`t->Branch("n", &n, "n");`,
			BranchMatch{TreeVar: "t", Name: "n", ValueVar: "n", LeafDef: "n", Shape: ShapeLeaf},
		},
		{
			"shape 2: array leaf",
			`t->Branch("hits", hitbuf, "hits[nhits]/F");`,
			BranchMatch{TreeVar: "t", Name: "hits", ValueVar: "hitbuf", LeafDef: "hits[nhits]/F", Shape: ShapeArrayLeaf},
		},
		{
			"shape 3: descriptor then variable",
			`t->Branch("trk", "std::vector<float>", &trk_v);`,
			BranchMatch{TreeVar: "t", Name: "trk", ValueVar: "trk_v", LeafDef: `trk ("std::vector<float>")`, Shape: ShapeDescriptor},
		},
		{
			"shape 4: bare object",
			`t->Branch("weights", &weightsv);`,
			BranchMatch{TreeVar: "t", Name: "weights", ValueVar: "weightsv", LeafDef: "weights (object)", Shape: ShapeObject},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Branch(tt.line)
			if err != nil {
				t.Fatalf("Branch(%q) error: %v", tt.line, err)
			}
			if got == nil {
				t.Fatalf("Branch(%q) = nil, want %+v", tt.line, tt.want)
			}
			if *got != tt.want {
				t.Errorf("Branch(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestBranchNoCall(t *testing.T) {
	for _, line := range []string{
		`int nslice = 0;`,
		`t = new TTree("mytree", "my title");`,
		`// t->Fill() happens later`,
	} {
		got, err := Branch(line)
		if err != nil {
			t.Errorf("Branch(%q) error: %v", line, err)
		}
		if got != nil {
			t.Errorf("Branch(%q) = %+v, want nil", line, got)
		}
	}
}

func TestBranchUnrecognizedArgs(t *testing.T) {
	// Recognized call, argument list fitting no shape: must surface the
	// fatal error rather than skipping the line.
	_, err := Branch(`t->Branch("b1", makeBuffer() + 1);`)
	if !errors.Is(err, ErrBranchArgs) {
		t.Fatalf("err = %v, want ErrBranchArgs", err)
	}
}
