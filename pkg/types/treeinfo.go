// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// GhostLine is the sentinel creation line recorded for a tree that was
// never explicitly created in the file, only mutated through Branch calls.
const GhostLine = -1

// SourceFile is a scanned C++ source file. The path string is its natural
// key; ID is the surrogate assigned by the store on first sighting.
type SourceFile struct {
	// ID is the surrogate key (srcfile.fileid).
	ID int64 `json:"file_id" yaml:"file_id"`

	// Path is the file path as given in the input list.
	Path string `json:"path" yaml:"path"`
}

// Tree is one TTree definition recovered from source text. Natural key is
// (Name, FileID): the same tree name may legitimately recur across files.
type Tree struct {
	// ID is the surrogate key (tree.treeid).
	ID int64 `json:"tree_id" yaml:"tree_id"`

	// Name is the tree name in the ROOT output file, the key downstream
	// consumers use. For a ghost tree it equals VarName.
	Name string `json:"name" yaml:"name"`

	// Title is the tree title string. When the creation statement carried
	// no recognizable title argument, the entire raw source line is stored
	// here instead. Empty for ghost trees.
	Title string `json:"title" yaml:"title"`

	// VarName is the C++ variable the tree is bound to in the source.
	VarName string `json:"var_name" yaml:"var_name"`

	// FileID references the owning SourceFile.
	FileID int64 `json:"file_id" yaml:"file_id"`

	// Line is the 1-based line of the creation statement, or GhostLine.
	Line int `json:"line" yaml:"line"`
}

// Branch is one Branch() registration against a tree. Re-registration of
// the same branch name is legal and recorded as a separate row.
type Branch struct {
	// ID is the surrogate key (branch.branchid).
	ID int64 `json:"branch_id" yaml:"branch_id"`

	// TreeID references the owning Tree.
	TreeID int64 `json:"tree_id" yaml:"tree_id"`

	// Name is the branch name in the ROOT output file.
	Name string `json:"name" yaml:"name"`

	// LeafDef is the leaf descriptor: either the quoted leaf definition
	// string from the source, or a synthesized form such as
	// `name ("descriptor")` or `name (object)` for the argument shapes
	// that carry no leaf string.
	LeafDef string `json:"leaf_def" yaml:"leaf_def"`

	// ValueVar is the C++ variable whose value the branch records.
	ValueVar string `json:"value_var" yaml:"value_var"`

	// FileID references the owning SourceFile.
	FileID int64 `json:"file_id" yaml:"file_id"`

	// Line is the 1-based line of the Branch() call.
	Line int `json:"line" yaml:"line"`
}

// Reference is a raw source line correlated with a branch because it
// mentions the branch's value variable. The same line may be stored both
// as a comment and as an assignment if it satisfies both heuristics.
type Reference struct {
	// BranchID references the owning Branch.
	BranchID int64 `json:"branch_id" yaml:"branch_id"`

	// FileID references the SourceFile the line was read from.
	FileID int64 `json:"file_id" yaml:"file_id"`

	// Line is the 1-based line number.
	Line int `json:"line" yaml:"line"`

	// Text is the stripped source line.
	Text string `json:"text" yaml:"text"`
}
