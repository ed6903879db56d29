// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// StoreConfig holds settings for the extraction database.
type StoreConfig struct {
	// DBPath is the SQLite database file (default "treeinfo.db"). The
	// schema must exist before a scan runs; see the init command.
	DBPath string `json:"db_path" yaml:"db_path"`
}

// ScanConfig holds settings for the scan stage.
type ScanConfig struct {
	StoreConfig `yaml:",inline"`

	// ListFile names a text file containing source paths to scan, one per
	// line (default "TTree-making-files.txt"). Ignored when Root is set.
	ListFile string `json:"list_file" yaml:"list_file"`

	// Root, when set, is a directory to walk for source files instead of
	// reading ListFile.
	Root string `json:"root" yaml:"root"`

	// Include are glob patterns (relative to Root) selecting files to
	// scan. Defaults cover common C++ source extensions.
	Include []string `json:"include" yaml:"include"`

	// Ignore are glob patterns for paths to skip during discovery.
	Ignore []string `json:"ignore" yaml:"ignore"`
}

// ReportConfig holds settings for the report stage.
type ReportConfig struct {
	StoreConfig `yaml:",inline"`

	// OutPath is the report output file. Defaults depend on the format:
	// treeinfo.csv, treeinfo.html, or treeinfo.yaml.
	OutPath string `json:"out_path" yaml:"out_path"`

	// SourceURLPrefix is prepended to file paths to build source-browser
	// links in the HTML report, e.g.
	// "https://github.com/ubneutrinos/searchingfornues/blob/v30genie/".
	SourceURLPrefix string `json:"source_url_prefix" yaml:"source_url_prefix"`
}
