// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/glenn-horton-smith/treeinfo/pkg/types"
)

// htmlTmpl renders one bordered table. Rows sharing a leaf definition
// are grouped with a rowspan on the first cell, mirroring how a leaf
// recurring across trees and files reads as one logical entry.
var htmlTmpl = template.Must(template.New("report").Parse(`<style>
table, th, td {
  border-collapse: collapse;
  white-space: pre-line;
  border: 1px solid;
}
</style>
<table>
<tr><th>Leaf Def.</th>
<th>Tree Name</th>
<th>Branch Creation File Line</th>
<th>Source File Comments</th>
<th>Source File Assignments</th></tr>
{{range .Groups}}{{$g := .}}{{range $i, $r := .Rows}}<tr>{{if eq $i 0}}<td{{if gt (len $g.Rows) 1}} rowspan="{{len $g.Rows}}"{{end}}>{{$g.LeafDef}}</td>
{{end}}<td>{{$r.TreeName}}</td>
<td>{{$r.FileName}}<a href="{{$r.CreationURL}}">:{{$r.Line}}</a></td>
<td>{{range $j, $c := $r.Comments}}{{if $j}}<br/>
{{end}}<a href="{{$c.URL}}">:{{$c.Line}}</a> {{$c.Text}}{{end}}</td>
<td>{{range $j, $a := $r.Assignments}}{{if $j}}<br/>
{{end}}<a href="{{$a.URL}}">:{{$a.Line}}</a> {{$a.Text}}{{end}}</td></tr>
{{end}}{{end}}</table>
`))

type htmlRef struct {
	URL  string
	Line int
	Text string
}

type htmlRow struct {
	TreeName    string
	FileName    string
	CreationURL string
	Line        int
	Comments    []htmlRef
	Assignments []htmlRef
}

type htmlGroup struct {
	LeafDef string
	Rows    []htmlRow
}

// WriteHTML writes the report table, linking every source line to a
// repository browser via urlPrefix, e.g.
// "https://github.com/ubneutrinos/searchingfornues/blob/v30genie/".
func WriteHTML(ctx context.Context, src Source, w io.Writer, urlPrefix string) error {
	rows, err := src.BranchRows(ctx)
	if err != nil {
		return err
	}

	var groups []htmlGroup
	for _, r := range rows {
		// BranchRows is ordered by leaf definition, so equal leaves are
		// adjacent.
		name := strings.TrimPrefix(r.FileName, "./")

		comments, err := src.Comments(ctx, r.FileID, r.BranchID)
		if err != nil {
			return err
		}
		assigns, err := src.Assignments(ctx, r.FileID, r.BranchID)
		if err != nil {
			return err
		}

		row := htmlRow{
			TreeName:    r.TreeName,
			FileName:    name,
			CreationURL: sourceURL(urlPrefix, name, r.Line),
			Line:        r.Line,
			Comments:    htmlRefs(urlPrefix, name, comments),
			Assignments: htmlRefs(urlPrefix, name, assigns),
		}

		if len(groups) == 0 || groups[len(groups)-1].LeafDef != r.LeafDef {
			groups = append(groups, htmlGroup{LeafDef: r.LeafDef})
		}
		g := &groups[len(groups)-1]
		g.Rows = append(g.Rows, row)
	}

	return htmlTmpl.Execute(w, struct{ Groups []htmlGroup }{groups})
}

func htmlRefs(prefix, file string, refs []types.Reference) []htmlRef {
	out := make([]htmlRef, len(refs))
	for i, r := range refs {
		out[i] = htmlRef{
			URL:  sourceURL(prefix, file, r.Line),
			Line: r.Line,
			Text: r.Text,
		}
	}
	return out
}

// sourceURL builds a link of the form {prefix}{filepath}#L{line}.
func sourceURL(prefix, file string, line int) string {
	return fmt.Sprintf("%s%s#L%d", prefix, file, line)
}
