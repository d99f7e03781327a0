package server

import (
	"html/template"
	"io"
	"strings"

	"github.com/russross/blackfriday/v2"

	"github.com/KaramelBytes/reviewlens/internal/analysis"
)

var pageTmpl = template.Must(template.New("page").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>ReviewLens</title>
<style>
body { font-family: sans-serif; max-width: 960px; margin: 2rem auto; padding: 0 1rem; }
form.inline { display: inline-block; margin-right: .5rem; }
.msg { padding: .5rem .75rem; border-radius: 4px; }
.success { background: #e6f4ea; } .error { background: #fce8e6; } .info { background: #e8f0fe; }
table { border-collapse: collapse; } td, th { border: 1px solid #ddd; padding: .25rem .5rem; }
iframe { width: 100%; height: 1500px; border: 0; }
</style>
</head>
<body>
<h1>ReviewLens</h1>
<p>Customer review explorer.</p>
<form class="inline" method="post" action="/ingest"><input type="hidden" name="product" value="{{.D.Selected}}"><button>📥 Ingest Dataset</button></form>
<form class="inline" method="post" action="/parse"><input type="hidden" name="product" value="{{.D.Selected}}"><button>🧹 Parse Reviews</button></form>
{{if .D.Message}}<p class="msg {{if .Failed}}error{{else}}success{{end}}">{{.D.Message}}</p>{{end}}
{{if .D.Columns}}
<h2>Filter by Product</h2>
<form method="get" action="/">
<select name="product" onchange="this.form.submit()">
{{range .D.Options}}<option value="{{.}}"{{if eq . $.D.Selected}} selected{{end}}>{{if .}}{{.}}{{else}}(empty){{end}}</option>
{{end}}</select>
<noscript><button>Apply</button></noscript>
</form>
<h2>Dataset Preview</h2>
{{.Preview}}
{{range .D.Notices}}<p class="msg info">{{.}}</p>
{{end}}
<iframe src="/charts?product={{.D.Selected}}" title="charts"></iframe>
{{end}}
</body>
</html>
`))

type pageData struct {
	D       *analysis.Dashboard
	Failed  bool
	Preview template.HTML
}

func renderPage(w io.Writer, d *analysis.Dashboard, failed bool) error {
	data := pageData{D: d, Failed: failed}
	if d.Columns != nil {
		data.Preview = previewHTML(d)
	}
	return pageTmpl.Execute(w, data)
}

// previewHTML renders the preview table through Markdown. Cells hold
// customer text, so every Markdown metacharacter is escaped and shows up
// literally. Smartypants is left off so quotes and dashes stay as typed.
func previewHTML(d *analysis.Dashboard) template.HTML {
	r := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.UseXHTML | blackfriday.Safelink | blackfriday.SkipHTML,
	})
	out := blackfriday.Run([]byte(d.PreviewTableWith(escapeCell)),
		blackfriday.WithExtensions(blackfriday.Tables|blackfriday.NoIntraEmphasis),
		blackfriday.WithRenderer(r))
	return template.HTML(out)
}

// markdownMeta is the set of characters blackfriday honors a backslash escape for.
const markdownMeta = "\\`*_{}[]()#+-.!:|&<>~"

func escapeCell(s string) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(markdownMeta, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
