package dashboard

import (
	"html/template"

	"github.com/KaramelBytes/habitlens-cli/internal/dataset"
)

type chartLink struct {
	Name  string
	Label string
}

type pageData struct {
	Archive  string
	Message  string
	Charts   []chartLink
	Summary  *dataset.Summary
	Selected string
	MaxMB    int64
}

var pageTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"num": formatNum,
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Student Habits EDA</title>
<style>
body { font-family: sans-serif; margin: 2rem; color: #222; }
nav a { margin-right: 1rem; }
.error { color: #b00020; font-weight: bold; }
table { border-collapse: collapse; margin-top: 1rem; }
td, th { border: 1px solid #ccc; padding: 0.25rem 0.5rem; text-align: right; }
th:first-child, td:first-child { text-align: left; }
img { max-width: 100%; margin-top: 1rem; }
</style>
</head>
<body>
<h1>Student Habits EDA</h1>
<form action="/upload" method="post" enctype="multipart/form-data">
  <input type="file" name="file" accept=".zip">
  <button type="submit">Upload ZIP</button>
  <small>max {{.MaxMB}} MB</small>
</form>
{{if .Message}}<p class="error">{{.Message}}</p>{{end}}
{{with .Summary}}
<p>Loaded <b>{{$.Archive}}</b> ({{.Name}}): {{.Rows}} rows</p>
<nav>{{range $.Charts}}<a href="/?chart={{.Name}}">{{.Label}}</a>{{end}}</nav>
{{if $.Selected}}<img src="/charts/{{$.Selected}}" alt="{{$.Selected}}">{{end}}
<table>
<tr><th>column</th><th>kind</th><th>non-null</th><th>missing</th><th>mean</th><th>std</th><th>min</th><th>median</th><th>max</th></tr>
{{range .Cols}}<tr><td>{{.Name}}</td><td>{{.Kind}}</td><td>{{.NonNull}}</td><td>{{.Missing}}</td>
{{if eq .Kind "numeric"}}<td>{{num .Mean}}</td><td>{{num .Std}}</td><td>{{num .Min}}</td><td>{{num .Median}}</td><td>{{num .Max}}</td>{{else}}<td colspan="5">{{len .TopValues}} top values</td>{{end}}</tr>
{{end}}
</table>
{{else}}
<p>Upload a ZIP archive containing the student habits CSV to begin.</p>
{{end}}
</body>
</html>
`
