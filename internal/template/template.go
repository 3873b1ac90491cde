package template

import (
	"html/template"
	"io"
)

var Login *template.Template
var Portfolio *template.Template
var Offerings *template.Template
var History *template.Template

func Init() {
	Login = template.Must(template.ParseFiles(
		"template/base.tmpl",
		"template/login.tmpl",
	))
	Portfolio = template.Must(template.ParseFiles(
		"template/base.tmpl",
		"template/portfolio.tmpl",
	))
	Offerings = template.Must(template.ParseFiles(
		"template/base.tmpl",
		"template/offerings.tmpl",
	))
	History = template.Must(template.ParseFiles(
		"template/base.tmpl",
		"template/history.tmpl",
	))
}

func Render(tmpl *template.Template, writer io.Writer, data interface{}) {
	tmpl.ExecuteTemplate(writer, "base", data)
}
