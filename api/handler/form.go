package handler

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/mapsrun/models"
)

//go:embed web/form.html
var webFS embed.FS

// FormTemplateName is the name the form page is registered under.
const FormTemplateName = "form.html"

// FormTemplate parses the embedded parameter form page.
func FormTemplate() *template.Template {
	return template.Must(template.ParseFS(webFS, "web/"+FormTemplateName))
}

type formData struct {
	Query      string
	Depth      int
	MinDepth   int
	Lang       string
	BinaryName string
}

// Form returns a handler for GET / rendering the parameter form with its
// default values.
func Form(binaryName string) gin.HandlerFunc {
	defaults := models.NewScrapeRequest()
	data := formData{
		Query:      defaults.Query,
		Depth:      defaults.Depth,
		MinDepth:   models.MinDepth,
		Lang:       defaults.Lang,
		BinaryName: binaryName,
	}
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, FormTemplateName, data)
	}
}
