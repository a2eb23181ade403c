package swagger

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const specFile = "openapi.yaml"

//go:embed openapi.yaml
var spec []byte

var page = template.Must(template.New("ui").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>{{.Title}} - Swagger UI</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body style="margin:0">
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({url: "{{.SpecURL}}", dom_id: "#swagger-ui", deepLinking: true});
  </script>
</body>
</html>`))

// RegisterRoutes serves the pricing API document at /swagger/openapi.yaml
// and a Swagger UI page for every other path under /swagger.
func RegisterRoutes(r *gin.Engine, title string) {
	var ui bytes.Buffer
	if err := page.Execute(&ui, struct{ Title, SpecURL string }{title, "/swagger/" + specFile}); err != nil {
		panic(err)
	}
	html := ui.Bytes()

	r.GET("/swagger/*path", func(c *gin.Context) {
		if strings.HasSuffix(c.Param("path"), specFile) {
			c.Data(http.StatusOK, "application/yaml", spec)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", html)
	})
}
