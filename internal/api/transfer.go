package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/alexanderramin/estimator/internal/importer"
	"github.com/gin-gonic/gin"
)

type importResponse struct {
	Estimate   estimateResponse `json:"estimate"`
	GroupCount int              `json:"groupCount"`
	ItemCount  int              `json:"itemCount"`
}

// importEstimate accepts an import document as JSON, or as YAML when the
// request says so.
func (s *Server) importEstimate(c *gin.Context) {
	format := importer.FormatJSON
	if ct := c.ContentType(); ct == "application/yaml" || ct == "application/x-yaml" || ct == "text/yaml" {
		format = importer.FormatYAML
	}
	body, err := c.GetRawData()
	if err != nil {
		badRequest(c, err)
		return
	}
	schema, err := importer.ParseImportSchema(body, format)
	if err != nil {
		badRequest(c, err)
		return
	}

	res, err := s.deps.Imports.ImportEstimateFromSchema(c.Request.Context(), schema)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, importResponse{
		Estimate:   toEstimateResponse(res.Estimate, s.deps.Currency),
		GroupCount: res.GroupCount,
		ItemCount:  res.ItemCount,
	})
}

func (s *Server) exportEstimate(c *gin.Context) {
	id := c.Param("id")
	format := importer.Format(c.DefaultQuery("format", string(importer.FormatJSON)))

	var (
		buf         bytes.Buffer
		err         error
		contentType string
	)
	switch format {
	case importer.FormatJSON, importer.FormatYAML:
		contentType = "application/json; charset=utf-8"
		if format == importer.FormatYAML {
			contentType = "application/yaml; charset=utf-8"
		}
		var schema *importer.ImportSchema
		if schema, err = s.deps.Imports.ExportEstimate(c.Request.Context(), id); err == nil {
			err = importer.Write(&buf, schema, format)
		}
	case importer.FormatXLSX:
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = s.deps.Imports.ExportWorkbook(c.Request.Context(), id, &buf)
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "format must be json, yaml or xlsx"})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="estimate.%s"`, format))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
