package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jkestates/estatedesk/internal/statement"
)

func respondData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

func respondDocument(c *gin.Context, doc *statement.Document) {
	c.Header("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}
