package server

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	analyticsdomain "github.com/jkestates/estatedesk/internal/analytics/domain"
	"github.com/jkestates/estatedesk/internal/statement"
)

const reportDateLayout = "2006-01-02"

type reportQuery struct {
	Format     string `form:"format"`
	PropertyID string `form:"property_id"`
	Start      string `form:"start"`
	End        string `form:"end"`
}

func documentFormat(c *gin.Context) (statement.Format, bool) {
	format, err := statement.ParseFormat(strings.ToLower(strings.TrimSpace(c.Query("format"))))
	if err != nil {
		AbortWithError(c, err)
		return "", false
	}
	return format, true
}

// @Summary      Payment Receipt
// @Description  Render the receipt of a payment
// @Tags         documents
// @Produce      application/pdf,text/csv
// @Security     StaffAuth
// @Param        id      path   string  true  "Payment ID"
// @Param        format  query  string  true  "pdf or csv"
// @Success      200  {file}    file
// @Failure      400  {object}  ErrorResponse
// @Router       /payments/{id}/receipt [get]
func (s *Server) PaymentReceipt(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	format, ok := documentFormat(c)
	if !ok {
		return
	}
	doc, err := s.paymentSvc.Receipt(c.Request.Context(), id, format)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondDocument(c, doc)
}

// @Summary      Invoice Document
// @Description  Render an invoice
// @Tags         documents
// @Produce      application/pdf,text/csv
// @Security     StaffAuth
// @Param        id      path   string  true  "Invoice ID"
// @Param        format  query  string  true  "pdf or csv"
// @Success      200  {file}    file
// @Failure      400  {object}  ErrorResponse
// @Router       /invoices/{id}/document [get]
func (s *Server) InvoiceDocument(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	format, ok := documentFormat(c)
	if !ok {
		return
	}
	doc, err := s.invoiceSvc.Document(c.Request.Context(), id, format)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondDocument(c, doc)
}

// @Summary      Tenant Statement
// @Description  Render the payment history of a tenant
// @Tags         documents
// @Produce      application/pdf,text/csv
// @Security     StaffAuth
// @Param        id      path   string  true  "Tenant ID"
// @Param        format  query  string  true  "pdf or csv"
// @Success      200  {file}    file
// @Failure      400  {object}  ErrorResponse
// @Router       /tenants/{id}/statement [get]
func (s *Server) TenantStatement(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	format, ok := documentFormat(c)
	if !ok {
		return
	}
	doc, err := s.paymentSvc.TenantStatement(c.Request.Context(), id, format)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondDocument(c, doc)
}

// AnalyticsReport renders a report as a document. Pass format=json to get the
// aggregated rows instead.
//
// @Summary      Analytics Report
// @Description  Render an analytics report
// @Tags         reports
// @Produce      json
// @Security     StaffAuth
// @Param        type         path   string  true   "Report type"
// @Param        format       query  string  true   "pdf, csv or json"
// @Param        property_id  query  string  false  "Property ID"
// @Param        start        query  string  false  "Start date (YYYY-MM-DD)"
// @Param        end          query  string  false  "End date (YYYY-MM-DD)"
// @Success      200  {object}  DataResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /reports/{type} [get]
func (s *Server) AnalyticsReport(c *gin.Context) {
	reportType, err := analyticsdomain.ParseReportType(c.Param("type"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var query reportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	filter, err := parseReportFilter(query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if strings.EqualFold(strings.TrimSpace(query.Format), "json") {
		report, err := s.analyticsSvc.Build(c.Request.Context(), reportType, filter)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		respondData(c, report)
		return
	}

	format, err := statement.ParseFormat(strings.ToLower(strings.TrimSpace(query.Format)))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	doc, err := s.analyticsSvc.Render(c.Request.Context(), reportType, filter, format)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondDocument(c, doc)
}

func parseReportFilter(q reportQuery) (analyticsdomain.Filter, error) {
	var filter analyticsdomain.Filter
	if raw := strings.TrimSpace(q.PropertyID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return filter, ErrInvalidRequest
		}
		filter.PropertyID = id
	}
	if raw := strings.TrimSpace(q.Start); raw != "" {
		t, err := time.Parse(reportDateLayout, raw)
		if err != nil {
			return filter, analyticsdomain.ErrInvalidRange
		}
		filter.Start = t
	}
	if raw := strings.TrimSpace(q.End); raw != "" {
		t, err := time.Parse(reportDateLayout, raw)
		if err != nil {
			return filter, analyticsdomain.ErrInvalidRange
		}
		filter.End = t
	}
	return filter, nil
}
