package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/jkestates/estatedesk/internal/statement"
	billdomain "github.com/jkestates/estatedesk/internal/utilitybill/domain"
	"github.com/jkestates/estatedesk/internal/utilitybill/session"
	"github.com/shopspring/decimal"
)

type selectPeriodRequest struct {
	PropertyID    string `json:"property_id"`
	BillingPeriod string `json:"billing_period"`
}

type rateRequest struct {
	Rate *decimal.Decimal `json:"rate"`
}

// A null reading clears the field.
type readingRequest struct {
	Reading *decimal.Decimal `json:"reading"`
}

type arrearsRequest struct {
	Arrears *decimal.Decimal `json:"arrears"`
}

type saveResponse struct {
	Session session.View            `json:"session"`
	Result  billdomain.PersistResult `json:"result"`
}

func (s *Server) billingSession(c *gin.Context) (*session.Session, bool) {
	sess, err := s.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return nil, false
	}
	return sess, true
}

// @Summary      Create Billing Session
// @Description  Open a billing session for one staff member
// @Tags         billing
// @Produce      json
// @Security     StaffAuth
// @Success      201  {object}  DataResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /billing/sessions [post]
func (s *Server) CreateBillingSession(c *gin.Context) {
	sess := s.sessions.Create(c.Request.Context())
	respondCreated(c, sess.View())
}

// @Summary      Get Billing Session
// @Description  Get a snapshot of a billing session
// @Tags         billing
// @Produce      json
// @Security     StaffAuth
// @Param        id   path  string  true  "Session ID"
// @Success      200  {object}  DataResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /billing/sessions/{id} [get]
func (s *Server) GetBillingSession(c *gin.Context) {
	sess, ok := s.billingSession(c)
	if !ok {
		return
	}
	respondData(c, sess.View())
}

// @Summary      Close Billing Session
// @Description  Discard a billing session and its unsaved edits
// @Tags         billing
// @Produce      json
// @Security     StaffAuth
// @Param        id   path  string  true  "Session ID"
// @Success      200  {object}  DataResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /billing/sessions/{id} [delete]
func (s *Server) DeleteBillingSession(c *gin.Context) {
	if _, ok := s.billingSession(c); !ok {
		return
	}
	s.sessions.Delete(c.Param("id"))
	respondData(c, gin.H{"deleted": true})
}

// SelectBillingPeriod accepts the property, the billing period or both. The
// period is loaded once both are known.
//
// @Summary      Select Property and Period
// @Description  Select the property, the billing period or both
// @Tags         billing
// @Accept       json
// @Produce      json
// @Security     StaffAuth
// @Param        id   path  string  true  "Session ID"
// @Param        request body selectPeriodRequest true "Select Property and Period Request"
// @Success      200  {object}  DataResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /billing/sessions/{id}/select [post]
func (s *Server) SelectBillingPeriod(c *gin.Context) {
	sess, ok := s.billingSession(c)
	if !ok {
		return
	}

	var req selectPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	propertyRaw := strings.TrimSpace(req.PropertyID)
	periodRaw := strings.TrimSpace(req.BillingPeriod)
	if propertyRaw == "" && periodRaw == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var (
		propertyID snowflake.ID
		period     billdomain.Period
		err        error
	)
	if propertyRaw != "" {
		if propertyID, err = snowflake.ParseString(propertyRaw); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
	}
	if periodRaw != "" {
		if period, err = billdomain.ParsePeriod(periodRaw); err != nil {
			AbortWithError(c, err)
			return
		}
	}

	ctx := c.Request.Context()
	switch {
	case propertyRaw != "" && periodRaw != "":
		err = sess.Select(ctx, propertyID, period)
	case propertyRaw != "":
		err = sess.SelectProperty(ctx, propertyID)
	default:
		err = sess.SelectPeriod(ctx, period)
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, sess.View())
}

// @Summary      Reload Billing Period
// @Description  Reload the selected period, discarding unsaved edits
// @Tags         billing
// @Produce      json
// @Security     StaffAuth
// @Param        id   path  string  true  "Session ID"
// @Success      200  {object}  DataResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /billing/sessions/{id}/reload [post]
func (s *Server) ReloadBillingSession(c *gin.Context) {
	sess, ok := s.billingSession(c)
	if !ok {
		return
	}
	if err := sess.Reload(c.Request.Context()); err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, sess.View())
}

// @Summary      Switch To Create Mode
// @Description  Discard loaded bills and start a fresh period in create mode
// @Tags         billing
// @Produce      json
// @Security     StaffAuth
// @Param        id   path  string  true  "Session ID"
// @Success      200  {object}  DataResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /billing/sessions/{id}/create-mode [post]
func (s *Server) SwitchToCreateMode(c *gin.Context) {
	sess, ok := s.billingSession(c)
	if !ok {
		return
	}
	if err := sess.SwitchToCreateMode(c.Request.Context()); err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, sess.View())
}

// @Summary      Set Rate
// @Description  Set the per-unit rate applied to every line
// @Tags         billing
// @Accept       json
// @Produce      json
// @Security     StaffAuth
// @Param        id   path  string  true  "Session ID"
// @Param        request body rateRequest true "Set Rate Request"
// @Success      200  {object}  DataResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /billing/sessions/{id}/rate [put]
func (s *Server) SetBillingRate(c *gin.Context) {
	sess, ok := s.billingSession(c)
	if !ok {
		return
	}
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Rate == nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if err := sess.SetRate(*req.Rate); err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, sess.View())
}

// @Summary      Set Current Reading
// @Description  Set or clear the current meter reading of a unit
// @Tags         billing
// @Accept       json
// @Produce      json
// @Security     StaffAuth
// @Param        id       path  string  true  "Session ID"
// @Param        unit_id  path  string  true  "Unit ID"
// @Param        request body readingRequest true "Set Current Reading Request"
// @Success      200  {object}  DataResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /billing/sessions/{id}/lines/{unit_id}/current-reading [put]
func (s *Server) SetCurrentReading(c *gin.Context) {
	sess, unitID, ok := s.billingLine(c)
	if !ok {
		return
	}
	var req readingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if err := sess.SetCurrentReading(unitID, req.Reading); err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, sess.View())
}

// @Summary      Set Previous Reading
// @Description  Override the previous meter reading of a unit
// @Tags         billing
// @Accept       json
// @Produce      json
// @Security     StaffAuth
// @Param        id       path  string  true  "Session ID"
// @Param        unit_id  path  string  true  "Unit ID"
// @Param        request body readingRequest true "Set Previous Reading Request"
// @Success      200  {object}  DataResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /billing/sessions/{id}/lines/{unit_id}/previous-reading [put]
func (s *Server) SetPreviousReading(c *gin.Context) {
	sess, unitID, ok := s.billingLine(c)
	if !ok {
		return
	}
	var req readingRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Reading == nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if err := sess.SetPreviousReading(unitID, *req.Reading); err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, sess.View())
}

// @Summary      Set Arrears
// @Description  Set the arrears carried by a unit
// @Tags         billing
// @Accept       json
// @Produce      json
// @Security     StaffAuth
// @Param        id       path  string  true  "Session ID"
// @Param        unit_id  path  string  true  "Unit ID"
// @Param        request body arrearsRequest true "Set Arrears Request"
// @Success      200  {object}  DataResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /billing/sessions/{id}/lines/{unit_id}/arrears [put]
func (s *Server) SetArrears(c *gin.Context) {
	sess, unitID, ok := s.billingLine(c)
	if !ok {
		return
	}
	var req arrearsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Arrears == nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if err := sess.SetArrears(unitID, *req.Arrears); err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, sess.View())
}

// @Summary      Validate Billing Session
// @Description  Check every line before saving
// @Tags         billing
// @Produce      json
// @Security     StaffAuth
// @Param        id   path  string  true  "Session ID"
// @Success      200  {object}  DataResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /billing/sessions/{id}/validate [post]
func (s *Server) ValidateBillingSession(c *gin.Context) {
	sess, ok := s.billingSession(c)
	if !ok {
		return
	}
	if err := sess.Validate(); err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, sess.View())
}

// @Summary      Save Billing Session
// @Description  Persist every line of the session
// @Tags         billing
// @Produce      json
// @Security     StaffAuth
// @Param        id   path  string  true  "Session ID"
// @Success      200  {object}  DataResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /billing/sessions/{id}/save [post]
func (s *Server) SaveBillingSession(c *gin.Context) {
	sess, ok := s.billingSession(c)
	if !ok {
		return
	}
	result, err := sess.Save(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, saveResponse{Session: sess.View(), Result: result})
}

// @Summary      Batch Statement
// @Description  Render a statement for every line of the session
// @Tags         billing
// @Produce      application/pdf,text/csv
// @Security     StaffAuth
// @Param        id      path   string  true  "Session ID"
// @Param        format  query  string  true  "pdf or csv"
// @Success      200  {file}    file
// @Failure      400  {object}  ErrorResponse
// @Router       /billing/sessions/{id}/statement [get]
func (s *Server) BatchStatement(c *gin.Context) {
	sess, ok := s.billingSession(c)
	if !ok {
		return
	}
	format, err := statement.ParseFormat(strings.ToLower(c.Query("format")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	doc, err := sess.BatchStatement(c.Request.Context(), format)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondDocument(c, doc)
}

// @Summary      Unit Statement
// @Description  Render the statement of one unit
// @Tags         billing
// @Produce      application/pdf,text/csv
// @Security     StaffAuth
// @Param        id       path   string  true  "Session ID"
// @Param        unit_id  path   string  true  "Unit ID"
// @Param        format   query  string  true  "pdf or csv"
// @Success      200  {file}    file
// @Failure      400  {object}  ErrorResponse
// @Router       /billing/sessions/{id}/lines/{unit_id}/statement [get]
func (s *Server) SingleStatement(c *gin.Context) {
	sess, unitID, ok := s.billingLine(c)
	if !ok {
		return
	}
	format, err := statement.ParseFormat(strings.ToLower(c.Query("format")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	doc, err := sess.SingleStatement(c.Request.Context(), unitID, format)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondDocument(c, doc)
}

func (s *Server) billingLine(c *gin.Context) (*session.Session, snowflake.ID, bool) {
	unitID, err := snowflake.ParseString(c.Param("unit_id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return nil, 0, false
	}
	sess, ok := s.billingSession(c)
	if !ok {
		return nil, 0, false
	}
	return sess, unitID, true
}
