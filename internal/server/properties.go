package server

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

func pathID(c *gin.Context, name string) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(c.Param(name))
	if err != nil || id <= 0 {
		AbortWithError(c, ErrInvalidRequest)
		return 0, false
	}
	return id, true
}

// @Summary      List Properties
// @Description  List properties by name
// @Tags         properties
// @Produce      json
// @Security     StaffAuth
// @Success      200  {object}  DataResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /properties [get]
func (s *Server) ListProperties(c *gin.Context) {
	properties, err := s.propertySvc.ListProperties(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, properties)
}

// @Summary      Get Property
// @Description  Get property by ID
// @Tags         properties
// @Produce      json
// @Security     StaffAuth
// @Param        id   path  string  true  "Property ID"
// @Success      200  {object}  DataResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /properties/{id} [get]
func (s *Server) GetProperty(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	property, err := s.propertySvc.GetProperty(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, property)
}

// @Summary      List Units
// @Description  List the units of a property with their occupants
// @Tags         properties
// @Produce      json
// @Security     StaffAuth
// @Param        id   path  string  true  "Property ID"
// @Success      200  {object}  DataResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /properties/{id}/units [get]
func (s *Server) ListUnits(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	units, err := s.propertySvc.ListUnits(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, units)
}
