package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	taxdomain "github.com/smallbiznis/gsttally/internal/tax/domain"
)

type createItemTaxTemplateRequest struct {
	Name     string   `json:"name" binding:"required"`
	Title    string   `json:"title"`
	Company  string   `json:"company" binding:"required"`
	GSTRate  *float64 `json:"gst_rate" binding:"omitempty,gte=0,lte=100"`
	Disabled *bool    `json:"disabled"`
}

type updateItemTaxTemplateRequest struct {
	Title   *string  `json:"title,omitempty"`
	GSTRate *float64 `json:"gst_rate,omitempty" binding:"omitempty,gte=0,lte=100"`
}

func (s *Server) CreateItemTaxTemplate(c *gin.Context) {
	var req createItemTaxTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}

	resp, err := s.taxSvc.Create(c.Request.Context(), taxdomain.CreateRequest{
		Name:     strings.TrimSpace(req.Name),
		Title:    strings.TrimSpace(req.Title),
		Company:  strings.TrimSpace(req.Company),
		GSTRate:  req.GSTRate,
		Disabled: req.Disabled,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListItemTaxTemplates(c *gin.Context) {
	var query struct {
		Name     string `form:"name"`
		Company  string `form:"company"`
		Disabled string `form:"disabled"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	disabled, err := parseOptionalBool(query.Disabled)
	if err != nil {
		AbortWithError(c, newValidationError("disabled", "invalid_disabled", "invalid disabled"))
		return
	}

	resp, err := s.taxSvc.List(c.Request.Context(), taxdomain.ListRequest{
		Name:     strings.TrimSpace(query.Name),
		Company:  strings.TrimSpace(query.Company),
		Disabled: disabled,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateItemTaxTemplate(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req updateItemTaxTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}

	resp, err := s.taxSvc.Update(c.Request.Context(), taxdomain.UpdateRequest{
		ID:      id,
		Title:   trimOptionalString(req.Title),
		GSTRate: req.GSTRate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DisableItemTaxTemplate(c *gin.Context) {
	resp, err := s.taxSvc.Disable(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
