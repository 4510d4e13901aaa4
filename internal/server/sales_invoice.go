package server

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	compliancedomain "github.com/smallbiznis/gsttally/internal/compliance/domain"
	gstdomain "github.com/smallbiznis/gsttally/internal/gst/domain"
	obstracing "github.com/smallbiznis/gsttally/internal/observability/tracing"
	"github.com/smallbiznis/gsttally/internal/ratelimit"
	sidomain "github.com/smallbiznis/gsttally/internal/salesinvoice/domain"
	"go.uber.org/zap"
)

const (
	methodValidate     = "validate"
	methodBeforeSubmit = "before_submit"
)

type salesInvoiceRequest struct {
	Method   string                 `json:"method"`
	Document *sidomain.SalesInvoice `json:"document" binding:"required"`
}

type validateResponse struct {
	Path     gstdomain.Path         `json:"path"`
	Document *sidomain.SalesInvoice `json:"document"`
}

// ValidateSalesInvoice runs the validate hook and then the compliance entry
// points, the same sequence the host runs on save.
func (s *Server) ValidateSalesInvoice(c *gin.Context) {
	doc, method, ok := s.bindSalesInvoice(c, methodValidate)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if err := s.allowCompany(c, doc.Company); err != nil {
		AbortWithError(c, err)
		return
	}

	token, err := s.limiter.LockDocument(ctx, doc.Name)
	if err != nil {
		if errors.Is(err, ratelimit.ErrDocumentLocked) {
			s.promMetrics.ObserveLockContention()
		}
		AbortWithError(c, err)
		return
	}
	defer s.limiter.ReleaseDocument(context.WithoutCancel(ctx), doc.Name, token)

	path, err := s.gstSvc.OnValidate(ctx, doc, method)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Set(obstracing.GSTPathKey, string(path))

	if err := compliancedomain.Run(ctx, s.compliance, doc, method); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": validateResponse{Path: path, Document: doc}})
}

// BeforeSubmitSalesInvoice runs the before-submit hook.
func (s *Server) BeforeSubmitSalesInvoice(c *gin.Context) {
	doc, method, ok := s.bindSalesInvoice(c, methodBeforeSubmit)
	if !ok {
		return
	}

	if err := s.gstSvc.OnBeforeSubmit(c.Request.Context(), doc, method); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"document": doc}})
}

func (s *Server) bindSalesInvoice(c *gin.Context, defaultMethod string) (*sidomain.SalesInvoice, string, bool) {
	var req salesInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindingError(err))
		return nil, "", false
	}
	doc := req.Document
	doc.Doctype = strings.TrimSpace(doc.Doctype)
	if doc.Doctype == "" {
		AbortWithError(c, newValidationError("doctype", "required", "doctype is required"))
		return nil, "", false
	}
	doc.ResetProcessingState()
	c.Set(obstracing.DocumentKey, doc.Name)
	c.Set(obstracing.CompanyKey, doc.Company)

	method := strings.TrimSpace(req.Method)
	if method == "" {
		method = defaultMethod
	}
	return doc, method, true
}

func (s *Server) allowCompany(c *gin.Context, company string) error {
	res, err := s.limiter.AllowCompany(c.Request.Context(), company)
	if err != nil {
		s.log.Warn("validate rate limit check failed", zap.String("company", company), zap.Error(err))
		return nil
	}
	if res == nil || res.Allowed {
		return nil
	}
	if res.RetryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
	}
	return ratelimit.ErrRateLimited
}
