package http

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dermalens/skin-advisor/internal/domain/analysis"
	"github.com/dermalens/skin-advisor/internal/domain/auth"
	"github.com/dermalens/skin-advisor/internal/domain/catalog"
	"github.com/dermalens/skin-advisor/internal/domain/stats"
	apperrors "github.com/dermalens/skin-advisor/pkg/errors"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	analysisSvc   analysis.Service
	authSvc       *auth.Service
	catalogSvc    *catalog.Service
	statsSvc      stats.Service
	authCfg       auth.Config
	secureCookies bool
	maxUpload     int64
	logger        *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(analysisSvc analysis.Service, authSvc *auth.Service, catalogSvc *catalog.Service, statsSvc stats.Service, authCfg auth.Config, secureCookies bool, maxUpload int64, logger *slog.Logger) *Handler {
	return &Handler{
		analysisSvc:   analysisSvc,
		authSvc:       authSvc,
		catalogSvc:    catalogSvc,
		statsSvc:      statsSvc,
		authCfg:       authCfg,
		secureCookies: secureCookies,
		maxUpload:     maxUpload,
		logger:        logger.With("component", "http.handler"),
	}
}

// Analyze accepts a multipart photo upload, runs the skin analysis
// pipeline and returns the structured result. The response carries
// Cache-Control: no-store; analysis of a facial photo must never land
// in a shared cache.
func (h *Handler) Analyze(c *gin.Context) {
	claims, _ := getClaims(c)
	start := time.Now()

	upload, err := readUpload(c, h.maxUpload)
	if err != nil {
		h.recordAnalysis(c, claims, analysis.Outcome{Duration: time.Since(start)}, err)
		abortWithError(c, httpErrorFrom(err, "invalid_input"))
		return
	}

	outcome, err := h.analysisSvc.Analyze(c.Request.Context(), upload)
	if err != nil {
		h.recordAnalysis(c, claims, analysis.Outcome{Duration: time.Since(start)}, err)
		abortWithError(c, httpErrorFrom(err, "upstream_error"))
		return
	}

	h.recordAnalysis(c, claims, outcome, nil)
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, outcome.Result)
}

// readUpload pulls the image out of the multipart form. The size gate
// fires before the body is read so an oversized upload is rejected
// without buffering it whole.
func readUpload(c *gin.Context, maxUpload int64) (analysis.Upload, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return analysis.Upload{}, &apperrors.AppError{Code: "invalid_input", Message: "image file is required", Err: err}
	}
	if maxUpload > 0 && fileHeader.Size > maxUpload {
		return analysis.Upload{}, &apperrors.AppError{Code: "file_too_large", Message: "image exceeds the upload size limit"}
	}
	file, err := fileHeader.Open()
	if err != nil {
		return analysis.Upload{}, &apperrors.AppError{Code: "invalid_input", Message: "failed to read upload", Err: err}
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxUpload+1))
	if err != nil {
		return analysis.Upload{}, &apperrors.AppError{Code: "invalid_input", Message: "failed to read upload", Err: err}
	}
	return analysis.Upload{
		Data:         data,
		DeclaredMIME: fileHeader.Header.Get("Content-Type"),
		DeclaredSize: fileHeader.Size,
	}, nil
}

func (h *Handler) recordAnalysis(c *gin.Context, claims auth.Claims, outcome analysis.Outcome, analyzeErr error) {
	entry := stats.Entry{
		User:       string(claims.Role),
		Action:     stats.ActionAnalyze,
		ImageHash:  outcome.ImageHash,
		DurationMS: outcome.Duration.Milliseconds(),
		Status:     stats.StatusSuccess,
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
		Tokens:     outcome.Tokens,
	}
	if analyzeErr != nil {
		entry.Status = stats.StatusError
		entry.ErrorDetail = apperrors.CodeOf(analyzeErr, "upstream_error")
	} else {
		entry.SkinType = string(outcome.Result.SkinType)
		entry.Confidence = outcome.Result.Confidence
	}
	h.statsSvc.Record(c.Request.Context(), entry)
}

// Products lists the product catalog, optionally filtered by skin type.
func (h *Handler) Products(c *gin.Context) {
	products, err := h.catalogSvc.List(c.Request.Context(), c.Query("skinType"))
	if err != nil {
		abortWithError(c, httpErrorFrom(err, "upstream_error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}
