package http

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/csera5/BlockchainTech/internal/domain"
	"github.com/csera5/BlockchainTech/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// finishTimeout bounds the background publish/index/chain tail of an
// accepted certification.
const finishTimeout = 5 * time.Minute

type errorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type certifyAcceptedResponse struct {
	RequestID   string `json:"request_id"`
	Fingerprint string `json:"fingerprint"`
	Status      string `json:"status"`
}

type certifyResponse struct {
	RequestID   string         `json:"request_id"`
	Fingerprint string         `json:"fingerprint"`
	ContentID   string         `json:"content_id"`
	TxID        string         `json:"tx_id"`
	Record      recordResponse `json:"record"`
}

type statusResponse struct {
	RequestID   string `json:"request_id"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Stage       string `json:"stage"`
	ContentID   string `json:"content_id,omitempty"`
	TxID        string `json:"tx_id,omitempty"`
	Error       string `json:"error,omitempty"`
	FailedStage string `json:"failed_stage,omitempty"`
	UpdatedAt   string `json:"updated_at"`
}

type verifyResponse struct {
	Matched     bool            `json:"matched"`
	Fingerprint string          `json:"fingerprint"`
	Record      *recordResponse `json:"record,omitempty"`
}

type recordResponse struct {
	Fingerprint      string `json:"fingerprint"`
	ContentID        string `json:"content_id"`
	Signer           string `json:"signer"`
	CaptureLocation  string `json:"capture_location"`
	CaptureTimestamp string `json:"capture_timestamp,omitempty"`
	CameraModel      string `json:"camera_model"`
	Software         string `json:"software"`
	Make             string `json:"make"`
	CreatedAt        string `json:"created_at"`
}

func buildRecordResponse(record domain.CertificationRecord) recordResponse {
	out := recordResponse{
		Fingerprint:     record.Fingerprint,
		ContentID:       record.StorageID,
		Signer:          record.Signer,
		CaptureLocation: record.CaptureLocation,
		CameraModel:     record.CameraModel,
		Software:        record.Software,
		Make:            record.Make,
		CreatedAt:       record.CreatedAt.UTC().Format(time.RFC3339),
	}
	if record.CaptureTimestamp != nil {
		out.CaptureTimestamp = *record.CaptureTimestamp
	}
	return out
}

func (s *Server) handleCertify(c *gin.Context) {
	if s.certifyUC == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "UNAVAILABLE", "certification pipeline not configured")
		return
	}
	if !s.enforceRateLimit(c, "certifications:create") {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "IMAGE_REQUIRED", "multipart field 'image' is required")
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "IMAGE_UNREADABLE", "could not read uploaded image")
		return
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "IMAGE_UNREADABLE", "could not read uploaded image")
		return
	}

	req := usecase.CertifyRequest{
		RequestID: uuid.NewString(),
		Image:     data,
		Name:      fileHeader.Filename,
		Signer:    c.PostForm("signer"),
		MediaType: fileHeader.Header.Get("Content-Type"),
	}

	if c.Query("wait") == "true" {
		result, err := s.certifyUC.Execute(c.Request.Context(), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, certifyResponse{
			RequestID:   result.RequestID,
			Fingerprint: result.Fingerprint,
			ContentID:   result.ContentID,
			TxID:        result.TxID,
			Record:      buildRecordResponse(result.Record),
		})
		return
	}

	pending, err := s.certifyUC.Begin(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), finishTimeout)
		defer cancel()
		if _, err := pending.Finish(ctx); err != nil {
			log.Printf("certification %s failed: %v", req.RequestID, err)
		}
	}()

	c.JSON(http.StatusAccepted, certifyAcceptedResponse{
		RequestID:   req.RequestID,
		Fingerprint: pending.Fingerprint(),
		Status:      string(domain.StagePublishing),
	})
}

func (s *Server) handleCertificationStatus(c *gin.Context) {
	if s.status == nil {
		writeError(c, domain.ErrRequestUnknown)
		return
	}
	entry, ok := s.status.Get(c.Param("request_id"))
	if !ok {
		writeError(c, domain.ErrRequestUnknown)
		return
	}
	c.JSON(http.StatusOK, statusResponse{
		RequestID:   entry.RequestID,
		Fingerprint: entry.Fingerprint,
		Stage:       string(entry.Stage),
		ContentID:   entry.ContentID,
		TxID:        entry.TxID,
		Error:       entry.Error,
		FailedStage: string(entry.FailedStage),
		UpdatedAt:   entry.UpdatedAt.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleVerify(c *gin.Context) {
	if s.verifyUC == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "UNAVAILABLE", "verification not configured")
		return
	}
	if !s.enforceRateLimit(c, "verifications:create") {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "IMAGE_REQUIRED", "multipart field 'image' is required")
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "IMAGE_UNREADABLE", "could not read uploaded image")
		return
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "IMAGE_UNREADABLE", "could not read uploaded image")
		return
	}

	result, err := s.verifyUC.Execute(c.Request.Context(), usecase.VerifyRequest{Image: data})
	if err != nil {
		writeError(c, err)
		return
	}
	out := verifyResponse{Matched: result.Matched, Fingerprint: result.Fingerprint}
	if result.Record != nil {
		record := buildRecordResponse(*result.Record)
		out.Record = &record
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetRecord(c *gin.Context) {
	if s.index == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	record, err := s.index.Get(c.Request.Context(), c.Param("fingerprint"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildRecordResponse(*record))
}

func (s *Server) handleNoRoute(c *gin.Context) {
	writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "route not found")
}

func (s *Server) enforceRateLimit(c *gin.Context, routeID string) bool {
	if s.rateLimiter == nil || s.rateLimitRequests <= 0 {
		return true
	}
	key := "client:" + c.ClientIP() + ":endpoint:" + routeID
	decision, err := s.rateLimiter.Allow(c.Request.Context(), key, s.rateLimitRequests, s.rateLimitWindow)
	if err != nil {
		return true
	}
	writeRateLimitHeaders(c, decision)
	if !decision.Allowed {
		writeErrorCode(c, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded")
		return false
	}
	return true
}

func writeRateLimitHeaders(c *gin.Context, decision domain.RateLimitDecision) {
	if decision.Limit > 0 {
		c.Header("RateLimit-Limit", strconv.Itoa(decision.Limit))
	}
	if decision.Remaining >= 0 {
		c.Header("RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	}
	if !decision.ResetAt.IsZero() {
		c.Header("RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
		if !decision.Allowed {
			retryAfter := int64(time.Until(decision.ResetAt).Seconds())
			if retryAfter < 0 {
				retryAfter = 0
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
		}
	}
}

func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrUnsupportedFormat):
		status, code = http.StatusBadRequest, "UNSUPPORTED_FORMAT"
	case errors.Is(err, domain.ErrDecode):
		status, code = http.StatusBadRequest, "DECODE_FAILED"
	case errors.Is(err, domain.ErrPolicyDenied):
		status, code = http.StatusForbidden, "POLICY_DENIED"
	case errors.Is(err, domain.ErrDuplicateFingerprint):
		status, code = http.StatusConflict, "DUPLICATE_FINGERPRINT"
	case errors.Is(err, domain.ErrRequestUnknown):
		status, code = http.StatusNotFound, "REQUEST_UNKNOWN"
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrInsufficientFunds):
		status, code = http.StatusBadGateway, "INSUFFICIENT_FUNDS"
	default:
		var stageErr *domain.StageError
		if errors.As(err, &stageErr) {
			status, code = http.StatusBadGateway, "STAGE_FAILED"
			c.JSON(status, errorResponse{
				Code:    code,
				Message: err.Error(),
				Details: map[string]any{"failed_stage": string(stageErr.Stage)},
			})
			return
		}
	}
	writeErrorCode(c, status, code, err.Error())
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{
		Code:    code,
		Message: message,
	})
}
