package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	apperr "FinSignal/pkg/errors"
	pkgkafka "FinSignal/pkg/kafka"
	applogger "FinSignal/pkg/logger"

	"github.com/google/uuid"
)

// AnalysisJobsHandler consumes analysis requests from Kafka and publishes one
// result per request.
type AnalysisJobsHandler struct {
	topic     string
	analysis  *AnalysisUseCase
	publisher domrepo.ResultPublisher
	log       *applogger.Logger
}

func NewAnalysisJobsHandler(topic string, analysis *AnalysisUseCase, publisher domrepo.ResultPublisher, l *applogger.Logger) *AnalysisJobsHandler {
	if l == nil {
		l = applogger.Nop()
	}
	return &AnalysisJobsHandler{
		topic:     topic,
		analysis:  analysis,
		publisher: publisher,
		log:       l.With(applogger.String("component", "analysis_jobs")),
	}
}

func (h *AnalysisJobsHandler) Topic() string { return h.topic }

// Handle runs one job. Undecodable payloads and domain failures become
// status=error results and are committed; failed publications and provider or
// context failures are returned so the consumer retries them.
func (h *AnalysisJobsHandler) Handle(ctx context.Context, b []byte) error {
	var job models.AnalysisJob
	if err := json.Unmarshal(b, &job); err != nil {
		h.analysis.recordError("job_decode")
		result := models.AnalysisJobResult{
			JobID:  uuid.NewString(),
			Status: models.JobStatusError,
			Error:  invalidJobPayload,
		}
		h.log.Warn("undecodable analysis job",
			applogger.String("job_id", result.JobID),
			applogger.String("trace_id", pkgkafka.TraceIDFromContext(ctx)),
			applogger.Int("bytes", len(b)),
			applogger.Error(err),
		)
		return h.publish(ctx, result)
	}
	if job.JobID == "" {
		job.JobID = uuid.NewString()
	}

	log := h.log.With(
		applogger.String("job_id", job.JobID),
		applogger.String("symbol", job.Symbol),
		applogger.String("trace_id", pkgkafka.TraceIDFromContext(ctx)),
	)

	result := models.AnalysisJobResult{JobID: job.JobID, Symbol: job.Symbol, Status: models.JobStatusOK}
	a, err := h.analysis.run(ctx, job.Symbol, job.PeriodDays)
	switch {
	case err == nil:
		result.Symbol = a.Symbol
		result.Analysis = a
	case isDomainFailure(err):
		result.Status = models.JobStatusError
		result.Error = jobErrorMessage(err)
		log.Info("analysis job rejected", applogger.Error(err))
	default:
		// provider or context failure: let the consumer retry
		return fmt.Errorf("analysis job %s: %w", job.JobID, err)
	}

	if err := h.publish(ctx, result); err != nil {
		return err
	}
	log.Debug("analysis job done", applogger.String("status", result.Status))
	return nil
}

func (h *AnalysisJobsHandler) publish(ctx context.Context, result models.AnalysisJobResult) error {
	if h.publisher == nil {
		return nil
	}
	return h.publisher.PublishResult(ctx, result)
}

func isDomainFailure(err error) bool {
	switch apperr.GetCode(err) {
	case apperr.ErrCodeInvalidInput, apperr.ErrCodeInsufficientData, apperr.ErrCodeUpstreamDataUnavailable:
		return true
	}
	return false
}

const invalidJobPayload = "invalid job payload"

// jobErrorMessage mirrors the HTTP error bodies.
func jobErrorMessage(err error) string {
	if apperr.GetCode(err) == apperr.ErrCodeInsufficientData {
		return "insufficient data"
	}
	var e *apperr.Error
	if apperr.As(err, &e) {
		return e.Message
	}
	return "analysis failed"
}
