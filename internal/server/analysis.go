package server

import (
	"context"
	"fmt"
	"net/http"

	"wfm_flipper/internal/domain"
	"wfm_flipper/internal/domain/entity"
	"wfm_flipper/pkg/errcodes"
	"wfm_flipper/pkg/httpx/reply"
	"wfm_flipper/pkg/httpx/req"
	"wfm_flipper/pkg/rest"
)

const analysisCancelledMessage = "Analysis cancelled."

type jobEngine interface {
	Candidates(ctx context.Context, items []entity.Item) ([]entity.Item, error)
	Submit(ctx context.Context, items []entity.Item, constraints entity.Constraints, batchSize int) string
	Poll(jobID string) (entity.Job, error)
	Cancel(jobID string) error
	CancelAll() int
}

type AnalysisServer struct {
	engine jobEngine
}

func NewAnalysisServer(engine jobEngine) AnalysisServer {
	return AnalysisServer{
		engine: engine,
	}
}

func (s AnalysisServer) postTradingCalc(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.TradingCalcRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	candidates, err := s.engine.Candidates(ctx, newDomainItems(request.Items))
	if err != nil {
		return fmt.Errorf("engine.Candidates: %w", err)
	}

	jobID := s.engine.Submit(ctx, candidates, newDomainConstraints(request), request.BatchSize)

	reply.JSON(ctx, w, http.StatusOK, rest.TradingCalcResponse{
		JobID:       jobID,
		LegacyJobID: jobID,
		Total:       len(candidates),
	})

	return nil
}

func (s AnalysisServer) getTradingCalcProgress(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	query := r.URL.Query()

	jobID := query.Get("jobId")
	if jobID == "" {
		jobID = query.Get("job_id")
	}

	if jobID == "" {
		return domain.NewError(errcodes.ValidationError, "Missing job_id")
	}

	job, err := s.engine.Poll(jobID)
	if err != nil {
		return fmt.Errorf("engine.Poll: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTProgress(job))

	return nil
}

// postCancelAnalysis cancels the given job, or every running job when the
// body names none.
func (s AnalysisServer) postCancelAnalysis(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.CancelRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	if request.JobID == "" {
		request.JobID = r.URL.Query().Get("jobId")
	}

	var cancelled int

	if request.JobID != "" {
		if err := s.engine.Cancel(request.JobID); err != nil {
			return fmt.Errorf("engine.Cancel: %w", err)
		}

		cancelled = 1
	} else {
		cancelled = s.engine.CancelAll()
	}

	reply.JSON(ctx, w, http.StatusOK, rest.CancelResponse{
		Success:   true,
		Message:   analysisCancelledMessage,
		Cancelled: cancelled,
	})

	return nil
}
