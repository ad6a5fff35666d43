package handler

import (
	"wfm_flipper/internal/domain/entity"
	"wfm_flipper/internal/infrastructure/ratelimit"
)

type LimiterStatus interface {
	Status() ratelimit.Status
}

type SessionStatus interface {
	Status() entity.SessionStatus
}

type Jobs interface {
	Poll(jobID string) (entity.Job, error)
	Cancel(jobID string) error
	CancelAll() int
}

type Handler struct {
	limiter LimiterStatus
	session SessionStatus
	jobs    Jobs
}

func New(limiter LimiterStatus, session SessionStatus, jobs Jobs) *Handler {
	return &Handler{
		limiter: limiter,
		session: session,
		jobs:    jobs,
	}
}
