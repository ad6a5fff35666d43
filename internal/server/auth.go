package server

import (
	"context"
	"fmt"
	"net/http"

	"wfm_flipper/internal/domain/entity"
	"wfm_flipper/pkg/httpx/reply"
	"wfm_flipper/pkg/httpx/req"
	"wfm_flipper/pkg/rest"
)

type authSession interface {
	Login(ctx context.Context, email, password string) entity.LoginResult
	Logout() entity.LoginResult
	Username() (string, bool)
	Status() entity.SessionStatus
}

type AuthServer struct {
	session authSession
}

func NewAuthServer(session authSession) AuthServer {
	return AuthServer{
		session: session,
	}
}

// postLogin answers 200 for both outcomes; failures are reported in the body.
func (s AuthServer) postLogin(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.LoginRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	result := s.session.Login(ctx, request.Email, request.Password)

	reply.JSON(ctx, w, http.StatusOK, rest.LoginResponse{
		Success:  result.Success,
		Message:  result.Message,
		Token:    result.Token,
		Username: result.Username,
	})

	return nil
}

func (s AuthServer) postLogout(w http.ResponseWriter, r *http.Request) error {
	result := s.session.Logout()

	reply.JSON(r.Context(), w, http.StatusOK, rest.Result{
		Success: result.Success,
		Message: result.Message,
	})

	return nil
}

func (s AuthServer) getAuthStatus(w http.ResponseWriter, r *http.Request) error {
	reply.JSON(r.Context(), w, http.StatusOK, newRESTSessionStatus(s.session.Status()))

	return nil
}
