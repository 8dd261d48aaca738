package identity

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// RegisterAccountMessage requests a new pending account.
type RegisterAccountMessage struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Session  *Session
}

func (e RegisterAccountMessage) Type() string { return "identity.account.register" }

type RegisterAccountHandler struct {
	svc IdentityService
}

func NewRegisterAccountHandler(svc IdentityService) *RegisterAccountHandler {
	return &RegisterAccountHandler{svc: svc}
}

func (h *RegisterAccountHandler) Execute(ctx context.Context, event RegisterAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account registration",
		)
	default:
		_, err := h.svc.Register(ctx, event.Session, event.Email, event.Username, event.Password)
		return err
	}
}

// VerifyAccountMessage carries an activation token to redeem.
type VerifyAccountMessage struct {
	Token      string `json:"token" example:"5ebe2294ecd0e0f08eab7690d2a6ee69" doc:"Account activation token"`
	Session    *Session
	OnResponse func(r *VerifyAccountResponse)
}

func (e VerifyAccountMessage) Type() string { return "identity.account.verify" }

type VerifyAccountResponse struct {
	Activated bool     `json:"activated" example:"true" doc:"Was the account activated?"`
	Expired   bool     `json:"expired" example:"false" doc:"Has the token expired?"`
	Found     bool     `json:"found" example:"true" doc:"Was the token found?"`
	Errors    []string `json:"errors" example:"['token expired']" doc:"Error messages."`
}

type VerifyAccountHandler struct {
	svc IdentityService
}

func NewVerifyAccountHandler(svc IdentityService) *VerifyAccountHandler {
	return &VerifyAccountHandler{svc: svc}
}

func (h *VerifyAccountHandler) Execute(ctx context.Context, event VerifyAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account verification",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyAccountHandler) execute(ctx context.Context, event VerifyAccountMessage) error {
	resp := &VerifyAccountResponse{Found: true}

	ok, err := h.svc.VerifyAccount(ctx, event.Session, event.Token)
	resp.Activated = ok

	switch {
	case err == nil:
	case IsTokenNotFound(err):
		// an unknown token is part of the expected flow, not an application error
		resp.Found = false
		resp.Errors = append(resp.Errors, err.Error())
		err = nil
	case IsTokenExpired(err):
		resp.Expired = true
		resp.Errors = append(resp.Errors, err.Error())
		err = nil
	default:
		var richErr *goerrors.Error
		if !goerrors.As(err, &richErr) {
			err = goerrors.Wrap(err, goerrors.CategoryInternal, "failed to execute account verification")
		}
	}

	if err != nil {
		return err
	}

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
