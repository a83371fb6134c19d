package http

import (
	"net/http"

	"github.com/aussiebroadwan/webtemplate/internal/auth/service"
	"github.com/aussiebroadwan/webtemplate/pkg/authsdk"
	"github.com/aussiebroadwan/webtemplate/pkg/httpx"
)

// MFAHandler handles all MFA-related endpoints.
type MFAHandler struct {
	MFAService *service.MFAService
}

// HandleSetup handles POST /mfa/setup
//
//	@Summary		Start TOTP enrollment
//	@Description	Generates a TOTP secret for the authenticated user and returns it with a QR code. Calling again replaces a pending secret.
//	@Tags			MFA
//	@Security		CookieAuth
//	@Produce		json
//	@Param			X-CSRF-Token	header		string						true	"CSRF token"
//	@Success		200				{object}	authsdk.MFASetupResponse	"TOTP secret and QR code"
//	@Failure		400				{object}	authsdk.ErrorResponse		"MFA already enabled"
//	@Failure		401				{object}	authsdk.ErrorResponse		"Not authenticated"
//	@Failure		403				{object}	authsdk.ErrorResponse		"CSRF token missing or invalid"
//	@Failure		500				{object}	authsdk.ErrorResponse		"Internal server error"
//	@Router			/mfa/setup [post].
func (h *MFAHandler) HandleSetup(w http.ResponseWriter, r *http.Request) {
	u, ok := sessionUser(w, r)
	if !ok {
		return
	}

	setup, err := h.MFAService.Setup(r.Context(), u)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MFASetupResponse{
		Secret: setup.Secret,
		QRCode: setup.QRCode,
	})
}

// HandleVerifyAndEnable handles POST /mfa/verify-and-enable
//
//	@Summary		Verify TOTP code and enable MFA
//	@Tags			MFA
//	@Security		CookieAuth
//	@Accept			json
//	@Produce		json
//	@Param			X-CSRF-Token	header		string					true	"CSRF token"
//	@Param			request			body		authsdk.MFACodeRequest	true	"TOTP code"
//	@Success		200				{object}	authsdk.MessageResponse	"MFA enabled successfully"
//	@Failure		400				{object}	authsdk.ErrorResponse	"Setup not initiated or invalid TOTP code"
//	@Failure		401				{object}	authsdk.ErrorResponse	"Not authenticated"
//	@Failure		403				{object}	authsdk.ErrorResponse	"CSRF token missing or invalid"
//	@Router			/mfa/verify-and-enable [post].
func (h *MFAHandler) HandleVerifyAndEnable(w http.ResponseWriter, r *http.Request) {
	u, ok := sessionUser(w, r)
	if !ok {
		return
	}

	var req authsdk.MFACodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.MFAService.VerifyAndEnable(r.Context(), u, req.Code); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteMessage(w, "MFA enabled successfully")
}

// HandleDisable handles POST /mfa/disable
//
//	@Summary		Disable MFA
//	@Tags			MFA
//	@Security		CookieAuth
//	@Produce		json
//	@Param			X-CSRF-Token	header		string					true	"CSRF token"
//	@Success		200				{object}	authsdk.MessageResponse	"MFA disabled successfully"
//	@Failure		400				{object}	authsdk.ErrorResponse	"MFA is not enabled"
//	@Failure		401				{object}	authsdk.ErrorResponse	"Not authenticated"
//	@Failure		403				{object}	authsdk.ErrorResponse	"CSRF token missing or invalid"
//	@Router			/mfa/disable [post].
func (h *MFAHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	u, ok := sessionUser(w, r)
	if !ok {
		return
	}

	if err := h.MFAService.Disable(r.Context(), u); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteMessage(w, "MFA disabled successfully")
}
