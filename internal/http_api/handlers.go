package http_api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/core-coin/stips/internal/models"
)

// RegisterRequest represents the JSON body for jar registration
type RegisterRequest struct {
	Identity    string `json:"identity" binding:"required"`
	Handle      string `json:"handle" binding:"required"`
	Description string `json:"description"`
}

// RegisterResponse represents the success response for registration
type RegisterResponse struct {
	Success bool   `json:"success"`
	Handle  string `json:"handle"`
	Owner   string `json:"owner"`
	// OriginID authenticates later self-service calls for this jar.
	// It is returned exactly once.
	OriginID string `json:"originid"`
}

// OriginRequest carries the origin-id secret for self-service operations
type OriginRequest struct {
	OriginID string `json:"origin_id" binding:"required"`
}

// TipRequest represents the JSON body for sending a tip
type TipRequest struct {
	Handle  string `json:"handle" binding:"required"`
	Sender  string `json:"sender" binding:"required"`
	Message string `json:"message"`
	Amount  uint64 `json:"amount" binding:"required"`
}

// LinkRequest represents the JSON body for adding a social link
type LinkRequest struct {
	OriginID string `json:"origin_id" binding:"required"`
	Key      string `json:"key" binding:"required"`
	Value    string `json:"value" binding:"required"`
}

// IdentityRequest carries a bare identity parameter
type IdentityRequest struct {
	Identity string `json:"identity" binding:"required"`
}

// AdminDeregisterRequest targets a jar by handle or by owner identity
type AdminDeregisterRequest struct {
	Handle   string `json:"handle"`
	Identity string `json:"identity"`
}

// errorStatus maps engine errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidHandle),
		errors.Is(err, models.ErrInvalidIdentity),
		errors.Is(err, models.ErrDescriptionTooLong),
		errors.Is(err, models.ErrMessageTooLong),
		errors.Is(err, models.ErrBelowMinimum),
		errors.Is(err, models.ErrInvalidLinkKey),
		errors.Is(err, models.ErrLinkValueTooLong),
		errors.Is(err, models.ErrTooManyLinks):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrHandleNotFound),
		errors.Is(err, models.ErrNotRegistered),
		errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrAlreadyRegistered),
		errors.Is(err, models.ErrHandleTaken),
		errors.Is(err, models.ErrNothingToWithdraw),
		errors.Is(err, models.ErrNothingToCancel),
		errors.Is(err, models.ErrAlreadyPending),
		errors.Is(err, models.ErrNotInitiated),
		errors.Is(err, models.ErrStillLocked),
		errors.Is(err, models.ErrAlreadyPaused),
		errors.Is(err, models.ErrNotPaused),
		errors.Is(err, models.ErrPaused),
		errors.Is(err, models.ErrReentrant):
		return http.StatusConflict
	case errors.Is(err, models.ErrTransferFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *HTTPServer) fail(c *gin.Context, err error) {
	c.JSON(errorStatus(err), gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

// register is a handler for POST /jars.
func (s *HTTPServer) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Debug("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}

	profile, err := s.jar.Register(req.Identity, req.Handle, req.Description)
	if err != nil {
		s.logger.Debug("Failed to register jar", "error", err, "handle", req.Handle)
		s.fail(c, err)
		return
	}

	s.logger.Info("Jar registered via API", "handle", profile.Handle, "owner", profile.Owner)
	c.JSON(http.StatusCreated, RegisterResponse{
		Success:  true,
		Handle:   profile.Handle,
		Owner:    profile.Owner,
		OriginID: profile.OriginID,
	})
}

// getJar is a handler for GET /jars/:handle.
func (s *HTTPServer) getJar(c *gin.Context) {
	profile, err := s.jar.GetJar(c.Param("handle"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// deregister is a handler for DELETE /jars/:handle. The caller proves
// ownership with the origin-id issued at registration.
func (s *HTTPServer) deregister(c *gin.Context) {
	var req OriginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}

	profile, err := s.jar.GetJar(c.Param("handle"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if profile.OriginID != req.OriginID {
		s.logger.Warn("OriginID mismatch for jar deletion", "handle", profile.Handle)
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "Invalid origin_id",
		})
		return
	}

	if err := s.jar.Deregister(profile.Owner); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Jar deleted. Tip history is retained.",
	})
}

// availability is a handler for GET /availability.
func (s *HTTPServer) availability(c *gin.Context) {
	handle := c.Query("handle")
	if handle == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "handle is required"})
		return
	}

	available, err := s.jar.IsAvailable(handle)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"handle": handle, "available": available})
}

// handles is a handler for GET /handles.
func (s *HTTPServer) handles(c *gin.Context) {
	handles, err := s.jar.Handles()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(handles), "handles": handles})
}

// stats is a handler for GET /stats.
func (s *HTTPServer) stats(c *gin.Context) {
	stats, err := s.jar.Stats()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// sendTip is a handler for POST /tips.
func (s *HTTPServer) sendTip(c *gin.Context) {
	var req TipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Debug("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}

	record, err := s.jar.SendTip(req.Sender, req.Handle, req.Message, req.Amount)
	if err != nil {
		s.logger.Debug("Failed to send tip", "error", err, "handle", req.Handle)
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"tip":     record,
	})
}

// tips is a handler for GET /jars/:handle/tips. History outlives the jar, so
// no existence check: a deleted handle still answers.
func (s *HTTPServer) tips(c *gin.Context) {
	handle := c.Param("handle")

	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	count, err := s.jar.TipCount(handle)
	if err != nil {
		s.fail(c, err)
		return
	}
	records, err := s.jar.TipsSlice(handle, offset, limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count, "tips": records})
}

// links is a handler for GET /jars/:handle/links.
func (s *HTTPServer) links(c *gin.Context) {
	links, err := s.jar.Links(c.Param("handle"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"links": links})
}

// addLink is a handler for POST /jars/:handle/links.
func (s *HTTPServer) addLink(c *gin.Context) {
	var req LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}

	profile, err := s.jar.GetJar(c.Param("handle"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if profile.OriginID != req.OriginID {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid origin_id"})
		return
	}

	if err := s.jar.AddLink(profile.Owner, profile.Handle, req.Key, req.Value); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// removeLink is a handler for DELETE /jars/:handle/links/:key.
func (s *HTTPServer) removeLink(c *gin.Context) {
	var req OriginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}

	profile, err := s.jar.GetJar(c.Param("handle"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if profile.OriginID != req.OriginID {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid origin_id"})
		return
	}

	if err := s.jar.RemoveLink(profile.Owner, profile.Handle, c.Param("key")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// escrowBalance is a handler for GET /escrow.
func (s *HTTPServer) escrowBalance(c *gin.Context) {
	identity := c.Query("identity")
	if identity == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identity is required"})
		return
	}

	balance, err := s.jar.EscrowBalanceOf(identity)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"identity": identity, "balance": balance})
}

// withdrawEscrow is a handler for POST /escrow/withdraw. The transfer only
// ever goes to the named identity, so anyone may trigger a claim.
func (s *HTTPServer) withdrawEscrow(c *gin.Context) {
	var req IdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}

	amount, err := s.jar.WithdrawEscrow(req.Identity)
	if err != nil {
		s.logger.Debug("Escrow withdrawal failed", "error", err, "identity", req.Identity)
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "amount": amount})
}

// authority resolves the controlling identity from the engine, so admin
// calls always act as the current authority, including after a handover.
func (s *HTTPServer) authority(c *gin.Context) (string, bool) {
	authority, err := s.jar.Authority()
	if err != nil {
		s.fail(c, err)
		return "", false
	}
	return authority, true
}

// pause is a handler for POST /admin/pause.
func (s *HTTPServer) pause(c *gin.Context) {
	authority, ok := s.authority(c)
	if !ok {
		return
	}
	if err := s.jar.Pause(authority); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// unpause is a handler for POST /admin/unpause.
func (s *HTTPServer) unpause(c *gin.Context) {
	authority, ok := s.authority(c)
	if !ok {
		return
	}
	if err := s.jar.Unpause(authority); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// setFeeRecipient is a handler for POST /admin/fee_recipient.
func (s *HTTPServer) setFeeRecipient(c *gin.Context) {
	var req IdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}

	authority, ok := s.authority(c)
	if !ok {
		return
	}
	if err := s.jar.SetFeeRecipient(authority, req.Identity); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// adminDeregister is a handler for POST /admin/deregister.
func (s *HTTPServer) adminDeregister(c *gin.Context) {
	var req AdminDeregisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}

	authority, ok := s.authority(c)
	if !ok {
		return
	}
	var err error
	switch {
	case req.Handle != "":
		err = s.jar.AdminDeregister(authority, req.Handle)
	case req.Identity != "":
		err = s.jar.AdminDeregisterByIdentity(authority, req.Identity)
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "handle or identity is required",
		})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// transferAuthority is a handler for POST /admin/authority/transfer.
func (s *HTTPServer) transferAuthority(c *gin.Context) {
	var req IdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}

	authority, ok := s.authority(c)
	if !ok {
		return
	}
	if err := s.jar.TransferAuthority(authority, req.Identity); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// acceptAuthority is a handler for POST /admin/authority/accept.
func (s *HTTPServer) acceptAuthority(c *gin.Context) {
	var req IdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}

	if err := s.jar.AcceptAuthority(req.Identity); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// initiateEmergency is a handler for POST /admin/emergency/initiate.
func (s *HTTPServer) initiateEmergency(c *gin.Context) {
	authority, ok := s.authority(c)
	if !ok {
		return
	}
	unlockAt, err := s.jar.InitiateEmergencyWithdrawal(authority)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "unlock_at": unlockAt})
}

// executeEmergency is a handler for POST /admin/emergency/execute.
func (s *HTTPServer) executeEmergency(c *gin.Context) {
	authority, ok := s.authority(c)
	if !ok {
		return
	}
	amount, err := s.jar.ExecuteEmergencyWithdrawal(authority)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "amount": amount})
}

// cancelEmergency is a handler for POST /admin/emergency/cancel.
func (s *HTTPServer) cancelEmergency(c *gin.Context) {
	authority, ok := s.authority(c)
	if !ok {
		return
	}
	if err := s.jar.CancelEmergencyWithdrawal(authority); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
