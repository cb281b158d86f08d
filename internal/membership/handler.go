package membership

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"sportclub/internal/api"
	"sportclub/internal/logger"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// @Summary      List membership types
// @Tags         catalog
// @Produce      json
// @Param        include_archived query bool false "Include archived types"
// @Success      200 {array} membership.MembershipType
// @Failure      500 {object} api.ErrorResponse
// @Router       /api/membership-types [get]
func (h *Handler) ListTypes(c *gin.Context) {
	includeArchived := c.Query("include_archived") == "true"

	types, err := h.service.ListTypes(c.Request.Context(), includeArchived)
	if err != nil {
		logger.Error("Failed to list membership types", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch membership types"})
		return
	}

	c.JSON(http.StatusOK, types)
}

// @Summary      Create a membership type
// @Tags         admin,catalog
// @Accept       json
// @Produce      json
// @Param        request body membership.CreateTypeRequest true "Type payload"
// @Success      201 {object} membership.MembershipType
// @Failure      400 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /api/admin/membership-types [post]
func (h *Handler) CreateType(c *gin.Context) {
	var req CreateTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	t, err := h.service.CreateType(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, "Failed to create membership type")
		return
	}

	c.JSON(http.StatusCreated, t)
}

// @Summary      Archive a membership type
// @Tags         admin,catalog
// @Produce      json
// @Param        typeID path int true "Type ID"
// @Success      200 {object} api.MessageResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/admin/membership-types/{typeID}/archive [post]
func (h *Handler) ArchiveType(c *gin.Context) {
	id, ok := pathID(c, "typeID")
	if !ok {
		return
	}

	if err := h.service.ArchiveType(c.Request.Context(), id); err != nil {
		writeError(c, err, "Failed to archive membership type")
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Membership type archived"})
}

// @Summary      Quote a price
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        request body membership.QuoteRequest true "Quote payload"
// @Success      200 {object} membership.PriceQuote
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/membership-types/quote [post]
func (h *Handler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	q, err := h.service.QuotePrice(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, "Failed to quote price")
		return
	}

	c.JSON(http.StatusOK, q)
}

// @Summary      Purchase a membership
// @Tags         memberships
// @Accept       json
// @Produce      json
// @Param        request body membership.PurchaseRequest true "Purchase payload"
// @Success      201 {object} membership.PurchaseResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /api/memberships [post]
func (h *Handler) Purchase(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := h.service.Purchase(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, "Failed to purchase membership")
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary      Get a membership
// @Tags         memberships
// @Produce      json
// @Param        membershipID path int true "Membership ID"
// @Success      200 {object} membership.MembershipView
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/memberships/{membershipID} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := pathID(c, "membershipID")
	if !ok {
		return
	}

	view, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Failed to fetch membership")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *Handler) History(c *gin.Context) {
	id, ok := pathID(c, "membershipID")
	if !ok {
		return
	}

	items, err := h.service.History(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Failed to fetch membership history")
		return
	}

	c.JSON(http.StatusOK, items)
}

// @Summary      List a member's memberships
// @Tags         memberships
// @Produce      json
// @Param        memberID path int true "Member ID"
// @Param        status query string false "ACTIVE, EXPIRED, EXHAUSTED or CANCELLED"
// @Success      200 {array} membership.MembershipView
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/members/{memberID}/memberships [get]
func (h *Handler) ListForMember(c *gin.Context) {
	memberID, ok := pathID(c, "memberID")
	if !ok {
		return
	}

	status := Status(c.Query("status"))
	if status != "" && !status.Valid() {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid status filter"})
		return
	}

	items, err := h.service.ListForMember(c.Request.Context(), memberID, status)
	if err != nil {
		writeError(c, err, "Failed to fetch memberships")
		return
	}

	c.JSON(http.StatusOK, items)
}

// @Summary      List a member's usable memberships
// @Tags         memberships
// @Produce      json
// @Param        memberID path int true "Member ID"
// @Success      200 {array} membership.MembershipView
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/members/{memberID}/memberships/active [get]
func (h *Handler) ActiveForMember(c *gin.Context) {
	memberID, ok := pathID(c, "memberID")
	if !ok {
		return
	}

	items, err := h.service.ActiveForMember(c.Request.Context(), memberID)
	if err != nil {
		writeError(c, err, "Failed to fetch memberships")
		return
	}

	c.JSON(http.StatusOK, items)
}

// @Summary      Record a visit
// @Tags         memberships
// @Produce      json
// @Param        membershipID path int true "Membership ID"
// @Success      200 {object} membership.VisitResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /api/memberships/{membershipID}/visits [post]
func (h *Handler) RecordVisit(c *gin.Context) {
	id, ok := pathID(c, "membershipID")
	if !ok {
		return
	}

	view, err := h.service.RecordVisit(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Failed to record visit")
		return
	}

	c.JSON(http.StatusOK, VisitResponse{Message: "Visit recorded", Membership: view})
}

// @Summary      Cancel a membership
// @Tags         admin,memberships
// @Accept       json
// @Produce      json
// @Param        membershipID path int true "Membership ID"
// @Param        request body membership.CancelRequest false "Cancel reason"
// @Success      200 {object} membership.MembershipView
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /api/admin/memberships/{membershipID}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "membershipID")
	if !ok {
		return
	}

	// The body is optional; an empty one means the default reason.
	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	view, err := h.service.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		writeError(c, err, "Failed to cancel membership")
		return
	}

	c.JSON(http.StatusOK, view)
}

func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid " + name})
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrTypeNotFound),
		errors.Is(err, ErrMemberNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrInvalidType),
		errors.Is(err, ErrInvalidStartDate):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrTypeInactive),
		errors.Is(err, ErrNotActive),
		errors.Is(err, ErrMembershipExpired),
		errors.Is(err, ErrVisitsExhausted),
		errors.Is(err, ErrAlreadyCancelled),
		errors.Is(err, ErrInvalidTransition):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	default:
		logger.Error(fallback, "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: fallback})
	}
}
