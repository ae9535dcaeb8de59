package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/gymflow-backend/internal/domain"
	domainagg "github.com/yungbote/gymflow-backend/internal/domain/aggregates"
	"github.com/yungbote/gymflow-backend/internal/http/response"
	"github.com/yungbote/gymflow-backend/internal/platform/datemath"
	"github.com/yungbote/gymflow-backend/internal/platform/dbctx"
	"github.com/yungbote/gymflow-backend/internal/services"
)

type ContractHandler struct {
	contracts services.ContractService
}

func NewContractHandler(contracts services.ContractService) *ContractHandler {
	return &ContractHandler{contracts: contracts}
}

type createContractRequest struct {
	PersonID     uint   `json:"person_id" validate:"required,gt=0"`
	MembershipID uint   `json:"membership_id" validate:"required,gt=0"`
	StartDate    string `json:"start_date" validate:"required,datetime=2006-01-02"`
}

type updateContractRequest struct {
	MembershipID *uint   `json:"membership_id" validate:"omitempty,gt=0"`
	StartDate    *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	Status       *string `json:"status" validate:"omitempty,oneof=active frozen expired cancelled about_to_expire"`
	Reason       *string `json:"reason" validate:"omitempty,max=500"`
}

type listContractsQuery struct {
	PersonID uint   `form:"person_id"`
	Status   string `form:"status" validate:"omitempty,oneof=active frozen expired cancelled about_to_expire"`
	Page     int    `form:"page" validate:"omitempty,gte=1"`
	Limit    int    `form:"limit" validate:"omitempty,gte=1,lte=100"`
}

// POST /api/contracts
func (h *ContractHandler) Create(c *gin.Context) {
	var req createContractRequest
	if !bindJSON(c, &req) {
		return
	}
	start, err := datemath.ParseDate(req.StartDate)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_start_date", err)
		return
	}
	contract, err := h.contracts.Create(dbctx.Context{Ctx: c.Request.Context()}, services.CreateContractRequest{
		PersonID:         req.PersonID,
		MembershipPlanID: req.MembershipID,
		StartDate:        start,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"contract": contract})
}

// GET /api/contracts
func (h *ContractHandler) List(c *gin.Context) {
	var q listContractsQuery
	if !bindQuery(c, &q) {
		return
	}
	rows, page, err := h.contracts.List(dbctx.Context{Ctx: c.Request.Context()}, services.ContractListQuery{
		PersonID: q.PersonID,
		Status:   q.Status,
		Page:     services.PageRequest{Page: q.Page, Limit: q.Limit},
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"contracts": rows, "pagination": page})
}

// GET /api/contracts/:id
func (h *ContractHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	contract, err := h.contracts.Get(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"contract": contract})
}

// PATCH /api/contracts/:id
func (h *ContractHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req updateContractRequest
	if !bindJSON(c, &req) {
		return
	}
	patch := domainagg.ContractPatch{MembershipPlanID: req.MembershipID, Reason: req.Reason}
	if req.StartDate != nil {
		start, err := datemath.ParseDate(*req.StartDate)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_start_date", err)
			return
		}
		patch.StartDate = &start
	}
	if req.Status != nil {
		st := types.ContractStatus(strings.ToLower(strings.TrimSpace(*req.Status)))
		patch.Status = &st
	}
	contract, err := h.contracts.Update(dbctx.Context{Ctx: c.Request.Context()}, id, patch)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"contract": contract})
}

// DELETE /api/contracts/:id?reason=...
func (h *ContractHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var reason *string
	if r := strings.TrimSpace(c.Query("reason")); r != "" {
		reason = &r
	}
	contract, err := h.contracts.Cancel(dbctx.Context{Ctx: c.Request.Context()}, id, reason)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"contract": contract})
}

// GET /api/contracts/:id/history
func (h *ContractHandler) History(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	rows, err := h.contracts.History(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"history": rows})
}
