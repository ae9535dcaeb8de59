package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/gymflow-backend/internal/domain"
	domainagg "github.com/yungbote/gymflow-backend/internal/domain/aggregates"
	"github.com/yungbote/gymflow-backend/internal/http/response"
	"github.com/yungbote/gymflow-backend/internal/platform/datemath"
	"github.com/yungbote/gymflow-backend/internal/platform/dbctx"
	"github.com/yungbote/gymflow-backend/internal/services"
)

type SessionHandler struct {
	schedule services.ScheduleService
}

func NewSessionHandler(schedule services.ScheduleService) *SessionHandler {
	return &SessionHandler{schedule: schedule}
}

type createSessionRequest struct {
	TrainerID   uint      `json:"trainer_id" validate:"required,gt=0"`
	ClientID    uint      `json:"client_id" validate:"required,gt=0"`
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	Notes       string    `json:"notes" validate:"max=2000"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required"`
}

type updateSessionRequest struct {
	TrainerID   *uint      `json:"trainer_id" validate:"omitempty,gt=0"`
	ClientID    *uint      `json:"client_id" validate:"omitempty,gt=0"`
	Title       *string    `json:"title" validate:"omitempty,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	Notes       *string    `json:"notes" validate:"omitempty,max=2000"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
}

type listSessionsQuery struct {
	TrainerID        uint       `form:"trainer_id"`
	ClientID         uint       `form:"client_id"`
	From             *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To               *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Status           string     `form:"status" validate:"omitempty,oneof=scheduled in_progress completed cancelled"`
	IncludeCancelled bool       `form:"include_cancelled"`
	Page             int        `form:"page" validate:"omitempty,gte=1"`
	Limit            int        `form:"limit" validate:"omitempty,gte=1,lte=100"`
}

type availabilityQuery struct {
	Start     time.Time `form:"start" time_format:"2006-01-02T15:04:05Z07:00" validate:"required"`
	End       time.Time `form:"end" time_format:"2006-01-02T15:04:05Z07:00" validate:"required"`
	TrainerID *uint     `form:"trainer_id" validate:"omitempty,gt=0"`
}

type rangeQuery struct {
	From *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To   *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

type calendarQuery struct {
	Date      string `form:"date" validate:"required,datetime=2006-01-02"`
	TrainerID uint   `form:"trainer_id"`
	ClientID  uint   `form:"client_id"`
}

// POST /api/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	var req createSessionRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.schedule.Create(dbctx.Context{Ctx: c.Request.Context()}, services.CreateSessionRequest{
		TrainerUserID:  req.TrainerID,
		ClientPersonID: req.ClientID,
		Title:          req.Title,
		Description:    req.Description,
		Notes:          req.Notes,
		Start:          req.StartTime,
		End:            req.EndTime,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"session": s})
}

// GET /api/sessions
func (h *SessionHandler) List(c *gin.Context) {
	var q listSessionsQuery
	if !bindQuery(c, &q) {
		return
	}
	rows, page, err := h.schedule.List(dbctx.Context{Ctx: c.Request.Context()}, services.SessionListQuery{
		TrainerID:        q.TrainerID,
		ClientID:         q.ClientID,
		From:             q.From,
		To:               q.To,
		Status:           q.Status,
		IncludeCancelled: q.IncludeCancelled,
		Page:             services.PageRequest{Page: q.Page, Limit: q.Limit},
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sessions": rows, "pagination": page})
}

// GET /api/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	s, err := h.schedule.Get(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session": s})
}

// PATCH /api/sessions/:id
func (h *SessionHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req updateSessionRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.schedule.Update(dbctx.Context{Ctx: c.Request.Context()}, id, domainagg.SessionPatch{
		TrainerUserID:  req.TrainerID,
		ClientPersonID: req.ClientID,
		Title:          req.Title,
		Description:    req.Description,
		Notes:          req.Notes,
		Start:          req.StartTime,
		End:            req.EndTime,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session": s})
}

// DELETE /api/sessions/:id
func (h *SessionHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	s, err := h.schedule.Cancel(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session": s})
}

// GET /api/sessions/availability?start=...&end=...&trainer_id=...
func (h *SessionHandler) Availability(c *gin.Context) {
	var q availabilityQuery
	if !bindQuery(c, &q) {
		return
	}
	out, err := h.schedule.CheckAvailability(dbctx.Context{Ctx: c.Request.Context()}, services.AvailabilityQuery{
		Start:     q.Start,
		End:       q.End,
		TrainerID: q.TrainerID,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	if out.Conflicts == nil {
		out.Conflicts = []*types.TrainingSession{}
	}
	response.RespondOK(c, out)
}

// GET /api/clients/:id/sessions
func (h *SessionHandler) ClientSchedule(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var q rangeQuery
	if !bindQuery(c, &q) {
		return
	}
	rows, err := h.schedule.ClientSchedule(dbctx.Context{Ctx: c.Request.Context()}, id, q.From, q.To)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sessions": rows})
}

// GET /api/trainers/:id/sessions
func (h *SessionHandler) TrainerSchedule(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var q rangeQuery
	if !bindQuery(c, &q) {
		return
	}
	rows, err := h.schedule.TrainerSchedule(dbctx.Context{Ctx: c.Request.Context()}, id, q.From, q.To)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sessions": rows})
}

// GET /api/schedule/daily?date=YYYY-MM-DD
func (h *SessionHandler) Daily(c *gin.Context) {
	h.calendar(c, h.schedule.Daily)
}

// GET /api/schedule/weekly?date=YYYY-MM-DD
func (h *SessionHandler) Weekly(c *gin.Context) {
	h.calendar(c, h.schedule.Weekly)
}

// GET /api/schedule/monthly?date=YYYY-MM-DD
func (h *SessionHandler) Monthly(c *gin.Context) {
	h.calendar(c, h.schedule.Monthly)
}

type calendarFunc func(dbc dbctx.Context, date time.Time, f services.CalendarFilter) ([]*types.TrainingSession, error)

func (h *SessionHandler) calendar(c *gin.Context, view calendarFunc) {
	var q calendarQuery
	if !bindQuery(c, &q) {
		return
	}
	date, err := datemath.ParseDate(strings.TrimSpace(q.Date))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_date", err)
		return
	}
	rows, err := view(dbctx.Context{Ctx: c.Request.Context()}, date, services.CalendarFilter{
		TrainerID: q.TrainerID,
		ClientID:  q.ClientID,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"date": datemath.DateKey(date, nil), "sessions": rows})
}
