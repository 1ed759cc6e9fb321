package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/erp/optilog-connector/internal/domain/journal"
	"github.com/erp/optilog-connector/internal/interfaces/http/dto"
)

// RemotePinger is the provider reachability probe used by the self-test
type RemotePinger interface {
	Ping(ctx context.Context) error
}

// SyncHandler exposes the read-only sync journal and the connector
// self-test for operators
type SyncHandler struct {
	BaseHandler
	records journal.SyncRecordRepository
	pinger  RemotePinger
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(records journal.SyncRecordRepository, pinger RemotePinger) *SyncHandler {
	return &SyncHandler{records: records, pinger: pinger}
}

// RegisterRoutes registers sync admin routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	{
		sync.GET("/records", h.ListRecords)
		sync.GET("/selftest", h.SelfTest)
	}
}

// listRecordsRequest holds the journal listing filters
type listRecordsRequest struct {
	dto.ListRequest
	ObjectType string `form:"object_type" binding:"omitempty,oneof=Order Product"`
	ObjectID   string `form:"object_id"`
	Outcome    string `form:"outcome" binding:"omitempty,oneof=applied skipped failed"`
	Since      string `form:"since" binding:"omitempty,datetime=2006-01-02"`
}

// syncRecordResponse is the wire shape of one journal entry
type syncRecordResponse struct {
	ID           string    `json:"id"`
	ObjectType   string    `json:"object_type"`
	ObjectID     string    `json:"object_id"`
	Action       string    `json:"action"`
	UserName     string    `json:"user_name"`
	Comment      string    `json:"comment,omitempty"`
	Outcome      string    `json:"outcome"`
	ErrorMessage string    `json:"error_message,omitempty"`
	ProcessedAt  time.Time `json:"processed_at"`
}

// ListRecords returns a filtered, paginated slice of the sync journal
func (h *SyncHandler) ListRecords(c *gin.Context) {
	req := listRecordsRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	filter := journal.ListFilter{
		ObjectType: req.ObjectType,
		ObjectID:   req.ObjectID,
		Outcome:    journal.SyncOutcome(req.Outcome),
	}
	if req.Since != "" {
		since, _ := time.Parse("2006-01-02", req.Since)
		filter.Since = &since
	}

	offset := (req.Page - 1) * req.PageSize
	records, total, err := h.records.List(c.Request.Context(), filter, offset, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]syncRecordResponse, 0, len(records))
	for _, r := range records {
		items = append(items, syncRecordResponse{
			ID:           r.ID.String(),
			ObjectType:   r.ObjectType,
			ObjectID:     r.ObjectID,
			Action:       r.Action,
			UserName:     r.UserName,
			Comment:      r.Comment,
			Outcome:      string(r.Outcome),
			ErrorMessage: r.ErrorMessage,
			ProcessedAt:  r.ProcessedAt,
		})
	}

	h.SuccessWithMeta(c, items, total, req.Page, req.PageSize)
}

// selfTestResponse reports provider reachability
type selfTestResponse struct {
	Reachable bool   `json:"reachable"`
	Error     string `json:"error,omitempty"`
	CheckedAt string `json:"checked_at"`
}

// SelfTest performs the secured round-trip against the provider API
func (h *SyncHandler) SelfTest(c *gin.Context) {
	resp := selfTestResponse{
		Reachable: true,
		CheckedAt: time.Now().Format(time.RFC3339),
	}
	if err := h.pinger.Ping(c.Request.Context()); err != nil {
		resp.Reachable = false
		resp.Error = err.Error()
	}
	h.Success(c, resp)
}
