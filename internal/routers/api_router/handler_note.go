package api_router

import (
	"context"

	"github.com/rubaiyatxeren/note-master-service/internal/app"
	"github.com/rubaiyatxeren/note-master-service/internal/dto"
	"github.com/rubaiyatxeren/note-master-service/internal/middleware"
	pkgapp "github.com/rubaiyatxeren/note-master-service/pkg/app"
	"github.com/rubaiyatxeren/note-master-service/pkg/code"
	apperrors "github.com/rubaiyatxeren/note-master-service/pkg/errors"
	"github.com/rubaiyatxeren/note-master-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NoteHandler note API router handler
// NoteHandler 笔记 API 路由处理器
// 写操作成功后通过 WebSocket 向该用户的全部连接推送最新快照
type NoteHandler struct {
	*Handler
}

// NewNoteHandler creates NoteHandler instance
// NewNoteHandler 创建 NoteHandler 实例
func NewNoteHandler(a *app.App, wss *pkgapp.WebsocketServer) *NoteHandler {
	return &NoteHandler{
		Handler: NewHandlerWithWSS(a, wss),
	}
}

// Get returns a single note
// Get 获取当前用户的单条笔记。
func (h *NoteHandler) Get(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteGetRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Get.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	uid := pkgapp.GetUID(c)

	noteDTO, err := h.App.NoteService.Get(ctx, uid, params)
	if err != nil {
		h.logError(ctx, "NoteHandler.Get", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(noteDTO))
}

// Create creates a note
// Create 创建笔记，创建时间与编辑时间取服务端时钟。
func (h *NoteHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteCreateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Create.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	uid := pkgapp.GetUID(c)

	noteDTO, err := h.App.NoteService.Create(ctx, uid, params)
	if err != nil {
		h.logError(ctx, "NoteHandler.Create", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	h.broadcastSnapshot(ctx, uid)
	response.ToResponse(code.SuccessNoteCreate.WithData(noteDTO))
}

// Update modifies a note
// Update 更新笔记，编辑时间优先采用客户端提交的 mtime。
func (h *NoteHandler) Update(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteUpdateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Update.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	uid := pkgapp.GetUID(c)

	noteDTO, err := h.App.NoteService.Update(ctx, uid, params)
	if err != nil {
		h.logError(ctx, "NoteHandler.Update", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	h.broadcastSnapshot(ctx, uid)
	response.ToResponse(code.SuccessNoteUpdate.WithData(noteDTO))
}

// Delete removes a note
// Delete 删除笔记。
func (h *NoteHandler) Delete(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteDeleteRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Delete.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	uid := pkgapp.GetUID(c)

	noteDTO, err := h.App.NoteService.Delete(ctx, uid, params)
	if err != nil {
		h.logError(ctx, "NoteHandler.Delete", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	h.broadcastSnapshot(ctx, uid)
	response.ToResponse(code.SuccessNoteDelete.WithData(noteDTO))
}

// List returns notes of the current user
// List 返回当前用户的笔记列表。
// 不带分页参数时返回全量快照；带 page/pageSize 时分页返回。
func (h *NoteHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	ctx := c.Request.Context()
	uid := pkgapp.GetUID(c)

	_, hasPage := c.GetQuery("page")
	_, hasPageSize := c.GetQuery("pageSize")
	if !hasPage && !hasPageSize {
		snapshot, err := h.App.NoteService.Snapshot(ctx, uid)
		if err != nil {
			h.logError(ctx, "NoteHandler.List", err)
			apperrors.ErrorResponse(c, err)
			return
		}
		response.ToResponse(code.Success.WithData(snapshot))
		return
	}

	pager := &pkgapp.Pager{Page: pkgapp.GetPage(c), PageSize: pkgapp.GetPageSize(c)}
	list, totalRows, err := h.App.NoteService.List(ctx, uid, pager)
	if err != nil {
		h.logError(ctx, "NoteHandler.List", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponseList(code.Success, list, totalRows)
}

// broadcastSnapshot 写操作成功后向该用户的所有 WebSocket 连接推送全量快照
func (h *NoteHandler) broadcastSnapshot(ctx context.Context, uid int64) {
	if h.WSS == nil {
		return
	}

	snapshot, err := h.App.NoteService.Snapshot(ctx, uid)
	if err != nil {
		h.logError(ctx, "NoteHandler.broadcastSnapshot", err)
		return
	}

	h.WSS.PushToUser(uid, "NoteSnapshot", pkgapp.Res{
		Code:   code.Success.Code(),
		Status: code.Success.Status(),
		Data:   snapshot,
	})
}

// logError 记录错误日志，包含 Trace ID
func (h *NoteHandler) logError(ctx context.Context, method string, err error) {
	traceID := middleware.GetTraceID(ctx)
	h.App.Logger().Error(method,
		zap.Error(err),
		zap.String(logger.FieldTraceID, traceID),
	)
}
