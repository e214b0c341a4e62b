package websocket_router

import (
	"github.com/rubaiyatxeren/note-master-service/internal/app"
	pkgapp "github.com/rubaiyatxeren/note-master-service/pkg/app"
	"github.com/rubaiyatxeren/note-master-service/pkg/code"
	"github.com/rubaiyatxeren/note-master-service/pkg/logger"

	"go.uber.org/zap"
)

// NoteWSHandler WebSocket note handler
// NoteWSHandler WebSocket 笔记处理器
// Uses App Container to inject dependencies
// 使用 App Container 注入依赖
type NoteWSHandler struct {
	*WSHandler
}

// NewNoteWSHandler creates NoteWSHandler instance
// NewNoteWSHandler 创建 NoteWSHandler 实例
func NewNoteWSHandler(a *app.App) *NoteWSHandler {
	return &NoteWSHandler{
		WSHandler: NewWSHandler(a),
	}
}

// UserInfo 用户有效性验证回调，在 Authorization 时调用
// Token 有效但用户已被删除时拒绝连接
func (h *NoteWSHandler) UserInfo(c *pkgapp.WebsocketClient, uid int64) error {
	return h.App.UserService.Exists(c.Context(), uid)
}

// Connected 认证成功后立即推送初始快照
func (h *NoteWSHandler) Connected(c *pkgapp.WebsocketClient) {
	h.NoteSync(c, &pkgapp.WebSocketMessage{Type: "NoteSync"})
}

// NoteSync 处理客户端的快照刷新请求
// 认证成功后服务端会主动推送初始快照，客户端也可随时发送 NoteSync 重新拉取
// 使用 singleflight 合并同一连接的并发快照请求
func (h *NoteWSHandler) NoteSync(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	ctx := c.Context()
	uid := c.User.UID

	snapshot, err, _ := c.SF.Do("NoteSync", func() (interface{}, error) {
		return h.App.NoteService.Snapshot(ctx, uid)
	})
	if err != nil {
		h.respondError(c, code.ErrorNoteList, err, "websocket_router.note.NoteSync")
		return
	}

	h.logInfo(c, "websocket_router.note.NoteSync", zap.Int64(logger.FieldUID, uid))
	c.ToResponse(code.Success.WithData(snapshot), "NoteSnapshot")
}
