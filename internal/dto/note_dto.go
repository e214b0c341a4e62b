// Package dto Defines data transfer objects (request parameters and response structs)
// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

import (
	"github.com/rubaiyatxeren/note-master-service/internal/domain"
	"github.com/rubaiyatxeren/note-master-service/pkg/timex"
)

// NoteCreateRequest Request parameters for creating a note
// 用于创建笔记的请求参数
type NoteCreateRequest struct {
	Title   string `json:"title" form:"title"`     // Note title // 笔记标题
	Content string `json:"content" form:"content"` // Note content // 笔记内容
}

// NoteUpdateRequest Request parameters for modifying a note
// 用于修改笔记的请求参数
type NoteUpdateRequest struct {
	ID      int64  `json:"id" form:"id" binding:"required"` // Note ID // 笔记 ID
	Title   string `json:"title" form:"title"`              // Note title // 笔记标题
	Content string `json:"content" form:"content"`          // Note content // 笔记内容
	Mtime   int64  `json:"mtime" form:"mtime"`              // Client edit time (unix ms, optional) // 客户端编辑时间（毫秒时间戳，可选）
}

// NoteDeleteRequest Request parameters for deleting a note
// 用于删除笔记的请求参数
type NoteDeleteRequest struct {
	ID int64 `json:"id" form:"id" binding:"required"` // Note ID // 笔记 ID
}

// NoteGetRequest Request parameters for fetching a single note
// 用于获取单条笔记的请求参数
type NoteGetRequest struct {
	ID int64 `json:"id" form:"id" binding:"required"` // Note ID // 笔记 ID
}

// ---------------- DTO / Response ----------------

// NoteDTO Note data transfer object
// NoteDTO 笔记数据传输对象
type NoteDTO struct {
	ID        int64      `json:"id"`        // Note ID // 笔记 ID
	Title     string     `json:"title"`     // Note title // 笔记标题
	Content   string     `json:"content"`   // Note content // 笔记内容
	IsEdited  bool       `json:"isEdited"`  // Edited after creation // 创建后是否被编辑过
	CreatedAt timex.Time `json:"createdAt"` // Created time // 创建时间
	UpdatedAt timex.Time `json:"updatedAt"` // Last edit time // 最后编辑时间
}

// NewNoteDTO 从领域模型构造笔记 DTO
func NewNoteDTO(n *domain.Note) *NoteDTO {
	if n == nil {
		return nil
	}
	return &NoteDTO{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		IsEdited:  n.IsEdited(),
		CreatedAt: timex.Time(n.CreatedAt),
		UpdatedAt: timex.Time(n.UpdatedAt),
	}
}

// NoteSnapshotDTO Full replacement snapshot of a user's notes, pushed over WebSocket
// 用户笔记的全量快照，通过 WebSocket 推送
type NoteSnapshotDTO struct {
	Notes     []*NoteDTO `json:"notes"`     // All notes // 全部笔记
	Total     int64      `json:"total"`     // Note count // 笔记数量
	Timestamp int64      `json:"timestamp"` // Snapshot time (unix ms) // 快照时间（毫秒时间戳）
}
