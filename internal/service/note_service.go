// Package service 实现业务逻辑层
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rubaiyatxeren/note-master-service/internal/domain"
	"github.com/rubaiyatxeren/note-master-service/internal/dto"
	"github.com/rubaiyatxeren/note-master-service/pkg/app"
	"github.com/rubaiyatxeren/note-master-service/pkg/code"
	"github.com/rubaiyatxeren/note-master-service/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NoteService 定义笔记业务服务接口
type NoteService interface {
	// Get 获取单条笔记
	Get(ctx context.Context, uid int64, params *dto.NoteGetRequest) (*dto.NoteDTO, error)

	// Create 创建笔记
	Create(ctx context.Context, uid int64, params *dto.NoteCreateRequest) (*dto.NoteDTO, error)

	// Update 更新笔记
	Update(ctx context.Context, uid int64, params *dto.NoteUpdateRequest) (*dto.NoteDTO, error)

	// Delete 删除笔记
	Delete(ctx context.Context, uid int64, params *dto.NoteDeleteRequest) (*dto.NoteDTO, error)

	// List 分页获取笔记列表
	List(ctx context.Context, uid int64, pager *app.Pager) ([]*dto.NoteDTO, int, error)

	// Snapshot 获取用户笔记全量快照
	Snapshot(ctx context.Context, uid int64) (*dto.NoteSnapshotDTO, error)
}

// noteService 实现 NoteService 接口
type noteService struct {
	noteRepo domain.NoteRepository
	logger   *zap.Logger
	config   *ServiceConfig
}

// NewNoteService 创建 NoteService 实例
func NewNoteService(noteRepo domain.NoteRepository, logger *zap.Logger, config *ServiceConfig) NoteService {
	return &noteService{
		noteRepo: noteRepo,
		logger:   logger,
		config:   config,
	}
}

// validateFields 标题和内容去除首尾空白后均不能为空
func validateFields(title, content string) bool {
	return strings.TrimSpace(title) != "" && strings.TrimSpace(content) != ""
}

// Get 获取单条笔记
func (s *noteService) Get(ctx context.Context, uid int64, params *dto.NoteGetRequest) (*dto.NoteDTO, error) {
	note, err := s.noteRepo.GetByID(ctx, params.ID, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorNoteNotFound
		}
		return nil, code.ErrorDBQuery
	}
	return dto.NewNoteDTO(note), nil
}

// Create 创建笔记
// 创建时间和编辑时间均取服务端时钟，两者相等表示笔记从未被编辑
func (s *noteService) Create(ctx context.Context, uid int64, params *dto.NoteCreateRequest) (*dto.NoteDTO, error) {
	if !validateFields(params.Title, params.Content) {
		return nil, code.ErrorNoteFieldsEmpty
	}

	now := time.Now()
	newNote := &domain.Note{
		Title:     params.Title,
		Content:   params.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	note, err := s.noteRepo.Create(ctx, newNote, uid)
	if err != nil {
		return nil, code.ErrorNoteCreate.WithDetails(err.Error())
	}

	s.logger.Info("NoteService.Create",
		zap.Int64(logger.FieldUID, uid),
		zap.Int64(logger.FieldNoteID, note.ID),
	)
	return dto.NewNoteDTO(note), nil
}

// Update 更新笔记
// 编辑时间优先采用客户端提交的 mtime，缺省时取服务端时钟
func (s *noteService) Update(ctx context.Context, uid int64, params *dto.NoteUpdateRequest) (*dto.NoteDTO, error) {
	if !validateFields(params.Title, params.Content) {
		return nil, code.ErrorNoteFieldsEmpty
	}

	// 先确认笔记存在且属于当前用户
	existing, err := s.noteRepo.GetByID(ctx, params.ID, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorNoteNotFound
		}
		return nil, code.ErrorDBQuery
	}

	updatedAt := time.Now()
	if params.Mtime > 0 {
		updatedAt = time.UnixMilli(params.Mtime)
	}

	existing.Title = params.Title
	existing.Content = params.Content
	existing.UpdatedAt = updatedAt

	note, err := s.noteRepo.Update(ctx, existing, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorNoteNotFound
		}
		return nil, code.ErrorNoteUpdate.WithDetails(err.Error())
	}

	s.logger.Info("NoteService.Update",
		zap.Int64(logger.FieldUID, uid),
		zap.Int64(logger.FieldNoteID, note.ID),
	)
	return dto.NewNoteDTO(note), nil
}

// Delete 删除笔记
func (s *noteService) Delete(ctx context.Context, uid int64, params *dto.NoteDeleteRequest) (*dto.NoteDTO, error) {
	note, err := s.noteRepo.GetByID(ctx, params.ID, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorNoteNotFound
		}
		return nil, code.ErrorDBQuery
	}

	if err := s.noteRepo.Delete(ctx, params.ID, uid); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorNoteNotFound
		}
		return nil, code.ErrorNoteDelete.WithDetails(err.Error())
	}

	s.logger.Info("NoteService.Delete",
		zap.Int64(logger.FieldUID, uid),
		zap.Int64(logger.FieldNoteID, params.ID),
	)
	return dto.NewNoteDTO(note), nil
}

// List 分页获取笔记列表
func (s *noteService) List(ctx context.Context, uid int64, pager *app.Pager) ([]*dto.NoteDTO, int, error) {
	count, err := s.noteRepo.CountByUID(ctx, uid)
	if err != nil {
		return nil, 0, code.ErrorNoteList.WithDetails(err.Error())
	}

	notes, err := s.noteRepo.List(ctx, uid, pager.Page, pager.PageSize)
	if err != nil {
		return nil, 0, code.ErrorNoteList.WithDetails(err.Error())
	}

	list := make([]*dto.NoteDTO, 0, len(notes))
	for _, n := range notes {
		list = append(list, dto.NewNoteDTO(n))
	}
	return list, int(count), nil
}

// Snapshot 获取用户笔记全量快照
func (s *noteService) Snapshot(ctx context.Context, uid int64) (*dto.NoteSnapshotDTO, error) {
	notes, err := s.noteRepo.ListByUID(ctx, uid)
	if err != nil {
		return nil, code.ErrorNoteList.WithDetails(err.Error())
	}

	list := make([]*dto.NoteDTO, 0, len(notes))
	for _, n := range notes {
		list = append(list, dto.NewNoteDTO(n))
	}
	return &dto.NoteSnapshotDTO{
		Notes:     list,
		Total:     int64(len(list)),
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// 确保 noteService 实现了 NoteService 接口
var _ NoteService = (*noteService)(nil)
