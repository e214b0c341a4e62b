package service

import (
	"context"
	"testing"
	"time"

	"github.com/rubaiyatxeren/note-master-service/internal/domain"
	"github.com/rubaiyatxeren/note-master-service/internal/dto"
	"github.com/rubaiyatxeren/note-master-service/pkg/code"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type mockNoteRepo struct {
	domain.NoteRepository
	notes      map[int64]*domain.Note
	nextID     int64
	createdUID int64
	calls      int
}

func newMockNoteRepo() *mockNoteRepo {
	return &mockNoteRepo{notes: make(map[int64]*domain.Note), nextID: 1}
}

func (m *mockNoteRepo) GetByID(ctx context.Context, id, uid int64) (*domain.Note, error) {
	m.calls++
	n, ok := m.notes[id]
	if !ok || n.UID != uid {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *n
	return &cp, nil
}

func (m *mockNoteRepo) ListByUID(ctx context.Context, uid int64) ([]*domain.Note, error) {
	m.calls++
	var out []*domain.Note
	for _, n := range m.notes {
		if n.UID == uid {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockNoteRepo) List(ctx context.Context, uid int64, page, pageSize int) ([]*domain.Note, error) {
	return m.ListByUID(ctx, uid)
}

func (m *mockNoteRepo) CountByUID(ctx context.Context, uid int64) (int64, error) {
	m.calls++
	var count int64
	for _, n := range m.notes {
		if n.UID == uid {
			count++
		}
	}
	return count, nil
}

func (m *mockNoteRepo) Create(ctx context.Context, note *domain.Note, uid int64) (*domain.Note, error) {
	m.calls++
	cp := *note
	cp.ID = m.nextID
	cp.UID = uid
	m.nextID++
	m.notes[cp.ID] = &cp
	m.createdUID = uid
	out := cp
	return &out, nil
}

func (m *mockNoteRepo) Update(ctx context.Context, note *domain.Note, uid int64) (*domain.Note, error) {
	m.calls++
	existing, ok := m.notes[note.ID]
	if !ok || existing.UID != uid {
		return nil, gorm.ErrRecordNotFound
	}
	existing.Title = note.Title
	existing.Content = note.Content
	existing.UpdatedAt = note.UpdatedAt
	cp := *existing
	return &cp, nil
}

func (m *mockNoteRepo) Delete(ctx context.Context, id, uid int64) error {
	m.calls++
	existing, ok := m.notes[id]
	if !ok || existing.UID != uid {
		return gorm.ErrRecordNotFound
	}
	delete(m.notes, id)
	return nil
}

func newTestNoteService(repo domain.NoteRepository) NoteService {
	return NewNoteService(repo, zap.NewNop(), &ServiceConfig{})
}

func TestNoteCreate(t *testing.T) {
	repo := newMockNoteRepo()
	svc := newTestNoteService(repo)

	note, err := svc.Create(context.Background(), 7, &dto.NoteCreateRequest{
		Title:   "first",
		Content: "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "first", note.Title)
	assert.Equal(t, "hello", note.Content)
	assert.Equal(t, int64(7), repo.createdUID)

	// 新建笔记创建时间与编辑时间相等
	assert.False(t, note.IsEdited)
	assert.Equal(t, time.Time(note.CreatedAt), time.Time(note.UpdatedAt))
}

func TestNoteCreateRejectsBlankFields(t *testing.T) {
	repo := newMockNoteRepo()
	svc := newTestNoteService(repo)

	// 任一字段去除空白后为空都应拒绝
	cases := []dto.NoteCreateRequest{
		{Title: "   ", Content: "\t\n"},
		{Title: "Groceries", Content: "   "},
		{Title: "\t ", Content: "milk, eggs"},
	}
	for _, c := range cases {
		_, err := svc.Create(context.Background(), 1, &c)
		require.Error(t, err)
		assert.Equal(t, code.ErrorNoteFieldsEmpty, err)
	}

	// 校验失败不应触达仓储层
	assert.Equal(t, 0, repo.calls)
}

func TestNoteUpdate(t *testing.T) {
	repo := newMockNoteRepo()
	svc := newTestNoteService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, &dto.NoteCreateRequest{Title: "a", Content: "b"})
	require.NoError(t, err)

	mtime := time.Now().Add(time.Hour).UnixMilli()
	updated, err := svc.Update(ctx, 1, &dto.NoteUpdateRequest{
		ID:      created.ID,
		Title:   "a2",
		Content: "b2",
		Mtime:   mtime,
	})
	require.NoError(t, err)
	assert.Equal(t, "a2", updated.Title)
	assert.True(t, updated.IsEdited)
	// 编辑时间采用客户端提交的 mtime
	assert.Equal(t, mtime, time.Time(updated.UpdatedAt).UnixMilli())
	// 创建时间不随更新变化
	assert.Equal(t, time.Time(created.CreatedAt), time.Time(updated.CreatedAt))
}

func TestNoteUpdateOtherUserNote(t *testing.T) {
	repo := newMockNoteRepo()
	svc := newTestNoteService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, &dto.NoteCreateRequest{Title: "a", Content: "b"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, 2, &dto.NoteUpdateRequest{ID: created.ID, Title: "x", Content: "y"})
	assert.Equal(t, code.ErrorNoteNotFound, err)
}

func TestNoteDelete(t *testing.T) {
	repo := newMockNoteRepo()
	svc := newTestNoteService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, &dto.NoteCreateRequest{Title: "a", Content: "b"})
	require.NoError(t, err)

	// 其他用户删除应失败
	_, err = svc.Delete(ctx, 2, &dto.NoteDeleteRequest{ID: created.ID})
	assert.Equal(t, code.ErrorNoteNotFound, err)

	deleted, err := svc.Delete(ctx, 1, &dto.NoteDeleteRequest{ID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	_, err = svc.Get(ctx, 1, &dto.NoteGetRequest{ID: created.ID})
	assert.Equal(t, code.ErrorNoteNotFound, err)
}

func TestNoteSnapshotScopedToUser(t *testing.T) {
	repo := newMockNoteRepo()
	svc := newTestNoteService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, &dto.NoteCreateRequest{Title: "mine", Content: "1"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, 2, &dto.NoteCreateRequest{Title: "theirs", Content: "2"})
	require.NoError(t, err)

	snapshot, err := svc.Snapshot(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), snapshot.Total)
	assert.Equal(t, "mine", snapshot.Notes[0].Title)
	assert.Greater(t, snapshot.Timestamp, int64(0))
}

// 验证仅空白字符的标题和内容组合始终被拒绝
func TestPropertyBlankFieldsAlwaysRejected(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	blankGen := gen.SliceOf(gen.OneConstOf(' ', '\t', '\n')).Map(func(rs []rune) string {
		return string(rs)
	})

	properties.Property("blank title and content are rejected", prop.ForAll(
		func(title, content string) bool {
			repo := newMockNoteRepo()
			svc := newTestNoteService(repo)
			_, err := svc.Create(context.Background(), 1, &dto.NoteCreateRequest{
				Title:   title,
				Content: content,
			})
			return err == code.ErrorNoteFieldsEmpty && repo.calls == 0
		},
		blankGen,
		blankGen,
	))

	// 任一字段为空白即拒绝，另一字段非空也不放行
	properties.Property("blank content is rejected regardless of title", prop.ForAll(
		func(title, content string) bool {
			repo := newMockNoteRepo()
			svc := newTestNoteService(repo)
			_, err := svc.Create(context.Background(), 1, &dto.NoteCreateRequest{
				Title:   title + "x",
				Content: content,
			})
			return err == code.ErrorNoteFieldsEmpty && repo.calls == 0
		},
		gen.AlphaString(),
		blankGen,
	))

	properties.Property("blank title is rejected regardless of content", prop.ForAll(
		func(title, content string) bool {
			repo := newMockNoteRepo()
			svc := newTestNoteService(repo)
			_, err := svc.Create(context.Background(), 1, &dto.NoteCreateRequest{
				Title:   title,
				Content: content + "x",
			})
			return err == code.ErrorNoteFieldsEmpty && repo.calls == 0
		},
		blankGen,
		gen.AlphaString(),
	))

	properties.Property("non-blank title and content are accepted", prop.ForAll(
		func(title, content string) bool {
			repo := newMockNoteRepo()
			svc := newTestNoteService(repo)
			_, err := svc.Create(context.Background(), 1, &dto.NoteCreateRequest{
				Title:   title + "x",
				Content: content + "x",
			})
			return err == nil
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
