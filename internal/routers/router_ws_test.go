package routers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rubaiyatxeren/note-master-service/internal/app"
	"github.com/rubaiyatxeren/note-master-service/internal/dto"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/lxzan/gws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// wsRecvHandler 收集服务端下发的文本帧
type wsRecvHandler struct {
	gws.BuiltinEventHandler
	recv chan string
}

func (h *wsRecvHandler) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()
	h.recv <- message.Data.String()
}

func newTestRouter(t *testing.T) (*gin.Engine, *app.App) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &app.AppConfig{}
	cfg.Security.AuthTokenKey = "router-ws-test-key"
	cfg.Security.TokenExpiry = "24h"
	cfg.User.RegisterIsEnable = true
	cfg.App.DefaultPageSize = 10
	cfg.App.MaxPageSize = 100
	cfg.App.DefaultContextTimeout = 60
	cfg.Tracer.Enabled = true
	cfg.Tracer.Header = "X-Trace-ID"

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "router_test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	a, err := app.NewApp(cfg, zap.NewNop(), db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)

	return NewRouter(a, uni), a
}

// waitWSFrame 按序读取帧，直到收到指定动作前缀的帧并返回其负载
func waitWSFrame(t *testing.T, recv <-chan string, action string) string {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case frame := <-recv:
			if strings.HasPrefix(frame, action+"|") {
				return strings.TrimPrefix(frame, action+"|")
			}
		case <-deadline:
			t.Fatalf("timeout waiting for %s frame", action)
		}
	}
}

type wsSnapshotRes struct {
	Code   int  `json:"code"`
	Status bool `json:"status"`
	Data   struct {
		Notes []struct {
			ID    int64  `json:"id"`
			Title string `json:"title"`
		} `json:"notes"`
		Total     int64 `json:"total"`
		Timestamp int64 `json:"timestamp"`
	} `json:"data"`
}

func decodeSnapshot(t *testing.T, payload string) *wsSnapshotRes {
	t.Helper()
	res := &wsSnapshotRes{}
	require.NoError(t, json.Unmarshal([]byte(payload), res))
	require.True(t, res.Status, "snapshot frame should carry success status: %s", payload)
	return res
}

// dialWS 建立 WebSocket 连接并完成 Authorization 握手
func dialWS(t *testing.T, serverURL, token string) (*gws.Conn, chan string) {
	t.Helper()
	handler := &wsRecvHandler{recv: make(chan string, 16)}
	addr := "ws" + strings.TrimPrefix(serverURL, "http") + "/api/user/sync"

	socket, _, err := gws.NewClient(handler, &gws.ClientOption{Addr: addr})
	require.NoError(t, err)
	go socket.ReadLoop()
	t.Cleanup(func() { _ = socket.WriteClose(1000, nil) })

	require.NoError(t, socket.WriteMessage(gws.OpcodeText, []byte("Authorization|"+token)))

	payload := waitWSFrame(t, handler.recv, "Authorization")
	var res struct {
		Code   int  `json:"code"`
		Status bool `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(payload), &res))
	require.True(t, res.Status, "authorization should succeed: %s", payload)

	return socket, handler.recv
}

// 订阅链路：握手成功后立即收到初始快照，之后每次 HTTP 写操作
// 向该用户的所有连接广播最新快照
func TestWebsocketNoteSubscription(t *testing.T) {
	r, a := newTestRouter(t)
	ctx := context.Background()

	user, err := a.UserService.Register(ctx, &dto.UserCreateRequest{
		Email:           "sync@example.com",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}, "")
	require.NoError(t, err)

	_, err = a.NoteService.Create(ctx, user.UID, &dto.NoteCreateRequest{Title: "first", Content: "hello"})
	require.NoError(t, err)

	srv := httptest.NewServer(r)
	defer srv.Close()

	socket, recv := dialWS(t, srv.URL, user.Token)

	// 认证成功后服务端主动下发初始快照
	snap := decodeSnapshot(t, waitWSFrame(t, recv, "NoteSnapshot"))
	require.Equal(t, int64(1), snap.Data.Total)
	assert.Equal(t, "first", snap.Data.Notes[0].Title)

	// 客户端也可随时发送 NoteSync 重新拉取
	require.NoError(t, socket.WriteMessage(gws.OpcodeText, []byte("NoteSync|{}")))
	snap = decodeSnapshot(t, waitWSFrame(t, recv, "NoteSnapshot"))
	require.Equal(t, int64(1), snap.Data.Total)

	// 第二个连接模拟多端登录，同样收到初始快照
	_, recv2 := dialWS(t, srv.URL, user.Token)
	snap2 := decodeSnapshot(t, waitWSFrame(t, recv2, "NoteSnapshot"))
	require.Equal(t, int64(1), snap2.Data.Total)

	// HTTP 创建笔记后两个连接都收到新快照
	body, err := json.Marshal(map[string]string{"title": "second", "content": "world"})
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/note", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", user.Token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	snap = decodeSnapshot(t, waitWSFrame(t, recv, "NoteSnapshot"))
	require.Equal(t, int64(2), snap.Data.Total)
	snap2 = decodeSnapshot(t, waitWSFrame(t, recv2, "NoteSnapshot"))
	require.Equal(t, int64(2), snap2.Data.Total)

	// 删除后快照收敛回一条
	var deleteID int64
	for _, n := range snap.Data.Notes {
		if n.Title == "second" {
			deleteID = n.ID
		}
	}
	require.NotZero(t, deleteID)

	body, err = json.Marshal(map[string]int64{"id": deleteID})
	require.NoError(t, err)
	req, err = http.NewRequest(http.MethodDelete, srv.URL+"/api/note", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", user.Token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	snap = decodeSnapshot(t, waitWSFrame(t, recv, "NoteSnapshot"))
	require.Equal(t, int64(1), snap.Data.Total)
	assert.Equal(t, "first", snap.Data.Notes[0].Title)
}

// 非法 Token 的 Authorization 被拒绝
func TestWebsocketAuthorizationRejected(t *testing.T) {
	r, _ := newTestRouter(t)

	srv := httptest.NewServer(r)
	defer srv.Close()

	handler := &wsRecvHandler{recv: make(chan string, 16)}
	addr := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/user/sync"

	socket, _, err := gws.NewClient(handler, &gws.ClientOption{Addr: addr})
	require.NoError(t, err)
	go socket.ReadLoop()

	require.NoError(t, socket.WriteMessage(gws.OpcodeText, []byte("Authorization|not-a-token")))

	payload := waitWSFrame(t, handler.recv, "Authorization")
	var res struct {
		Code   int  `json:"code"`
		Status bool `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(payload), &res))
	assert.False(t, res.Status)
}
