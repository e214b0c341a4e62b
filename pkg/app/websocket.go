package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rubaiyatxeren/note-master-service/pkg/code"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/lxzan/gws"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	WebSocketServerPingInterval = 25
	WebSocketServerPingWait     = 40
)

// WebSocketMessage 客户端消息，格式为 "Action|{json}"
type WebSocketMessage struct {
	Type string `json:"type"` // 操作类型，例如 "Authorization", "NoteSync"
	Data []byte `json:"data"` // 消息负载
}

type WebsocketServerConfig struct {
	GWSOption    gws.ServerOption
	PingInterval time.Duration
	PingWait     time.Duration
	// TokenSecretKey 用于解析 Authorization 消息中的 Token
	TokenSecretKey string
	Logger         *zap.Logger
	Validator      *validator.Validate
}

// WebsocketClient 结构体来存储每个 WebSocket 连接及其相关状态
type WebsocketClient struct {
	conn        *gws.Conn
	done        chan struct{}
	ctx         context.Context
	cancel      context.CancelFunc
	logger      *zap.Logger
	validate    *validator.Validate
	Ctx         *gin.Context
	User        *UserEntity
	UserClients *ConnStorage
	SF          *singleflight.Group // 用于处理并发请求的缓存
	TraceID     string
}

// Context 返回连接级 Context，连接关闭时取消
// 升级请求的 Context 在握手 handler 返回后即被取消，不能用于后续消息处理
func (c *WebsocketClient) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// BindAndValid WebSocket 版本参数绑定和验证工具函数
func (c *WebsocketClient) BindAndValid(data []byte, obj any) (bool, ValidErrors) {
	var errs ValidErrors

	if err := json.Unmarshal(data, obj); err != nil {
		errs = append(errs, &ValidError{
			Key:     "body",
			Message: "Invalid message format",
		})
		return false, errs
	}

	if c.validate == nil {
		return true, nil
	}

	if err := c.validate.Struct(obj); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			v := c.Ctx.Value("trans")
			trans, transOk := v.(ut.Translator)

			for _, validationErr := range validationErrors {
				message := validationErr.Error()
				if transOk {
					message = validationErr.Translate(trans)
				}
				errs = append(errs, &ValidError{
					Key:     validationErr.Field(),
					Message: message,
				})
			}
		}
		return false, errs
	}
	return true, nil
}

// PingLoop 定期发送 Ping 消息
func (c *WebsocketClient) PingLoop(pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			c.logger.Info("WebsocketServer Client Close Ping")
			return
		case <-ticker.C:
			if c.conn == nil {
				return
			}
			if err := c.conn.WritePing(nil); err != nil {
				c.logger.Error("WebsocketServer Client Ping err", zap.Error(err))
				return
			}
		}
	}
}

// ToResponse 将结果转换为 JSON 格式并发送给客户端
func (c *WebsocketClient) ToResponse(codeObj *code.Code, action ...string) {

	var actionType string
	if len(action) > 0 {
		actionType = action[0]
	}
	if codeObj.HaveDetails() {
		details := strings.Join(codeObj.Details(), ",")
		c.send(actionType, Res{
			Code:    codeObj.Code(),
			Status:  codeObj.Status(),
			Message: codeObj.Lang.GetMessage(),
			Data:    codeObj.Data(),
			Details: details,
		}, false, false)
	} else {
		if actionType != "" || codeObj.Code() > 200 || codeObj.HaveData() {
			c.send(actionType, Res{
				Code:    codeObj.Code(),
				Status:  codeObj.Status(),
				Message: codeObj.Lang.GetMessage(),
				Data:    codeObj.Data(),
			}, false, false)
		}
	}
}

// BroadcastResponse 将结果转换为 JSON 格式并广播给同一用户的所有客户端
// 第二个 options 参数为是否排除自己 第三个 options 参数为动作类型
func (c *WebsocketClient) BroadcastResponse(codeObj *code.Code, options ...any) {

	var actionType string
	if len(options) > 1 {
		actionType = options[1].(string)
	}

	var excludeSelf bool
	if len(options) > 0 {
		excludeSelf = options[0].(bool)
	}

	if codeObj.HaveDetails() {
		details := strings.Join(codeObj.Details(), ",")
		c.send(actionType, Res{
			Code:    codeObj.Code(),
			Status:  codeObj.Status(),
			Message: codeObj.Lang.GetMessage(),
			Data:    codeObj.Data(),
			Details: details,
		}, true, excludeSelf)
	} else {
		c.send(actionType, Res{
			Code:    codeObj.Code(),
			Status:  codeObj.Status(),
			Message: codeObj.Lang.GetMessage(),
			Data:    codeObj.Data(),
		}, true, excludeSelf)
	}
}

func (c *WebsocketClient) send(actionType string, content any, isBroadcast bool, isExcludeSelf bool) {
	responseBytes, _ := json.Marshal(content)
	if actionType != "" {
		responseBytes = []byte(fmt.Sprintf(`%s|%s`, actionType, string(responseBytes)))
	}
	if isBroadcast {
		c.broadcast(responseBytes, isExcludeSelf)
	} else {
		c.message(responseBytes)
	}
}

func (c *WebsocketClient) message(payload []byte) {
	c.conn.WriteMessage(gws.OpcodeText, payload)
}

func (c *WebsocketClient) broadcast(payload []byte, isExcludeSelf bool) {
	var b = gws.NewBroadcaster(gws.OpcodeText, payload)
	defer b.Close()

	for _, uc := range *c.UserClients {
		if uc.conn == nil {
			continue
		}
		if isExcludeSelf && uc.conn == c.conn {
			continue
		}

		_ = b.Broadcast(uc.conn)
	}
}

// ------------------------------------> WebsocketServer

type ConnStorage = map[*gws.Conn]*WebsocketClient

type WebsocketServer struct {
	handlers          map[string]func(*WebsocketClient, *WebSocketMessage)
	userDataHandler   func(*WebsocketClient, int64) error
	authorizedHandler func(*WebsocketClient)
	clients           ConnStorage
	userClients       map[int64]ConnStorage
	mu                sync.Mutex
	up                *gws.Upgrader
	config            *WebsocketServerConfig
	logger            *zap.Logger
}

func NewWebsocketServer(c WebsocketServerConfig) *WebsocketServer {
	if c.PingInterval == 0 {
		c.PingInterval = WebSocketServerPingInterval
	}
	if c.PingWait == 0 {
		c.PingWait = WebSocketServerPingWait
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	wss := WebsocketServer{
		handlers:    make(map[string]func(*WebsocketClient, *WebSocketMessage)),
		clients:     make(ConnStorage),
		userClients: make(map[int64]ConnStorage),
		config:      &c,
		logger:      c.Logger,
	}
	return &wss
}

func (w *WebsocketServer) Upgrade() {
	w.up = gws.NewUpgrader(w, &w.config.GWSOption)
}

func (w *WebsocketServer) Run() gin.HandlerFunc {

	return func(c *gin.Context) {

		w.Upgrade()
		socket, err := w.up.Upgrade(c.Writer, c.Request)
		if err != nil {
			w.logger.Error("WebsocketServer Start err", zap.Error(err))
			return
		}
		ctx, cancel := context.WithCancel(context.Background())
		client := &WebsocketClient{
			conn:     socket,
			done:     make(chan struct{}),
			ctx:      ctx,
			cancel:   cancel,
			logger:   w.logger,
			validate: w.config.Validator,
			Ctx:      c,
			SF:       new(singleflight.Group),
		}
		if id, ok := c.Get("trace_id"); ok {
			if traceID, ok := id.(string); ok {
				client.TraceID = traceID
			}
		}
		w.AddClient(client)
		w.logger.Info("WebsocketServer Start", zap.String("type", "ReadLoop"))
		go socket.ReadLoop()
	}
}

func (w *WebsocketServer) Use(action string, handler func(*WebsocketClient, *WebSocketMessage)) {
	w.handlers[action] = handler
}

// UseUserVerify 注册用户有效性验证回调
func (w *WebsocketServer) UseUserVerify(handler func(*WebsocketClient, int64) error) {
	w.userDataHandler = handler
}

// UseAuthorized 注册认证成功后的回调，用于推送初始数据
func (w *WebsocketServer) UseAuthorized(handler func(*WebsocketClient)) {
	w.authorizedHandler = handler
}

func (w *WebsocketServer) authorizationFailed(c *WebsocketClient, err error) {
	w.logger.Error("WebsocketServer Authorization FAILD", zap.Error(err))
	c.ToResponse(code.ErrorInvalidUserAuthToken, "Authorization")
	time.Sleep(2 * time.Second)
	c.conn.WriteClose(1000, []byte("AuthorizationFaild"))
}

func (w *WebsocketServer) Authorization(c *WebsocketClient, msg *WebSocketMessage) {

	user, err := ParseTokenWithKey(string(msg.Data), w.config.TokenSecretKey)
	if err != nil {
		w.authorizationFailed(c, err)
		return
	}

	// 用户有效性强制验证
	if w.userDataHandler != nil {
		if err := w.userDataHandler(c, user.UID); err != nil {
			w.authorizationFailed(c, err)
			return
		}
	}

	w.logger.Info("WebsocketServer Authorization", zap.Int64("uid", user.UID), zap.String("email", user.Email))
	c.User = user
	w.AddUserClient(c)

	userClients := w.userClients[user.UID]

	c.UserClients = &userClients
	c.ToResponse(code.Success, "Authorization")
	w.logger.Info("WebsocketServer User Enters", zap.Int64("uid", c.User.UID), zap.Int("Count", len(userClients)))
	go c.PingLoop(w.config.PingInterval)

	if w.authorizedHandler != nil {
		w.authorizedHandler(c)
	}
}

func (w *WebsocketServer) GetClient(conn *gws.Conn) *WebsocketClient {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.clients[conn]
}

func (w *WebsocketServer) AddClient(c *WebsocketClient) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clients[c.conn] = c
}

func (w *WebsocketServer) RemoveClient(conn *gws.Conn) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.clients, conn)
}

func (w *WebsocketServer) AddUserClient(c *WebsocketClient) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.userClients[c.User.UID] == nil {
		w.userClients[c.User.UID] = make(ConnStorage)
	}
	w.userClients[c.User.UID][c.conn] = c
}

func (w *WebsocketServer) RemoveUserClient(c *WebsocketClient) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.userClients[c.User.UID], c.conn)
	w.logger.Info("WebsocketServer Client Remove", zap.Int("userCount", len(w.clients)))
}

// UserClientStorage 返回指定用户当前的连接集合，用于服务端主动推送
func (w *WebsocketServer) UserClientStorage(uid int64) ConnStorage {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.userClients[uid]
}

// PushToUser 向指定用户的所有连接推送一条带动作前缀的消息
func (w *WebsocketServer) PushToUser(uid int64, actionType string, content any) {
	clients := w.UserClientStorage(uid)
	if len(clients) == 0 {
		return
	}

	responseBytes, err := json.Marshal(content)
	if err != nil {
		w.logger.Error("WebsocketServer PushToUser marshal err", zap.Error(err))
		return
	}
	if actionType != "" {
		responseBytes = []byte(fmt.Sprintf(`%s|%s`, actionType, string(responseBytes)))
	}

	var b = gws.NewBroadcaster(gws.OpcodeText, responseBytes)
	defer b.Close()

	for _, uc := range clients {
		if uc.conn == nil {
			continue
		}
		_ = b.Broadcast(uc.conn)
	}
}

func (w *WebsocketServer) OnOpen(conn *gws.Conn) {
	w.logger.Info("WebsocketServer Client Connect", zap.Int("Count", len(w.clients)))
	_ = conn.SetDeadline(time.Now().Add(w.config.PingWait * time.Second))
}

func (w *WebsocketServer) OnClose(conn *gws.Conn, err error) {

	c := w.GetClient(conn)

	w.RemoveClient(conn)

	if c != nil {
		c.cancel()
		// close 而非发送，PingLoop 可能已因写错误退出
		close(c.done)
		if c.User != nil {
			w.logger.Info("WebsocketServer User Leave", zap.Int64("uid", c.User.UID))
			w.RemoveUserClient(c)
		}
	}

	w.logger.Info("WebsocketServer Client Leave", zap.Int("Count", len(w.clients)))

}

func (w *WebsocketServer) OnPing(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(w.config.PingWait * time.Second))
	_ = socket.WritePong(nil)
}

func (w *WebsocketServer) OnPong(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(w.config.PingWait * time.Second))
}

func (w *WebsocketServer) OnMessage(conn *gws.Conn, message *gws.Message) {
	defer message.Close()
	if message.Opcode != gws.OpcodeText {
		return
	}
	if message.Data.String() == "close" {
		conn.WriteClose(1000, []byte("ClientClose"))
		return
	}

	c := w.GetClient(conn)
	if c == nil {
		return
	}

	messageStr := message.Data.String()
	index := strings.Index(messageStr, "|")

	var msg WebSocketMessage
	if index != -1 {
		msg.Type = messageStr[:index]           // 提取分隔符之前的部分
		msg.Data = []byte(messageStr[index+1:]) // 提取分隔符之后的部分
	} else {
		w.logger.Error("WebsocketServer OnMessage", zap.String("type", "Illegal message type"))
		c.ToResponse(code.ErrorInvalidWSMessage)
		return
	}

	if msg.Type == "Authorization" {
		w.Authorization(c, &msg)
		return
	}

	// 验证用户是否登录
	if c.User == nil {
		c.ToResponse(code.ErrorNotUserAuthToken)
		return
	}

	// 执行操作
	handler, exists := w.handlers[msg.Type]
	if exists {
		w.logger.Info("WebsocketServer OnMessage", zap.String("Type", msg.Type), zap.Int64("uid", c.User.UID))
		handler(c, &msg)
	} else {
		w.logger.Error("WebsocketServer OnMessage", zap.String("msg", "Unknown message type "+strconv.Quote(msg.Type)))
	}
}
