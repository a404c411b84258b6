package server

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/LagrangeDev/obridge/bot"
	"github.com/LagrangeDev/obridge/global"
	"github.com/LagrangeDev/obridge/modules/config"
	"github.com/LagrangeDev/obridge/onebot"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsConn 带写锁的推送连接
type wsConn struct {
	*websocket.Conn
	mu   sync.Mutex
	once sync.Once
	done chan struct{}
}

// wsServer 正向 WebSocket 推送服务
type wsServer struct {
	conv        *onebot.Converter
	token       string
	path        string
	connections sync.Map // *wsConn -> struct{}
}

func newWSServer(conv *onebot.Converter, token, path string) *wsServer {
	return &wsServer{conv: conv, token: token, path: path}
}

func (s *wsServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path != s.path {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if status := checkAuth(r, s.token); status != http.StatusOK {
		w.WriteHeader(status)
		return
	}
	if !websocket.IsWebSocketUpgrade(r) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("处理 WebSocket 请求时出现错误: %v", err)
		return
	}
	log.Infof("接受 WebSocket 连接: %v", r.RemoteAddr)
	conn := &wsConn{Conn: c, done: make(chan struct{})}
	s.connections.Store(conn, struct{}{})
	go s.listenClose(conn)
}

// listenClose 读取循环只用于感知对端关闭, 推送连接不处理入站数据
func (s *wsServer) listenClose(conn *wsConn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Infof("WebSocket 连接断开: %v", err)
			s.closeConn(conn, websocket.CloseNormalClosure)
			return
		}
	}
}

func (s *wsServer) closeConn(conn *wsConn, code int) {
	conn.once.Do(func() {
		s.connections.Delete(conn)
		conn.mu.Lock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(code, ""), time.Now().Add(time.Second))
		conn.mu.Unlock()
		_ = conn.Close()
		close(conn.done)
	})
}

// onBotPushEvent 将运行时事件推送至所有已连接的客户端
func (s *wsServer) onBotPushEvent(e bot.Event) {
	switch e.(type) {
	case *bot.MessageEvent, *bot.OfflineEvent:
	default:
		return
	}
	ev := s.conv.ToPostEvent(e)
	body := ev.JSONBytes()
	if body == nil {
		return
	}
	s.connections.Range(func(key, _ interface{}) bool {
		conn := key.(*wsConn)
		conn.mu.Lock()
		_ = conn.SetWriteDeadline(time.Now().Add(time.Second * 15))
		err := conn.WriteMessage(websocket.TextMessage, body)
		conn.mu.Unlock()
		if err != nil {
			log.Warnf("推送事件到 WebSocket 客户端时出现错误: %v", err)
			s.closeConn(conn, websocket.CloseAbnormalClosure)
		}
		return true
	})
}

// Shutdown 关闭所有推送连接并等待读取循环退出
func (s *wsServer) Shutdown(ctx context.Context) {
	var conns []*wsConn
	s.connections.Range(func(key, _ interface{}) bool {
		conns = append(conns, key.(*wsConn))
		return true
	})
	for _, conn := range conns {
		s.closeConn(conn, websocket.CloseGoingAway)
	}
	for _, conn := range conns {
		select {
		case <-conn.done:
		case <-ctx.Done():
			return
		}
	}
}

// wsReverseClient 反向 WebSocket 连接, 从上游事件源接收 OneBot 事件
type wsReverseClient struct {
	bus  *bot.Bus
	conv *onebot.Converter
	conf *config.Reverse

	reconnectInterval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	conn   *websocket.Conn
}

func newWSReverseClient(bus *bot.Bus, conv *onebot.Converter, conf *config.Reverse) *wsReverseClient {
	return &wsReverseClient{
		bus:               bus,
		conv:              conv,
		conf:              conf,
		reconnectInterval: time.Second * 5,
	}
}

// Start 启动连接维持循环, 重复调用无效果
func (c *wsReverseClient) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.connectLoop(ctx)
}

// Stop 中止连接维持循环并等待退出
func (c *wsReverseClient) Stop(ctx context.Context) {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel = nil
	if conn := c.conn; conn != nil {
		_ = conn.Close()
	}
	c.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

func (c *wsReverseClient) connectLoop(ctx context.Context) {
	defer close(c.done)
	for {
		if ctx.Err() != nil {
			return
		}
		c.connect(ctx)
		if ctx.Err() != nil {
			return
		}
		log.Warnf("将在 %v 后尝试重新连接到反向 WebSocket 服务器: %v", c.reconnectInterval, c.conf.URL)
		t := time.NewTimer(c.reconnectInterval)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return
		}
	}
}

func (c *wsReverseClient) connect(ctx context.Context) {
	log.Infof("开始尝试连接到反向 WebSocket 服务器: %v", c.conf.URL)
	header := http.Header{}
	if c.conf.AccessToken != "" {
		header.Set("Authorization", "Bearer "+c.conf.AccessToken)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.conf.URL, header)
	if err != nil {
		log.Warnf("连接到反向 WebSocket 服务器 %v 时出现错误: %v", c.conf.URL, err)
		return
	}
	log.Infof("已连接到反向 WebSocket 服务器 %v", c.conf.URL)
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	c.listen(conn)
	c.mu.Lock()
	c.conn = nil
	c.mu.Unlock()
}

func (c *wsReverseClient) listen(conn *websocket.Conn) {
	defer conn.Close()
	for {
		_, reader, err := conn.NextReader()
		if err != nil {
			log.Warnf("与反向 WebSocket 服务器的连接断开: %v", err)
			return
		}
		buf := global.NewBuffer()
		if _, err = buf.ReadFrom(reader); err != nil {
			global.PutBuffer(buf)
			log.Warnf("读取反向 WebSocket 报文时出现错误: %v", err)
			return
		}
		// gjson 不复制底层数据, 归还缓冲区前须先拷贝
		frame := append([]byte(nil), buf.Bytes()...)
		global.PutBuffer(buf)
		c.handleFrame(frame)
	}
}

// handleFrame 按接收顺序逐条转换并投递事件
func (c *wsReverseClient) handleFrame(frame []byte) {
	if !gjson.ValidBytes(frame) {
		log.Warnf("收到无法解析的反向 WebSocket 报文: %v", string(bytes.TrimSpace(frame)))
		return
	}
	j := gjson.ParseBytes(frame)
	if !j.IsObject() {
		log.Warnf("收到非对象的反向 WebSocket 报文")
		return
	}
	e := c.conv.FromPostEvent(j, frame)
	if e == nil {
		log.Debugf("忽略未知的上报事件: %v", j.Get("post_type").Str)
		return
	}
	c.bus.Post(e)
}
