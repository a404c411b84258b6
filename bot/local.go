package bot

import (
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/LagrangeDev/obridge/global"
)

// Local 进程内运行时。未挂接真实后端会话时桥以中继模式工作:
// 反向链路注入的事件经总线转发给推送连接, API 调用作用于本地消息记录。
type Local struct {
	uin int64

	mu      sync.Mutex
	online  bool
	seq     int64
	sent    map[int64]*Message
	friends []global.MSG
	groups  []global.MSG
}

// NewLocal 创建进程内运行时
func NewLocal(uin int64) *Local {
	return &Local{
		uin:    uin,
		online: true,
		sent:   make(map[int64]*Message),
	}
}

// Attach 订阅总线以跟踪在线状态
func (c *Local) Attach(bus *Bus) {
	bus.Subscribe(func(e Event) {
		if _, ok := e.(*OfflineEvent); ok {
			c.SetOnline(false)
		}
	})
}

// SelfID impl Client interface
func (c *Local) SelfID() int64 { return c.uin }

// Online impl Client interface
func (c *Local) Online() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

// SetOnline 设置在线状态
func (c *Local) SetOnline(online bool) {
	c.mu.Lock()
	c.online = online
	c.mu.Unlock()
}

// SetFriendList 设定好友列表数据
func (c *Local) SetFriendList(friends []global.MSG) {
	c.mu.Lock()
	c.friends = friends
	c.mu.Unlock()
}

// SetGroupList 设定群列表数据
func (c *Local) SetGroupList(groups []global.MSG) {
	c.mu.Lock()
	c.groups = groups
	c.mu.Unlock()
}

// SendGroupMessage impl Client interface
func (c *Local) SendGroupMessage(groupID int64, text string) (int64, error) {
	m := NewGroupMessage(groupID, c.uin, time.Now(), []Entity{&TextEntity{Text: text}})
	return c.record(m)
}

// SendPrivateMessage impl Client interface
func (c *Local) SendPrivateMessage(userID int64, text string) (int64, error) {
	m := NewFriendMessage(userID, c.uin, time.Now(), []Entity{&TextEntity{Text: text}})
	return c.record(m)
}

func (c *Local) record(m *Message) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.online {
		return 0, errors.New("当前离线, 无法发送消息")
	}
	c.seq++
	m.Sequence = c.seq
	c.sent[c.seq] = m
	return c.seq, nil
}

// GetMessage impl Client interface
func (c *Local) GetMessage(_ string, _, seq int64) (global.MSG, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.sent[seq]
	if !ok {
		return nil, errors.Errorf("消息 %d 不存在", seq)
	}
	var sb strings.Builder
	for _, ent := range m.Entities {
		sb.WriteString(ent.String())
	}
	return global.MSG{
		"message_seq": m.Sequence,
		"peer_id":     m.Peer,
		"time":        m.Time.Unix(),
		"message":     sb.String(),
	}, nil
}

// RecallGroupMessage impl Client interface
func (c *Local) RecallGroupMessage(_, seq int64) error { return c.recall(seq) }

// RecallPrivateMessage impl Client interface
func (c *Local) RecallPrivateMessage(_, seq int64) error { return c.recall(seq) }

func (c *Local) recall(seq int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sent[seq]; !ok {
		return errors.Errorf("消息 %d 不存在", seq)
	}
	delete(c.sent, seq)
	return nil
}

// FriendList impl Client interface
func (c *Local) FriendList() ([]global.MSG, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]global.MSG(nil), c.friends...), nil
}

// GroupList impl Client interface
func (c *Local) GroupList() ([]global.MSG, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]global.MSG(nil), c.groups...), nil
}
