// Package api 实现 OneBot v11 动作调用的分发与应答封装。
package api

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/LagrangeDev/obridge/bot"
	"github.com/LagrangeDev/obridge/global"
)

// Getter 参数访问接口
type Getter interface {
	Get(key string) gjson.Result
}

// Handler 中间件处理函数, 返回 nil 时继续调用链
type Handler func(action string, p Getter) global.MSG

// Caller 动作调用器
type Caller struct {
	bot      bot.Client
	handlers []Handler
}

// NewCaller 创建动作调用器
func NewCaller(cli bot.Client) *Caller {
	return &Caller{bot: cli}
}

// Use 注册中间件
func (c *Caller) Use(h Handler) {
	c.handlers = append(c.handlers, h)
}

// Call 执行指定动作并返回应答
func (c *Caller) Call(action string, p Getter) global.MSG {
	for _, h := range c.handlers {
		if ret := h(action, p); ret != nil {
			return ret
		}
	}
	return c.call(action, p)
}

func (c *Caller) call(action string, p Getter) global.MSG {
	switch action {
	case "send_message":
		return c.sendMessage(p)
	case "get_status":
		status := "offline"
		if c.bot.Online() {
			status = "online"
		}
		return OK(global.MSG{
			"status":  status,
			"self_id": c.bot.SelfID(),
		})
	case "get_message":
		seq := p.Get("message_seq").Int()
		if seq == 0 {
			seq = p.Get("message_id").Int()
		}
		msg, err := c.bot.GetMessage(p.Get("message_type").Str, target(p), seq)
		if err != nil {
			return Failed(err)
		}
		return OK(msg)
	case "delete_msg", "delete_message", "recall_message":
		return c.recallMessage(p)
	case "get_friend_list":
		friends, err := c.bot.FriendList()
		if err != nil {
			return Failed(err)
		}
		return OK(friends)
	case "get_group_list":
		groups, err := c.bot.GroupList()
		if err != nil {
			return Failed(err)
		}
		return OK(groups)
	default:
		log.Debugf("应用端请求了不支持的动作: %v", action)
		return OK(global.MSG{"message": "unsupported"})
	}
}

func (c *Caller) sendMessage(p Getter) global.MSG {
	text := p.Get("message").String()
	var seq int64
	var err error
	switch p.Get("message_type").Str {
	case "group":
		seq, err = c.bot.SendGroupMessage(p.Get("group_id").Int(), text)
	default:
		userID := p.Get("user_id").Int()
		if userID == 0 {
			userID = target(p)
		}
		seq, err = c.bot.SendPrivateMessage(userID, text)
	}
	if err != nil {
		return Failed(err)
	}
	return OK(global.MSG{"message_id": seq})
}

func (c *Caller) recallMessage(p Getter) global.MSG {
	seq := p.Get("message_seq").Int()
	if seq == 0 {
		seq = p.Get("message_id").Int()
	}
	var err error
	if groupID := p.Get("group_id").Int(); groupID != 0 {
		err = c.bot.RecallGroupMessage(groupID, seq)
	} else {
		err = c.bot.RecallPrivateMessage(target(p), seq)
	}
	if err != nil {
		return Failed(err)
	}
	return OK(nil)
}

// target 读取对端号, 兼容 target_id 写法
func target(p Getter) int64 {
	if id := p.Get("peer_id").Int(); id != 0 {
		return id
	}
	return p.Get("target_id").Int()
}

// OK 构造成功应答
func OK(data interface{}) global.MSG {
	return global.MSG{"retcode": 0, "status": "ok", "data": data}
}

// Failed 构造失败应答
func Failed(err error) global.MSG {
	err = errors.Cause(err)
	return global.MSG{
		"retcode": -1,
		"status":  "failed",
		"data":    global.MSG{"message": err.Error()},
	}
}
