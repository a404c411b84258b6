package onebot

import (
	"time"

	"github.com/tidwall/gjson"

	"github.com/LagrangeDev/obridge/bot"
)

// Converter 实体与 OneBot 事件的双向转换器
type Converter struct {
	self func() int64
}

// NewConverter 创建转换器, self 提供当前登录号
func NewConverter(self func() int64) *Converter {
	return &Converter{self: self}
}

// ToPostEvent 将运行时事件转换为 OneBot 上报事件
func (c *Converter) ToPostEvent(e bot.Event) *PostEvent {
	switch ev := e.(type) {
	case *bot.MessageEvent:
		return c.messageEvent(ev.Message)
	case *bot.OfflineEvent:
		return &PostEvent{
			PostType: "meta_event",
			Time:     time.Now().Unix(),
			RawEvent: map[string]interface{}{
				"type":   "offline",
				"reason": ev.Reason,
			},
		}
	default:
		return &PostEvent{
			PostType: "unknown",
			Time:     time.Now().Unix(),
			SelfID:   c.self(),
		}
	}
}

func (c *Converter) messageEvent(m *bot.Message) *PostEvent {
	ev := &PostEvent{
		PostType:  "message",
		Time:      m.Time.Unix(),
		SelfID:    c.self(),
		MessageID: m.Sequence,
		UserID:    m.Sender,
		Message:   toSegments(m.Entities),
	}
	switch m.Type {
	case bot.Group:
		ev.MessageType = "group"
		ev.SubType = "normal"
		ev.GroupID = m.Peer
	default:
		ev.MessageType = "private"
		ev.SubType = "friend"
	}
	return ev
}

func toSegments(entities []bot.Entity) []Segment {
	segments := make([]Segment, 0, len(entities))
	for _, ent := range entities {
		segments = append(segments, toSegment(ent))
	}
	return segments
}

func toSegment(ent bot.Entity) Segment {
	switch e := ent.(type) {
	case *bot.TextEntity:
		return Text(e.Text)
	case *bot.MentionEntity:
		return At(e.Target)
	case *bot.ReplyEntity:
		return Reply(e.Source.Sequence)
	case *bot.ForwardEntity:
		if e.ResID != "" {
			return Forward(e.ResID)
		}
		return Text(e.String())
	case *bot.ImageEntity:
		if e.URL != "" {
			return Image(e.URL, e.Summary)
		}
		return Text(e.String())
	case *bot.VideoEntity:
		return Text("[视频] " + e.Preview)
	case *bot.RecordEntity:
		return Text("[语音] " + e.Preview)
	default:
		return Text(ent.String())
	}
}

// FromPostEvent 解析 OneBot 上报事件, 无法识别时返回 nil
func (c *Converter) FromPostEvent(j gjson.Result, raw []byte) bot.Event {
	switch j.Get("post_type").Str {
	case "message":
		return c.fromMessage(j, raw)
	case "meta_event":
		return fromMetaEvent(j)
	default:
		return nil
	}
}

func (c *Converter) fromMessage(j gjson.Result, raw []byte) bot.Event {
	t := time.Unix(j.Get("time").Int(), 0)
	sender := j.Get("user_id").Int()
	build := func(entities []bot.Entity) *bot.Message {
		if j.Get("message_type").Str == "group" {
			return bot.NewGroupMessage(j.Get("group_id").Int(), sender, t, entities)
		}
		return bot.NewFriendMessage(sender, j.Get("self_id").Int(), t, entities)
	}
	var entities []bot.Entity
	message := j.Get("message")
	switch {
	case message.Type == gjson.String:
		entities = []bot.Entity{&bot.TextEntity{Text: message.Str}}
	case message.IsArray():
		message.ForEach(func(_, seg gjson.Result) bool {
			entities = append(entities, fromSegment(seg, build))
			return true
		})
	default:
		entities = []bot.Entity{&bot.TextEntity{Text: message.Raw}}
	}
	m := build(entities)
	m.Sequence = j.Get("message_id").Int()
	return &bot.MessageEvent{Message: m, Raw: raw}
}

// fromSegment 转换单个消息段, source 用于为回复引用构造同会话的占位源消息
func fromSegment(seg gjson.Result, source func([]bot.Entity) *bot.Message) bot.Entity {
	data := seg.Get("data")
	switch seg.Get("type").Str {
	case "text":
		if text := data.Get("text"); text.Exists() {
			return &bot.TextEntity{Text: text.Str}
		}
	case "at":
		if qq := data.Get("qq"); qq.Exists() {
			return &bot.MentionEntity{Target: qq.Int()}
		}
	case "mention_all":
		return &bot.MentionEntity{Target: 0}
	case "reply":
		if !data.Exists() {
			return &bot.TextEntity{Text: "[回复]"}
		}
		src := source(nil)
		src.Sequence = firstInt(data, "message_id", "id", "seq")
		return &bot.ReplyEntity{Source: src}
	case "forward":
		return &bot.TextEntity{Text: "[转发] " + data.Get("id").Str}
	case "image":
		if url := firstString(data, "url", "temp_url", "file.url"); url != "" {
			return &bot.TextEntity{Text: "[图片] " + url}
		}
		return &bot.TextEntity{Text: "[图片]"}
	case "file":
		if name := firstString(data, "name", "file.name", "url"); name != "" {
			return &bot.TextEntity{Text: "[文件] " + name}
		}
		return &bot.TextEntity{Text: "[文件]"}
	}
	return &bot.TextEntity{Text: seg.Raw}
}

func fromMetaEvent(j gjson.Result) bot.Event {
	raw := j.Get("raw_event")
	switch raw.Get("type").Str {
	case "offline":
		// 上游原始原因无法还原, 统一为 disconnected
		return &bot.OfflineEvent{Reason: "disconnected"}
	case "group_increase":
		return &bot.MemberIncreaseEvent{
			GroupID:    raw.Get("group_id").Int(),
			UserID:     raw.Get("user_id").Int(),
			OperatorID: raw.Get("operator_id").Int(),
		}
	case "group_decrease":
		return &bot.MemberDecreaseEvent{
			GroupID:    raw.Get("group_id").Int(),
			UserID:     raw.Get("user_id").Int(),
			OperatorID: raw.Get("operator_id").Int(),
		}
	}
	return nil
}

func firstString(j gjson.Result, keys ...string) string {
	for _, key := range keys {
		if v := j.Get(key); v.Exists() && v.Str != "" {
			return v.Str
		}
	}
	return ""
}

func firstInt(j gjson.Result, keys ...string) int64 {
	for _, key := range keys {
		if v := j.Get(key); v.Exists() {
			return v.Int()
		}
	}
	return 0
}
