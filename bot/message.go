package bot

import "time"

// MessageType 消息会话类型
type MessageType int

// 会话类型
const (
	Private MessageType = iota
	Group
)

// Message 一条消息的运行时视图
type Message struct {
	Type     MessageType
	Sequence int64
	Sender   int64 // 发送者
	Peer     int64 // 群号或好友QQ号
	Self     int64
	Time     time.Time
	Entities []Entity
}

// NewGroupMessage 构造一条群消息, 也用于构造回复引用的占位源消息
func NewGroupMessage(groupID, senderID int64, t time.Time, entities []Entity) *Message {
	return &Message{
		Type:     Group,
		Peer:     groupID,
		Sender:   senderID,
		Time:     t,
		Entities: entities,
	}
}

// NewFriendMessage 构造一条好友消息
func NewFriendMessage(userID, selfID int64, t time.Time, entities []Entity) *Message {
	return &Message{
		Type:     Private,
		Peer:     userID,
		Sender:   userID,
		Self:     selfID,
		Time:     t,
		Entities: entities,
	}
}
