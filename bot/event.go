package bot

// Event 运行时事件, 为封闭集合
type Event interface {
	event()
}

// MessageEvent 消息事件, Raw 保留产生该事件的原始报文(如有)
type MessageEvent struct {
	Message *Message
	Raw     []byte
}

// OfflineEvent 掉线事件
type OfflineEvent struct {
	Reason string
}

// MemberIncreaseEvent 群成员增加事件
type MemberIncreaseEvent struct {
	GroupID    int64
	UserID     int64
	OperatorID int64
}

// MemberDecreaseEvent 群成员减少事件
type MemberDecreaseEvent struct {
	GroupID    int64
	UserID     int64
	OperatorID int64
}

func (*MessageEvent) event()        {}
func (*OfflineEvent) event()        {}
func (*MemberIncreaseEvent) event() {}
func (*MemberDecreaseEvent) event() {}
