package bot

import "github.com/LagrangeDev/obridge/global"

// Client 桥接所需的机器人运行时操作面
type Client interface {
	SelfID() int64
	Online() bool
	SendGroupMessage(groupID int64, text string) (int64, error)
	SendPrivateMessage(userID int64, text string) (int64, error)
	GetMessage(messageType string, peerID, seq int64) (global.MSG, error)
	RecallGroupMessage(groupID, seq int64) error
	RecallPrivateMessage(userID, seq int64) error
	FriendList() ([]global.MSG, error)
	GroupList() ([]global.MSG, error)
}
