// Package bot 定义桥接所依赖的机器人运行时模型: 消息实体、事件与事件总线。
package bot

import "fmt"

// Entity 消息链中的一个内容单元, 为封闭集合
type Entity interface {
	fmt.Stringer
	entity()
}

// TextEntity 纯文本
type TextEntity struct {
	Text string
}

// MentionEntity 提及某人, Target 为 0 时表示提及全体成员
type MentionEntity struct {
	Target int64
}

// ReplyEntity 回复引用, Source 为被引用的源消息
type ReplyEntity struct {
	Source *Message
}

// ForwardEntity 合并转发, ResID 为解析后的资源id, 可能为空
type ForwardEntity struct {
	ResID string
}

// ImageEntity 图片, URL 可能为空 (资源尚未解析)
type ImageEntity struct {
	URL     string
	Summary string
}

// VideoEntity 视频
type VideoEntity struct {
	Preview string
}

// RecordEntity 语音
type RecordEntity struct {
	Preview string
}

func (*TextEntity) entity()    {}
func (*MentionEntity) entity() {}
func (*ReplyEntity) entity()   {}
func (*ForwardEntity) entity() {}
func (*ImageEntity) entity()   {}
func (*VideoEntity) entity()   {}
func (*RecordEntity) entity()  {}

func (e *TextEntity) String() string { return e.Text }

func (e *MentionEntity) String() string {
	if e.Target == 0 {
		return "@全体成员"
	}
	return fmt.Sprintf("@%d", e.Target)
}

func (e *ReplyEntity) String() string { return "[回复]" }

func (e *ForwardEntity) String() string { return "[转发]" }

func (e *ImageEntity) String() string {
	if e.Summary != "" {
		return e.Summary
	}
	return "[图片]"
}

func (e *VideoEntity) String() string { return "[视频] " + e.Preview }

func (e *RecordEntity) String() string { return "[语音] " + e.Preview }
