// Package onebot 实现 OneBot v11 事件载体与运行时实体的双向转换。
package onebot

import (
	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// PostEvent OneBot v11 上报事件载体
//
// message 字段为 string 或 segment 数组, 转换失败时缺失。
type PostEvent struct {
	PostType    string      `json:"post_type"`
	Time        int64       `json:"time"`
	SelfID      int64       `json:"self_id"`
	MessageType string      `json:"message_type,omitempty"`
	SubType     string      `json:"sub_type,omitempty"`
	MessageID   int64       `json:"message_id,omitempty"`
	UserID      int64       `json:"user_id,omitempty"`
	GroupID     int64       `json:"group_id,omitempty"`
	Message     interface{} `json:"message,omitempty"`
	RawEvent    interface{} `json:"raw_event,omitempty"`
}

// JSONBytes 序列化为 JSON, 失败时返回 nil
func (e *PostEvent) JSONBytes() []byte {
	b, err := json.Marshal(e)
	if err != nil {
		log.Warnf("序列化上报事件时出现错误: %v", err)
		return nil
	}
	return b
}
