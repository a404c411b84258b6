// Package global 提供各包共用的基础设施
package global

// MSG 消息Map
type MSG = map[string]interface{}
