package bot

import (
	"runtime/debug"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Bus 事件总线, 连接运行时与各服务
type Bus struct {
	mu       sync.RWMutex
	handlers []func(Event)
}

// NewBus ...
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe 注册事件处理函数
func (b *Bus) Subscribe(fn func(Event)) {
	b.mu.Lock()
	b.handlers = append(b.handlers, fn)
	b.mu.Unlock()
}

// Post 将事件异步分发给所有处理函数
func (b *Bus) Post(e Event) {
	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()
	for _, f := range handlers {
		go func(fn func(Event)) {
			defer func() {
				if pan := recover(); pan != nil {
					log.Warnf("处理事件 %v 时出现错误: %v \n%s", e, pan, debug.Stack())
				}
			}()
			start := time.Now()
			fn(e)
			if d := time.Since(start); d > time.Second*5 {
				log.Debugf("警告: 事件处理耗时超过 5 秒 (%v), 请检查应用是否有堵塞.", d)
			}
		}(f)
	}
}
