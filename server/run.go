package server

import (
	"context"
	"net"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/LagrangeDev/obridge/bot"
	"github.com/LagrangeDev/obridge/modules/api"
	"github.com/LagrangeDev/obridge/modules/config"
	"github.com/LagrangeDev/obridge/onebot"
)

// Bridge 桥的对外服务集合
type Bridge struct {
	srv *http.Server
	ws  *wsServer
	rws *wsReverseClient
}

// Run 根据配置装配并启动各项服务
func Run(cli bot.Client, bus *bot.Bus, conv *onebot.Converter, conf *config.Config) (*Bridge, error) {
	b := &Bridge{}
	mux := http.NewServeMux()
	if conf.Server.HTTPEnabled {
		caller := api.NewCaller(cli)
		if conf.RateLimit.Enabled {
			caller.Use(rateLimit(conf.RateLimit.Frequency, conf.RateLimit.Bucket))
		}
		mux.Handle(conf.Server.Prefix+"v11/", newAPIServer(caller, conf.Server.AccessToken))
	}
	if conf.Server.WSEnabled {
		path := conf.Server.Prefix + "ws"
		b.ws = newWSServer(conv, conf.Server.AccessToken, path)
		bus.Subscribe(b.ws.onBotPushEvent)
		mux.Handle(path, b.ws)
	}
	if conf.Reverse.Enabled {
		b.rws = newWSReverseClient(bus, conv, &conf.Reverse)
		b.rws.Start()
	}
	addr := net.JoinHostPort(conf.Server.Host, strconv.Itoa(conf.Server.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "监听 %v 失败", addr)
	}
	b.srv = &http.Server{Handler: mux}
	go func() {
		if err := b.srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Errorf("服务运行时出现错误: %v", err)
		}
	}()
	log.Infof("服务已启动: %v", addr)
	return b, nil
}

// Shutdown 按反向连接、HTTP、推送连接的顺序优雅退出
func (b *Bridge) Shutdown(ctx context.Context) {
	if b.rws != nil {
		b.rws.Stop(ctx)
	}
	if b.srv != nil {
		if err := b.srv.Shutdown(ctx); err != nil {
			log.Warnf("关闭服务时出现错误: %v", err)
		}
	}
	if b.ws != nil {
		b.ws.Shutdown(ctx)
	}
}
