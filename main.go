// obridge 在 OneBot v11 应用端与消息运行时之间双向桥接。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/mattn/go-colorable"
	log "github.com/sirupsen/logrus"
	easy "github.com/t-tomalak/logrus-easy-formatter"

	"github.com/LagrangeDev/obridge/bot"
	"github.com/LagrangeDev/obridge/global"
	"github.com/LagrangeDev/obridge/modules/config"
	"github.com/LagrangeDev/obridge/onebot"
	"github.com/LagrangeDev/obridge/server"
)

var (
	conf  *config.Config
	debug bool
)

func main() {
	var confPath string
	var help bool
	flag.StringVar(&confPath, "c", "config.yml", "配置文件路径")
	flag.BoolVar(&debug, "D", false, "开启 debug 模式")
	flag.BoolVar(&help, "h", false, "显示帮助信息")
	flag.Parse()

	if help {
		fmt.Printf(`obridge 服务
usage: %s [-c 配置文件路径] [-D] [-h]
`, os.Args[0])
		flag.PrintDefaults()
		os.Exit(0)
	}

	var err error
	conf, err = config.Parse(confPath)
	if err != nil {
		log.SetFormatter(global.LogFormat{})
		log.Fatalf("加载配置文件失败: %v", err)
	}
	if debug {
		conf.Output.Debug = true
	}
	initLog()

	bus := bot.NewBus()
	cli := bot.NewLocal(conf.Account.Uin)
	cli.Attach(bus)
	conv := onebot.NewConverter(cli.SelfID)

	b, err := server.Run(cli, bus, conv, conf)
	if err != nil {
		log.Fatalf("启动服务失败: %v", err)
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	<-ch
	log.Info("正在退出...")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	b.Shutdown(ctx)
}

func initLog() {
	logFormatter := &easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05",
		LogFormat:       "[%time%] [%lvl%]: %msg% \n",
	}
	rotateOptions := []rotatelogs.Option{
		rotatelogs.WithRotationTime(time.Hour * 24),
	}
	if conf.Output.LogAging > 0 {
		rotateOptions = append(rotateOptions, rotatelogs.WithMaxAge(time.Duration(conf.Output.LogAging)*time.Hour*24))
	}
	w, err := rotatelogs.New(path.Join("logs", "%Y-%m-%d.log"), rotateOptions...)
	if err != nil {
		log.Errorf("创建日志文件时出现错误: %v", err)
	}

	consoleFormatter := global.LogFormat{}
	if conf.Output.Debug {
		log.SetReportCaller(true)
	}
	log.SetFormatter(consoleFormatter)
	log.SetOutput(colorable.NewColorableStdout())
	level := conf.Output.LogLevel
	if conf.Output.Debug {
		level = "debug"
	}
	levels := global.GetLogLevel(level)
	log.SetLevel(levels[len(levels)-1])
	if w != nil {
		log.AddHook(global.NewLocalHook(w, logFormatter, levels...))
	}
}
