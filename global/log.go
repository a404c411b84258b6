package global

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogFormat specialize for obridge
type LogFormat struct{}

// Format implements logrus.Formatter
func (f LogFormat) Format(entry *logrus.Entry) ([]byte, error) {
	buf := NewBuffer()
	defer PutBuffer(buf)

	buf.WriteByte('[')
	buf.WriteString(entry.Time.Format("2006-01-02 15:04:05"))
	buf.WriteString("] [")
	buf.WriteString(strings.ToUpper(entry.Level.String()))
	buf.WriteString("]: ")
	buf.WriteString(entry.Message)
	buf.WriteString(" \n")

	ret := append([]byte(nil), buf.Bytes()...) // copy buffer
	return ret, nil
}

// LocalHook logrus本地钩子, 用于将日志同时写入文件
type LocalHook struct {
	levels    []logrus.Level
	formatter logrus.Formatter
	writer    io.Writer
}

// Levels impl logrus.Hook interface
func (hook *LocalHook) Levels() []logrus.Level {
	return hook.levels
}

// Fire impl logrus.Hook interface
func (hook *LocalHook) Fire(entry *logrus.Entry) error {
	b, err := hook.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = hook.writer.Write(b)
	return err
}

// NewLocalHook 初始化本地日志钩子实现
func NewLocalHook(writer io.Writer, formatter logrus.Formatter, levels ...logrus.Level) *LocalHook {
	return &LocalHook{
		levels:    levels,
		formatter: formatter,
		writer:    writer,
	}
}

// GetLogLevel 获取日志等级对应的 logrus 等级列表
//
// 可能的值有 "trace","debug","info","warn","error"
func GetLogLevel(level string) []logrus.Level {
	switch strings.ToLower(level) {
	case "trace":
		return logrus.AllLevels
	case "debug":
		return logrus.AllLevels[:logrus.DebugLevel+1]
	case "warn":
		return logrus.AllLevels[:logrus.WarnLevel+1]
	case "error":
		return logrus.AllLevels[:logrus.ErrorLevel+1]
	default:
		return logrus.AllLevels[:logrus.InfoLevel+1]
	}
}
