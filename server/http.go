// Package server 实现 HTTP API、正向 WebSocket 推送与反向 WebSocket 连接。
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/LagrangeDev/obridge/modules/api"
)

// apiServer 处理 OneBot v11 HTTP API 调用
type apiServer struct {
	api   *api.Caller
	token string
}

func newAPIServer(c *api.Caller, token string) *apiServer {
	return &apiServer{api: c, token: token}
}

type paramsGetter struct {
	params gjson.Result
}

func (p paramsGetter) Get(key string) gjson.Result {
	return p.params.Get(key)
}

func (s *apiServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if status := checkAuth(r, s.token); status != http.StatusOK {
		writeMSG(w, api.Failed(errors.New("unauthorized")))
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil || !gjson.ValidBytes(body) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	j := gjson.ParseBytes(body)
	if !j.IsObject() {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	action := j.Get("action").Str
	if action == "" {
		action = j.Get("api").Str
	}
	log.Debugf("HTTPServer 接收到 API 调用: %v", action)
	writeMSG(w, s.api.Call(action, paramsGetter{params: j.Get("params")}))
}

func writeMSG(w http.ResponseWriter, msg interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Warnf("写入 API 应答时出现错误: %v", err)
	}
}

// checkAuth 校验访问密钥, 返回对应的 http 状态码
func checkAuth(req *http.Request, token string) int {
	if auth := req.Header.Get("Authorization"); auth != "" {
		if !strings.HasPrefix(auth, "Bearer ") && auth != "Bearer" {
			return http.StatusUnauthorized
		}
		got := strings.TrimPrefix(strings.TrimPrefix(auth, "Bearer"), " ")
		if got != token {
			return http.StatusForbidden
		}
		return http.StatusOK
	}
	if token == "" {
		return http.StatusOK
	}
	if req.URL.Query().Get("access_token") == token {
		return http.StatusOK
	}
	return http.StatusUnauthorized
}
