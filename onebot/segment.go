package onebot

// Segment OneBot 消息段
type Segment struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type textData struct {
	Text string `json:"text"`
}

type atData struct {
	QQ int64 `json:"qq"`
}

type replyData struct {
	MessageID int64 `json:"message_id"`
	Seq       int64 `json:"seq"`
}

type forwardData struct {
	ID string `json:"id"`
}

type imageData struct {
	URL     string `json:"url"`
	Summary string `json:"summary,omitempty"`
}

// Text 文本段
func Text(text string) Segment {
	return Segment{Type: "text", Data: textData{Text: text}}
}

// At 提及段
func At(qq int64) Segment {
	return Segment{Type: "at", Data: atData{QQ: qq}}
}

// Reply 回复引用段, message_id 与 seq 携带同一序列号
func Reply(seq int64) Segment {
	return Segment{Type: "reply", Data: replyData{MessageID: seq, Seq: seq}}
}

// Forward 合并转发段
func Forward(id string) Segment {
	return Segment{Type: "forward", Data: forwardData{ID: id}}
}

// Image 图片段
func Image(url, summary string) Segment {
	return Segment{Type: "image", Data: imageData{URL: url, Summary: summary}}
}
