package onebot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/LagrangeDev/obridge/bot"
)

func testConverter() *Converter {
	return NewConverter(func() int64 { return 10000 })
}

func TestToPostEventGroupMessage(t *testing.T) {
	conv := testConverter()
	m := bot.NewGroupMessage(9999, 1234, time.Unix(1700000000, 0), []bot.Entity{
		&bot.TextEntity{Text: "hello "},
		&bot.MentionEntity{Target: 5678},
	})
	m.Sequence = 42
	ev := conv.ToPostEvent(&bot.MessageEvent{Message: m})
	require.NotNil(t, ev)
	assert.Equal(t, "message", ev.PostType)
	assert.Equal(t, "group", ev.MessageType)
	assert.Equal(t, "normal", ev.SubType)
	assert.EqualValues(t, 9999, ev.GroupID)
	assert.EqualValues(t, 1234, ev.UserID)
	assert.EqualValues(t, 42, ev.MessageID)
	assert.EqualValues(t, 10000, ev.SelfID)

	segments := ev.Message.([]Segment)
	require.Len(t, segments, 2)
	assert.Equal(t, Text("hello "), segments[0])
	assert.Equal(t, At(5678), segments[1])
}

func TestToPostEventPrivateMessage(t *testing.T) {
	conv := testConverter()
	m := bot.NewFriendMessage(1234, 10000, time.Unix(1700000000, 0), []bot.Entity{
		&bot.TextEntity{Text: "hi"},
	})
	ev := conv.ToPostEvent(&bot.MessageEvent{Message: m})
	assert.Equal(t, "private", ev.MessageType)
	assert.Equal(t, "friend", ev.SubType)
	assert.EqualValues(t, 1234, ev.UserID)
	assert.EqualValues(t, 0, ev.GroupID)
}

func TestToPostEventSegments(t *testing.T) {
	source := bot.NewGroupMessage(1, 2, time.Unix(0, 0), nil)
	source.Sequence = 7
	tests := []struct {
		entity   bot.Entity
		expected Segment
	}{
		{&bot.ReplyEntity{Source: source}, Reply(7)},
		{&bot.ForwardEntity{ResID: "res123"}, Forward("res123")},
		{&bot.ForwardEntity{}, Text("[转发]")},
		{&bot.ImageEntity{URL: "https://img.example/1.png", Summary: "[图片]"}, Image("https://img.example/1.png", "[图片]")},
		{&bot.ImageEntity{Summary: "[动画表情]"}, Text("[动画表情]")},
		{&bot.ImageEntity{}, Text("[图片]")},
		{&bot.VideoEntity{Preview: "v.mp4"}, Text("[视频] v.mp4")},
		{&bot.RecordEntity{Preview: "3s"}, Text("[语音] 3s")},
		{&bot.MentionEntity{Target: 0}, At(0)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, toSegment(tt.entity))
	}
}

func TestToPostEventMeta(t *testing.T) {
	conv := testConverter()
	ev := conv.ToPostEvent(&bot.OfflineEvent{Reason: "kicked"})
	assert.Equal(t, "meta_event", ev.PostType)
	raw := ev.RawEvent.(map[string]interface{})
	assert.Equal(t, "offline", raw["type"])
	assert.Equal(t, "kicked", raw["reason"])
}

func TestToPostEventUnknown(t *testing.T) {
	conv := testConverter()
	ev := conv.ToPostEvent(&bot.MemberIncreaseEvent{GroupID: 1, UserID: 2})
	assert.Equal(t, "unknown", ev.PostType)
	assert.EqualValues(t, 10000, ev.SelfID)
}

func TestFromPostEventStringMessage(t *testing.T) {
	conv := testConverter()
	raw := []byte(`{"post_type":"message","message_type":"group","group_id":9999,"user_id":1234,"message_id":5,"time":1700000000,"message":"hello"}`)
	e := conv.FromPostEvent(gjson.ParseBytes(raw), raw)
	me, ok := e.(*bot.MessageEvent)
	require.True(t, ok)
	assert.Equal(t, bot.Group, me.Message.Type)
	assert.EqualValues(t, 9999, me.Message.Peer)
	assert.EqualValues(t, 1234, me.Message.Sender)
	assert.EqualValues(t, 5, me.Message.Sequence)
	require.Len(t, me.Message.Entities, 1)
	assert.Equal(t, &bot.TextEntity{Text: "hello"}, me.Message.Entities[0])
	assert.Equal(t, raw, me.Raw)
}

func TestFromPostEventSegments(t *testing.T) {
	conv := testConverter()
	raw := []byte(`{"post_type":"message","message_type":"group","group_id":9999,"user_id":1234,"time":1700000000,"message":[
		{"type":"text","data":{"text":"hey "}},
		{"type":"at","data":{"qq":10000}},
		{"type":"mention_all","data":{}},
		{"type":"reply","data":{"message_id":77}},
		{"type":"forward","data":{"id":"resid"}},
		{"type":"image","data":{"temp_url":"https://img.example/t.png","summary":"[图片]"}},
		{"type":"file","data":{"name":"a.txt"}}
	]}`)
	e := conv.FromPostEvent(gjson.ParseBytes(raw), raw)
	me, ok := e.(*bot.MessageEvent)
	require.True(t, ok)
	ents := me.Message.Entities
	require.Len(t, ents, 7)
	assert.Equal(t, &bot.TextEntity{Text: "hey "}, ents[0])
	assert.Equal(t, &bot.MentionEntity{Target: 10000}, ents[1])
	assert.Equal(t, &bot.MentionEntity{Target: 0}, ents[2])
	reply, ok := ents[3].(*bot.ReplyEntity)
	require.True(t, ok)
	assert.EqualValues(t, 77, reply.Source.Sequence)
	assert.Equal(t, bot.Group, reply.Source.Type)
	assert.EqualValues(t, 9999, reply.Source.Peer)
	assert.Equal(t, &bot.TextEntity{Text: "[转发] resid"}, ents[4])
	assert.Equal(t, &bot.TextEntity{Text: "[图片] https://img.example/t.png"}, ents[5])
	assert.Equal(t, &bot.TextEntity{Text: "[文件] a.txt"}, ents[6])
}

func TestFromPostEventDegradedSegments(t *testing.T) {
	conv := testConverter()
	raw := []byte(`{"post_type":"message","message_type":"private","user_id":1,"time":1,"message":[
		{"type":"image","data":{}},
		{"type":"file","data":{}},
		{"type":"reply"},
		{"type":"poke","data":{"id":1}}
	]}`)
	e := conv.FromPostEvent(gjson.ParseBytes(raw), raw)
	me := e.(*bot.MessageEvent)
	ents := me.Message.Entities
	require.Len(t, ents, 4)
	assert.Equal(t, &bot.TextEntity{Text: "[图片]"}, ents[0])
	assert.Equal(t, &bot.TextEntity{Text: "[文件]"}, ents[1])
	assert.Equal(t, &bot.TextEntity{Text: "[回复]"}, ents[2])
	text, ok := ents[3].(*bot.TextEntity)
	require.True(t, ok)
	assert.Contains(t, text.Text, "poke")
}

func TestFromPostEventMeta(t *testing.T) {
	conv := testConverter()
	tests := []struct {
		name string
		raw  string
		want bot.Event
	}{
		{"offline", `{"post_type":"meta_event","raw_event":{"type":"offline","reason":"kicked"}}`, &bot.OfflineEvent{Reason: "disconnected"}},
		{"offline 无原因", `{"post_type":"meta_event","raw_event":{"type":"offline"}}`, &bot.OfflineEvent{Reason: "disconnected"}},
		{"increase", `{"post_type":"meta_event","raw_event":{"type":"group_increase","group_id":1,"user_id":2,"operator_id":3}}`, &bot.MemberIncreaseEvent{GroupID: 1, UserID: 2, OperatorID: 3}},
		{"decrease", `{"post_type":"meta_event","raw_event":{"type":"group_decrease","group_id":1,"user_id":2}}`, &bot.MemberDecreaseEvent{GroupID: 1, UserID: 2}},
		{"unknown meta", `{"post_type":"meta_event","raw_event":{"type":"heartbeat"}}`, nil},
		{"unknown post", `{"post_type":"notice"}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := conv.FromPostEvent(gjson.Parse(tt.raw), []byte(tt.raw))
			assert.Equal(t, tt.want, e)
		})
	}
}

func TestRoundTripAllEntities(t *testing.T) {
	conv := testConverter()
	source := bot.NewGroupMessage(9999, 5678, time.Unix(0, 0), nil)
	source.Sequence = 7
	m := bot.NewGroupMessage(9999, 1234, time.Unix(1700000000, 0), []bot.Entity{
		&bot.TextEntity{Text: "plain"},
		&bot.MentionEntity{Target: 5678},
		&bot.ReplyEntity{Source: source},
		&bot.ForwardEntity{ResID: "res123"},
		&bot.ImageEntity{URL: "https://img.example/1.png"},
		&bot.VideoEntity{Preview: "v.mp4"},
		&bot.RecordEntity{Preview: "3s"},
	})
	body := conv.ToPostEvent(&bot.MessageEvent{Message: m}).JSONBytes()
	require.NotNil(t, body)

	e := conv.FromPostEvent(gjson.ParseBytes(body), body)
	me, ok := e.(*bot.MessageEvent)
	require.True(t, ok)
	ents := me.Message.Entities
	require.Len(t, ents, 7)
	assert.Equal(t, &bot.TextEntity{Text: "plain"}, ents[0])
	assert.Equal(t, &bot.MentionEntity{Target: 5678}, ents[1])
	reply, ok := ents[2].(*bot.ReplyEntity)
	require.True(t, ok)
	assert.EqualValues(t, 7, reply.Source.Sequence)
	markers := []string{"[转发]", "[图片]", "[视频]", "[语音]"}
	for i, marker := range markers {
		text, ok := ents[3+i].(*bot.TextEntity)
		require.True(t, ok)
		assert.Contains(t, text.Text, marker)
	}
}

func TestRoundTrip(t *testing.T) {
	conv := testConverter()
	raw := []byte(`{"post_type":"message","message_type":"group","group_id":9999,"user_id":1234,"message_id":8,"time":1700000000,"message":[
		{"type":"text","data":{"text":"hello "}},
		{"type":"at","data":{"qq":10000}}
	]}`)
	e := conv.FromPostEvent(gjson.ParseBytes(raw), raw)
	me := e.(*bot.MessageEvent)

	ev := conv.ToPostEvent(me)
	assert.Equal(t, "message", ev.PostType)
	assert.EqualValues(t, 9999, ev.GroupID)
	assert.EqualValues(t, 1234, ev.UserID)
	assert.EqualValues(t, 8, ev.MessageID)
	segments := ev.Message.([]Segment)
	require.Len(t, segments, 2)
	assert.Equal(t, Text("hello "), segments[0])
	assert.Equal(t, At(10000), segments[1])

	body := ev.JSONBytes()
	require.NotNil(t, body)
	j := gjson.ParseBytes(body)
	assert.Equal(t, "hello ", j.Get("message.0.data.text").Str)
	assert.EqualValues(t, 10000, j.Get("message.1.data.qq").Int())
}
