package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSendAndGet(t *testing.T) {
	cli := NewLocal(10000)
	seq, err := cli.SendGroupMessage(20000, "hello")
	require.NoError(t, err)
	assert.EqualValues(t, 1, seq)

	msg, err := cli.GetMessage("group", 20000, seq)
	require.NoError(t, err)
	assert.EqualValues(t, 20000, msg["peer_id"])
	assert.Equal(t, "hello", msg["message"])

	_, err = cli.GetMessage("group", 20000, 999)
	assert.Error(t, err)
}

func TestLocalRecall(t *testing.T) {
	cli := NewLocal(10000)
	seq, err := cli.SendPrivateMessage(30000, "hi")
	require.NoError(t, err)
	require.NoError(t, cli.RecallPrivateMessage(30000, seq))
	assert.Error(t, cli.RecallPrivateMessage(30000, seq))
	_, err = cli.GetMessage("private", 30000, seq)
	assert.Error(t, err)
}

func TestLocalOffline(t *testing.T) {
	bus := NewBus()
	cli := NewLocal(10000)
	cli.Attach(bus)
	assert.True(t, cli.Online())

	bus.Post(&OfflineEvent{Reason: "kicked"})
	assert.Eventually(t, func() bool { return !cli.Online() }, time.Second, time.Millisecond*10)

	_, err := cli.SendGroupMessage(1, "x")
	assert.Error(t, err)
}
