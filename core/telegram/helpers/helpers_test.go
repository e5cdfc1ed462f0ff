package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/autoservice-bot/core/logger"
)

// fakeContext implements the tele.Context methods the helpers touch.
// Calling anything else panics on the nil embedded interface.
type fakeContext struct {
	tele.Context
	update tele.Update
	store  map[string]any
	sent   []any
	opts   []*tele.SendOptions
	edits  int
}

func newFake(updateID int, chatID, userID int64) *fakeContext {
	msg := &tele.Message{Chat: &tele.Chat{ID: chatID}, Sender: &tele.User{ID: userID}}
	return &fakeContext{update: tele.Update{ID: updateID, Message: msg}, store: map[string]any{}}
}

func (f *fakeContext) Update() tele.Update { return f.update }
func (f *fakeContext) Chat() *tele.Chat { return f.update.Message.Chat }
func (f *fakeContext) Sender() *tele.User { return f.update.Message.Sender }
func (f *fakeContext) Get(k string) any { return f.store[k] }
func (f *fakeContext) Set(k string, v any) { f.store[k] = v }

func (f *fakeContext) Send(what any, opts ...any) error {
	f.sent = append(f.sent, what)
	for _, o := range opts {
		if so, ok := o.(*tele.SendOptions); ok {
			f.opts = append(f.opts, so)
		}
	}
	return nil
}

func (f *fakeContext) EditOrSend(what any, opts ...any) error {
	f.edits++
	return f.Send(what, opts...)
}

func TestBuildContextOnce(t *testing.T) {
	c := newFake(10, 20, 30)
	ctx := BuildContext(c)
	assert.Equal(t, "10:20:30", logger.RIDFrom(ctx))
	assert.Equal(t, int64(30), logger.UserIDFrom(ctx))
	assert.Equal(t, int64(20), logger.ChatIDFrom(ctx))

	ctx2 := WithHandler(c, "callback.menu")
	assert.Equal(t, "callback.menu", logger.HandlerFrom(ctx2))
	cached, ok := ContextFrom(c)
	require.True(t, ok)
	assert.Equal(t, ctx2, cached)
}

func TestSendHelpersInline(t *testing.T) {
	SetDispatcher(nil)
	c := newFake(1, 2, 3)
	markup := &tele.ReplyMarkup{}

	require.NoError(t, SendHTML(c, "<b>hi</b>", nil))
	require.NoError(t, EditOrSendHTML(c, "menu", markup))

	assert.Equal(t, []any{"<b>hi</b>", "menu"}, c.sent)
	require.Len(t, c.opts, 2)
	assert.Equal(t, tele.ModeHTML, c.opts[0].ParseMode)
	assert.Nil(t, c.opts[0].ReplyMarkup)
	assert.Same(t, markup, c.opts[1].ReplyMarkup)
	assert.Equal(t, 1, c.edits)

	msgs, kb := Counters(c)
	assert.Equal(t, 2, msgs)
	assert.True(t, kb)
}

func TestCountersEmpty(t *testing.T) {
	msgs, kb := Counters(newFake(1, 1, 1))
	assert.Zero(t, msgs)
	assert.False(t, kb)
}
