package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xomakone3/storebot/core/catalog"
	coreconfig "github.com/xomakone3/storebot/core/config"
	"github.com/xomakone3/storebot/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

const testAdminID int64 = 42

// fakeContext implements the slice of tele.Context the handlers touch.
// Calling anything unimplemented panics through the embedded nil interface,
// which is exactly what a test should do.
type fakeContext struct {
	tele.Context

	sender *tele.User
	msg    *tele.Message
	text   string
	args   []string
	cb     *tele.Callback

	store     map[string]any
	sent      []string
	sentOpts  []*tele.SendOptions
	edited    []string
	responded bool
}

func (f *fakeContext) Sender() *tele.User { return f.sender }

func (f *fakeContext) Chat() *tele.Chat {
	if f.sender == nil {
		return nil
	}
	return &tele.Chat{ID: f.sender.ID}
}

func (f *fakeContext) Update() tele.Update { return tele.Update{ID: 1} }

func (f *fakeContext) Message() *tele.Message { return f.msg }

func (f *fakeContext) Text() string { return f.text }

func (f *fakeContext) Args() []string { return f.args }

func (f *fakeContext) Callback() *tele.Callback { return f.cb }

func (f *fakeContext) Get(key string) any { return f.store[key] }

func (f *fakeContext) Set(key string, val any) {
	if f.store == nil {
		f.store = make(map[string]any)
	}
	f.store[key] = val
}

func (f *fakeContext) Send(what any, opts ...any) error {
	if s, ok := what.(string); ok {
		f.sent = append(f.sent, s)
	}
	var so *tele.SendOptions
	if len(opts) > 0 {
		so, _ = opts[0].(*tele.SendOptions)
	}
	f.sentOpts = append(f.sentOpts, so)
	return nil
}

func (f *fakeContext) Edit(what any, _ ...any) error {
	if s, ok := what.(string); ok {
		f.edited = append(f.edited, s)
	}
	return nil
}

func (f *fakeContext) EditOrSend(what any, _ ...any) error {
	if s, ok := what.(string); ok {
		f.edited = append(f.edited, s)
	}
	return nil
}

func (f *fakeContext) Respond(_ ...*tele.CallbackResponse) error {
	f.responded = true
	return nil
}

func (f *fakeContext) lastSent() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

func ctxFor(userID int64) *fakeContext {
	return &fakeContext{sender: &tele.User{ID: userID}}
}

func textCtx(userID int64, text string) *fakeContext {
	c := ctxFor(userID)
	c.text = text
	c.msg = &tele.Message{Text: text}
	return c
}

func photoCtx(userID int64) *fakeContext {
	c := ctxFor(userID)
	c.msg = &tele.Message{Photo: &tele.Photo{File: tele.File{FileID: "photo-file"}}}
	return c
}

// newTestApp builds an App over a temp catalog with a download stub that
// writes a placeholder file instead of hitting Telegram.
func newTestApp(t *testing.T) (*App, *catalog.Store) {
	t.Helper()

	dir := t.TempDir()
	st := catalog.NewStore(filepath.Join(dir, "products.json"), filepath.Join(dir, "images"))
	if err := st.EnsureDirs(); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}

	cfg := &coreconfig.Config{}
	cfg.Telegram.AdminID = testAdminID
	cfg.WebApp.URL = "https://store.example/redirect.html"
	cfg.Catalog.File = st.File()
	cfg.Catalog.ImagesDir = st.ImagesDir()

	app := New(cfg, st, state.NewMemoryManager())
	app.download = func(_ tele.Context, _ *tele.File, dst string) error {
		return os.WriteFile(dst, []byte("jpeg-bytes"), 0o644)
	}
	return app, st
}
