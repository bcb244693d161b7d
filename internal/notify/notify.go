package notify

import (
	"encoding/gob"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

type Level string

const (
	Info    Level = "info"
	Success Level = "success"
	Warning Level = "warning"
	Error   Level = "error"
)

type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Notifier receives user-facing messages produced while handling a request.
type Notifier interface {
	Notify(level Level, text string)
}

// Collector buffers the messages of one request.
type Collector struct {
	messages []Message
}

func (c *Collector) Notify(level Level, text string) {
	c.messages = append(c.messages, Message{Level: level, Text: text})
}

func (c *Collector) Messages() []Message {
	if c == nil || c.messages == nil {
		return []Message{}
	}
	return c.messages
}

// Discard drops every message.
type Discard struct{}

func (Discard) Notify(Level, string) {}

func init() {
	gob.Register(Message{})
}

const (
	sessionName  = "djbooks_messages"
	collectorKey = "notify.collector"
)

// Flashes carries messages across a redirect in a signed cookie session.
type Flashes struct {
	store  sessions.Store
	logger *zap.Logger
}

func NewCookieStore(secret string) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func NewFlashes(store sessions.Store, logger *zap.Logger) *Flashes {
	return &Flashes{store: store, logger: logger}
}

// Middleware gives every request its own Collector.
func (f *Flashes) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(collectorKey, &Collector{})
		c.Next()
	}
}

// FromContext returns the request's Collector, creating one when the
// middleware did not run.
func FromContext(c *gin.Context) *Collector {
	if v, ok := c.Get(collectorKey); ok {
		if coll, ok := v.(*Collector); ok {
			return coll
		}
	}
	coll := &Collector{}
	c.Set(collectorKey, coll)
	return coll
}

// Persist moves the request's messages into the session so the next request
// can read them. Call it before writing a redirect.
func (f *Flashes) Persist(c *gin.Context) {
	msgs := FromContext(c).Messages()
	if len(msgs) == 0 {
		return
	}

	session, err := f.store.Get(c.Request, sessionName)
	if err != nil {
		f.logger.Warn("flash session unreadable, starting a new one", zap.Error(err))
	}
	for _, m := range msgs {
		session.AddFlash(m)
	}
	if err := session.Save(c.Request, c.Writer); err != nil {
		f.logger.Error("failed to save flash messages", zap.Error(err))
	}
}

// Drain returns and clears the messages queued by earlier requests.
func (f *Flashes) Drain(c *gin.Context) []Message {
	session, err := f.store.Get(c.Request, sessionName)
	if err != nil {
		return []Message{}
	}

	flashes := session.Flashes()
	msgs := make([]Message, 0, len(flashes))
	for _, fl := range flashes {
		if m, ok := fl.(Message); ok {
			msgs = append(msgs, m)
		}
	}
	if len(flashes) > 0 {
		if err := session.Save(c.Request, c.Writer); err != nil {
			f.logger.Error("failed to clear flash messages", zap.Error(err))
		}
	}
	return msgs
}
