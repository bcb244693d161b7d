package notify

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestCollector(t *testing.T) {
	var nilColl *Collector
	assert.Empty(t, nilColl.Messages())

	c := &Collector{}
	c.Notify(Info, "This item was added to your cart.")
	c.Notify(Warning, "lo sentimos")
	assert.Equal(t, []Message{{Info, "This item was added to your cart."}, {Warning, "lo sentimos"}}, c.Messages())
}

func TestFlashes_PersistThenDrain(t *testing.T) {
	gin.SetMode(gin.TestMode)
	flashes := NewFlashes(NewCookieStore("0123456789abcdef0123456789abcdef"), zaptest.NewLogger(t))

	router := gin.New()
	router.Use(flashes.Middleware())
	router.GET("/redirect", func(c *gin.Context) {
		FromContext(c).Notify(Success, "Pago recibido")
		flashes.Persist(c)
		c.Redirect(http.StatusFound, "/")
	})
	router.GET("/messages", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"messages": flashes.Drain(c)})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/redirect", nil))
	require.Equal(t, http.StatusFound, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/messages", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.JSONEq(t, `{"messages":[{"level":"success","text":"Pago recibido"}]}`, w.Body.String())

	// Draining clears the session.
	cleared := w.Result().Cookies()
	req = httptest.NewRequest(http.MethodGet, "/messages", nil)
	for _, ck := range cleared {
		req.AddCookie(ck)
	}
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.JSONEq(t, `{"messages":[]}`, w.Body.String())
}
