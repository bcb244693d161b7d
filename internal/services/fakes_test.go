package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"djbooks_back_end/internal/cache"
	"djbooks_back_end/internal/events"
	"djbooks_back_end/internal/gateway"
	"djbooks_back_end/internal/models"
	"djbooks_back_end/internal/notify"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap/zaptest"
)

func newTestCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.New(client, zaptest.NewLogger(t)), mr
}

func texts(c *notify.Collector) []string {
	out := []string{}
	for _, m := range c.Messages() {
		out = append(out, m.Text)
	}
	return out
}

type recordedUpdate struct {
	userID  string
	payload any
}

type fakeCartPublisher struct {
	mu      sync.Mutex
	updates []recordedUpdate
}

func (p *fakeCartPublisher) PublishCartUpdate(ctx context.Context, userID string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, recordedUpdate{userID: userID, payload: payload})
	return nil
}

type fakeEvents struct {
	mu     sync.Mutex
	events []events.OrderEvent
}

func (f *fakeEvents) Publish(ctx context.Context, e events.OrderEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

type fakeGateway struct {
	preference gateway.Preference
	prefErr    error
	statuses   map[string]models.PaymentStatus
	lookups    int
}

func (g *fakeGateway) CreatePreference(ctx context.Context, order models.Order) (gateway.Preference, error) {
	return g.preference, g.prefErr
}

func (g *fakeGateway) LookupPayment(ctx context.Context, chargeID string) (models.PaymentStatus, error) {
	g.lookups++
	st, ok := g.statuses[chargeID]
	if !ok {
		return models.PaymentStatus{}, &models.GatewayError{Op: "lookup payment", StatusCode: 404, Err: models.ErrNotFound}
	}
	return st, nil
}

type sentMail struct {
	to      string
	refCode string
}

type fakeMailer struct {
	confirmations []sentMail
	requests      []models.BookRequest
}

func (m *fakeMailer) SendOrderConfirmation(ctx context.Context, to string, order models.Order) error {
	m.confirmations = append(m.confirmations, sentMail{to: to, refCode: order.RefCode})
	return nil
}

func (m *fakeMailer) SendBookRequest(ctx context.Context, req models.BookRequest) error {
	m.requests = append(m.requests, req)
	return nil
}

type fakeIndex struct {
	ids     []int64
	err     error
	indexed []models.Book
}

func (f *fakeIndex) IndexBook(ctx context.Context, b models.Book) error {
	f.indexed = append(f.indexed, b)
	return f.err
}

func (f *fakeIndex) SearchBookIDs(ctx context.Context, query string, limit int) ([]int64, error) {
	return f.ids, f.err
}

type fakeStorage struct {
	keys    []string
	signErr error
}

func (s *fakeStorage) SignedURL(ctx context.Context, object string, duration time.Duration) (string, error) {
	if s.signErr != nil {
		return "", s.signErr
	}
	return fmt.Sprintf("%s?X-Amz-Expires=%d", object, int(duration.Seconds())), nil
}

func (s *fakeStorage) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	s.keys = append(s.keys, key)
	return "http://minio.local/djbooks-images/" + key, nil
}

type memWishlist struct {
	items map[string][]int64
}

func (m *memWishlist) Add(ctx context.Context, userID string, bookID int64, at time.Time) error {
	for _, id := range m.items[userID] {
		if id == bookID {
			return nil
		}
	}
	m.items[userID] = append([]int64{bookID}, m.items[userID]...)
	return nil
}

func (m *memWishlist) Remove(ctx context.Context, userID string, bookID int64) error {
	ids := m.items[userID]
	for i, id := range ids {
		if id == bookID {
			m.items[userID] = append(ids[:i:i], ids[i+1:]...)
		}
	}
	return nil
}

func (m *memWishlist) BookIDs(ctx context.Context, userID string) ([]int64, error) {
	return append([]int64{}, m.items[userID]...), nil
}
