package websocket

import (
	"sync"
	"testing"
	"time"

	"github.com/medwelfare/welfare-backend/internal/domain"
)

// fakeClient collects sent messages for assertions
type fakeClient struct {
	id    string
	scope domain.Scope
	mu    sync.Mutex
	sent  [][]byte
}

func (f *fakeClient) ID() string          { return f.id }
func (f *fakeClient) Scope() domain.Scope { return f.scope }
func (f *fakeClient) Close() error        { return nil }

func (f *fakeClient) Send(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, data)
	return nil
}

func (f *fakeClient) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func waitForSent(t *testing.T, c *fakeClient, want int) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		if c.sentCount() == want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("Expected %d messages, got %d", want, c.sentCount())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestBroadcast_ScopeFiltered(t *testing.T) {
	hub := NewHub()

	admin := &fakeClient{id: "admin", scope: domain.Scope{All: true}}
	staff := &fakeClient{id: "staff", scope: domain.Scope{CategoryIDs: []int32{1}}}
	other := &fakeClient{id: "other", scope: domain.Scope{CategoryIDs: []int32{2}}}

	hub.Register(admin)
	hub.Register(staff)
	hub.Register(other)

	hub.Broadcast(1, ClaimCreated(map[string]string{"employeeCode": "E100"}))

	waitForSent(t, admin, 1)
	waitForSent(t, staff, 1)

	// Give the async sends time to land before asserting absence
	time.Sleep(50 * time.Millisecond)
	if other.sentCount() != 0 {
		t.Errorf("Client outside the category scope received %d messages", other.sentCount())
	}
}

func TestBroadcast_AfterUnregister(t *testing.T) {
	hub := NewHub()
	client := &fakeClient{id: "c1", scope: domain.Scope{All: true}}

	hub.Register(client)
	hub.Unregister(client)
	hub.Broadcast(1, ClaimCreated(nil))

	time.Sleep(50 * time.Millisecond)
	if client.sentCount() != 0 {
		t.Errorf("Unregistered client received %d messages", client.sentCount())
	}
	if hub.ClientCount() != 0 {
		t.Errorf("Expected 0 clients, got %d", hub.ClientCount())
	}
}

func TestBroadcast_NoClients(t *testing.T) {
	hub := NewHub()
	// Must not panic or block
	hub.Broadcast(1, ClaimCreated(nil))
}
