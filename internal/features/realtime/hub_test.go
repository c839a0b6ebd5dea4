package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeConn struct {
	ch chan Envelope
}

func newFakeConn() *fakeConn {
	return &fakeConn{ch: make(chan Envelope, 16)}
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.ch <- v.(Envelope)
	return nil
}

func (c *fakeConn) Close() error { return nil }

func (c *fakeConn) receive(t *testing.T) Envelope {
	t.Helper()
	select {
	case env := <-c.ch:
		return env
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
		return Envelope{}
	}
}

func (c *fakeConn) assertSilent(t *testing.T) {
	t.Helper()
	select {
	case env := <-c.ch:
		t.Fatalf("unexpected delivery: %+v", env)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEmitTargetsOnlyAddressedRoom(t *testing.T) {
	hub := NewHub(zap.NewNop())

	target := newFakeConn()
	other := newFakeConn()
	hub.Register(RoomForUser("u1"), false, target)
	hub.Register(RoomForUser("u2"), false, other)

	hub.Emit("call:request", map[string]any{"taskId": "t1"}, EmitOptions{
		To: []string{RoomForUser("u1")},
	})

	env := target.receive(t)
	assert.Equal(t, "call:request", env.Event)
	other.assertSilent(t)
}

func TestEmitWithNoRecipientsIsNoOp(t *testing.T) {
	hub := NewHub(zap.NewNop())

	conn := newFakeConn()
	hub.Register(RoomForUser("u1"), false, conn)

	// Empty To without the broadcast flag must never fan out.
	hub.Emit("alarm:created", nil, EmitOptions{})
	conn.assertSilent(t)
}

func TestEmitIncludeAdminsFansOut(t *testing.T) {
	hub := NewHub(zap.NewNop())

	target := newFakeConn()
	admin := newFakeConn()
	bystander := newFakeConn()
	hub.Register(RoomForUser("caller"), false, target)
	hub.Register(RoomForUser("boss"), true, admin)
	hub.Register(RoomForUser("other"), false, bystander)

	hub.Emit("call:request", nil, EmitOptions{
		To:            []string{RoomForUser("caller")},
		IncludeAdmins: true,
	})

	target.receive(t)
	admin.receive(t)
	bystander.assertSilent(t)
}

func TestEmitAdminTargetNotDeliveredTwice(t *testing.T) {
	hub := NewHub(zap.NewNop())

	// Target is also an admin: one connection, one delivery.
	conn := newFakeConn()
	hub.Register(RoomForUser("boss"), true, conn)

	hub.Emit("call:request", nil, EmitOptions{
		To:            []string{RoomForUser("boss")},
		IncludeAdmins: true,
	})

	conn.receive(t)
	conn.assertSilent(t)
}

func TestEmitBroadcastOnZeroRespectsExcept(t *testing.T) {
	hub := NewHub(zap.NewNop())

	a := newFakeConn()
	b := newFakeConn()
	hub.Register(RoomForUser("a"), false, a)
	hub.Register(RoomForUser("b"), false, b)

	hub.Emit("announcement", nil, EmitOptions{
		BroadcastOnZero: true,
		Except:          []string{RoomForUser("b")},
	})

	a.receive(t)
	b.assertSilent(t)
}

func TestMultipleConnectionsInOneRoom(t *testing.T) {
	hub := NewHub(zap.NewNop())

	phone := newFakeConn()
	laptop := newFakeConn()
	room := RoomForUser("u1")
	hub.Register(room, false, phone)
	hub.Register(room, false, laptop)
	require.Equal(t, 2, hub.RoomSize(room))

	hub.Emit("alarm:updated", nil, EmitOptions{To: []string{room}})
	phone.receive(t)
	laptop.receive(t)
}

func TestUnregisterReleasesMembership(t *testing.T) {
	hub := NewHub(zap.NewNop())

	conn := newFakeConn()
	room := RoomForUser("u1")
	id := hub.Register(room, false, conn)
	require.Equal(t, 1, hub.RoomSize(room))

	hub.Unregister(id)
	assert.Equal(t, 0, hub.RoomSize(room))

	hub.Emit("call:request", nil, EmitOptions{To: []string{room}})
	conn.assertSilent(t)

	// Idempotent.
	hub.Unregister(id)
}
