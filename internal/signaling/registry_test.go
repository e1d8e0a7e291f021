package signaling

import (
	"errors"
	"sync"
	"testing"
)

func TestRegistry_Create_Lookup_Delete(t *testing.T) {
	reg := NewRegistry(nil, 0)
	host := newSession(&recordConn{})

	room, err := reg.Create(host)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !ValidRoomCode(room.Code, DefaultCodeLength) {
		t.Errorf("invalid code %q", room.Code)
	}
	if host.Role() != RoleHost || host.RoomCode() != room.Code {
		t.Errorf("host not assigned: role=%q room=%q", host.Role(), host.RoomCode())
	}

	got, ok := reg.Lookup(room.Code)
	if !ok || got != room {
		t.Fatalf("Lookup: ok=%v got %p want %p", ok, got, room)
	}
	if reg.Count() != 1 {
		t.Errorf("Count: %d", reg.Count())
	}

	reg.Delete(room.Code)
	if _, ok := reg.Lookup(room.Code); ok {
		t.Error("Lookup after Delete should fail")
	}

	t.Run("delete_unknown_is_noop", func(t *testing.T) {
		reg.Delete("ZZZZZZ")
	})
}

func TestRegistry_Create_assigned_host(t *testing.T) {
	reg := NewRegistry(nil, 0)
	host := newSession(&recordConn{})
	if _, err := reg.Create(host); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err := reg.Create(host)
	if !errors.Is(err, ErrRoleAlreadySet) {
		t.Errorf("expected ErrRoleAlreadySet, got %v", err)
	}
	if reg.Count() != 1 {
		t.Errorf("failed Create must not register a room, count=%d", reg.Count())
	}
}

func TestRegistry_Create_code_space_exhausted(t *testing.T) {
	// A constant byte source yields the same code on every draw.
	reg := NewRegistry(NewCodeGenerator(6, zeroReader{}), 0)

	room, err := reg.Create(newSession(&recordConn{}))
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if room.Code != "AAAAAA" {
		t.Fatalf("expected AAAAAA, got %s", room.Code)
	}

	second := newSession(&recordConn{})
	_, err = reg.Create(second)
	if !errors.Is(err, ErrCodeSpaceExhausted) {
		t.Errorf("expected ErrCodeSpaceExhausted, got %v", err)
	}
	if second.Role() != RoleUnassigned {
		t.Error("session must stay unassigned after exhaustion")
	}
}

func TestRegistry_concurrent_create_distinct_codes(t *testing.T) {
	reg := NewRegistry(NewCodeGenerator(3, nil), 0)
	const n = 400

	var wg sync.WaitGroup
	codes := make(chan RoomCode, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			room, err := reg.Create(newSession(&recordConn{}))
			if err != nil {
				t.Errorf("Create: %v", err)
				return
			}
			codes <- room.Code
		}()
	}
	wg.Wait()
	close(codes)

	seen := make(map[RoomCode]bool)
	for c := range codes {
		if seen[c] {
			t.Fatalf("duplicate code %s", c)
		}
		if !ValidRoomCode(c, 3) {
			t.Fatalf("invalid code %s", c)
		}
		seen[c] = true
	}
	if len(seen) != n || reg.Count() != n {
		t.Errorf("expected %d rooms, got %d codes and count %d", n, len(seen), reg.Count())
	}
}
