package config

import "testing"

func TestICEServers_stun_only(t *testing.T) {
	servers, err := ICEServers([]string{DefaultSTUNURL}, nil, "", "")
	if err != nil {
		t.Fatalf("ICEServers: %v", err)
	}
	if len(servers) != 1 || servers[0].URLs[0] != DefaultSTUNURL {
		t.Errorf("expected one stun server, got %+v", servers)
	}
}

func TestICEServers_turn_with_credentials(t *testing.T) {
	servers, err := ICEServers([]string{DefaultSTUNURL}, []string{"turn:turn.example.com:3478"}, "user", "pass")
	if err != nil {
		t.Fatalf("ICEServers: %v", err)
	}
	if len(servers) != 2 {
		t.Fatalf("expected stun and turn, got %+v", servers)
	}
	turn := servers[1]
	if turn.Username != "user" || turn.Credential != "pass" {
		t.Errorf("turn credentials: got %+v", turn)
	}
}

func TestICEServers_turn_without_credentials_skipped(t *testing.T) {
	servers, err := ICEServers(nil, []string{"turn:turn.example.com:3478"}, "user", "")
	if err != nil {
		t.Fatalf("ICEServers: %v", err)
	}
	if len(servers) != 0 {
		t.Errorf("expected no servers, got %+v", servers)
	}
}

func TestICEServers_bad_scheme(t *testing.T) {
	if _, err := ICEServers([]string{"http://example.com"}, nil, "", ""); err == nil {
		t.Error("expected error for unsupported scheme")
	}
	if _, err := ICEServers(nil, []string{"stun:ok:1", "udp://bad"}, "u", "p"); err == nil {
		t.Error("expected error for unsupported turn scheme")
	}
}
