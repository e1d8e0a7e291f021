package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pion/webrtc/v4"
)

// DefaultSTUNURL is advertised to clients when STUN_URLS is unset.
const DefaultSTUNURL = "stun:stun.l.google.com:19302"

// ICEServers builds the ICE server list handed to browsers: one entry for the
// STUN URLs and, when all three TURN values are present, one for TURN.
// TURN URLs without credentials are skipped rather than advertised unusable.
func ICEServers(stunURLs, turnURLs []string, turnUser, turnPass string) ([]webrtc.ICEServer, error) {
	var servers []webrtc.ICEServer

	if len(stunURLs) > 0 {
		server := webrtc.ICEServer{URLs: stunURLs}
		if err := validateICEServer(server); err != nil {
			return nil, fmt.Errorf("stun: %w", err)
		}
		servers = append(servers, server)
	}

	turnUser = strings.TrimSpace(turnUser)
	turnPass = strings.TrimSpace(turnPass)
	if len(turnURLs) > 0 && turnUser != "" && turnPass != "" {
		server := webrtc.ICEServer{
			URLs:       turnURLs,
			Username:   turnUser,
			Credential: turnPass,
		}
		if err := validateICEServer(server); err != nil {
			return nil, fmt.Errorf("turn: %w", err)
		}
		servers = append(servers, server)
	}

	return servers, nil
}

func validateICEServer(server webrtc.ICEServer) error {
	if len(server.URLs) == 0 {
		return errors.New("missing urls")
	}

	requiresTurnCreds := false
	for _, url := range server.URLs {
		switch {
		case strings.HasPrefix(url, "stun:"), strings.HasPrefix(url, "stuns:"):
		case strings.HasPrefix(url, "turn:"), strings.HasPrefix(url, "turns:"):
			requiresTurnCreds = true
		default:
			return fmt.Errorf("unsupported url scheme: %q", url)
		}
	}

	if requiresTurnCreds {
		cred, _ := server.Credential.(string)
		if server.Username == "" || cred == "" {
			return errors.New("turn urls require username and credential")
		}
	}
	return nil
}
