// Package discovery serves /info, which tells browser clients how to reach
// this server and which ICE servers to use.
package discovery

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/pion/webrtc/v4"
)

// Info is the body of GET /info.
type Info struct {
	Port       string             `json:"port"`
	Addresses  []string           `json:"addresses"`
	IPs        []string           `json:"ips"`
	ICEServers []webrtc.ICEServer `json:"iceServers"`
}

// Handler answers /info requests.
type Handler struct {
	port       string
	publicURL  string
	iceServers []webrtc.ICEServer
	log        *slog.Logger

	// localIPs is swapped out in tests.
	localIPs func() []string
}

// NewHandler returns a Handler advertising port, an optional public URL
// (e.g. a tunnel such as ngrok) and the given ICE servers.
func NewHandler(port, publicURL string, iceServers []webrtc.ICEServer, log *slog.Logger) *Handler {
	if iceServers == nil {
		iceServers = []webrtc.ICEServer{}
	}
	return &Handler{
		port:       port,
		publicURL:  strings.TrimSuffix(publicURL, "/"),
		iceServers: iceServers,
		log:        log,
		localIPs:   LocalIPv4s,
	}
}

// ServeHTTP handles GET /info.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ips := h.localIPs()

	var addrs []string
	if h.publicURL != "" {
		addrs = append(addrs, h.publicURL)
	}
	if host := r.Host; host != "" {
		proto := r.Header.Get("X-Forwarded-Proto")
		if proto == "" {
			proto = "http"
			if r.TLS != nil {
				proto = "https"
			}
		}
		addrs = append(addrs, proto+"://"+host)
	}
	for _, ip := range ips {
		addrs = append(addrs, fmt.Sprintf("http://%s", net.JoinHostPort(ip, h.port)))
	}

	info := Info{
		Port:       h.port,
		Addresses:  dedupe(addrs),
		IPs:        ips,
		ICEServers: h.iceServers,
	}
	if info.IPs == nil {
		info.IPs = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(info); err != nil {
		h.log.Debug("write info failed", slog.String("error", err.Error()))
	}
}

// LocalIPv4s returns the non-loopback IPv4 addresses of the host's interfaces.
func LocalIPv4s() []string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil
	}
	var out []string
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			if ip4 := ipnet.IP.To4(); ip4 != nil && !ip4.IsLoopback() {
				out = append(out, ip4.String())
			}
		}
	}
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
