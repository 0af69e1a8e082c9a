package config

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkglog "github.com/srujan5570/Communications-App/pkg/log"
)

const (
	defaultSTUN       = "stun:stun.l.google.com:19302"
	cloudflareTURNFmt = "https://rtc.live.cloudflare.com/v1/turn/keys/%s/credentials/generate"
)

type WebRTCConfig struct {
	ICEServers []ICEServerConfig `mapstructure:"ice_servers"`
	TurnKeyID  string            `mapstructure:"turn_key_id"`
	TurnKey    string            `mapstructure:"turn_key"`

	// TurnEndpoint overrides the Cloudflare credentials URL, mostly for tests.
	TurnEndpoint string `mapstructure:"turn_endpoint"`
}

type ICEServerConfig struct {
	URLs       []string `mapstructure:"urls"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

// ICEServer represents an ICE server configuration for clients.
type ICEServer struct {
	URLs       []string `json:"urls"`
	Username   string   `json:"username,omitempty"`
	Credential string   `json:"credential,omitempty"`
}

// Resolve returns the configured servers plus short-lived Cloudflare
// TURN credentials when a key is configured. A STUN server is always present.
func (c *WebRTCConfig) Resolve(ctx context.Context, client *http.Client) []ICEServer {
	logger := pkglog.Ctx(ctx)
	servers := make([]ICEServer, 0, len(c.ICEServers)+2)

	for _, s := range c.ICEServers {
		servers = append(servers, ICEServer{
			URLs:       s.URLs,
			Username:   s.Username,
			Credential: s.Credential,
		})
	}

	if c.TurnKeyID != "" && c.TurnKey != "" {
		turn, err := c.fetchCloudflareTURN(ctx, client)
		if err != nil {
			logger.Warn().Err(err).Str("turn_key", maskKey(c.TurnKey)).Msg("failed to get cloudflare turn credentials")
		} else {
			servers = append(servers, *turn)
		}
	}

	if !hasSTUN(servers) {
		servers = append([]ICEServer{{URLs: []string{defaultSTUN}}}, servers...)
	}
	return servers
}

type cloudflareTURNResponse struct {
	ICEServers struct {
		URLs       []string `json:"urls"`
		Username   string   `json:"username"`
		Credential string   `json:"credential"`
	} `json:"iceServers"`
}

func (c *WebRTCConfig) fetchCloudflareTURN(ctx context.Context, client *http.Client) (*ICEServer, error) {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	url := c.TurnEndpoint
	if url == "" {
		url = fmt.Sprintf(cloudflareTURNFmt, c.TurnKeyID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader([]byte(`{"ttl": 86400}`)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.TurnKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call TURN API: %w", err)
	}
	defer resp.Body.Close()

	// Cloudflare answers 201 on success
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("TURN API returned status %d: %s", resp.StatusCode, string(body))
	}

	var turnResp cloudflareTURNResponse
	if err := json.NewDecoder(resp.Body).Decode(&turnResp); err != nil {
		return nil, fmt.Errorf("failed to decode TURN response: %w", err)
	}

	return &ICEServer{
		URLs:       turnResp.ICEServers.URLs,
		Username:   turnResp.ICEServers.Username,
		Credential: turnResp.ICEServers.Credential,
	}, nil
}

func hasSTUN(servers []ICEServer) bool {
	for _, s := range servers {
		for _, u := range s.URLs {
			if strings.HasPrefix(u, "stun") {
				return true
			}
		}
	}
	return false
}

// maskKey masks a key for logging purposes
func maskKey(key string) string {
	if key == "" {
		return "<empty>"
	}
	if len(key) <= 8 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
