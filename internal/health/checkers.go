package health

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/agentics-ai/kansa/internal/adapter"
)

// HTTPChecker probes HTTP and gRPC endpoints with a GET against the
// adapter's health path. Status classes map directly: 2xx healthy, 5xx
// unhealthy, anything else degraded.
type HTTPChecker struct {
	client *http.Client
}

func NewHTTPChecker(client *http.Client) *HTTPChecker {
	return &HTTPChecker{client: client}
}

func (*HTTPChecker) Name() string { return "http" }

func (*HTTPChecker) Supports(t adapter.Type) bool {
	return t == adapter.TypeHTTP || t == adapter.TypeGRPC
}

func (c *HTTPChecker) Check(ctx context.Context, cfg adapter.Config) adapter.HealthResult {
	start := time.Now()
	url := probeURL(cfg)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return adapter.Unhealthy(cfg, fmt.Sprintf("invalid endpoint: %v", err), time.Since(start))
	}
	applyAuth(req, cfg.Auth)

	resp, err := c.client.Do(req)
	if err != nil {
		return adapter.Unhealthy(cfg, fmt.Sprintf("request failed: %v", err), time.Since(start))
	}
	defer resp.Body.Close()

	diag := map[string]string{
		"checker":     c.Name(),
		"url":         url,
		"status_code": strconv.Itoa(resp.StatusCode),
	}
	latency := time.Since(start)
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return adapter.Healthy(cfg, latency).WithDiagnostics(diag)
	case resp.StatusCode >= 500:
		return adapter.Unhealthy(cfg,
			fmt.Sprintf("endpoint returned status %d", resp.StatusCode), latency).WithDiagnostics(diag)
	default:
		return adapter.Degraded(cfg,
			fmt.Sprintf("endpoint returned unexpected status %d", resp.StatusCode), latency).WithDiagnostics(diag)
	}
}

// TCPChecker probes connectivity-only kinds with a plain dial. A successful
// connect is the whole check.
type TCPChecker struct {
	dialer net.Dialer
}

func NewTCPChecker() *TCPChecker {
	return &TCPChecker{}
}

func (*TCPChecker) Name() string { return "tcp" }

func (*TCPChecker) Supports(t adapter.Type) bool {
	switch t {
	case adapter.TypeRedis, adapter.TypePostgres, adapter.TypeMySQL,
		adapter.TypeKafka, adapter.TypeRabbitMQ, adapter.TypeTCP:
		return true
	}
	return false
}

func (c *TCPChecker) Check(ctx context.Context, cfg adapter.Config) adapter.HealthResult {
	start := time.Now()
	addr := dialAddr(cfg)

	conn, err := c.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return adapter.Unhealthy(cfg, fmt.Sprintf("connect failed: %v", err), time.Since(start))
	}
	conn.Close()
	return adapter.Healthy(cfg, time.Since(start)).WithDiagnostics(map[string]string{
		"checker": c.Name(),
		"addr":    addr,
	})
}

// VaultChecker probes HashiCorp Vault through its sys/health endpoint, which
// encodes server state in the status code rather than the status class.
type VaultChecker struct {
	client *http.Client
}

func NewVaultChecker(client *http.Client) *VaultChecker {
	return &VaultChecker{client: client}
}

func (*VaultChecker) Name() string { return "vault" }

func (*VaultChecker) Supports(t adapter.Type) bool {
	return t == adapter.TypeHashicorpVault
}

func (c *VaultChecker) Check(ctx context.Context, cfg adapter.Config) adapter.HealthResult {
	start := time.Now()
	url := probeURL(cfg)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return adapter.Unhealthy(cfg, fmt.Sprintf("invalid endpoint: %v", err), time.Since(start))
	}
	if cfg.Auth != nil && cfg.Auth.Token != "" {
		req.Header.Set("X-Vault-Token", cfg.Auth.Token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return adapter.Unhealthy(cfg, fmt.Sprintf("request failed: %v", err), time.Since(start))
	}
	defer resp.Body.Close()

	diag := map[string]string{
		"checker":     c.Name(),
		"url":         url,
		"status_code": strconv.Itoa(resp.StatusCode),
	}
	latency := time.Since(start)
	switch resp.StatusCode {
	case http.StatusOK:
		return adapter.Healthy(cfg, latency).WithDiagnostics(diag)
	case http.StatusTooManyRequests:
		return adapter.Degraded(cfg, "Vault is unsealed but in standby", latency).WithDiagnostics(diag)
	case 472:
		return adapter.Degraded(cfg, "Vault is in recovery mode", latency).WithDiagnostics(diag)
	case 473:
		return adapter.Degraded(cfg, "Vault is a performance standby", latency).WithDiagnostics(diag)
	case http.StatusNotImplemented:
		return adapter.Unhealthy(cfg, "Vault is not initialized", latency).WithDiagnostics(diag)
	case http.StatusServiceUnavailable:
		return adapter.Unhealthy(cfg, "Vault is sealed", latency).WithDiagnostics(diag)
	default:
		return adapter.Degraded(cfg,
			fmt.Sprintf("Vault returned unexpected status %d", resp.StatusCode), latency).WithDiagnostics(diag)
	}
}

// probeURL joins the endpoint and probe path, defaulting the scheme to http.
func probeURL(cfg adapter.Config) string {
	endpoint := cfg.Endpoint
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}
	path := cfg.ProbePath()
	if path == "" {
		return endpoint
	}
	return strings.TrimRight(endpoint, "/") + "/" + strings.TrimLeft(path, "/")
}

// dialAddr returns host:port, appending the kind's default port when the
// endpoint omits one.
func dialAddr(cfg adapter.Config) string {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "tcp://"), "//")
	if _, _, err := net.SplitHostPort(endpoint); err == nil {
		return endpoint
	}
	if port := cfg.Type.DefaultPort(); port > 0 {
		return net.JoinHostPort(endpoint, strconv.Itoa(port))
	}
	return endpoint
}

// applyAuth attaches the adapter's credentials to an outbound probe.
func applyAuth(req *http.Request, auth *adapter.AuthConfig) {
	if auth == nil {
		return
	}
	switch auth.Method {
	case adapter.AuthBasic:
		req.SetBasicAuth(auth.Username, auth.Password)
	case adapter.AuthBearer:
		req.Header.Set("Authorization", "Bearer "+auth.Token)
	case adapter.AuthAPIKey:
		header := auth.Header
		if header == "" {
			header = "X-Api-Key"
		}
		req.Header.Set(header, auth.APIKey)
	}
}
