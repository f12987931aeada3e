package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TestContext carries one scenario's state: the caller's token and the last
// response.
type TestContext struct {
	baseURL    string
	signingKey string
	issuer     string
	audience   string
	client     *http.Client

	accessToken  string
	lastStatus   int
	lastBody     []byte
	lastHeaders  http.Header
	remembered   map[string]string
	webhookToken string
}

func NewTestContext() *TestContext {
	return &TestContext{
		baseURL:      getEnv("E2E_BASE_URL", "http://localhost:8080"),
		signingKey:   getEnv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		issuer:       getEnv("JWT_ISSUER", "finetrack"),
		audience:     getEnv("JWT_AUDIENCE", "finetrack-api"),
		webhookToken: os.Getenv("E2E_WEBHOOK_SECRET"),
		client:       &http.Client{Timeout: 10 * time.Second},
		remembered:   map[string]string{},
	}
}

func (tc *TestContext) Reset() {
	tc.accessToken = ""
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.lastHeaders = nil
	tc.remembered = map[string]string{}
}

// AuthenticateAs mints a token the server accepts for role. subjectClaim is
// the officer id or identity code, depending on the role.
func (tc *TestContext) AuthenticateAs(role, subjectClaim string) error {
	claims := jwt.MapClaims{
		"user_id": "e2e-" + role,
		"role":    role,
		"iss":     tc.issuer,
		"aud":     tc.audience,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	switch role {
	case "officer":
		claims["officer_id"] = subjectClaim
	case "civilian":
		claims["identity_code"] = subjectClaim
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(tc.signingKey))
	if err != nil {
		return err
	}
	tc.accessToken = signed
	return nil
}

func (tc *TestContext) ClearAuth() { tc.accessToken = "" }

func (tc *TestContext) WebhookSecret() string { return tc.webhookToken }

func (tc *TestContext) Request(method, path string, body any, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, tc.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tc.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+tc.accessToken)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	tc.lastStatus = resp.StatusCode
	tc.lastHeaders = resp.Header
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) GET(path string) error { return tc.Request(http.MethodGet, path, nil, nil) }

func (tc *TestContext) POST(path string, body any) error {
	return tc.Request(http.MethodPost, path, body, nil)
}

func (tc *TestContext) Status() int { return tc.lastStatus }
func (tc *TestContext) Body() []byte { return tc.lastBody }
func (tc *TestContext) Header(k string) string { return tc.lastHeaders.Get(k) }

// Field reads a dotted path ("stats.total", "fines.0.fineId") from the last
// JSON response.
func (tc *TestContext) Field(path string) (any, error) {
	var doc any
	if err := json.Unmarshal(tc.lastBody, &doc); err != nil {
		return nil, fmt.Errorf("response is not json: %w", err)
	}
	cur := doc
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil, fmt.Errorf("field %q not found", path)
			}
			cur = v
		case []any:
			var i int
			if _, err := fmt.Sscanf(part, "%d", &i); err != nil || i < 0 || i >= len(node) {
				return nil, fmt.Errorf("index %q out of range in %q", part, path)
			}
			cur = node[i]
		default:
			return nil, fmt.Errorf("field %q not found", path)
		}
	}
	return cur, nil
}

func (tc *TestContext) Remember(name, value string) { tc.remembered[name] = value }

// Expand replaces {name} with remembered values.
func (tc *TestContext) Expand(s string) string {
	for k, v := range tc.remembered {
		s = strings.ReplaceAll(s, "{"+k+"}", v)
	}
	return s
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
