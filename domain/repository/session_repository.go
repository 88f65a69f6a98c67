package repository

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	ttlcache "github.com/jellydator/ttlcache/v3"
)

const sessionKey = "session"

// 購読者ごとのバッファ。溢れた通知は捨てる
const subscriberBuffer = 16

// sessionJar はhttp.Clientに渡したままログアウト時に空にできるcookie jar
type sessionJar struct {
	mu  sync.RWMutex
	jar *cookiejar.Jar
}

func newSessionJar() *sessionJar {
	jar, _ := cookiejar.New(nil)
	return &sessionJar{jar: jar}
}

func (j *sessionJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	j.jar.SetCookies(u, cookies)
}

func (j *sessionJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.jar.Cookies(u)
}

func (j *sessionJar) reset() {
	jar, _ := cookiejar.New(nil)
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jar = jar
}

type SessionGate struct {
	mu            sync.Mutex
	client        *http.Client
	jar           *sessionJar
	baseURL       *url.URL
	config        SessionConfig
	authenticated bool
	expiry        *ttlcache.Cache[string, struct{}]
	subscribers   []chan bool
}

func NewSessionGate(api APIConfig, config SessionConfig) (*SessionGate, error) {
	baseURL, err := url.Parse(api.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url error: %w", err)
	}

	jar := newSessionJar()
	g := &SessionGate{
		client: &http.Client{
			Jar:     jar,
			Timeout: api.Timeout,
		},
		jar:     jar,
		baseURL: baseURL,
		config:  config,
	}
	g.presetCookie()

	if config.TTL > 0 {
		g.expiry = ttlcache.New(ttlcache.WithTTL[string, struct{}](config.TTL))
		// セッションの期限切れは未認証への遷移として扱う
		g.expiry.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, _ *ttlcache.Item[string, struct{}]) {
			if reason != ttlcache.EvictionReasonExpired {
				return
			}
			slog.Info("Session expired")
			g.jar.reset()
			g.setAuthenticated(false)
		})
		go g.expiry.Start()
	}
	return g, nil
}

// Client はセッションクッキーを送るHTTPクライアントを返す
func (g *SessionGate) Client() *http.Client {
	return g.client
}

func (g *SessionGate) Close() {
	if g.expiry != nil {
		g.expiry.Stop()
	}
}

func (g *SessionGate) IsAuthenticated() bool {
	// ttlcacheのロックと順序が逆転しないよう、キャッシュはmuの外で参照する
	if g.expiry != nil && !g.expiry.Has(sessionKey) {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.authenticated
}

func (g *SessionGate) Subscribe() <-chan bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch := make(chan bool, subscriberBuffer)
	g.subscribers = append(g.subscribers, ch)
	return ch
}

// Login はログインURLからIdPのリダイレクトを辿る。応答本文は読まず、jarにセッションクッキーが残ればログイン済み
func (g *SessionGate) Login(ctx context.Context) error {
	if g.hasSessionCookie() {
		g.setAuthenticated(true)
		return nil
	}

	u := g.baseURL.JoinPath(g.config.LoginPath).String()
	if err := g.get(ctx, "login", u); err != nil {
		return err
	}

	if !g.hasSessionCookie() {
		return fmt.Errorf("login did not set cookie %q: %w", g.config.CookieName, ErrNotAuthenticated)
	}
	slog.Info("Logged in", slog.String("base_url", g.baseURL.String()))
	g.setAuthenticated(true)
	return nil
}

// Logout はリクエストが失敗してもローカルのセッションを破棄する
func (g *SessionGate) Logout(ctx context.Context) error {
	u := g.baseURL.JoinPath(g.config.LogoutPath).String()
	err := g.get(ctx, "logout", u)

	g.jar.reset()
	if g.expiry != nil {
		g.expiry.Delete(sessionKey)
	}
	g.setAuthenticated(false)
	slog.Info("Logged out")
	return err
}

func (g *SessionGate) get(ctx context.Context, op, u string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &RequestError{Op: op, URL: u, Err: err}
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return &RequestError{Op: op, URL: u, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{Op: op, URL: u, StatusCode: resp.StatusCode}
	}
	return nil
}

func (g *SessionGate) presetCookie() {
	if g.config.Cookie == "" {
		return
	}
	g.jar.SetCookies(g.baseURL, []*http.Cookie{{
		Name:  g.config.CookieName,
		Value: g.config.Cookie,
		Path:  "/",
	}})
}

func (g *SessionGate) hasSessionCookie() bool {
	for _, c := range g.jar.Cookies(g.baseURL) {
		if c.Name == g.config.CookieName && c.Value != "" {
			return true
		}
	}
	return false
}

func (g *SessionGate) setAuthenticated(v bool) {
	if v && g.expiry != nil {
		g.expiry.Set(sessionKey, struct{}{}, ttlcache.DefaultTTL)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.authenticated == v {
		return
	}
	g.authenticated = v

	for _, ch := range g.subscribers {
		select {
		case ch <- v:
		default:
			slog.Warn("Dropped session notification", slog.Bool("authenticated", v))
		}
	}
}
