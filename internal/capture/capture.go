package capture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"wildberries/catalog/internal/domain"
)

// Response is one network response observed while a page loads
type Response struct {
	URL          string
	ResourceType string
	// Body loads the response payload on demand
	Body func(ctx context.Context) ([]byte, error)
}

// Session drives a browsing session. Navigate opens url and keeps reporting
// every finished response to observe until the session is closed.
type Session interface {
	Navigate(ctx context.Context, url string, observe func(Response)) error
}

// Menu is the captured main-menu document
type Menu struct {
	URL   string
	Raw   json.RawMessage
	Nodes []domain.CatalogNode
}

// Capturer waits for the first response that is the menu document
type Capturer struct {
	session  Session
	startURL string
	hints    []string
	timeout  time.Duration
}

func NewCapturer(session Session, startURL string, hints []string, timeout time.Duration) *Capturer {
	return &Capturer{
		session:  session,
		startURL: startURL,
		hints:    hints,
		timeout:  timeout,
	}
}

// Capture navigates to the start page and resolves with the first matching
// response. The wait starts once navigation returns.
func (c *Capturer) Capture(ctx context.Context) (*Menu, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	signal := NewSignal[*Menu]()
	var candidates atomic.Int32

	observe := func(resp Response) {
		if signal.Resolved() {
			return
		}
		if !IsMenuResourceType(resp.ResourceType) || !IsMenuURL(resp.URL, c.hints) {
			return
		}
		candidates.Add(1)

		menu, err := c.decode(ctx, resp)
		if err != nil {
			log.Debugf("Skipping menu candidate %s: %v", resp.URL, err)
			return
		}

		if signal.Resolve(menu) {
			log.Infof("📥 Captured menu from %s (%d roots)", resp.URL, len(menu.Nodes))
		}
	}

	log.Infof("🌐 Opening %s to capture the menu", c.startURL)
	if err := c.session.Navigate(ctx, c.startURL, observe); err != nil {
		if menu, ok := signal.Value(); ok {
			return menu, nil
		}
		return nil, fmt.Errorf("failed to navigate to %s: %w", c.startURL, err)
	}

	menu, err := signal.Wait(ctx, c.timeout)
	if err == nil {
		return menu, nil
	}
	if !errors.Is(err, ErrSignalTimeout) {
		return nil, err
	}

	if n := candidates.Load(); n > 0 {
		return nil, fmt.Errorf("%w: %d candidate responses rejected within %s", ErrCaptureMismatch, n, c.timeout)
	}
	return nil, fmt.Errorf("%w after %s", ErrCaptureTimeout, c.timeout)
}

func (c *Capturer) decode(ctx context.Context, resp Response) (*Menu, error) {
	if resp.Body == nil {
		return nil, errors.New("response body unavailable")
	}

	body, err := resp.Body(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	if !LooksLikeMenu(body) {
		return nil, errors.New("payload does not have the menu shape")
	}

	var nodes []domain.CatalogNode
	if err := json.Unmarshal(body, &nodes); err != nil {
		log.Warnf("⚠️ Menu-shaped response %s could not be decoded: %v", resp.URL, err)
		return nil, fmt.Errorf("failed to decode menu: %w", err)
	}

	return &Menu{URL: resp.URL, Raw: body, Nodes: nodes}, nil
}
