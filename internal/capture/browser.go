package capture

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	log "github.com/sirupsen/logrus"
)

// BrowserOptions configures the headless browser
type BrowserOptions struct {
	Headless          bool
	UserAgent         string
	Locale            string
	NavigationTimeout time.Duration
}

// BrowserSession is a Session backed by a Chrome tab driven through chromedp
type BrowserSession struct {
	opts BrowserOptions

	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc

	mu      sync.Mutex
	pending map[network.RequestID]*network.EventResponseReceived
}

// NewBrowserSession starts Chrome and opens one tab
func NewBrowserSession(opts BrowserOptions) (*BrowserSession, error) {
	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("lang", opts.Locale),
		chromedp.UserAgent(opts.UserAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// Allocate the browser under the long-lived tab context
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &BrowserSession{
		opts:        opts,
		allocCancel: allocCancel,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		pending:     make(map[network.RequestID]*network.EventResponseReceived),
	}, nil
}

// Navigate loads url and reports finished responses to observe
func (s *BrowserSession) Navigate(ctx context.Context, url string, observe func(Response)) error {
	chromedp.ListenTarget(s.tabCtx, func(ev interface{}) {
		switch e := ev.(type) {
		case *network.EventResponseReceived:
			s.mu.Lock()
			s.pending[e.RequestID] = e
			s.mu.Unlock()

		case *network.EventLoadingFailed:
			s.mu.Lock()
			delete(s.pending, e.RequestID)
			s.mu.Unlock()

		case *network.EventLoadingFinished:
			s.mu.Lock()
			received, ok := s.pending[e.RequestID]
			delete(s.pending, e.RequestID)
			s.mu.Unlock()

			if !ok || received.Response == nil {
				return
			}

			// Listeners must not block the event loop
			go observe(s.response(received))
		}
	})

	navCtx, cancel := context.WithTimeout(s.tabCtx, s.opts.NavigationTimeout)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(navCtx, network.Enable(), chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("chromedp navigation failed: %w", err)
	}

	log.Debugf("Navigation to %s finished", url)
	return nil
}

func (s *BrowserSession) response(ev *network.EventResponseReceived) Response {
	requestID := ev.RequestID
	return Response{
		URL:          ev.Response.URL,
		ResourceType: strings.ToLower(ev.Type.String()),
		Body: func(ctx context.Context) ([]byte, error) {
			target := chromedp.FromContext(s.tabCtx).Target
			return network.GetResponseBody(requestID).Do(cdp.WithExecutor(ctx, target))
		},
	}
}

// Close shuts the tab and the browser process
func (s *BrowserSession) Close() error {
	s.tabCancel()
	s.allocCancel()
	return nil
}

// BrowserCapturer starts a browser per capture and closes it afterwards
type BrowserCapturer struct {
	Options  BrowserOptions
	StartURL string
	Hints    []string
	Timeout  time.Duration
}

func (b *BrowserCapturer) Capture(ctx context.Context) (*Menu, error) {
	session, err := NewBrowserSession(b.Options)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	return NewCapturer(session, b.StartURL, b.Hints, b.Timeout).Capture(ctx)
}
