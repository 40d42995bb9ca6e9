package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// Rod is a Client backed by a Chrome DevTools session.
type Rod struct {
	cfg    Config
	logger *zap.Logger

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	windows  []*rod.Page
	root     *rod.Page
	current  *rod.Page
}

var _ Client = (*Rod)(nil)

// NewRod creates an unstarted client.
func NewRod(cfg Config, logger *zap.Logger) *Rod {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Rod{cfg: cfg, logger: logger}
}

// Start launches Chrome (or attaches to ControlURL) and opens a blank page.
func (r *Rod) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return nil
	}

	controlURL := r.cfg.ControlURL
	if controlURL == "" {
		l := launcher.New().
			Headless(r.cfg.Headless).
			Set(flags.Flag("start-maximized")).
			Set(flags.Flag("disable-blink-features"), "AutomationControlled")
		if r.cfg.Bin != "" {
			l = l.Bin(r.cfg.Bin)
		}
		u, err := l.Context(ctx).Launch()
		if err != nil {
			return fmt.Errorf("launch chrome: %w", err)
		}
		r.launcher = l
		controlURL = u
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("connect to chrome: %w", err)
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = b.Close()
		return fmt.Errorf("open page: %w", err)
	}

	r.browser = b
	r.windows = []*rod.Page{page}
	r.root, r.current = page, page
	r.logger.Debug("Browser started", zap.String("control_url", controlURL))
	return nil
}

// scope returns the current frame bound to a context limited by the configured timeout.
func (r *Rod) scope(ctx context.Context) (*rod.Page, context.CancelFunc, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return nil, func() {}, ErrNotStarted
	}
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout())
	return r.current.Context(ctx), cancel, nil
}

func (r *Rod) rootScope(ctx context.Context) (*rod.Page, context.CancelFunc, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.root == nil {
		return nil, func() {}, ErrNotStarted
	}
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout())
	return r.root.Context(ctx), cancel, nil
}

// absenceCheck bounds the look at the page after a wait for an element expired.
const absenceCheck = 2 * time.Second

// element waits for selector to appear in p. When the wait expires on a
// document that finished loading and still lacks selector, the element is
// reported as not found rather than timed out.
func element(p *rod.Page, selector string) (*rod.Element, error) {
	var (
		el  *rod.Element
		err error
	)
	if IsXPath(selector) {
		el, err = p.ElementX(selector)
	} else {
		el, err = p.Element(selector)
	}
	if err == nil || !errors.Is(err, context.DeadlineExceeded) {
		return el, err
	}

	check := p.Context(context.Background()).Timeout(absenceCheck)
	state, evalErr := check.Eval(`() => document.readyState`)
	if evalErr != nil {
		return nil, err
	}
	present, _, hasErr := has(check, selector)
	return nil, absence(err, state.Value.Str(), present, hasErr)
}

// absence decides what an expired element wait means given the document
// state and a direct check for the element.
func absence(waitErr error, readyState string, present bool, checkErr error) error {
	if checkErr != nil || present || readyState != "complete" {
		return waitErr
	}
	return &rod.ElementNotFoundError{}
}

// has checks for selector in p without waiting.
func has(p *rod.Page, selector string) (bool, *rod.Element, error) {
	if IsXPath(selector) {
		return p.HasX(selector)
	}
	return p.Has(selector)
}

// classify maps rod and context errors onto the package sentinels.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	}
	var notFound *rod.ElementNotFoundError
	if errors.As(err, &notFound) {
		return fmt.Errorf("%s: %w", op, ErrElementNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (r *Rod) Navigate(ctx context.Context, url string) error {
	p, cancel, err := r.rootScope(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	if err := p.Navigate(url); err != nil {
		return classify("navigate "+url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return classify("load "+url, err)
	}
	r.LeaveFrames()
	return nil
}

func (r *Rod) Click(ctx context.Context, selector string) error {
	p, cancel, err := r.scope(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	el, err := element(p, selector)
	if err != nil {
		return classify("find "+selector, err)
	}
	return classify("click "+selector, el.Click(proto.InputMouseButtonLeft, 1))
}

func (r *Rod) FillAndSubmit(ctx context.Context, fields []Field, submit string) error {
	p, cancel, err := r.scope(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	for _, f := range fields {
		el, err := element(p, f.Selector)
		if err != nil {
			return classify("find "+f.Selector, err)
		}
		if err := el.SelectAllText(); err != nil {
			return classify("clear "+f.Selector, err)
		}
		if err := el.Input(f.Value); err != nil {
			return classify("input "+f.Selector, err)
		}
	}

	el, err := element(p, submit)
	if err != nil {
		return classify("find "+submit, err)
	}
	return classify("submit "+submit, el.Click(proto.InputMouseButtonLeft, 1))
}

func (r *Rod) WaitForAny(ctx context.Context, selectors ...string) (int, error) {
	if len(selectors) == 0 {
		return -1, errors.New("browser: no selectors")
	}
	p, cancel, err := r.scope(ctx)
	if err != nil {
		return -1, err
	}
	defer cancel()

	matched := -1
	race := p.Race()
	for i, sel := range selectors {
		i := i
		if IsXPath(sel) {
			race = race.ElementX(sel)
		} else {
			race = race.Element(sel)
		}
		race = race.Handle(func(*rod.Element) error {
			matched = i
			return nil
		})
	}

	if _, err := race.Do(); err != nil {
		return -1, classify("wait for "+strings.Join(selectors, " or "), err)
	}
	return matched, nil
}

func (r *Rod) WaitForAndExtract(ctx context.Context, ready string, labels map[string]string) (map[string]string, error) {
	p, cancel, err := r.scope(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	el, err := element(p, ready)
	if err != nil {
		return nil, classify("wait for "+ready, err)
	}
	if err := el.WaitVisible(); err != nil {
		return nil, classify("wait visible "+ready, err)
	}

	texts := make(map[string]string, len(labels))
	var missing []string
	for label, sel := range labels {
		ok, el, err := has(p, sel)
		if err != nil {
			return nil, classify("find "+label, err)
		}
		if !ok {
			missing = append(missing, label)
			continue
		}
		text, err := el.Text()
		if err != nil {
			return nil, classify("read "+label, err)
		}
		texts[label] = text
	}

	if len(missing) > 0 {
		return texts, &MissingError{Labels: missing}
	}
	return texts, nil
}

func (r *Rod) TextsOf(ctx context.Context, selector string) ([]string, error) {
	p, cancel, err := r.scope(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var els rod.Elements
	if IsXPath(selector) {
		els, err = p.ElementsX(selector)
	} else {
		els, err = p.Elements(selector)
	}
	if err != nil {
		return nil, classify("find "+selector, err)
	}

	texts := make([]string, 0, len(els))
	for _, el := range els {
		text, err := el.Text()
		if err != nil {
			return nil, classify("read "+selector, err)
		}
		texts = append(texts, text)
	}
	return texts, nil
}

func (r *Rod) GoBack(ctx context.Context) error {
	p, cancel, err := r.rootScope(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	r.LeaveFrames()
	return classify("go back", p.NavigateBack())
}

func (r *Rod) EnterFrames(ctx context.Context, selectors ...string) error {
	p, cancel, err := r.scope(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	for _, sel := range selectors {
		el, err := element(p, sel)
		if err != nil {
			return classify("find frame "+sel, err)
		}
		frame, err := el.Frame()
		if err != nil {
			return classify("enter frame "+sel, err)
		}
		p = frame
	}

	r.mu.Lock()
	r.current = p
	r.mu.Unlock()
	return nil
}

func (r *Rod) LeaveFrames() {
	r.mu.Lock()
	r.current = r.root
	r.mu.Unlock()
}

func (r *Rod) FollowNewWindow(ctx context.Context, selector string) error {
	p, cancel, err := r.rootScope(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	wait := p.WaitOpen()
	el, err := element(p, selector)
	if err != nil {
		return classify("find "+selector, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return classify("click "+selector, err)
	}
	opened, err := wait()
	if err != nil {
		return classify("wait for new window", err)
	}

	r.mu.Lock()
	r.windows = append(r.windows, opened)
	r.root, r.current = opened, opened
	r.mu.Unlock()
	return nil
}

func (r *Rod) SwitchToMain(ctx context.Context) error {
	r.mu.Lock()
	if len(r.windows) == 0 {
		r.mu.Unlock()
		return ErrNotStarted
	}
	first := r.windows[0]
	r.root, r.current = first, first
	r.mu.Unlock()

	_, err := first.Context(ctx).Activate()
	return classify("activate main window", err)
}

func (r *Rod) Screenshot(ctx context.Context) ([]byte, error) {
	p, cancel, err := r.rootScope(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	img, err := p.Screenshot(false, nil)
	return img, classify("screenshot", err)
}

func (r *Rod) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	if r.launcher != nil {
		r.launcher.Cleanup()
	}
	r.browser, r.launcher = nil, nil
	r.windows, r.root, r.current = nil, nil, nil
	if err != nil {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}
