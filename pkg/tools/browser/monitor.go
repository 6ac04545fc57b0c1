package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Clock supplies wall time and sleeping to the change monitor.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// readContentJS throws when the selector no longer matches, which the
// monitor records as a failed poll.
const readContentJS = `sel => {
	const el = document.querySelector(sel);
	if (!el) throw new Error('no element matches ' + sel);
	return el.innerText;
}`

type monitorState int

const (
	monitorInit monitorState = iota
	monitorPolling
	monitorDone
)

type monitor struct {
	exec  *Executor
	req   MonitorRequest
	page  Page
	runID string

	state    monitorState
	baseline string
	start    time.Time
	changes  []ChangeRecord
}

// MonitorChanges watches the text of req.Selector for req.MaxTime seconds,
// re-reading it every req.Interval seconds. It runs until the time budget
// is spent: ctx is checked before the browser starts but not while polling.
// Only failures before polling starts abort the call; failed polls are
// recorded and polling continues.
func (e *Executor) MonitorChanges(ctx context.Context, req MonitorRequest) OperationResult {
	const op = "monitor_changes"
	if err := required(op, map[string]string{"selector": req.Selector}); err != nil {
		return failure(err)
	}
	if req.Interval < 1 {
		return failure(newError(InvalidArgument, op, "", fmt.Errorf("interval must be at least 1 second, got %d", req.Interval)))
	}
	if req.MaxTime < 0 {
		return failure(newError(InvalidArgument, op, "", fmt.Errorf("max_time cannot be negative, got %d", req.MaxTime)))
	}

	return e.run(ctx, op, req.URL, func(page Page) (OperationResult, error) {
		m := &monitor{exec: e, req: req, page: page, runID: uuid.NewString()[:8]}
		return m.run()
	})
}

func (m *monitor) run() (OperationResult, error) {
	for {
		switch m.state {
		case monitorInit:
			if err := m.init(); err != nil {
				return OperationResult{}, err
			}
			m.state = monitorPolling
		case monitorPolling:
			if m.poll() {
				m.state = monitorDone
			}
		case monitorDone:
			elapsed := m.exec.clock.Now().Sub(m.start)
			m.exec.log.Infof("monitor %s: done after %s with %d records", m.runID, elapsed.Truncate(time.Second), len(m.changes))
			return OperationResult{
				Success: true,
				URL:     m.page.URL(),
				MonitorReport: &MonitorReport{
					Selector:           m.req.Selector,
					MonitoringDuration: int(elapsed / time.Second),
					Changes:            m.changes,
				},
			}, nil
		}
	}
}

func (m *monitor) init() error {
	const op = "monitor_changes"
	if err := m.exec.navigate(m.page, op, m.req.URL); err != nil {
		return err
	}
	if _, err := m.exec.waitFor(m.page, op, m.req.Selector, SelectorWaitTimeout); err != nil {
		return err
	}
	content, err := m.read()
	if err != nil {
		return fmt.Errorf("%s: read baseline of %q: %w", op, m.req.Selector, err)
	}

	m.baseline = content
	m.changes = make([]ChangeRecord, 0)
	m.start = m.exec.clock.Now()
	m.exec.log.Infof("monitor %s: watching %q on %s every %ds for %ds", m.runID, m.req.Selector, m.req.URL, m.req.Interval, m.req.MaxTime)
	return nil
}

// poll sleeps one interval, records any change or read failure and
// reports whether the time budget is spent.
func (m *monitor) poll() bool {
	m.exec.clock.Sleep(time.Duration(m.req.Interval) * time.Second)

	content, err := m.read()
	now := m.exec.clock.Now()
	switch {
	case err != nil:
		readErr := newError(PollReadError, "poll", m.req.Selector, err)
		m.exec.log.Warnf("monitor %s: %v", m.runID, readErr)
		m.changes = append(m.changes, ChangeRecord{Timestamp: now, Error: readErr.Error()})
	case content != m.baseline:
		record := ChangeRecord{Timestamp: now, OldContent: m.baseline, NewContent: content}
		if m.req.ScreenshotChanges {
			path, err := m.exec.artifacts.Capture(m.page, PrefixChange)
			if err != nil {
				// The baseline stays put so the next poll reports the change again.
				m.exec.log.Warnf("monitor %s: %v", m.runID, err)
				m.changes = append(m.changes, ChangeRecord{Timestamp: now, Error: err.Error()})
				break
			}
			record.ScreenshotPath = path
		}
		m.changes = append(m.changes, record)
		m.baseline = content
		m.exec.log.Debugf("monitor %s: change detected", m.runID)
	default:
		m.exec.log.Debugf("monitor %s: unchanged", m.runID)
	}

	return now.Sub(m.start) >= time.Duration(m.req.MaxTime)*time.Second
}

func (m *monitor) read() (string, error) {
	v, err := m.page.Evaluate(readContentJS, m.req.Selector)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("unexpected content type %T", v)
	}
	return s, nil
}
