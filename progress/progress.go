// Package progress aggregates the per layer status events emitted by a
// docker push into a single line progress bar. Events arrive as a stream
// of jsonmessage records; each names a layer, its status and optionally
// how many bytes of it have been transferred so far.
package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/docker/docker/pkg/jsonmessage"
)

const (
	barWidth       = 40
	renderInterval = 500 * time.Millisecond

	statusPushing = "Pushing"
	statusPushed  = "Pushed"
	statusExists  = "Layer already exists"
)

// layer tracks the last known state of a single image layer during a
// push.
type layer struct {
	status  string
	current int64
	total   int64
	started time.Time
}

func (l *layer) terminal() bool {
	return l.status == statusPushed || l.status == statusExists
}

// Meter accumulates push events for one push invocation and renders the
// aggregate progress. A Meter is single use, create a new one per push.
type Meter struct {
	out        io.Writer
	remote     string
	tag        string
	layers     map[string]*layer
	started    time.Time
	lastRender time.Time
	now        func() time.Time
}

// NewMeter returns a Meter rendering to out. The remote reference and tag
// only show up in the final success line.
func NewMeter(out io.Writer, remote, tag string) *Meter {
	return &Meter{
		out:    out,
		remote: remote,
		tag:    tag,
		layers: map[string]*layer{},
		now:    time.Now,
	}
}

// Consume reads push events until every known layer reached a terminal
// status or the stream ends, rendering progress along the way. Renders
// are throttled to one every half second except for terminal events and
// layers reaching 100%, which always render. An error reported by the
// daemon inside the stream aborts the push.
func (m *Meter) Consume(events io.Reader) error {
	m.started = m.now()
	dec := json.NewDecoder(events)
	for {
		var msg jsonmessage.JSONMessage
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			fmt.Fprintln(m.out)
			return fmt.Errorf("failed to read push event: %w", err)
		}
		if msg.Error != nil {
			fmt.Fprintln(m.out)
			return fmt.Errorf("push failed: %w", msg.Error)
		}
		if msg.ErrorMessage != "" {
			fmt.Fprintln(m.out)
			return fmt.Errorf("push failed: %s", msg.ErrorMessage)
		}
		if msg.ID == "" && msg.Status == "" {
			continue
		}
		if m.observe(msg) {
			m.render()
		}
		if done, total := m.completed(), len(m.layers); total > 0 && done == total {
			break
		}
	}
	elapsed := formatElapsed(m.now().Sub(m.started))
	fmt.Fprintf(m.out, "\nPushed %s:%s in %s\n", m.remote, m.tag, elapsed)
	return nil
}

// observe folds one event into the session and reports whether the
// progress line should be redrawn.
func (m *Meter) observe(msg jsonmessage.JSONMessage) bool {
	l, ok := m.layers[msg.ID]
	if !ok {
		l = &layer{started: m.now()}
		m.layers[msg.ID] = l
	}
	l.status = msg.Status
	if msg.Progress != nil {
		l.current = msg.Progress.Current
		l.total = msg.Progress.Total
	}
	if l.terminal() {
		return true
	}
	if l.status == statusPushing && l.total > 0 && l.current == l.total {
		return true
	}
	return m.now().Sub(m.lastRender) >= renderInterval
}

func (m *Meter) completed() int {
	var done int
	for _, l := range m.layers {
		if l.terminal() {
			done++
		}
	}
	return done
}

// render overwrites the current progress line in place, no newline.
func (m *Meter) render() {
	m.lastRender = m.now()
	done, total := m.completed(), len(m.layers)
	var fraction float64
	if total > 0 {
		fraction = float64(done) / float64(total)
	}
	filled := int(fraction * barWidth)
	bar := strings.Repeat("█", filled) + strings.Repeat("-", barWidth-filled)
	elapsed := formatElapsed(m.now().Sub(m.started))
	fmt.Fprintf(m.out, "\r[%s] %.2f%% %s (%d/%d)", bar, fraction*100, elapsed, done, total)
}

// formatElapsed renders a duration as H:MM:SS, hours unpadded.
func formatElapsed(d time.Duration) string {
	secs := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d:%02d", secs/3600, secs/60%60, secs%60)
}
