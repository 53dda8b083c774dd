// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sessions

import (
	"sync"
	"time"

	"github.com/danielhkuo/farmdesk/capture"
	"github.com/danielhkuo/farmdesk/models"
	"github.com/danielhkuo/farmdesk/views"
)

// Workspace is the in-memory UI state of one session
type Workspace struct {
	Surface *capture.CommandBuffer
	Draft   *capture.Controller
	Nav     *views.Navigator

	mu       sync.Mutex
	inFlight map[string]bool
	lastUsed time.Time
}

func newWorkspace(geocoder capture.Geocoder, now time.Time) *Workspace {
	buf := capture.NewCommandBuffer()
	return &Workspace{
		Surface:  buf,
		Draft:    capture.NewController(buf, geocoder),
		Nav:      views.NewNavigator(),
		inFlight: make(map[string]bool),
		lastUsed: now,
	}
}

// Begin marks action as running. It returns false if the same action is
// already in flight; callers must End every action they began.
func (w *Workspace) Begin(action string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight[action] {
		return false
	}
	w.inFlight[action] = true
	return true
}

func (w *Workspace) End(action string) {
	w.mu.Lock()
	delete(w.inFlight, action)
	w.mu.Unlock()
}

// OpenForm starts a fresh farm draft on the first form tab
func (w *Workspace) OpenForm() {
	w.Draft.Reset()
	w.Nav.ResetForm()
}

// Navigate follows a navigation link. Leaving the farms section discards
// the draft along with any surface commands still queued for it.
func (w *Workspace) Navigate(href string) (views.Section, error) {
	section, leftFarms, err := w.Nav.Navigate(href)
	if err != nil {
		return "", err
	}
	if leftFarms {
		w.Draft.Reset()
		w.Surface.Drain()
	}
	return section, nil
}

// DraftResponse renders the draft and drains pending surface commands
func (w *Workspace) DraftResponse(notice string) models.DraftResponse {
	return models.DraftResponse{
		Tab:      string(w.Nav.Tab()),
		Summary:  w.Draft.Summary(),
		Notice:   notice,
		Commands: w.Surface.Drain(),
	}
}

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	w.lastUsed = now
	w.mu.Unlock()
}

func (w *Workspace) idleSince(cutoff time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastUsed.Before(cutoff) && len(w.inFlight) == 0
}

// Registry hands out one Workspace per session id
type Registry struct {
	geocoder capture.Geocoder
	now      func() time.Time

	mu    sync.Mutex
	items map[string]*Workspace
}

func NewRegistry(geocoder capture.Geocoder) *Registry {
	return &Registry{
		geocoder: geocoder,
		now:      time.Now,
		items:    make(map[string]*Workspace),
	}
}

// Get returns the session's workspace, creating it on first use
func (r *Registry) Get(sessionID string) *Workspace {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.items[sessionID]
	if !ok {
		ws = newWorkspace(r.geocoder, now)
		r.items[sessionID] = ws
		return ws
	}
	ws.touch(now)
	return ws
}

// Discard drops the session's workspace, if any
func (r *Registry) Discard(sessionID string) {
	r.mu.Lock()
	delete(r.items, sessionID)
	r.mu.Unlock()
}

// Sweep drops workspaces idle for longer than maxIdle and returns how many
// were dropped. Workspaces with an action in flight are kept.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, ws := range r.items {
		if ws.idleSince(cutoff) {
			delete(r.items, id)
			n++
		}
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
