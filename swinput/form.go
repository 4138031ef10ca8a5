//go:build !rp2040 && !rp2350

package swinput

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"servolink-go/types"
)

// FormSource holds virtual switches set through web form submissions.
// Switches are instantiated off; a well-formed submission mutates the
// state and offers the new snapshot. Malformed or unauthenticated
// requests are rejected before any mutation.
type FormSource struct {
	mu    sync.Mutex
	state *types.SwitchState
	token string
	offer func(*types.SwitchState) bool
}

// NewFormSource creates the virtual switch set. token, when non-empty,
// must accompany every request; offer receives each accepted snapshot.
func NewFormSource(ids []string, token string, offer func(*types.SwitchState) bool) *FormSource {
	return &FormSource{
		state: types.NewSwitchState(ids),
		token: token,
		offer: offer,
	}
}

// Read returns the latest received snapshot.
func (f *FormSource) Read() *types.SwitchState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.Clone()
}

// Handler serves the switch form on "/" and accepts submissions on
// "/data" as query-encoded id=value pairs, value 0 or 1.
func (f *FormSource) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", f.handleForm)
	mux.HandleFunc("/data", f.handleData)
	return mux
}

func (f *FormSource) authorised(r *http.Request) bool {
	return f.token == "" || r.URL.Query().Get("token") == f.token
}

func (f *FormSource) handleForm(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !f.authorised(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	f.renderForm(w)
}

func (f *FormSource) handleData(w http.ResponseWriter, r *http.Request) {
	if !f.authorised(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	// Validate before mutating: a malformed request must leave the
	// state untouched. Unrecognised keys are ignored, not errors.
	updates := make(map[string]bool)
	f.mu.Lock()
	for key, vals := range r.URL.Query() {
		if key == "token" {
			continue
		}
		if _, known := f.state.Get(key); !known {
			continue
		}
		if len(vals) != 1 || (vals[0] != "0" && vals[0] != "1") {
			f.mu.Unlock()
			http.Error(w, "bad value for "+key, http.StatusBadRequest)
			return
		}
		updates[key] = vals[0] == "1"
	}
	for id, on := range updates {
		f.state.Set(id, on)
	}
	snapshot := f.state.Clone()
	f.mu.Unlock()

	if len(updates) > 0 && f.offer != nil {
		f.offer(snapshot)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	f.renderForm(w)
}

// renderForm writes a radio-button form reflecting the current state.
func (f *FormSource) renderForm(w http.ResponseWriter) {
	f.mu.Lock()
	ids := f.state.IDs()
	vals := make(map[string]bool, len(ids))
	for _, id := range ids {
		vals[id], _ = f.state.Get(id)
	}
	f.mu.Unlock()

	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><title>switches</title></head><body>\n")
	b.WriteString("<form action=\"/data\" method=\"get\">\n")
	if f.token != "" {
		fmt.Fprintf(&b, "<input type=\"hidden\" name=\"token\" value=%q>\n", f.token)
	}
	for _, id := range ids {
		onChecked, offChecked := "", " checked"
		if vals[id] {
			onChecked, offChecked = " checked", ""
		}
		fmt.Fprintf(&b, "<p>%s: <label><input type=\"radio\" name=%q value=\"0\"%s> off</label>\n",
			id, id, offChecked)
		fmt.Fprintf(&b, "<label><input type=\"radio\" name=%q value=\"1\"%s> on</label></p>\n",
			id, onChecked)
	}
	b.WriteString("<p><input type=\"submit\" value=\"apply\"></p>\n</form></body></html>\n")
	fmt.Fprint(w, b.String())
}
