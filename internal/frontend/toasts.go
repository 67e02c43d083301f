package frontend

import (
	"sync"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/sidestacker/sidestacker/internal/session"
)

// Toast is one notification on screen.
type Toast struct {
	ID int
	session.Notification
}

// ToastList holds the notifications on screen. Sticky ones stay until
// replaced by one of the same kind or until Clear; the others are removed
// by ID once their time is up.
type ToastList struct {
	mu     sync.Mutex
	nextID int
	toasts []Toast
}

// Push adds n and returns its ID.
func (l *ToastList) Push(n session.Notification) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	t := Toast{ID: l.nextID, Notification: n}
	if n.Sticky {
		for i, existing := range l.toasts {
			if existing.Sticky && existing.Kind == n.Kind {
				l.toasts[i] = t
				return t.ID
			}
		}
	}
	l.toasts = append(l.toasts, t)
	return t.ID
}

// Remove drops the toast with the given ID, if still there.
func (l *ToastList) Remove(id int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, t := range l.toasts {
		if t.ID == id {
			l.toasts = append(l.toasts[:i:i], l.toasts[i+1:]...)
			return true
		}
	}
	return false
}

// ClearSticky drops all sticky toasts.
func (l *ToastList) ClearSticky() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.toasts[:0:0]
	for _, t := range l.toasts {
		if !t.Sticky {
			kept = append(kept, t)
		}
	}
	changed := len(kept) != len(l.toasts)
	l.toasts = kept
	return changed
}

// List returns a copy of the toasts, oldest first.
func (l *ToastList) List() []Toast {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Toast(nil), l.toasts...)
}

// Toasts renders State's notifications.
type Toasts struct {
	app.Compo
}

var toastClass = map[session.Level]string{
	session.LevelInfo:    "toast info",
	session.LevelSuccess: "toast success",
	session.LevelWarning: "toast warning",
	session.LevelError:   "toast error",
}

func (t *Toasts) Render() app.UI {
	var items []app.UI
	for _, toast := range State.Toasts.List() {
		id := toast.ID
		body := []app.UI{app.Strong().Text(toast.Title)}
		if toast.Description != "" {
			body = append(body, app.Br(), app.Small().Text(toast.Description))
		}
		items = append(items, app.Article().
			Class(toastClass[toast.Level]).
			Role("status").
			OnClick(func(ctx app.Context, e app.Event) {
				if State.Toasts.Remove(id) {
					State.Notify()
				}
			}).
			Body(body...))
	}
	return app.Aside().Class("toasts").Body(items...)
}
