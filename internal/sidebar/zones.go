package sidebar

import (
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
)

// HitTester resolves mouse events to element ids marked during View.
type HitTester interface {
	Mark(id, s string) string
	Scan(s string) string
	// Hit returns the first of ids whose region contains msg.
	Hit(msg tea.MouseMsg, ids []string) (string, bool)
	Bounds(id string) (Rect, bool)
}

// ZoneHitTester is a HitTester backed by bubblezone.
type ZoneHitTester struct {
	manager *zone.Manager
}

func NewZoneHitTester() *ZoneHitTester {
	return &ZoneHitTester{manager: zone.New()}
}

func (z *ZoneHitTester) Mark(id, s string) string {
	return z.manager.Mark(id, s)
}

// Scan strips the markers and records zone positions. Call it once on the
// outermost view.
func (z *ZoneHitTester) Scan(s string) string {
	return z.manager.Scan(s)
}

func (z *ZoneHitTester) Hit(msg tea.MouseMsg, ids []string) (string, bool) {
	for _, id := range ids {
		info := z.manager.Get(id)
		if info == nil {
			continue
		}
		if info.InBounds(msg) {
			return id, true
		}
	}
	return "", false
}

func (z *ZoneHitTester) Bounds(id string) (Rect, bool) {
	info := z.manager.Get(id)
	if info == nil || info.IsZero() {
		return Rect{}, false
	}
	return Rect{X0: info.StartX, Y0: info.StartY, X1: info.EndX, Y1: info.EndY}, true
}
