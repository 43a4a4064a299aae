package rubeview

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// DefaultScenes is the scene list served next to the web build.
var DefaultScenes = []string{
	"bike",
	"bodyTypes",
	"car",
	"clock",
	"documentA",
	"documentB",
	"fixtureTypes",
	"gettingStarted",
	"images",
	"jointTypes",
	"rubegoldberg",
	"tank",
	"truck",
	"walker",
}

// DefaultScene is selected first when it is in the list.
const DefaultScene = "bike"

// Panel is the scene selector. Changing the selection calls OnChange once;
// selecting the current scene again does nothing.
type Panel struct {
	// OnChange is called with the newly selected scene name.
	OnChange func(name string)
	// Visible draws the panel overlay.
	Visible bool

	scenes  []string
	current int

	img   *ebiten.Image // cached overlay for shown
	shown string
}

// NewPanel creates a visible panel over scenes with initial selected. An
// initial name missing from the list falls back to DefaultScene, then to
// the first entry. OnChange is not called for the initial selection.
func NewPanel(scenes []string, initial string, onChange func(string)) *Panel {
	p := &Panel{
		OnChange: onChange,
		Visible:  true,
		scenes:   append([]string(nil), scenes...),
	}
	if i := p.indexOf(initial); i >= 0 {
		p.current = i
	} else if i := p.indexOf(DefaultScene); i >= 0 {
		p.current = i
	}
	return p
}

func (p *Panel) indexOf(name string) int {
	for i, s := range p.scenes {
		if s == name {
			return i
		}
	}
	return -1
}

// Scenes returns the selectable names. The slice MUST NOT be mutated.
func (p *Panel) Scenes() []string {
	return p.scenes
}

// Current returns the selected scene name, or "" for an empty list.
func (p *Panel) Current() string {
	if len(p.scenes) == 0 {
		return ""
	}
	return p.scenes[p.current]
}

// Select makes name current. It reports whether the selection changed;
// unknown names are ignored.
func (p *Panel) Select(name string) bool {
	i := p.indexOf(name)
	if i < 0 {
		return false
	}
	return p.selectIndex(i)
}

// Next selects the following scene, wrapping around.
func (p *Panel) Next() bool {
	if len(p.scenes) == 0 {
		return false
	}
	return p.selectIndex((p.current + 1) % len(p.scenes))
}

// Prev selects the preceding scene, wrapping around.
func (p *Panel) Prev() bool {
	if len(p.scenes) == 0 {
		return false
	}
	return p.selectIndex((p.current - 1 + len(p.scenes)) % len(p.scenes))
}

func (p *Panel) selectIndex(i int) bool {
	if i == p.current {
		return false
	}
	p.current = i
	if p.OnChange != nil {
		p.OnChange(p.scenes[i])
	}
	return true
}

// handleKey maps ] and PageDown to Next, [ and PageUp to Prev.
func (p *Panel) handleKey(k ebiten.Key) bool {
	switch k {
	case ebiten.KeyBracketRight, ebiten.KeyPageDown:
		return p.Next()
	case ebiten.KeyBracketLeft, ebiten.KeyPageUp:
		return p.Prev()
	}
	return false
}

// text renders the panel contents.
func (p *Panel) text(status string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "scene: %s (%d/%d)\n", p.Current(), p.current+1, len(p.scenes))
	b.WriteString("[ ] scene  R reset  F fps  H hide\n")
	b.WriteString("drag: grab  space+drag: pan  wheel: pan  ctrl+wheel: zoom")
	if status != "" {
		b.WriteString("\n")
		b.WriteString(status)
	}
	return b.String()
}

func (p *Panel) draw(dst *ebiten.Image, status string) {
	txt := p.text(status)
	if p.img == nil || txt != p.shown {
		if p.img != nil {
			p.img.Deallocate()
		}
		lines := strings.Split(txt, "\n")
		// ebitenutil's debug font is 6x16.
		w := 0
		for _, l := range lines {
			w = max(w, len(l)*6)
		}
		p.img = ebiten.NewImage(w+8, len(lines)*16+8)
		p.img.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrintAt(p.img, txt, 4, 4)
		p.shown = txt
	}
	dst.DrawImage(p.img, nil)
}
