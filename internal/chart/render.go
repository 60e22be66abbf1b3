package chart

import (
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/luki/pitemp/internal/history"
)

const (
	block    = "█"
	plainOff = "░"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// ZoneColor returns the basic ANSI color of a zone. Off cells are drawn in
// black so they read as background rather than blank space.
func ZoneColor(z Zone) lipgloss.Color {
	switch z {
	case Cyan:
		return lipgloss.Color("6")
	case Yellow:
		return lipgloss.Color("3")
	case Red:
		return lipgloss.Color("1")
	default:
		return lipgloss.Color("0")
	}
}

// Renderer turns zones into styled text.
type Renderer struct {
	r      *lipgloss.Renderer
	styles map[Zone]lipgloss.Style
	color  bool
}

// NewRenderer returns a renderer writing for w. With color set the basic
// ANSI profile is forced, so escapes are emitted even when w is not a
// terminal. Without it filled cells are plain blocks and off cells a light
// shade.
func NewRenderer(w io.Writer, color bool) *Renderer {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.ANSI)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return newRenderer(r, color)
}

// DefaultRenderer uses lipgloss' detected terminal profile.
func DefaultRenderer() *Renderer {
	r := lipgloss.DefaultRenderer()
	return newRenderer(r, r.ColorProfile() != termenv.Ascii)
}

func newRenderer(r *lipgloss.Renderer, color bool) *Renderer {
	styles := make(map[Zone]lipgloss.Style, 4)
	for _, z := range []Zone{Off, Cyan, Yellow, Red} {
		styles[z] = r.NewStyle().Foreground(ZoneColor(z))
	}
	return &Renderer{r: r, styles: styles, color: color}
}

// Style returns the style used for zone z.
func (rd *Renderer) Style(z Zone) lipgloss.Style {
	return rd.styles[z]
}

// Cell returns the glyph for one bar cell in zone z.
func (rd *Renderer) Cell(z Zone) string {
	if z == Off && !rd.color {
		return plainOff
	}
	return rd.styles[z].Render(block)
}

// Bar concatenates one colored full block per zone, in order.
func (rd *Renderer) Bar(zones []Zone) string {
	var sb strings.Builder
	for _, z := range zones {
		sb.WriteString(rd.Cell(z))
	}
	return sb.String()
}

// Sparkline renders the last width points scaled to [rangeMin, rangeMax],
// each colored by the zone its value falls in. Missing history is padded
// with dim dashes on the left.
func (rd *Renderer) Sparkline(points []history.Point, width int, rangeMin, rangeMax float64, th Thresholds) string {
	if width <= 0 {
		return ""
	}

	dim := rd.r.NewStyle().Foreground(lipgloss.Color("8"))
	if len(points) == 0 {
		return dim.Render(strings.Repeat("╌", width))
	}
	if len(points) > width {
		points = points[len(points)-width:]
	}

	span := rangeMax - rangeMin
	if span <= 0 {
		span = 1
	}

	var sb strings.Builder
	if pad := width - len(points); pad > 0 {
		sb.WriteString(dim.Render(strings.Repeat("╌", pad)))
	}

	for _, p := range points {
		norm := (p.Value - rangeMin) / span
		norm = math.Max(0, math.Min(1, norm))

		idx := int(norm * 7)
		if idx > 7 {
			idx = 7
		}

		z := ZoneAt(p.Value-rangeMin, span, th)
		if z == Off {
			sb.WriteString(dim.Render(string(sparkBlocks[idx])))
			continue
		}
		sb.WriteString(rd.styles[z].Render(string(sparkBlocks[idx])))
	}
	return sb.String()
}
