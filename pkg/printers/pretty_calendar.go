package printers

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"tableflip.dev/benchquest/pkg/heatmap"
	"tableflip.dev/benchquest/pkg/settings"
)

const width = len("11 12 13 14 15 16 17") // an example week

// Palette endpoints per theme: an empty day and the busiest day.
var palettes = map[settings.ThemeMode][2]string{
	settings.Light: {"#ebedf0", "#216e39"},
	settings.Dark:  {"#2d333b", "#39d353"},
}

// LevelColors blends the theme's endpoints into one hex colour per level.
func LevelColors(theme settings.ThemeMode) []string {
	ends, ok := palettes[theme]
	if !ok {
		ends = palettes[settings.Light]
	}
	from, err := colorful.Hex(ends[0])
	if err != nil {
		return nil
	}
	to, err := colorful.Hex(ends[1])
	if err != nil {
		return nil
	}
	out := make([]string, heatmap.MaxLevel+1)
	out[0], out[heatmap.MaxLevel] = from.Hex(), to.Hex()
	for level := 1; level < heatmap.MaxLevel; level++ {
		out[level] = from.BlendLab(to, float64(level)/float64(heatmap.MaxLevel)).Clamped().Hex()
	}
	return out
}

func (pp *PrettyPrint) profile() termenv.Profile {
	if color.NoColor {
		return termenv.Ascii
	}
	if f, ok := pp.w().(*os.File); ok && !isatty.IsTerminal(f.Fd()) {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// cell paints text with the background of level.
func (pp *PrettyPrint) cell(level int, text string) string {
	colors := LevelColors(pp.Theme)
	if level < 0 || level >= len(colors) {
		return text
	}
	p := pp.profile()
	if p == termenv.Ascii {
		return text
	}
	return termenv.String(text).Background(p.Color(colors[level])).String()
}

// plainMarks stand in for shading when colour is off.
const plainMarks = " .:*#"

// Heatmap prints a month as a Sunday first grid, each day shaded by its
// activity level.
func (pp *PrettyPrint) Heatmap(cal heatmap.Calendar) {
	tf := color.New(color.FgWhite, color.Italic)

	m := cal.Month.String()
	mid := (width - len(m)) / 2
	_, _ = tf.Fprintf(pp.w(), "%s%s%s\n", strings.Repeat(" ", mid), m, strings.Repeat(" ", width-mid-len(m)))

	plain := pp.profile() == termenv.Ascii
	for _, week := range cal.Weeks {
		var b strings.Builder
		for _, d := range week {
			switch {
			case d.Padding:
				b.WriteString("   ")
			case plain:
				fmt.Fprintf(&b, "%2d%c", d.Date.Day(), plainMarks[d.Level])
			default:
				b.WriteString(pp.cell(d.Level, fmt.Sprintf("%2d", d.Date.Day())))
				b.WriteString(" ")
			}
		}
		_, _ = fmt.Fprintln(pp.w(), strings.TrimRight(b.String(), " "))
	}
	_, _ = color.New(color.Faint).Fprintf(pp.w(), "%d sessions\n\n", cal.Sessions)
}

// HeatmapYear prints every month followed by the legend.
func (pp *PrettyPrint) HeatmapYear(cals []heatmap.Calendar) {
	for _, cal := range cals {
		pp.Heatmap(cal)
	}
	pp.Legend()
}

// Legend shows the level scale.
func (pp *PrettyPrint) Legend() {
	var b strings.Builder
	b.WriteString("less ")
	for level := 0; level <= heatmap.MaxLevel; level++ {
		if pp.profile() == termenv.Ascii {
			fmt.Fprintf(&b, "%c ", plainMarks[level])
			continue
		}
		b.WriteString(pp.cell(level, "  "))
		b.WriteString(" ")
	}
	b.WriteString("more")
	_, _ = fmt.Fprintln(pp.w(), b.String())
}
