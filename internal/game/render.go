package game

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/space-dodge/internal/core"
)

// hudRows is the number of rows reserved for the HUD at the top.
const hudRows = 1

// viewX returns the field X range mapped onto the screen width.
func (g *Game) viewX() (lo, hi float64) {
	r := g.run.Rules()
	half := max(r.TravelBound, r.SpawnBand) + r.HitRadiusX
	return -half, half
}

// column maps a field X onto a screen column.
func (g *Game) column(x float64, width int) int {
	lo, hi := g.viewX()
	return core.Scale(x, lo, hi, 0, width-1)
}

// row maps a field Y onto a screen row below the HUD.
func (g *Game) row(y float64, height int) int {
	r := g.run.Rules()
	return core.Scale(y, r.SpawnY, r.PassY, hudRows, height-1)
}

// Render draws the current run to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	w, h := dst.Width(), dst.Height()
	if w == 0 || h <= hudRows {
		return
	}
	run := g.run
	rules := run.Rules()

	dst.DrawHLine(0, g.row(rules.PassY, h), w, PassLineChar, core.ColorGray)

	for _, e := range run.Enemies() {
		if run.HasCollided(e.ID) {
			continue
		}
		color := core.ColorRed
		if run.HasPassed(e.ID) {
			color = core.ColorGray
		}
		dst.SetColored(g.column(e.X, w), g.row(e.Y, h), EnemyChar, color)
	}

	dst.SetColored(g.column(run.PlayerX(), w), g.row(rules.PlayerY, h), PlayerChar, core.ColorBrightCyan)

	for _, fx := range run.Effects() {
		col, row := g.column(fx.X, w), g.row(fx.Y, h)
		dst.SetColored(col, row, ExplosionChar, core.ColorOrange)
		dst.SetColored(col-1, row, ExplosionChar, core.ColorYellow)
		dst.SetColored(col+1, row, ExplosionChar, core.ColorYellow)
	}

	g.drawHUD(dst)

	switch {
	case run.Terminal():
		drawCenteredMessage(dst, core.ColorBrightRed,
			"GAME OVER",
			"Score: "+FormatScore(run.Score()),
			"Press R to retry")
	case run.Paused():
		drawCenteredMessage(dst, core.ColorBrightYellow,
			"GAME PAUSED",
			"Press P to resume")
	}
}

// drawHUD draws lives on the left and the score on the right of the top row.
func (g *Game) drawHUD(dst *core.Screen) {
	run := g.run
	lives := fmt.Sprintf(" Lives: %s", strings.Repeat("♥", run.Lives()))
	dst.DrawTextColored(0, 0, lives, core.ColorRed)

	score := FormatScore(run.Score()) + " "
	if m := run.Rules().Multiplier; m > 1 {
		score = fmt.Sprintf("x%d  %s", m, score)
	}
	dst.DrawTextRight(dst.Width()-1, 0, score, core.ColorWhite)
}

// FormatScore renders a score zero-padded to five digits.
func FormatScore(score int) string {
	return fmt.Sprintf("%05d", score)
}

// drawCenteredMessage draws a boxed message in the middle of the screen.
func drawCenteredMessage(dst *core.Screen, c core.Color, lines ...string) {
	boxW := 0
	for _, l := range lines {
		boxW = max(boxW, len([]rune(l)))
	}
	boxW += 4
	boxH := len(lines)*2 + 1

	box := core.CenteredRect(dst.Bounds(), boxW, boxH)
	dst.FillRect(box, ' ')
	dst.DrawBox(box, c)

	for i, l := range lines {
		color := core.ColorWhite
		if i == 0 {
			color = c
		}
		dst.DrawTextCentered(box, box.Y+1+i*2, l, color)
	}
}
