package gridworld

import (
	"fmt"
	"strings"

	"github.com/logrusorgru/aurora"
)

var actionSymbols = [NumActions]string{
	Left:  "<",
	Right: ">",
	Up:    "^",
	Down:  "v",
}

// RenderPolicy draws the action chosen by policy in every empty cell of
// the GridWorld, with the top row first. Objects are drawn as their
// type. If colors is true, the output is colored with ANSI escape codes.
func (g *GridWorld) RenderPolicy(policy func(State) (int, error),
	colors bool) (string, error) {
	au := aurora.NewAurora(colors)
	objectColors := []func(interface{}) aurora.Value{au.Red, au.Yellow,
		au.Magenta, au.Cyan}

	var b strings.Builder
	for y := g.r - 1; y >= 0; y-- {
		for x := 0; x < g.c; x++ {
			pos := State{x, y}
			if objType, ok := g.objects[pos]; ok {
				color := objectColors[objType%len(objectColors)]
				b.WriteString(color(fmt.Sprint(objType)).String())
				continue
			}

			action, err := policy(pos)
			if err != nil {
				return "", fmt.Errorf("renderPolicy: %v: %w", pos, err)
			}
			if action < 0 || action >= NumActions {
				return "", fmt.Errorf("renderPolicy: %v: action %d not in "+
					"[0, %d)", pos, action, NumActions)
			}
			b.WriteString(au.Blue(actionSymbols[action]).String())
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}
