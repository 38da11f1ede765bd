package cli

import (
	"fmt"
	"strings"

	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/models"
)

// equityCurveASCII renders the equity curve as a terminal chart.
func equityCurveASCII(curve []models.EquityPoint, width, height int) string {
	if len(curve) == 0 {
		return "No data to display"
	}

	minEquity, _ := curve[0].Equity.Float64()
	maxEquity := minEquity
	for _, point := range curve {
		v, _ := point.Equity.Float64()
		if v < minEquity {
			minEquity = v
		}
		if v > maxEquity {
			maxEquity = v
		}
	}

	equityRange := maxEquity - minEquity
	if equityRange == 0 {
		equityRange = 1
	}
	minEquity -= equityRange * 0.05
	maxEquity += equityRange * 0.05
	equityRange = maxEquity - minEquity

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}

	step := len(curve) / width
	if step == 0 {
		step = 1
	}

	for x := 0; x < width && x*step < len(curve); x++ {
		v, _ := curve[x*step].Equity.Float64()
		y := int((v - minEquity) / equityRange * float64(height-1))
		if y >= 0 && y < height {
			grid[height-1-y][x] = '█'
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Equity Curve (%.0f - %.0f)\n", minEquity, maxEquity))
	sb.WriteString(strings.Repeat("─", width+2) + "\n")
	for _, row := range grid {
		sb.WriteRune('│')
		sb.WriteString(string(row))
		sb.WriteRune('│')
		sb.WriteRune('\n')
	}
	sb.WriteString(strings.Repeat("─", width+2) + "\n")

	return sb.String()
}
