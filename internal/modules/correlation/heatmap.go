package correlation

// BuildHeatmap produces the visualization payload for all three windows.
// Cells with no stored value render as 0.0 but are excluded from the
// min/max/avg aggregates; the scoring matrix in matrix.go deliberately
// treats the same cells as 0.0 evidence, so the two views diverge.
func BuildHeatmap(tickers []string, records []*Record) *Heatmap {
	windowData := make([]HeatmapWindow, 0, len(Windows))
	for _, w := range Windows {
		windowData = append(windowData, buildHeatmapWindow(w, tickers, records))
	}

	return &Heatmap{
		Labels:     append([]string(nil), tickers...),
		WindowData: windowData,
	}
}

func buildHeatmapWindow(window Window, tickers []string, records []*Record) HeatmapWindow {
	size := len(tickers)
	matrix := make([][]float64, 0, size)

	min, max, sum := 1.0, -1.0, 0.0
	count := 0

	for i := 0; i < size; i++ {
		row := make([]float64, 0, size)
		for j := 0; j < size; j++ {
			if i == j {
				row = append(row, 1.0)
				continue
			}

			value := findPairValue(tickers[i], tickers[j], records, window)
			if value != nil {
				row = append(row, *value)
				if *value < min {
					min = *value
				}
				if *value > max {
					max = *value
				}
				sum += *value
				count++
			} else {
				row = append(row, 0.0)
			}
		}
		matrix = append(matrix, row)
	}

	hw := HeatmapWindow{Window: window, Matrix: matrix}
	if count > 0 {
		hw.MinValue = min
		hw.MaxValue = max
		hw.AvgValue = sum / float64(count)
	}
	return hw
}

// findPairValue scans records for the pair in either orientation
func findPairValue(ticker1, ticker2 string, records []*Record, window Window) *float64 {
	for _, rec := range records {
		if (rec.Ticker1 == ticker1 && rec.Ticker2 == ticker2) ||
			(rec.Ticker1 == ticker2 && rec.Ticker2 == ticker1) {
			return rec.WindowValue(window)
		}
	}
	return nil
}
