// Package stats contains stint summaries and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/telehud/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary condenses the samples of one stint.
type Summary struct {
	Samples       int
	Elapsed       float64
	AvgFront      float64
	AvgRear       float64
	PeakDownforce float64
	AvgDrag       float64
	PeakDrag      float64
	AvgLoad       [model.WheelCount]float64
	FinalWear     [model.WheelCount]float64
	Downforce     []float64
}

// Summarize computes averages, peaks and the downforce trace of samples.
func Summarize(samples []model.Telemetry) Summary {
	s := Summary{Samples: len(samples)}
	if len(samples) == 0 {
		return s
	}
	s.Downforce = make([]float64, len(samples))
	for i, t := range samples {
		s.Elapsed += t.DeltaTime
		s.AvgFront += t.FrontDownforce
		s.AvgRear += t.RearDownforce
		s.AvgDrag += t.Drag
		df := t.Downforce()
		s.Downforce[i] = df
		if i == 0 || df > s.PeakDownforce {
			s.PeakDownforce = df
		}
		if i == 0 || t.Drag > s.PeakDrag {
			s.PeakDrag = t.Drag
		}
		for w := range t.Wheels {
			s.AvgLoad[w] += t.Wheels[w].TireLoad
		}
	}
	n := float64(len(samples))
	s.AvgFront /= n
	s.AvgRear /= n
	s.AvgDrag /= n
	for w := range s.AvgLoad {
		s.AvgLoad[w] /= n
	}
	s.FinalWear = wearOf(samples[len(samples)-1])
	return s
}

func wearOf(t model.Telemetry) [model.WheelCount]float64 {
	var out [model.WheelCount]float64
	for i, w := range t.Wheels {
		out[i] = w.Wear
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Downsample averages values into at most width buckets.
func Downsample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		start := i * len(values) / width
		end := (i + 1) * len(values) / width
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// TraceSmoothing is the moving average window, in samples, applied to
// downforce traces before they are downsampled.
const TraceSmoothing = 5

// DownforceTrace smooths a downforce trace and renders it as a sparkline of at
// most width characters.
func DownforceTrace(values []float64, width int) string {
	return Sparkline(Downsample(MovingAverage(values, TraceSmoothing), width))
}

// RenderStints prints a table of stints followed by a downforce sparkline for
// each. sparkWidth caps the sparkline length.
func RenderStints(w io.Writer, report Report, sparkWidth int) error {
	if len(report.Stints) == 0 {
		_, err := fmt.Fprintln(w, "No stints recorded.")
		return err
	}

	rows := make([][]string, 0, len(report.Stints))
	for _, st := range report.Stints {
		sum := report.Summaries[st.StintID]
		rows = append(rows, []string{
			fmt.Sprintf("%d", st.StintID),
			st.StartedAt.Local().Format("2006-01-02 15:04"),
			st.Source,
			fmt.Sprintf("%d", st.Samples),
			fmt.Sprintf("%.1f", st.Elapsed),
			fmt.Sprintf("%.1f", sum.AvgFront+sum.AvgRear),
			fmt.Sprintf("%.1f", sum.PeakDownforce),
			fmt.Sprintf("%.1f", sum.AvgDrag),
			fmt.Sprintf("%.2f%%", sum.FinalWear[model.WheelFL]*100),
			fmt.Sprintf("%.2f%%", sum.FinalWear[model.WheelFR]*100),
			fmt.Sprintf("%.2f%%", sum.FinalWear[model.WheelRL]*100),
			fmt.Sprintf("%.2f%%", sum.FinalWear[model.WheelRR]*100),
		})
	}
	for _, line := range formatTable(stintColumns, rows) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}

	for _, st := range report.Stints {
		trace := report.Summaries[st.StintID].Downforce
		if len(trace) == 0 {
			continue
		}
		line := DownforceTrace(trace, sparkWidth)
		if _, err := fmt.Fprintf(w, "#%d downforce |%s|\n", st.StintID, line); err != nil {
			return err
		}
	}
	return nil
}
