package hud

import (
	"fmt"
	"math"

	"github.com/verte-zerg/telehud/internal/model"
)

// TextLines formats the three readout lines: front tire loads and wear, rear
// tire loads and wear, then front downforce, rear downforce and drag.
//
// The rear line has always printed the rear-left load in both load columns.
// That output is kept unless fixRearLoad is set.
func TextLines(t model.Telemetry, fixRearLoad bool) [3]string {
	w := t.Wheels
	rearRight := roundLoad(w[model.WheelRL].TireLoad)
	if fixRearLoad {
		rearRight = roundLoad(w[model.WheelRR].TireLoad)
	}
	return [3]string{
		wheelLine(roundLoad(w[model.WheelFL].TireLoad), roundLoad(w[model.WheelFR].TireLoad), w[model.WheelFL].Wear, w[model.WheelFR].Wear),
		wheelLine(roundLoad(w[model.WheelRL].TireLoad), rearRight, w[model.WheelRL].Wear, w[model.WheelRR].Wear),
		fmt.Sprintf("%+7.1f %+7.1f %+7.1f", t.FrontDownforce, t.RearDownforce, t.Drag),
	}
}

func wheelLine(leftLoad, rightLoad int, leftWear, rightWear float64) string {
	return fmt.Sprintf("%5d %5d %6.2f%% %6.2f%%", leftLoad, rightLoad, leftWear*100, rightWear*100)
}

func roundLoad(v float64) int {
	return int(math.Round(v))
}
