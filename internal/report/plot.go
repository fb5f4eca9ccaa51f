package report

import (
	"errors"
	"image/color"

	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/domain"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	bestColor    = color.RGBA{G: 160, A: 255}
	averageColor = color.RGBA{B: 255, A: 255}
	worstColor   = color.RGBA{R: 255, A: 255}
)

// PlotHistory 绘制每一代的最佳、平均和最差适应度曲线，图片格式由 path 的扩展名决定
func PlotHistory(history *domain.FitnessHistory, path string) error {
	if history.Len() == 0 {
		return errors.New("没有可以绘制的适应度数据")
	}

	p := plot.New()
	p.Title.Text = "Genetic Algorithm Fitness Over Generations"
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Fitness"

	series := []struct {
		name   string
		values []float64
		color  color.Color
	}{
		{name: "Best Fitness", values: history.Best, color: bestColor},
		{name: "Average Fitness", values: history.Average, color: averageColor},
		{name: "Worst Fitness", values: history.Worst, color: worstColor},
	}

	for _, s := range series {
		pts := make(plotter.XYs, len(s.values))
		for i, v := range s.values {
			pts[i].X = float64(i)
			pts[i].Y = v
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = s.color

		p.Add(line)
		p.Legend.Add(s.name, line)
	}

	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	p.Legend.Left = true

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}
