package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/scheduler"
)

// WriteSchedule 以表格形式输出最优课表
func WriteSchedule(w io.Writer, result *scheduler.Result) error {
	if _, err := fmt.Fprintf(w, "最佳适应度: %.4f\n", result.BestFitness); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "完成代数: %d", result.Generations); err != nil {
		return err
	}
	if result.Stopped {
		if _, err := fmt.Fprint(w, "（提前终止）"); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprint(w, "\n\n"); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "课程\t教室\t时间\t导师")
	for _, item := range result.Schedule {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", item.Activity, item.Room, item.TimeSlot, item.Facilitator)
	}

	return tw.Flush()
}
