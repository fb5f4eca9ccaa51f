package runner

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/report"
	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/scheduler"
	"github.com/wneessen/go-mail"
)

// MailNotifier 通过邮件发送排课结果，正文为文本课表，附件为适应度曲线
type MailNotifier struct {
	client *mail.Client
	from   string
}

func NewMailNotifier(client *mail.Client, from string) *MailNotifier {
	return &MailNotifier{
		client: client,
		from:   from,
	}
}

func (n *MailNotifier) Notify(to string, run *domain.SchedulingRun, result *scheduler.Result) error {
	dir, err := os.MkdirTemp("", "activity-scheduler-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	msg, err := buildMessage(n.from, to, run, result, dir)
	if err != nil {
		return err
	}

	return n.client.DialAndSend(msg)
}

// buildMessage 构建通知邮件，图表会先写入 dir 再作为附件读取
func buildMessage(from, to string, run *domain.SchedulingRun, result *scheduler.Result, dir string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, err
	}
	if err := msg.To(to); err != nil {
		return nil, err
	}
	msg.Subject(fmt.Sprintf("排课结果 - 目录 %d", run.CatalogID))

	var body bytes.Buffer
	fmt.Fprintf(&body, "排课任务 %s 已完成。\n\n", run.ID)
	if err := report.WriteSchedule(&body, result); err != nil {
		return nil, err
	}
	msg.SetBodyString(mail.TypeTextPlain, body.String())

	if result.History.Len() > 0 {
		chart := filepath.Join(dir, "fitness_plot.png")
		if err := report.PlotHistory(&result.History, chart); err != nil {
			return nil, err
		}
		msg.AttachFile(chart)
	}

	return msg, nil
}
