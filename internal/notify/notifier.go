package notify

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	DefaultFrom        = "noreply@missionvox.ai"
	DefaultScheduleURL = "https://www.hopechest.org/vision-trips/"
	PastorSubject      = "Your HopeChest Partnership Guide"
)

// NotifierConfig controls who the lead emails come from and go to.
type NotifierConfig struct {
	From        string
	InternalTo  []string
	ScheduleURL string
}

// Notifier sends the internal lead alert and the pastor results email.
type Notifier struct {
	sender      Sender
	from        string
	internalTo  []string
	scheduleURL string
}

// NewNotifier builds a Notifier. A nil sender makes every email report as skipped.
func NewNotifier(sender Sender, cfg NotifierConfig) *Notifier {
	from := strings.TrimSpace(cfg.From)
	if from == "" {
		from = DefaultFrom
	}
	schedule := strings.TrimSpace(cfg.ScheduleURL)
	if schedule == "" {
		schedule = DefaultScheduleURL
	}
	var to []string
	for _, addr := range cfg.InternalTo {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, addr)
		}
	}
	return &Notifier{sender: sender, from: from, internalTo: to, scheduleURL: schedule}
}

// Enabled reports whether any email can leave the process, real or logged.
func (n *Notifier) Enabled() bool {
	return n != nil && n.sender != nil && n.sender.Enabled()
}

// InternalSubject is the alert subject for a church.
func InternalSubject(churchName string) string {
	return "New Vision Trip Lead: " + strings.TrimSpace(churchName)
}

// NotifyLead sends the internal alert, then the pastor email. A failure of one does
// not stop the other; every failure is collected in the report.
func (n *Notifier) NotifyLead(ctx context.Context, lead Lead) Report {
	report := Report{Internal: StatusSkipped, Pastor: StatusSkipped}
	if !n.Enabled() {
		return report
	}
	view := newEmailView(lead, n.scheduleURL)

	if len(n.internalTo) == 0 {
		logrus.WithField("church", view.ChurchName).Warn("no internal recipients configured - lead alert not sent")
	} else {
		msg := Message{
			From:    n.from,
			To:      n.internalTo,
			ReplyTo: view.Email,
			Subject: InternalSubject(view.ChurchName),
			Text: renderText(view, fmt.Sprintf("New lead from %s (%s, %s).",
				view.ChurchName, view.ContactName, view.Email), false),
		}
		report.Internal, report.InternalID = n.deliver(ctx, internalAlertHTML, view, msg, &report)
	}

	if view.Email != "" {
		msg := Message{
			From:    n.from,
			To:      []string{view.Email},
			Subject: PastorSubject,
			Text: renderText(view, fmt.Sprintf("Hi %s, here are your top 3 recommended countries for 2026:",
				view.FirstName), true),
		}
		report.Pastor, report.PastorID = n.deliver(ctx, pastorResultsHTML, view, msg, &report)
	}
	return report
}

func (n *Notifier) deliver(ctx context.Context, tmpl *template.Template, view emailView, msg Message, report *Report) (Status, string) {
	html, err := renderHTML(tmpl, view)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
		return StatusFailed, ""
	}
	msg.HTML = html

	id, err := n.sender.Send(ctx, msg)
	fields := logrus.Fields{"subject": msg.Subject, "to": strings.Join(msg.To, ",")}
	switch {
	case errors.Is(err, ErrDisabled):
		return StatusSkipped, ""
	case err != nil:
		logrus.WithFields(fields).WithError(err).Warn("send email")
		report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", msg.Subject, err))
		return StatusFailed, ""
	case IsLogged(id):
		return StatusLogged, id
	default:
		logrus.WithFields(fields).WithField("id", id).Info("email sent")
		return StatusSent, id
	}
}
