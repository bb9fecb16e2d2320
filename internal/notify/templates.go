package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"vision-fit-guide/backend/internal/catalog"
	"vision-fit-guide/backend/internal/scoring"
)

var templateFuncs = template.FuncMap{"inc": func(i int) int { return i + 1 }}

var internalAlertHTML = template.Must(template.New("internal").Funcs(templateFuncs).Parse(`<!DOCTYPE html>
<html><body style="font-family:-apple-system,'Segoe UI',Roboto,sans-serif;background:#f6f9fc">
<div style="max-width:600px;margin:0 auto;background:#fff;padding:24px">
<h1>New Vision Trip Lead</h1>
<p><strong>Church:</strong> {{.ChurchName}}{{if .Denomination}} ({{.Denomination}}){{end}}<br>
<strong>Contact:</strong> {{.ContactName}}{{if .ContactRole}}, {{.ContactRole}}{{end}}<br>
<strong>Email:</strong> <a href="mailto:{{.Email}}">{{.Email}}</a><br>
<strong>Attendance:</strong> {{.Attendance}}<br>
<strong>Confidence:</strong> {{.Confidence}}</p>
<hr>
{{range $i, $m := .Matches}}<h2>{{inc $i}}. {{$m.Country}} ({{$m.Score}}% match)</h2>
<ul>{{range $m.Reasons}}<li>{{.}}</li>{{end}}</ul>
{{end}}{{if .ID}}<p style="color:#8898aa">Fit guide {{.ID}}</p>{{end}}
</div></body></html>`))

var pastorResultsHTML = template.Must(template.New("pastor").Funcs(templateFuncs).Parse(`<!DOCTYPE html>
<html><body style="font-family:-apple-system,'Segoe UI',Roboto,sans-serif;background:#f6f9fc">
<div style="max-width:600px;margin:0 auto;background:#fff;padding:24px">
<h1>Your HopeChest Partnership Guide</h1>
<p>Hi {{.FirstName}},</p>
<p>Thank you for using the HopeChest Partnership Fit Guide! Based on your church's priorities and preferences, here are your top 3 recommended countries for 2026:</p>
{{range $i, $m := .Matches}}<div style="border-left:4px solid #2563eb;background:#f8fafc;padding:12px;margin:12px 0">
<h2>{{inc $i}}. {{$m.Country}}</h2>
<p><strong>{{$m.Score}}% Match</strong></p>
<ul>{{range $m.Reasons}}<li>{{.}}</li>{{end}}</ul>
</div>
{{end}}<p>Ready to take the next step? View the complete 2026 schedule and available trip dates for your top matches.</p>
<p><a href="{{.ScheduleURL}}" style="background:#2563eb;color:#fff;padding:12px 20px;border-radius:6px;text-decoration:none">View Full 2026 Schedule</a></p>
<p>Our team will be in touch soon to discuss next steps and answer any questions you may have.</p>
<p>Blessings,<br><strong>The HopeChest Team</strong></p>
<p style="color:#8898aa;font-size:12px">Questions? Reply to this email or contact us at partnerships@hopechest.org</p>
</div></body></html>`))

type emailView struct {
	ID           string
	ChurchName   string
	Denomination string
	ContactName  string
	ContactRole  string
	FirstName    string
	Email        string
	Attendance   string
	Confidence   string
	ScheduleURL  string
	Matches      []scoring.CountryScore
}

func newEmailView(lead Lead, scheduleURL string) emailView {
	a := lead.Answers
	matches := lead.Result.Top3
	if len(matches) > 3 {
		matches = matches[:3]
	}
	first := catalog.FirstName(a.ContactName)
	if first == "" {
		first = "friend"
	}
	return emailView{
		ID:           lead.PublicID,
		ChurchName:   strings.TrimSpace(a.ChurchName),
		Denomination: strings.TrimSpace(a.Denomination),
		ContactName:  strings.TrimSpace(a.ContactName),
		ContactRole:  strings.TrimSpace(a.ContactRole),
		FirstName:    first,
		Email:        strings.TrimSpace(a.Email),
		Attendance:   string(a.Attendance),
		Confidence:   string(lead.Result.Confidence),
		ScheduleURL:  scheduleURL,
		Matches:      matches,
	}
}

func renderHTML(tmpl *template.Template, view emailView) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

func renderText(view emailView, intro string, withSchedule bool) string {
	b := &strings.Builder{}
	b.WriteString(intro)
	b.WriteString("\n\n")
	for i, m := range view.Matches {
		fmt.Fprintf(b, "%d. %s (%d%% match)\n", i+1, m.Country, m.Score)
		for _, r := range m.Reasons {
			fmt.Fprintf(b, "   - %s\n", r)
		}
	}
	if withSchedule && view.ScheduleURL != "" {
		fmt.Fprintf(b, "\nView the full 2026 schedule: %s\n", view.ScheduleURL)
	}
	return b.String()
}
