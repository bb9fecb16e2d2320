package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"vision-fit-guide/backend/internal/config"
	"vision-fit-guide/backend/internal/scoring"
)

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(Config{}); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled got %v", err)
	}
}

func TestClientSend(t *testing.T) {
	var got sendRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/emails" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer re_test" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"email_123"}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "re_test", BaseURL: server.URL + "/"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	id, err := client.Send(context.Background(), Message{From: "a@x.example", To: []string{"b@y.example"}, Subject: "Hi", HTML: "<p>hi</p>"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if id != "email_123" {
		t.Fatalf("expected id email_123 got %q", id)
	}
	if got.Subject != "Hi" || len(got.To) != 1 || got.To[0] != "b@y.example" {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestClientSendErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"name":"validation_error","message":"invalid from address"}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "re_test", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.Send(context.Background(), Message{To: []string{"b@y.example"}, Subject: "Hi"})
	if err == nil || !strings.Contains(err.Error(), "invalid from address") {
		t.Fatalf("expected provider message in error, got %v", err)
	}
}

type recordingSender struct {
	mu      sync.Mutex
	sent    []Message
	failOn  string
	enabled bool
}

func (r *recordingSender) Enabled() bool { return r.enabled }

func (r *recordingSender) Send(_ context.Context, msg Message) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	if r.failOn != "" && msg.Subject == r.failOn {
		return "", errors.New("boom")
	}
	return "id-" + msg.Subject, nil
}

func testLead(t *testing.T) Lead {
	t.Helper()
	answers := scoring.AnswerSet{
		ChurchName:         "Grace Fellowship",
		ContactName:        "Jordan Reyes",
		Email:              "jordan@grace.example",
		Attendance:         scoring.Attendance0To50,
		CostImportance:     scoring.ImportanceHigh,
		TimeAwayImportance: scoring.ImportanceHigh,
		EnglishImportance:  scoring.ImportanceLow,
	}
	result, err := scoring.Score(answers)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	return Lead{PublicID: "guide-1", Answers: answers, Result: result}
}

func TestNotifyLeadSendsBothEmails(t *testing.T) {
	sender := &recordingSender{enabled: true}
	n := NewNotifier(sender, NotifierConfig{InternalTo: []string{"team@hopechest.example", " "}})

	report := n.NotifyLead(context.Background(), testLead(t))
	if report.Internal != StatusSent || report.Pastor != StatusSent {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected 2 emails got %d", len(sender.sent))
	}
	internal, pastor := sender.sent[0], sender.sent[1]
	if internal.Subject != "New Vision Trip Lead: Grace Fellowship" || len(internal.To) != 1 {
		t.Fatalf("unexpected internal email %+v", internal)
	}
	if internal.From != DefaultFrom || internal.ReplyTo != "jordan@grace.example" {
		t.Fatalf("unexpected internal headers %+v", internal)
	}
	if pastor.Subject != PastorSubject || pastor.To[0] != "jordan@grace.example" {
		t.Fatalf("unexpected pastor email %+v", pastor)
	}
	if !strings.Contains(pastor.HTML, "Hi Jordan,") || !strings.Contains(pastor.HTML, DefaultScheduleURL) {
		t.Fatalf("pastor email missing greeting or schedule link")
	}
	if !strings.Contains(pastor.HTML, "1. Guatemala") || !strings.Contains(pastor.Text, "Shortest trip duration") {
		t.Fatalf("pastor email missing ranking")
	}
}

func TestNotifyLeadReportsFailures(t *testing.T) {
	sender := &recordingSender{enabled: true, failOn: "New Vision Trip Lead: Grace Fellowship"}
	n := NewNotifier(sender, NotifierConfig{InternalTo: []string{"team@hopechest.example"}})

	report := n.NotifyLead(context.Background(), testLead(t))
	if report.Internal != StatusFailed {
		t.Fatalf("expected internal failure, got %+v", report)
	}
	if report.Pastor != StatusSent {
		t.Fatalf("pastor email should still go out, got %+v", report)
	}
	if !strings.Contains(report.Error(), "boom") {
		t.Fatalf("expected error text, got %q", report.Error())
	}
}

func TestNotifyLeadSkipsWithoutRecipients(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	sender := &recordingSender{enabled: true}
	n := NewNotifier(sender, NotifierConfig{})
	lead := testLead(t)
	lead.Answers.Email = ""

	report := n.NotifyLead(context.Background(), lead)
	if report.Internal != StatusSkipped || report.Pastor != StatusSkipped || len(sender.sent) != 0 {
		t.Fatalf("expected nothing sent, got %+v (%d sent)", report, len(sender.sent))
	}
	warned := false
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel && strings.Contains(entry.Message, "lead alert not sent") {
			warned = true
		}
	}
	if !warned {
		t.Fatalf("skipping the internal alert must log a warning")
	}

	disabled := NewNotifier(nil, NotifierConfig{InternalTo: []string{"team@hopechest.example"}})
	if r := disabled.NotifyLead(context.Background(), testLead(t)); r.Internal != StatusSkipped || r.Pastor != StatusSkipped {
		t.Fatalf("expected skipped report, got %+v", r)
	}
}

func TestFallbackLogsWhenPrimaryDisabled(t *testing.T) {
	primary := &recordingSender{enabled: false}
	n := NewNotifier(WithFallback(primary, LogSender{}), NotifierConfig{InternalTo: []string{"team@hopechest.example"}})

	report := n.NotifyLead(context.Background(), testLead(t))
	if report.Internal != StatusLogged || report.Pastor != StatusLogged {
		t.Fatalf("expected logged report, got %+v", report)
	}
	if !IsLogged(report.PastorID) {
		t.Fatalf("expected log id, got %q", report.PastorID)
	}
	if len(primary.sent) != 0 {
		t.Fatalf("disabled primary should not be called")
	}
}

func TestFallbackKeepsPrimaryErrors(t *testing.T) {
	primary := &recordingSender{enabled: true, failOn: PastorSubject}
	chain := WithFallback(primary, LogSender{})
	if _, err := chain.Send(context.Background(), Message{To: []string{"x@y.example"}, Subject: PastorSubject}); err == nil {
		t.Fatalf("expected primary error to surface")
	}
	if WithFallback(nil, LogSender{}) == nil || WithFallback(primary, nil) != primary {
		t.Fatalf("nil members should collapse the chain")
	}
}

func TestDefaultConfigSendsInternalAlert(t *testing.T) {
	email := config.Default().Email
	n := NewNotifier(LogSender{}, NotifierConfig{
		From:        email.From,
		InternalTo:  email.InternalTo,
		ScheduleURL: email.ScheduleURL,
	})

	report := n.NotifyLead(context.Background(), testLead(t))
	if report.Internal != StatusLogged || report.Pastor != StatusLogged {
		t.Fatalf("default configuration should announce the lead internally, got %+v", report)
	}
	if report.Error() != "" {
		t.Fatalf("unexpected errors %q", report.Error())
	}
}
