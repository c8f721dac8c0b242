package notify

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"gopkg.in/gomail.v2"
)

func TestNewSendGridSender_NilWithoutAPIKey(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "",
		FromEmail: "test@example.com",
	}, nil)

	if sender != nil {
		t.Error("expected nil sender when API key is empty")
	}
}

func TestNewSendGridSender_DefaultFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "test-key",
		FromEmail: "test@example.com",
	}, nil)

	if sender == nil {
		t.Fatal("expected non-nil sender")
	}
	if sender.fromName != DefaultFromName {
		t.Errorf("expected default from name %q, got %q", DefaultFromName, sender.fromName)
	}
}

func TestSendGridSender_Send_NilClient(t *testing.T) {
	sender := &SendGridSender{
		client: nil,
	}

	err := sender.Send(context.Background(), EmailMessage{
		To:      "recipient@example.com",
		Subject: "Test",
		Body:    "Test body",
	})

	if err == nil {
		t.Error("expected error when client is nil")
	}
}

func TestSendGridSender_BuildMessageAttachesCalendar(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{APIKey: "test-key", FromEmail: "care@example.com"}, nil)
	msg := sender.buildMessage(EmailMessage{
		To:      "patient@example.com",
		Subject: "Confirmed",
		Body:    "See you soon",
		Attachments: []Attachment{{
			Filename:    "apt-1.ics",
			ContentType: "text/calendar",
			Content:     []byte("BEGIN:VCALENDAR\r\n"),
		}},
	})

	if len(msg.Attachments) != 1 {
		t.Fatalf("expected one attachment, got %d", len(msg.Attachments))
	}
	att := msg.Attachments[0]
	if att.Filename != "apt-1.ics" || att.Type != "text/calendar" {
		t.Errorf("unexpected attachment metadata: %+v", att)
	}
	decoded, err := base64.StdEncoding.DecodeString(att.Content)
	if err != nil || string(decoded) != "BEGIN:VCALENDAR\r\n" {
		t.Errorf("attachment content not base64 of the ics: %q", att.Content)
	}
	if len(msg.Content) != 2 {
		t.Errorf("expected text and html content, got %d", len(msg.Content))
	}
}

func TestStubEmailSender_Send(t *testing.T) {
	sender := NewStubEmailSender(nil)

	err := sender.Send(context.Background(), EmailMessage{
		To:      "recipient@example.com",
		Subject: "Test Subject",
		Body:    "Test body",
	})

	if err != nil {
		t.Errorf("stub sender should not return error, got: %v", err)
	}
}

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESSender_Send(t *testing.T) {
	fake := &fakeSES{}
	sender := NewSESSender(fake, SESConfig{FromEmail: "care@example.com"}, nil)

	err := sender.Send(context.Background(), EmailMessage{
		To:      "patient@example.com",
		Subject: "Confirmed",
		Body:    "plain",
		HTML:    "<p>html</p>",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := aws.ToString(fake.input.FromEmailAddress); got != "Therapy Booking <care@example.com>" {
		t.Errorf("unexpected from address %q", got)
	}
	body := fake.input.Content.Simple.Body
	if aws.ToString(body.Text.Data) != "plain" || aws.ToString(body.Html.Data) != "<p>html</p>" {
		t.Errorf("unexpected body: %+v", body)
	}

	fake.err = errors.New("throttled")
	if err := sender.Send(context.Background(), EmailMessage{To: "x@example.com"}); err == nil {
		t.Error("expected SES error to propagate")
	}
}

func TestNewSESSender_NilClient(t *testing.T) {
	if NewSESSender(nil, SESConfig{}, nil) != nil {
		t.Error("expected nil sender without a client")
	}
}

func TestSESSender_SendsRawMIMEWithAttachments(t *testing.T) {
	fake := &fakeSES{}
	sender := NewSESSender(fake, SESConfig{FromEmail: "care@example.com"}, nil)

	err := sender.Send(context.Background(), EmailMessage{
		To:      "patient@example.com",
		Subject: "Confirmed",
		Body:    "See attached invite.",
		Attachments: []Attachment{{
			Filename:    "apt-1.ics",
			ContentType: "text/calendar; charset=utf-8",
			Content:     []byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"),
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.input.Content.Simple != nil {
		t.Fatalf("expected raw content when attachments are present")
	}
	raw := string(fake.input.Content.Raw.Data)
	for _, want := range []string{"Subject: Confirmed", "text/calendar", `filename="apt-1.ics"`, "multipart/mixed"} {
		if !strings.Contains(raw, want) {
			t.Errorf("raw message missing %q", want)
		}
	}
}

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return f.err
}

func TestSMTPSender_Send(t *testing.T) {
	dialer := &fakeDialer{}
	sender := newSMTPSenderWithDialer(dialer, SMTPConfig{FromEmail: "care@example.com"}, nil)

	err := sender.Send(context.Background(), EmailMessage{
		To:          "patient@example.com",
		ToName:      "Asha",
		Subject:     "Confirmed",
		Body:        "plain",
		HTML:        "<p>html</p>",
		Attachments: []Attachment{{Filename: "apt-1.ics", Content: []byte("BEGIN:VCALENDAR")}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dialer.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(dialer.sent))
	}
	m := dialer.sent[0]
	if got := m.GetHeader("From"); len(got) != 1 || !strings.Contains(got[0], "care@example.com") {
		t.Errorf("unexpected from header %v", got)
	}
	if got := m.GetHeader("To"); len(got) != 1 || !strings.Contains(got[0], "patient@example.com") {
		t.Errorf("unexpected to header %v", got)
	}

	dialer.err = errors.New("relay down")
	if err := sender.Send(context.Background(), EmailMessage{To: "x@example.com"}); err == nil {
		t.Error("expected relay error to propagate")
	}
}

func TestSMTPSender_RespectsCancelledContext(t *testing.T) {
	dialer := &fakeDialer{}
	sender := newSMTPSenderWithDialer(dialer, SMTPConfig{FromEmail: "care@example.com"}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sender.Send(ctx, EmailMessage{To: "x@example.com"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(dialer.sent) != 0 {
		t.Fatalf("expected nothing sent")
	}
}

func TestNewSMTPSender_NilWithoutHost(t *testing.T) {
	if NewSMTPSender(SMTPConfig{}, nil) != nil {
		t.Error("expected nil sender without a host")
	}
	if NewSMTPSender(SMTPConfig{Host: "smtp.example.com"}, nil) == nil {
		t.Error("expected sender when host is set")
	}
}
