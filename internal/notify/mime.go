package notify

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"
)

// composeMIME renders msg as a multipart message with its attachments.
func composeMIME(fromEmail, fromName string, msg EmailMessage) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", fromEmail, fromName)
	if msg.ToName != "" {
		m.SetAddressHeader("To", msg.To, msg.ToName)
	} else {
		m.SetHeader("To", msg.To)
	}
	m.SetHeader("Subject", msg.Subject)

	switch {
	case msg.Body != "" && msg.HTML != "":
		m.SetBody("text/plain", msg.Body)
		m.AddAlternative("text/html", msg.HTML)
	case msg.HTML != "":
		m.SetBody("text/html", msg.HTML)
	default:
		m.SetBody("text/plain", msg.Body)
	}

	for _, att := range msg.Attachments {
		content := att.Content
		settings := []gomail.FileSetting{
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}),
		}
		if att.ContentType != "" {
			settings = append(settings, gomail.SetHeader(map[string][]string{
				"Content-Type": {att.ContentType},
			}))
		}
		m.Attach(att.Filename, settings...)
	}
	return m
}

// renderMIME serializes a composed message for raw transports.
func renderMIME(m *gomail.Message) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("notify: render mime: %w", err)
	}
	return buf.Bytes(), nil
}
