// Package notify builds deal alert emails and delivers them over SMTP.
package notify

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"strings"
	"time"

	"github.com/example/flight-deals/internal/itinerary"
)

const DefaultSubject = "No subject"

var ErrUnknownContentType = errors.New("unknown content type")

// Message is one single-part email. ContentType is "plain" or "html".
type Message struct {
	From        string
	To          []string
	Subject     string
	Body        string
	ContentType string
	Date        time.Time
}

func NewMessage(from string, to []string, subject, body, contentType string) (Message, error) {
	if contentType != "plain" && contentType != "html" {
		return Message{}, fmt.Errorf("%q: %w", contentType, ErrUnknownContentType)
	}
	if subject == "" {
		subject = DefaultSubject
	}
	return Message{
		From:        from,
		To:          append([]string(nil), to...),
		Subject:     subject,
		Body:        body,
		ContentType: contentType,
		Date:        time.Now(),
	}, nil
}

// Subject is the alert subject line for it.
func Subject(it itinerary.Itinerary) string {
	return fmt.Sprintf("Low price alert! Flight from %s to %s", it.CityFrom, it.CityTo)
}

// Bytes renders m as an RFC 5322 message with a quoted-printable UTF-8 body.
func (m Message) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	header := func(k, v string) { fmt.Fprintf(&buf, "%s: %s\r\n", k, v) }

	header("From", m.From)
	header("To", strings.Join(m.To, ", "))
	header("Subject", mime.QEncoding.Encode("utf-8", m.Subject))
	header("Date", m.Date.Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", fmt.Sprintf(`text/%s; charset="utf-8"`, m.ContentType))
	header("Content-Transfer-Encoding", "quoted-printable")
	buf.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&buf)
	body := strings.ReplaceAll(m.Body, "\r\n", "\n")
	if _, err := qp.Write([]byte(strings.ReplaceAll(body, "\n", "\r\n"))); err != nil {
		return nil, err
	}
	if err := qp.Close(); err != nil {
		return nil, err
	}
	buf.WriteString("\r\n")
	return buf.Bytes(), nil
}
