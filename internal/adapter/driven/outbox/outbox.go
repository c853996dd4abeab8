// Package outbox implements the Notifier port by writing each message as a
// MIME file into a directory, for pickup by a mail relay or for local testing.
package outbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"

	"github.com/ericfisherdev/examdesk/internal/domain/model"
	"github.com/ericfisherdev/examdesk/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Notifier = (*Outbox)(nil)

// DefaultFrom is the sender address written on every message.
const DefaultFrom = "no-reply@examdesk.local"

// Outbox writes messages as .eml files into dir.
type Outbox struct {
	dir    string
	from   string
	now    func() time.Time
	logger *slog.Logger
}

// New creates an Outbox writing into dir, creating it if needed.
func New(dir string, logger *slog.Logger) (*Outbox, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create outbox dir: %w", err)
	}
	return &Outbox{
		dir:    dir,
		from:   DefaultFrom,
		now:    time.Now,
		logger: logger,
	}, nil
}

// Dir returns the directory messages are written to.
func (o *Outbox) Dir() string {
	return o.dir
}

// Notify renders msg and writes it atomically, so a relay never sees a
// partially written file.
func (o *Outbox) Notify(ctx context.Context, address string, msg model.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if address == "" || strings.ContainsAny(address, "\r\n") {
		return errors.New("outbox: invalid recipient address")
	}

	now := o.now().UTC()
	data, err := o.compose(address, msg, now)
	if err != nil {
		return err
	}

	name := fmt.Sprintf("%s-%d-%s.eml", msg.Kind, now.UnixNano(), uuid.NewString()[:8])
	path := filepath.Join(o.dir, name)
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write outbox message: %w", err)
	}

	o.logger.Info("message written to outbox", "kind", msg.Kind, "path", path)
	return nil
}

// compose builds a multipart/alternative message with the markdown body as
// text/plain and its rendering as text/html.
func (o *Outbox) compose(address string, msg model.Message, now time.Time) ([]byte, error) {
	var parts bytes.Buffer
	mw := multipart.NewWriter(&parts)

	if err := writePart(mw, "text/plain; charset=utf-8", msg.Body); err != nil {
		return nil, err
	}
	if err := writePart(mw, "text/html; charset=utf-8", renderHTML(msg.Body)); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", o.from)
	fmt.Fprintf(&buf, "To: %s\r\n", address)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", now.Format(time.RFC1123Z))
	fmt.Fprintf(&buf, "X-Examdesk-Kind: %s\r\n", msg.Kind)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", mw.Boundary())
	buf.Write(parts.Bytes())

	return buf.Bytes(), nil
}

func writePart(mw *multipart.Writer, contentType, body string) error {
	header := textproto.MIMEHeader{}
	header.Set("Content-Type", contentType)
	header.Set("Content-Transfer-Encoding", "8bit")

	w, err := mw.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create %s part: %w", contentType, err)
	}
	if _, err := w.Write([]byte(body)); err != nil {
		return fmt.Errorf("write %s part: %w", contentType, err)
	}
	return nil
}
