// Package eml extracts text from RFC 822 email messages.
package eml

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"github.com/custodia-labs/orion/internal/core/domain"
	"github.com/custodia-labs/orion/internal/core/ports/driven"
	htmlextractor "github.com/custodia-labs/orion/internal/extractors/html"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor handles EML (email) documents.
type Extractor struct {
	html *htmlextractor.Extractor
}

// New creates a new EML extractor.
func New() *Extractor {
	return &Extractor{html: htmlextractor.New()}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"message/rfc822"}
}

// SupportedExtensions returns the file extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".eml"}
}

// Extract returns the main headers followed by the message body.
// Plain text parts are preferred over HTML parts.
func (e *Extractor) Extract(ctx context.Context, filename string, content []byte) (*domain.ExtractedText, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing email: %w", domain.ErrInvalidInput, err)
	}

	subject := decodeHeader(msg.Header.Get("Subject"))
	body, err := e.extractBody(ctx, msg.Header, msg.Body)
	if err != nil {
		return nil, err
	}

	var out strings.Builder
	for _, h := range []struct{ label, value string }{
		{"From", decodeHeader(msg.Header.Get("From"))},
		{"To", decodeHeader(msg.Header.Get("To"))},
		{"Date", msg.Header.Get("Date")},
		{"Subject", subject},
	} {
		if h.value != "" {
			fmt.Fprintf(&out, "%s: %s\n", h.label, h.value)
		}
	}
	out.WriteString("\n")
	out.WriteString(body)

	title := subject
	if title == "" {
		title = domain.TitleFromFilename(filename)
	}

	return &domain.ExtractedText{
		Title:   title,
		Content: strings.TrimSpace(out.String()),
	}, nil
}

// header is the subset of MIME header access the body walker needs.
type header interface {
	Get(key string) string
}

// extractBody returns the text of a single or multipart body.
func (e *Extractor) extractBody(ctx context.Context, h header, body io.Reader) (string, error) {
	contentType := h.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		return e.extractMultipart(ctx, body, params["boundary"])
	}

	data, err := io.ReadAll(decodeTransfer(h.Get("Content-Transfer-Encoding"), body))
	if err != nil {
		return "", fmt.Errorf("%w: reading body: %w", domain.ErrInvalidInput, err)
	}

	if mediaType == "text/html" {
		return e.htmlText(ctx, data), nil
	}
	return strings.TrimSpace(string(data)), nil
}

// extractMultipart collects text parts, recursing into nested multiparts.
func (e *Extractor) extractMultipart(ctx context.Context, r io.Reader, boundary string) (string, error) {
	if boundary == "" {
		return "", nil
	}

	mr := multipart.NewReader(r, boundary)
	var textParts, htmlParts []string

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			break
		}

		mediaType, params, parseErr := mime.ParseMediaType(part.Header.Get("Content-Type"))
		if parseErr != nil {
			mediaType = "text/plain"
		}

		switch {
		case strings.HasPrefix(mediaType, "multipart/"):
			nested, err := e.extractMultipart(ctx, part, params["boundary"])
			if err == nil && nested != "" {
				textParts = append(textParts, nested)
			}
		case mediaType == "text/plain" || mediaType == "text/html":
			if isAttachment(part.Header.Get("Content-Disposition")) {
				break
			}
			// multipart.Part already decodes quoted-printable.
			data, err := io.ReadAll(decodeTransfer(base64Only(part.Header.Get("Content-Transfer-Encoding")), part))
			if err != nil {
				continue
			}
			if mediaType == "text/html" {
				htmlParts = append(htmlParts, e.htmlText(ctx, data))
			} else {
				textParts = append(textParts, strings.TrimSpace(string(data)))
			}
		}
		part.Close()
	}

	if len(textParts) > 0 {
		return strings.Join(textParts, "\n"), nil
	}
	return strings.Join(htmlParts, "\n"), nil
}

func (e *Extractor) htmlText(ctx context.Context, data []byte) string {
	extracted, err := e.html.Extract(ctx, "", data)
	if err != nil {
		return ""
	}
	return extracted.Content
}

// decodeTransfer wraps r according to a Content-Transfer-Encoding value.
func decodeTransfer(encoding string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		return r
	}
}

func base64Only(encoding string) string {
	if strings.EqualFold(strings.TrimSpace(encoding), "base64") {
		return encoding
	}
	return ""
}

func isAttachment(disposition string) bool {
	d, _, err := mime.ParseMediaType(disposition)
	return err == nil && d == "attachment"
}

// decodeHeader decodes RFC 2047 encoded headers.
func decodeHeader(value string) string {
	if value == "" {
		return ""
	}
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}
