package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"moneylog/internal/core"
	"moneylog/internal/session"
)

const maxBodyBytes = 64 << 10

// FieldError reports an unusable value for one request field. Handlers map
// it to 422.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// RequestBodyParser reads a JSON or form-encoded body once and serves its
// fields as strings.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// Parse decodes the body. Content starting with '{' is JSON, anything else
// is form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		p.err = fmt.Errorf("read body: %w", p.err)
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.err = fmt.Errorf("decode JSON body: %w", err)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	if p.err != nil {
		p.err = fmt.Errorf("decode form body: %w", p.err)
	}
	return p.err
}

// Get returns a sanitized field value from the parsed body.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseEntry builds a session entry from the body fields amount, category,
// memo, date (YYYY-MM-DD) and type (expense|income). Without type the
// category is looked up in the expense set, then the income set.
func ParseEntry(p *RequestBodyParser, now time.Time, loc *time.Location) (session.Entry, error) {
	if err := p.Parse(); err != nil {
		return session.Entry{}, err
	}

	amount, err := core.ParseYen(p.Get("amount"))
	if err != nil {
		return session.Entry{}, &FieldError{Field: "amount", Err: err}
	}

	category, err := parseEntryCategory(p.Get("category"), p.Get("type"))
	if err != nil {
		return session.Entry{}, &FieldError{Field: "category", Err: err}
	}

	entry := session.Entry{
		Amount:   amount,
		Category: category,
		Memo:     p.Get("memo"),
	}

	if v := p.Get("date"); v != "" {
		day, err := parseDate(v, loc)
		if err != nil {
			return session.Entry{}, &FieldError{Field: "date", Err: err}
		}
		entry.Date = onDay(day, now, loc)
	}
	return entry, nil
}

func parseEntryCategory(value, kind string) (core.Category, error) {
	switch strings.ToLower(kind) {
	case "expense":
		return core.ParseCategory(value, false)
	case "income":
		return core.ParseCategory(value, true)
	case "":
		if c, err := core.ParseCategory(value, false); err == nil {
			return c, nil
		}
		return core.ParseCategory(value, true)
	default:
		return "", fmt.Errorf("unknown entry type %q", kind)
	}
}

// ParseBudget reads the budget field as a positive yen amount.
func ParseBudget(p *RequestBodyParser) (core.Yen, error) {
	if err := p.Parse(); err != nil {
		return 0, err
	}
	budget, err := core.ParseYen(p.Get("budget"))
	if err != nil {
		return 0, &FieldError{Field: "budget", Err: err}
	}
	return budget, nil
}

func isFieldError(err error) bool {
	var fe *FieldError
	return errors.As(err, &fe)
}
