package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"moneylog/internal/core"
)

func newParser(body string) *RequestBodyParser {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	return NewRequestBodyParser(httptest.NewRecorder(), req)
}

func TestRequestBodyParser(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantJSON bool
		want     map[string]string
	}{
		{"json", `{"amount": 580, "memo": " ランチ ", "flag": true}`, true, map[string]string{"amount": "580", "memo": "ランチ", "flag": "true", "missing": ""}},
		{"form", "amount=%C2%A51%2C200&memo=%E5%A4%95%E9%A3%9F", false, map[string]string{"amount": "¥1,200", "memo": "夕食"}},
		{"control characters", `{"memo":"a\u0000b\tc"}`, true, map[string]string{"memo": "ab\tc"}},
		{"empty", "", false, map[string]string{"amount": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newParser(tt.body)
			if err := p.Parse(); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if p.IsJSON() != tt.wantJSON {
				t.Fatalf("IsJSON() = %v, want %v", p.IsJSON(), tt.wantJSON)
			}
			for key, want := range tt.want {
				if got := p.Get(key); got != want {
					t.Errorf("Get(%q) = %q, want %q", key, got, want)
				}
			}
		})
	}
}

func TestRequestBodyParserErrorsAreSticky(t *testing.T) {
	p := newParser(`{"amount":`)
	first := p.Parse()
	if first == nil {
		t.Fatal("expected decode error")
	}
	if second := p.Parse(); second != first {
		t.Fatalf("expected the same error on reparse, got %v", second)
	}
}

func TestRequestBodyParserLimitsBodySize(t *testing.T) {
	p := newParser(`{"memo":"` + strings.Repeat("a", maxBodyBytes) + `"}`)
	if err := p.Parse(); err == nil {
		t.Fatal("expected error for oversized body")
	}
}

func TestParseEntry(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 30, 0, 0, jst)

	entry, err := ParseEntry(newParser(`{"amount":"¥1,200","category":"カフェ","memo":"スタバ","date":"2025-06-01"}`), now, jst)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Amount != 1200 || entry.Category != core.Cafe || entry.Memo != "スタバ" {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if want := time.Date(2025, 6, 1, 12, 30, 0, 0, jst); !entry.Date.Equal(want) {
		t.Fatalf("expected %v, got %v", want, entry.Date)
	}

	entry, err = ParseEntry(newParser("amount=300&category=%E3%81%9D%E3%81%AE%E4%BB%96&type=income"), now, jst)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Category != core.OtherIncome || !entry.Date.IsZero() {
		t.Fatalf("shared label must resolve inside the income set: %+v", entry)
	}

	entry, err = ParseEntry(newParser(`{"amount":"300","category":"その他"}`), now, jst)
	if err != nil || entry.Category != core.Other {
		t.Fatalf("shared label without type must resolve to the expense set: %+v %v", entry, err)
	}
}

func TestParseEntryFieldErrors(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, jst)
	tests := []struct {
		body  string
		field string
		is    error
	}{
		{`{"category":"food"}`, "amount", core.ErrInvalidAmount},
		{`{"amount":"1.5","category":"food"}`, "amount", core.ErrInvalidAmount},
		{`{"amount":"100"}`, "category", core.ErrUnknownCategory},
		{`{"amount":"100","category":"salary","type":"expense"}`, "category", core.ErrUnknownCategory},
		{`{"amount":"100","category":"food","type":"transfer"}`, "category", nil},
		{`{"amount":"100","category":"food","date":"2025-13-01"}`, "date", nil},
	}

	for _, tt := range tests {
		_, err := ParseEntry(newParser(tt.body), now, jst)
		var fe *FieldError
		if !errors.As(err, &fe) {
			t.Fatalf("%s: expected FieldError, got %v", tt.body, err)
		}
		if fe.Field != tt.field {
			t.Errorf("%s: field = %q, want %q", tt.body, fe.Field, tt.field)
		}
		if tt.is != nil && !errors.Is(err, tt.is) {
			t.Errorf("%s: expected %v in chain, got %v", tt.body, tt.is, err)
		}
	}
}

func TestParseYearMonth(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, jst)
	tests := []struct {
		query     string
		wantYear  int
		wantMonth int
		wantErr   bool
	}{
		{"", 2025, 6, false},
		{"year=2024&month=12", 2024, 12, false},
		{"month=%201%20", 2025, 1, false},
		{"month=13", 0, 0, true},
		{"month=0", 0, 0, true},
		{"year=twenty", 0, 0, true},
	}

	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		year, month, err := parseYearMonth(q, now)
		if (err != nil) != tt.wantErr {
			t.Fatalf("%q: err = %v, wantErr %v", tt.query, err, tt.wantErr)
		}
		if !tt.wantErr && (year != tt.wantYear || month != tt.wantMonth) {
			t.Errorf("%q: got %d-%d, want %d-%d", tt.query, year, month, tt.wantYear, tt.wantMonth)
		}
	}
}
