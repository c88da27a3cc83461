package models

import (
	"testing"
	"time"
)

func TestExchangeRecord(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("valid success", func(t *testing.T) {
		r := NewExchangeRecord("req-1", OutcomeSuccess, now)
		r.SetID("id-1")
		r.SetExpiresIn(5184000)
		r.SetDuration(120 * time.Millisecond)

		if err := r.Validate(); err != nil {
			t.Fatalf("expected valid record, got %v", err)
		}
		if r.ExpiresIn() != 5184000 {
			t.Errorf("expected expires_in 5184000, got %d", r.ExpiresIn())
		}
	})

	tc := []struct {
		name   string
		record func() *ExchangeRecord
	}{
		{
			name: "missing id",
			record: func() *ExchangeRecord {
				return NewExchangeRecord("", OutcomeSuccess, now)
			},
		},
		{
			name: "success with error kind",
			record: func() *ExchangeRecord {
				r := NewExchangeRecord("", OutcomeSuccess, now)
				r.SetID("id")
				r.SetFailure("internal_error", 0)
				return r
			},
		},
		{
			name: "failure without kind",
			record: func() *ExchangeRecord {
				r := NewExchangeRecord("", OutcomeFailure, now)
				r.SetID("id")
				return r
			},
		},
		{
			name: "unknown outcome",
			record: func() *ExchangeRecord {
				r := NewExchangeRecord("", Outcome("maybe"), now)
				r.SetID("id")
				return r
			},
		},
		{
			name: "negative duration",
			record: func() *ExchangeRecord {
				r := NewExchangeRecord("", OutcomeSuccess, now)
				r.SetID("id")
				r.SetDuration(-time.Second)
				return r
			},
		},
		{
			name: "zero time",
			record: func() *ExchangeRecord {
				r := NewExchangeRecord("", OutcomeSuccess, time.Time{})
				r.SetID("id")
				return r
			},
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.record().Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
