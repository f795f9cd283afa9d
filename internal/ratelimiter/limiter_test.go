package ratelimiter_test

import (
	"testing"

	"github.com/ricirt/devlog-poster/internal/ratelimiter"
)

func TestTriggerLimiter_Allow(t *testing.T) {
	l := ratelimiter.New(1)
	if !l.Allow() {
		t.Fatal("first trigger should be allowed")
	}
	if l.Allow() {
		t.Fatal("second immediate trigger should be rejected")
	}
}

func TestTriggerLimiter_Disabled(t *testing.T) {
	l := ratelimiter.New(0)
	for i := 0; i < 100; i++ {
		if !l.Allow() {
			t.Fatalf("trigger %d rejected with limit disabled", i)
		}
	}
}
