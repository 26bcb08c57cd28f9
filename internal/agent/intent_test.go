package agent

import (
	"testing"

	"github.com/dealerdesk/lead-agent-platform/internal/model"
)

func TestClassifyIntent(t *testing.T) {
	cases := []struct {
		text string
		want model.Intent
	}{
		{"Hi there", model.IntentGreeting},
		{"hello, quick question", model.IntentGreeting},
		{"Good morning!", model.IntentGreeting},
		{"Is the 2021 CR-V still in stock?", model.IntentAvailability},
		{"do you have any hybrids available", model.IntentAvailability},
		{"What's the mileage on that one?", model.IntentDetails},
		{"can you tell me more about the trim", model.IntentDetails},
		{"Can you do $20k out the door?", model.IntentPricing},
		{"how much is the Accord", model.IntentPricing},
		{"what APR can I get", model.IntentFinancing},
		{"can I get a loan with bad credit", model.IntentFinancing},
		{"I want to trade in my Corolla", model.IntentTradeIn},
		{"what's the warranty on this", model.IntentLegal},
		{"can I schedule a test drive", model.IntentScheduleTestDrive},
		{"came in yesterday, still deciding", model.IntentPostAppointment},
		{"what's the weather like today", model.IntentOutOfScope},
		{"ok sounds good", model.IntentGeneric},
		{"", model.IntentGeneric},
		{"   ", model.IntentGeneric},
	}

	for _, tc := range cases {
		if got := ClassifyIntent(tc.text); got != tc.want {
			t.Errorf("ClassifyIntent(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestClassifyIntentGreetingAnchoredAtStart(t *testing.T) {
	// "hi" mid-sentence must not trigger the greeting rule.
	if got := ClassifyIntent("I told him hi for you, is the truck still available?"); got != model.IntentAvailability {
		t.Fatalf("got %q, want availability", got)
	}
}

func TestDecideHandoff(t *testing.T) {
	handoffs := map[model.Intent]string{
		model.IntentFinancing:       "financing",
		model.IntentTradeIn:         "trade_in",
		model.IntentPricing:         "pricing",
		model.IntentLegal:           "legal",
		model.IntentOutOfScope:      "out_of_scope",
		model.IntentPostAppointment: "appointment_scheduled",
	}

	for intent, reason := range handoffs {
		d := DecideHandoff(intent, nil)
		if !d.Should {
			t.Errorf("DecideHandoff(%q).Should = false, want true", intent)
		}
		if d.Reason != reason {
			t.Errorf("DecideHandoff(%q).Reason = %q, want %q", intent, d.Reason, reason)
		}
	}

	stays := []model.Intent{
		model.IntentGreeting,
		model.IntentAvailability,
		model.IntentDetails,
		model.IntentScheduleTestDrive,
		model.IntentGeneric,
	}
	for _, intent := range stays {
		if d := DecideHandoff(intent, nil); d.Should {
			t.Errorf("DecideHandoff(%q).Should = true, want false", intent)
		}
	}
}

func TestDecideHandoffPostAppointmentNote(t *testing.T) {
	d := DecideHandoff(model.IntentPostAppointment, nil)
	if d.Note == "" {
		t.Fatal("expected a note on post_appointment handoffs")
	}
}
