package app_test

import (
	"testing"
	"time"

	"iq-report-service/internal/app"
	"iq-report-service/internal/domain"
)

func TestStatusHubDeliversToSessionSubscribers(t *testing.T) {
	hub := app.NewStatusHub()

	ch, cancel := hub.Subscribe("s1")
	defer cancel()
	other, cancelOther := hub.Subscribe("s2")
	defer cancelOther()

	hub.Publish(app.StatusUpdate{SessionID: "s1", PaymentStatus: domain.StatusPaid, At: time.Now()})

	select {
	case update := <-ch:
		if update.SessionID != "s1" || update.PaymentStatus != domain.StatusPaid {
			t.Fatalf("unexpected update %+v", update)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for update")
	}

	select {
	case update := <-other:
		t.Fatalf("s2 subscriber received %+v", update)
	default:
	}
}

func TestStatusHubDropsOldestForSlowSubscriber(t *testing.T) {
	hub := app.NewStatusHub()

	ch, cancel := hub.Subscribe("s1")
	defer cancel()

	// Overflow the buffer; Publish must never block.
	for i := 0; i < 20; i++ {
		hub.Publish(app.StatusUpdate{SessionID: "s1", OrderID: orderID(i), PaymentStatus: domain.StatusPending})
	}
	hub.Publish(app.StatusUpdate{SessionID: "s1", PaymentStatus: domain.StatusPaid})

	var last app.StatusUpdate
	for {
		select {
		case update := <-ch:
			last = update
		default:
			if last.PaymentStatus != domain.StatusPaid {
				t.Fatalf("expected the newest update to survive, got %+v", last)
			}
			return
		}
	}
}

func TestStatusHubCancelIsIdempotent(t *testing.T) {
	hub := app.NewStatusHub()

	_, cancel := hub.Subscribe("s1")
	cancel()
	cancel()

	// Publishing after cancel must not panic on the closed channel.
	hub.Publish(app.StatusUpdate{SessionID: "s1", PaymentStatus: domain.StatusPaid})
}

func orderID(i int) string {
	return string(rune('a' + i%26))
}
