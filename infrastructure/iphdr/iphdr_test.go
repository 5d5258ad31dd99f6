package iphdr

import "testing"

func TestDestinationIDReadsLastAddressOctet(t *testing.T) {
	frame := make([]byte, 20)
	frame[0] = 0x45
	frame[19] = 42

	id, err := DestinationID(frame)
	if err != nil {
		t.Fatalf("DestinationID: %v", err)
	}
	if id != 42 {
		t.Fatalf("got %d, want 42", id)
	}
}

func TestDestinationIDRejectsShortFrame(t *testing.T) {
	if _, err := DestinationID(make([]byte, 10)); err == nil {
		t.Fatal("expected error for short frame")
	}
}

func TestDestinationIDRejectsNonIPv4(t *testing.T) {
	frame := make([]byte, 20)
	frame[0] = 0x60 // version 6
	if _, err := DestinationID(frame); err == nil {
		t.Fatal("expected error for non-IPv4 version")
	}
}

func TestDestinationIDRejectsBadIHL(t *testing.T) {
	frame := make([]byte, 20)
	frame[0] = 0x44 // version 4, IHL 4 (16 bytes, below minimum)
	if _, err := DestinationID(frame); err == nil {
		t.Fatal("expected error for undersized IHL")
	}
}
