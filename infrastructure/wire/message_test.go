package wire

import (
	"bytes"
	"testing"
)

func TestRequestRoundTrip(t *testing.T) {
	got, err := Decode(Encode(Request()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Kind != KindRequest {
		t.Fatalf("got kind %v, want KindRequest", got.Kind)
	}
}

func TestResponseRoundTrip(t *testing.T) {
	want := Response(253, 0xdeadbeef, "8.8.8.8")
	got, err := Decode(Encode(want))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Kind != KindResponse || got.ResponseId != want.ResponseId ||
		got.ResponseToken != want.ResponseToken || got.ResponseDNS != want.ResponseDNS {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestDataRoundTrip(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5}
	want := Data(17, 42, payload)
	got, err := Decode(Encode(want))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Kind != KindData || got.DataId != want.DataId || got.DataToken != want.DataToken ||
		!bytes.Equal(got.Data, want.Data) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestDecodeTruncated(t *testing.T) {
	if _, err := Decode(nil); err == nil {
		t.Fatal("expected error decoding empty buffer")
	}
	if _, err := Decode([]byte{byte(KindResponse), 1, 2, 3}); err == nil {
		t.Fatal("expected error decoding truncated Response")
	}
}

func TestDecodeUnknownKind(t *testing.T) {
	if _, err := Decode([]byte{0xff}); err == nil {
		t.Fatal("expected error decoding unknown kind")
	}
}
