package protocol

import (
	"slices"
	"testing"

	"github.com/pkg/errors"
)

func TestEncodeDecode(t *testing.T) {
	data, err := Encode(CmdOK, &ReloadResult{Added: []string{"#a"}, Channels: []string{"#a", "#b"}})
	if err != nil {
		t.Fatal(err)
	}

	env, payload, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if env.Command != CmdOK {
		t.Fatalf("Command = %q, want %q", env.Command, CmdOK)
	}

	res, err := DecodePayload[ReloadResult](payload)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(res.Added, []string{"#a"}) || len(res.Removed) != 0 || !slices.Equal(res.Channels, []string{"#a", "#b"}) {
		t.Fatalf("payload = %+v", res)
	}
}

func TestEncodeNilPayload(t *testing.T) {
	data, err := Encode(CmdStatus, nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"command":"status"}` {
		t.Fatalf("Encode = %s", data)
	}
}

func TestDecodeErrors(t *testing.T) {
	for _, in := range []string{"", "{", "[]", `{"payload":{}}`} {
		if _, _, err := Decode([]byte(in)); !errors.Is(err, ErrProtocol) {
			t.Fatalf("Decode(%q) error = %v, want ErrProtocol", in, err)
		}
	}
}

func TestDecodePayloadEmpty(t *testing.T) {
	res, err := DecodePayload[ErrorResult](nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Message != "" {
		t.Fatalf("Message = %q, want empty", res.Message)
	}

	if _, err := DecodePayload[ErrorResult]([]byte(`"nope"`)); !errors.Is(err, ErrProtocol) {
		t.Fatalf("DecodePayload error = %v, want ErrProtocol", err)
	}
}
