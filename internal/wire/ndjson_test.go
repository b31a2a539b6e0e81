package wire

import (
	"testing"
)

func TestNDJSONDecoderLines(t *testing.T) {
	d := NewNDJSONDecoder(nil)
	input := "{\"message\":{\"content\":\"hi\"},\"done\":false}\n{\"done\":true,\"context\":[1,2]}\n"
	payloads, _ := collect(d.Feed([]byte(input)))
	if len(payloads) != 2 {
		t.Fatalf("payloads = %v", payloads)
	}
	if payloads[1] != `{"done":true,"context":[1,2]}` {
		t.Errorf("terminal line = %q", payloads[1])
	}
}

func TestNDJSONDecoderSplitAcrossFeeds(t *testing.T) {
	d := NewNDJSONDecoder(nil)
	var payloads []string
	for _, chunk := range []string{`{"a"`, `:1}` + "\n" + `{"b"`, ":2}\n"} {
		p, _ := collect(d.Feed([]byte(chunk)))
		payloads = append(payloads, p...)
	}
	if len(payloads) != 2 || payloads[0] != `{"a":1}` || payloads[1] != `{"b":2}` {
		t.Errorf("payloads = %v", payloads)
	}
}

func TestNDJSONDecoderDropsMalformedLine(t *testing.T) {
	d := NewNDJSONDecoder(nil)
	payloads, _ := collect(d.Feed([]byte("{bad\n{\"good\":1}\n")))
	if len(payloads) != 1 || payloads[0] != `{"good":1}` {
		t.Errorf("payloads = %v", payloads)
	}
}

func TestNDJSONDecoderFinishSalvagesLastLine(t *testing.T) {
	d := NewNDJSONDecoder(nil)
	d.Feed([]byte(`{"done":true}`))
	payloads, _ := collect(d.Finish())
	if len(payloads) != 1 || payloads[0] != `{"done":true}` {
		t.Errorf("payloads = %v", payloads)
	}
}

func TestNDJSONDecoderSkipsBlankLines(t *testing.T) {
	d := NewNDJSONDecoder(nil)
	payloads, _ := collect(d.Feed([]byte("\n\n{\"a\":1}\n\n")))
	if len(payloads) != 1 {
		t.Errorf("payloads = %v", payloads)
	}
}

func TestBodyDecoderSingleFrame(t *testing.T) {
	d := NewBodyDecoder()
	if frames := d.Feed([]byte(`{"half":`)); frames != nil {
		t.Errorf("Feed yielded frames early: %v", frames)
	}
	d.Feed([]byte(`"whole"}`))
	payloads, _ := collect(d.Finish())
	if len(payloads) != 1 || payloads[0] != `{"half":"whole"}` {
		t.Errorf("payloads = %v", payloads)
	}
}

func TestBodyDecoderEmptyBody(t *testing.T) {
	d := NewBodyDecoder()
	if frames := d.Finish(); frames != nil {
		t.Errorf("frames = %v, want nil", frames)
	}
}
