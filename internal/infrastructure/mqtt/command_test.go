package mqtt

import (
	"errors"
	"testing"

	"github.com/nerrad567/huestream/internal/hue"
	"github.com/nerrad567/huestream/internal/ringbuf"
)

func TestParseColorCommand(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    hue.Color
	}{
		{"xy with bri", `{"x":0.25,"y":0.75,"bri":0.25}`, hue.Color{X: 16384, Y: 49151, Brightness: 16384}},
		{"xy default bri", `{"x":0.25,"y":0.75}`, hue.Color{X: 16384, Y: 49151, Brightness: 65535}},
		{"rgb grey", `{"r":0,"g":0,"b":0}`, hue.FromXYFloat(hue.WhiteX, hue.WhiteY, 0)},
		{"rgb red", `{"r":255,"g":0,"b":0}`, hue.FromRGB(255, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColorCommand([]byte(tt.payload))
			if err != nil {
				t.Fatalf("ParseColorCommand() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseColorCommand() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseColorCommandRGBBrightness(t *testing.T) {
	full, err := ParseColorCommand([]byte(`{"r":255,"g":0,"b":0}`))
	if err != nil {
		t.Fatal(err)
	}
	half, err := ParseColorCommand([]byte(`{"r":255,"g":0,"b":0,"bri":0.5}`))
	if err != nil {
		t.Fatal(err)
	}

	if half.X != full.X || half.Y != full.Y {
		t.Errorf("chromaticity changed: %v vs %v", half, full)
	}
	diff := int(full.Brightness/2) - int(half.Brightness)
	if diff < -1 || diff > 1 {
		t.Errorf("half brightness = %d, want about %d", half.Brightness, full.Brightness/2)
	}
}

func TestParseColorCommandInvalid(t *testing.T) {
	payloads := []string{
		`not json`,
		`{}`,
		`{"x":0.3}`,
		`{"r":255,"g":0}`,
		`{"x":1.5,"y":0.3}`,
		`{"r":300,"g":0,"b":0}`,
		`{"r":-1,"g":0,"b":0}`,
		`{"x":0.3,"y":0.3,"bri":2}`,
	}

	for _, p := range payloads {
		if _, err := ParseColorCommand([]byte(p)); !errors.Is(err, ErrInvalidCommand) {
			t.Errorf("ParseColorCommand(%s) error = %v, want ErrInvalidCommand", p, err)
		}
	}
}

// fakeSubscriber records subscriptions without a broker.
type fakeSubscriber struct {
	handlers map[string]MessageHandler
}

func (f *fakeSubscriber) Subscribe(topic string, _ byte, handler MessageHandler) error {
	if f.handlers == nil {
		f.handlers = make(map[string]MessageHandler)
	}
	f.handlers[topic] = handler
	return nil
}

func (f *fakeSubscriber) Unsubscribe(topic string) error {
	delete(f.handlers, topic)
	return nil
}

func TestCommandProducer(t *testing.T) {
	buf, err := ringbuf.NewShared(hue.ElementSize, 4)
	if err != nil {
		t.Fatal(err)
	}
	sub := &fakeSubscriber{}
	topic := NewTopics("huestream").ColorCommand()
	producer := NewCommandProducer(sub, topic, 1, buf)

	if err := producer.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	handler, ok := sub.handlers[topic]
	if !ok {
		t.Fatalf("no subscription on %s", topic)
	}

	if err := handler(topic, []byte(`{"x":0.25,"y":0.75,"bri":0.25}`)); err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if err := handler(topic, []byte(`{"x":9}`)); err == nil {
		t.Error("handler accepted invalid payload")
	}

	dest := make([]byte, hue.ElementSize)
	got, err := buf.Latest(dest)
	if err != nil || !got {
		t.Fatalf("Latest() = %v, %v", got, err)
	}
	c, err := hue.ParseElement(dest)
	if err != nil {
		t.Fatal(err)
	}
	if want := (hue.Color{X: 16384, Y: 49151, Brightness: 16384}); c != want {
		t.Errorf("buffered colour = %v, want %v", c, want)
	}

	stats := producer.Stats()
	if stats.Accepted != 1 || stats.Rejected != 1 {
		t.Errorf("Stats() = %+v, want 1 accepted 1 rejected", stats)
	}

	if err := producer.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if len(sub.handlers) != 0 {
		t.Error("Stop() left subscription in place")
	}
}
