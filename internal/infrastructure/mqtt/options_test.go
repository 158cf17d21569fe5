package mqtt

import (
	"encoding/json"
	"testing"
)

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Username = "stream"
	cfg.Auth.Password = "secret"

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://127.0.0.1:1883" {
		t.Errorf("Servers = %v, want [tcp://127.0.0.1:1883]", opts.Servers)
	}
	if opts.ClientID != "huestream-test" {
		t.Errorf("ClientID = %q", opts.ClientID)
	}
	if opts.Username != "stream" || opts.Password != "secret" {
		t.Errorf("credentials = %q/%q", opts.Username, opts.Password)
	}
	if !opts.CleanSession {
		t.Error("CleanSession = false, want true")
	}
}

func TestBuildClientOptionsTLS(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true
	cfg.Broker.Port = 8883

	opts := buildClientOptions(cfg)

	if opts.Servers[0].String() != "ssl://127.0.0.1:8883" {
		t.Errorf("Servers[0] = %v, want ssl://127.0.0.1:8883", opts.Servers[0])
	}
	if opts.TLSConfig == nil || opts.TLSConfig.MinVersion != tlsMinVersion {
		t.Error("TLS config missing or below TLS 1.2")
	}
}

func TestConfigureLWT(t *testing.T) {
	opts := buildClientOptions(testConfig())
	configureLWT(opts, NewTopics("huestream"), "huestream-test", "sess-1")

	if !opts.WillEnabled {
		t.Fatal("WillEnabled = false")
	}
	if opts.WillTopic != "huestream/status" {
		t.Errorf("WillTopic = %q", opts.WillTopic)
	}
	if !opts.WillRetained || opts.WillQos != 1 {
		t.Errorf("Will retained=%v qos=%d, want retained qos 1", opts.WillRetained, opts.WillQos)
	}

	var msg StatusMessage
	if err := json.Unmarshal(opts.WillPayload, &msg); err != nil {
		t.Fatalf("WillPayload not JSON: %v", err)
	}
	if msg.Status != StatusOffline || msg.Reason != "unexpected_disconnect" || msg.SessionID != "sess-1" {
		t.Errorf("will message = %+v", msg)
	}
}

func TestStatusPayloads(t *testing.T) {
	var online, offline StatusMessage
	if err := json.Unmarshal(buildOnlinePayload("c1", "s1"), &online); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(buildOfflinePayload("c1", "s1"), &offline); err != nil {
		t.Fatal(err)
	}

	if online.Status != StatusOnline || online.ClientID != "c1" || online.SessionID != "s1" || online.Timestamp == "" {
		t.Errorf("online = %+v", online)
	}
	if online.Reason != "" {
		t.Errorf("online reason = %q, want empty", online.Reason)
	}
	if offline.Status != StatusOffline || offline.Reason != "graceful_shutdown" {
		t.Errorf("offline = %+v", offline)
	}
}
