// Package mqtt provides MQTT client connectivity for huestream.
//
// This package manages:
//   - Connection to an MQTT broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Remote colour commands feeding the stream's ring buffer
//
// # Topics
//
// All topics live under a configurable prefix (default "huestream"):
//
//	{prefix}/status         retained online/offline, also the LWT
//	{prefix}/stats          periodic stream statistics (JSON)
//	{prefix}/command/color  colour commands, {"x","y","bri"} or {"r","g","b","bri"}
//
// MQTT is optional. The entertainment stream itself never depends on the
// broker; a lost broker connection only pauses status and command traffic.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT, sessionID)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	producer := mqtt.NewCommandProducer(client, client.Topics().ColorCommand(), 1, buf)
//	if err := producer.Start(); err != nil {
//	    return err
//	}
//
//	client.PublishStats(snapshot)
package mqtt
