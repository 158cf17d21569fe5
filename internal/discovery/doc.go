// Package discovery finds Hue bridges on the local network over mDNS.
//
// Bridges advertise the _hue._tcp service with TXT records carrying the
// bridge id and model. FindBridge browses until the first bridge with a
// usable address appears or the timeout expires. The streaming port is not
// advertised; callers use the fixed entertainment port.
package discovery
