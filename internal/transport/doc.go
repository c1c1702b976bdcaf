// Package transport provides the byte-stream transports the configuration
// engine talks through.
//
// The engine only depends on the narrow Stream interface: a half-duplex
// read/write byte pipe with a settable read deadline. Three endpoint kinds
// are supported, selected by Open from the endpoint string:
//
//   - a serial device path ("/dev/ttyACM0", "COM3") opened at a configurable
//     baud rate
//   - "tcp://host:port" for receivers behind a raw serial-to-TCP bridge
//     (ser2net and friends)
//   - "ws://host:port/path" (or wss) for serial-over-WebSocket bridges
//
// The stream is treated as reliable-enough and in-order but never as
// byte-perfect; framing and checksum validation happen one layer up in the
// ubx package.
package transport
