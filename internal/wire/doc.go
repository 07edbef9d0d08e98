// Package wire implements the fixed-size binary encoding of game events.
//
// Every turn crosses the channel as exactly one Buffer of BufferSize bytes:
//
//	byte 0     tag (game.Kind, 1..7)
//	byte 1     piece index            (Rotate, Move)
//	bytes 2-5  angle or x, float32 BE (Rotate, Move)
//	bytes 6-9  y, float32 BE          (Move)
//
// Unused bytes are zero. There is no variable-length framing: one buffer is
// one turn boundary. Floats travel as their IEEE-754 bit pattern, so decoding
// and re-encoding is lossless (NaN payloads and -0 included).
//
// Encode is total over valid events. Decode rejects unknown tags with a
// *ProtocolError, which callers must treat as fatal for the session.
package wire
