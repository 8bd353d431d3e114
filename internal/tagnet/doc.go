// Package tagnet carries tag store reads and writes between processes over
// a mangos REQ/REP socket pair.
//
// A Server exposes any tag.Store on a listen address. A Client dials that
// address and is itself a tag.Store, so the control loop, the console and
// the scenario orchestrator run unchanged against a remote PLC. Messages are
// JSON objects:
//
//	request  {"op": "read"|"write", "tag": "<id>", "value": <float>}
//	reply    {"value": <float>, "code": "OK"|"TAG_NOT_FOUND"|...}
//
// A reply that does not arrive within the client timeout is reported as
// tag.ErrStaleRead.
package tagnet
