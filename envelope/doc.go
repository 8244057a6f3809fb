/*
Package envelope implements the timestamped, versioned wrapper around every
persisted value.

Stored form:

	{"value":{"name":"Acme"},"timestamp":1714670000123,
	 "expiresAt":1714756400123,"schemaVersion":"2"}

Decode is strict: anything that is not a well-formed envelope is reported as
corrupt so the adapter can purge the key and self-heal. Expiry is optional;
envelopes without expiresAt only leave storage through the retention-window
cleanup pass.
*/
package envelope
