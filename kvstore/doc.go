/*
Package kvstore defines the persistent key/value primitive contract the draft
persistence engine is built on.

The interface deliberately mirrors browser-style storage: synchronous string
operations with enumerable keys. Reads never fail (absence is reported via a
boolean); writes return errors the engine classifies into quota exhaustion
and access denial.

Implementations:
  - memkv: in-memory store with a configurable byte limit and failure
    injection, used throughout the test suite
  - sqlitekv: durable single-file store on modernc.org/sqlite
  - ddbkv: durable store on AWS DynamoDB for server-assisted deployments

The engine never talks to a backend directly; every call goes through the
capability-probed adapter package.
*/
package kvstore
