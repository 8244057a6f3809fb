/*
Package ddbkv implements the kvstore.KVStore primitive on AWS DynamoDB.

Every pair is stored as a single-table item with a shared partition key and
the storage key as the sort key:

	PK: "DRAFTKV#prod"
	SK: "proposal_drafts:7f3a...:organization"
	Value: "<envelope JSON>"

The synchronous KVStore contract is preserved by bounding each SDK call with
a short internal timeout. Throughput and item-collection limits map onto the
quota error taxonomy, so the quota manager's cleanup-and-retry path works the
same way it does against a browser-style store.
*/
package ddbkv
