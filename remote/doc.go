/*
Package remote implements the best-effort client for the Draft API.

The API exposes three operations:

	POST  /drafts        -> {"draftId": "..."}
	GET   /drafts/{id}   -> DraftRecord
	PATCH /drafts/{id}   -> partial section merge

Failures here never affect local persistence; the facade fires a sync after
a successful local flush and logs the outcome either way. Error messages
carry the status class in a form the recovery package classifies correctly.
*/
package remote
