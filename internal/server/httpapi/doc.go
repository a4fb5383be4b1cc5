// Package httpapi exposes the unicampus services over HTTP/JSON.
//
// Every /api/v1 request acts as one account. The account is named by the
// X-Account-ID header; without the header the registry's active account is
// used. Board reads carry the stored digest as an ETag so clients can poll
// cheaply with If-None-Match.
package httpapi
