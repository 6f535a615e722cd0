// Package web serves the HTTP surface of the service: health views,
// the metrics scrape endpoint and role-protected API routes.
//
// Every error response uses the BusinessError body:
//
//	{"status":"403","detail":"Not enough permissions","type":"","data":{},
//	 "recoveryType":"","rawType":"SecurityBusinessError","category":"SecurityException"}
//
// Middleware order, outermost first: recovery, correlation id, tracing
// and access log, CORS.
package web
