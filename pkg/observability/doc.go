/*
Package observability turns engine lifecycle hooks into prometheus metrics.

A Metrics value owns its collectors and registers them on a caller supplied
registerer, so tests can use a private registry while the server uses the default one.
*/
package observability
