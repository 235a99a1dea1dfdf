// Package telemetry encodes sensor readings and writes them to InfluxDB.
//
// Each reading becomes a single line-protocol point:
//
//	tank,device=3f2c9a1e-... inches=7.5
//	garage,device=3f2c9a1e-... fahrenheit=70.7,humidity=45.2
//
// Values always carry one decimal place. No timestamp is sent; the server
// assigns ingestion time.
//
// Client posts one point per call and classifies the result as an Outcome.
// Only HTTP 204 is a success. The client never retries, sleeps, or resets;
// that policy belongs to the supervisor.
package telemetry
