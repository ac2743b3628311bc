// Package services contains the application services that sit behind
// the driving ports: thin orchestration over the crawler, the vector
// store and the configuration.
package services
