// Package model defines the data structures shared across the application.
//
// The central types are PageReport, which records what happened to a single
// HTML page during post-processing, and SiteReport, which aggregates the
// page reports for a whole run. Findings carry privacy issues discovered
// while auditing assets referenced by the pages, with severities assigned
// from a central mapping.
//
// This package has no dependencies on other internal packages so that it
// can be imported from anywhere without creating cycles.
package model
