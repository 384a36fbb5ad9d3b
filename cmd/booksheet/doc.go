// Package main hosts the booksheet CLI.
//
// booksheet runs the same row validation and ONIX rendering as the ingestion
// service against local files, without a database. It is meant for checking
// a spreadsheet before uploading it and for producing ONIX offline.
package main
