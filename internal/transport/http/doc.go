// Package http exposes the tabulation service over HTTP.
//
// Handlers parse path and query parameters, delegate to the service layer and
// render the result. Errors go through errors.ErrorHandler and come back as
// RFC 7807 problem documents.
//
// # Routes
//
//	GET  /api/questions                      codebook listing
//	GET  /api/questions/{id}/frequency       frequency table
//	GET  /api/questions/{id}/cut/{by}        cross-tabulation by a single-answer question
//	GET  /api/matrices/{id}/frequency?show=  stacked matrix table
//	GET  /api/matrices/{id}/cut/{by}         matrix cross-tabulation
//	GET  /api/report                         report declared in the codebook
//	POST /api/report                         ad hoc report
//
// Table endpoints take the table option overrides as query parameters
// (percent_format, mean_format, remove_exclusions, show_totals, show_mean,
// significance_level, axis_label, title) and a format of json, csv or xlsx.
// Reports default to xlsx.
package http
