// Package api handles incoming HTTP requests for the task API: request
// decoding and validation, calls into the task service, and the
// {success, data, message, error} response envelope. Error responses never
// expose internal error text; see MapErrorToStatusCode and GetSafeErrorMessage.
package api
