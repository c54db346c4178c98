// Package api contains the HTTP handlers for the REST surface: auth,
// todo CRUD and user search. The realtime stream endpoint lives in the
// stream package.
package api
